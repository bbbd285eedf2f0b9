package hostvar

import (
	"fmt"

	"github.com/funvibe/esqlpp/internal/config"
	"github.com/funvibe/esqlpp/internal/diagnostics"
)

// HostRef is a host variable bound to a marshalling kind, with an optional
// indicator. Text fragments are computed on first use and then reused.
type HostRef struct {
	Var *HostVariable
	Ind *HostVariable

	kind Kind
	b    *Binder

	precision  *string
	inputSize  *string
	outputSize *string
	expr       *string
	addr       *string
	indExpr    *string
	indAddr    *string
}

// Kind returns the marshalling kind, classifying on first use.
func (r *HostRef) Kind() Kind {
	if r.kind == KindUninit {
		r.kind = r.b.Classify(r.Var, true)
	}
	return r.kind
}

func cached(slot **string, compute func() string) string {
	if *slot == nil {
		s := compute()
		*slot = &s
	}
	return **slot
}

func (r *HostRef) unknownKind() string {
	r.b.report(diagnostics.ErrH012, r.Var.Type.String())
	return "0"
}

// Expr is the rvalue expression of the variable.
func (r *HostRef) Expr() string {
	return cached(&r.expr, r.Var.Expr)
}

// AddrExpr is the address passed to the runtime.
func (r *HostRef) AddrExpr() string {
	return cached(&r.addr, func() string {
		return r.Var.addrExpr(r.b.names.Array)
	})
}

// IndExpr is the indicator expression, or "" without an indicator.
func (r *HostRef) IndExpr() string {
	if r.Ind == nil {
		return ""
	}
	return cached(&r.indExpr, r.Ind.Expr)
}

// IndAddrExpr is the indicator address. Without an indicator it is the
// shared internal indicator when enabled, NULL otherwise.
func (r *HostRef) IndAddrExpr() string {
	if r.Ind == nil {
		if r.b.opts.InternalIndicator {
			return "&" + config.NullIndicatorName
		}
		return "NULL"
	}
	return cached(&r.indAddr, func() string {
		return r.Ind.addrExpr(r.b.names.Array)
	})
}

// Precision is the nominal precision expression.
func (r *HostRef) Precision() string {
	return cached(&r.precision, func() string {
		switch r.Kind() {
		case KindShort, KindInteger, KindLong, KindFloat, KindDouble,
			KindTime, KindTimestamp, KindDate, KindMonetary, KindDBValue,
			KindBasicSet, KindMultiset, KindSequence, KindCollection, KindObjectID:
			return "0"
		case KindCharPointer:
			// resolved by the runtime with strlen()
			return "0"
		case KindCharArray, KindStringConst:
			return fmt.Sprintf("sizeof(%s)-1", r.Expr())
		case KindVarchar:
			return fmt.Sprintf("sizeof((%s).%s)-1", r.Expr(), r.b.names.Array)
		case KindBit, KindVarbit:
			return fmt.Sprintf("(%s).%s", r.Expr(), r.b.names.Length)
		}
		return r.unknownKind()
	})
}

var fixedSizes = map[Kind]string{
	KindShort:      "sizeof(short)",
	KindInteger:    "sizeof(int)",
	KindLong:       "sizeof(long)",
	KindFloat:      "sizeof(float)",
	KindDouble:     "sizeof(double)",
	KindTime:       "sizeof(DB_TIME)",
	KindTimestamp:  "sizeof(DB_TIMESTAMP)",
	KindDate:       "sizeof(DB_DATE)",
	KindMonetary:   "sizeof(DB_MONETARY)",
	KindDBValue:    "sizeof(DB_VALUE)",
	KindBasicSet:   "sizeof(DB_SET *)",
	KindMultiset:   "sizeof(DB_MULTISET *)",
	KindSequence:   "sizeof(DB_SEQ *)",
	KindCollection: "sizeof(DB_COLLECTION *)",
	KindObjectID:   "sizeof(DB_OBJECT *)",
}

// InputSize is the size of the value when sent to the runtime.
func (r *HostRef) InputSize() string {
	return cached(&r.inputSize, func() string {
		k := r.Kind()
		if s, ok := fixedSizes[k]; ok {
			return s
		}
		switch k {
		case KindCharArray, KindStringConst:
			return fmt.Sprintf("sizeof(%s)", r.Expr())
		case KindVarchar, KindBit, KindVarbit:
			return fmt.Sprintf("(%s).%s", r.Expr(), r.b.names.Length)
		case KindCharPointer:
			return fmt.Sprintf("strlen(%s)", r.Expr())
		}
		return r.unknownKind()
	})
}

// OutputSize is the room available when the runtime writes the value.
func (r *HostRef) OutputSize() string {
	switch r.Kind() {
	case KindCharPointer:
		return cached(&r.outputSize, func() string {
			return fmt.Sprintf("strlen(%s)+1", r.Expr())
		})
	case KindVarchar, KindBit, KindVarbit:
		return cached(&r.outputSize, func() string {
			return fmt.Sprintf("sizeof((%s).%s)", r.Expr(), r.b.names.Array)
		})
	}
	return r.InputSize()
}

// String renders "expr:ind  (size)" for scope dumps.
func (r *HostRef) String() string {
	s := r.Expr()
	if ind := r.IndExpr(); ind != "" {
		s += ":" + ind
	}
	return fmt.Sprintf("%s  (%s)", s, r.InputSize())
}
