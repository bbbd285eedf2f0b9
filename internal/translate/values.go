package translate

import (
	"fmt"

	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/hostvar"
)

type bufKind int

const (
	bufAddr bufKind = iota
	bufExpr
)

type sizeKind int

const (
	sizeNone sizeKind = iota
	sizeInput
	// sizeVarchar passes the input size only with varchar lengths disabled.
	sizeVarchar
)

// putRule describes the uci_put_value arguments for one kind.
type putRule struct {
	dbType    string
	cType     string
	precision bool
	buf       bufKind
	size      sizeKind
}

var putRules = map[hostvar.Kind]putRule{
	hostvar.KindShort:       {dbType: "DB_TYPE_SHORT", cType: "DB_TYPE_C_SHORT"},
	hostvar.KindInteger:     {dbType: "DB_TYPE_INTEGER", cType: "DB_TYPE_C_INT"},
	hostvar.KindLong:        {dbType: "DB_TYPE_INTEGER", cType: "DB_TYPE_C_LONG"},
	hostvar.KindFloat:       {dbType: "DB_TYPE_FLOAT", cType: "DB_TYPE_C_FLOAT"},
	hostvar.KindDouble:      {dbType: "DB_TYPE_DOUBLE", cType: "DB_TYPE_C_DOUBLE"},
	hostvar.KindVarchar:     {dbType: "DB_TYPE_VARCHAR", cType: "DB_TYPE_C_CHAR", precision: true, size: sizeVarchar},
	hostvar.KindCharArray:   {dbType: "DB_TYPE_CHAR", cType: "DB_TYPE_C_CHAR", precision: true, buf: bufExpr, size: sizeInput},
	hostvar.KindCharPointer: {dbType: "DB_TYPE_CHAR", cType: "DB_TYPE_C_CHAR", precision: true, buf: bufExpr, size: sizeInput},
	hostvar.KindBit:         {dbType: "DB_TYPE_BIT", cType: "DB_TYPE_C_BIT", precision: true, size: sizeInput},
	hostvar.KindVarbit:      {dbType: "DB_TYPE_VARBIT", cType: "DB_TYPE_C_BIT", precision: true, size: sizeInput},
	hostvar.KindBasicSet:    {dbType: "DB_TYPE_SET", cType: "DB_TYPE_C_SET"},
	hostvar.KindMultiset:    {dbType: "DB_TYPE_MULTISET", cType: "DB_TYPE_C_SET"},
	hostvar.KindSequence:    {dbType: "DB_TYPE_SEQUENCE", cType: "DB_TYPE_C_SET"},
	hostvar.KindCollection:  {cType: "DB_TYPE_C_SET"},
	hostvar.KindTime:        {dbType: "DB_TYPE_TIME", cType: "DB_TYPE_C_TIME", size: sizeInput},
	hostvar.KindTimestamp:   {dbType: "DB_TYPE_TIMESTAMP", cType: "DB_TYPE_C_TIMESTAMP", size: sizeInput},
	hostvar.KindDate:        {dbType: "DB_TYPE_DATE", cType: "DB_TYPE_C_DATE", size: sizeInput},
	hostvar.KindMonetary:    {dbType: "DB_TYPE_MONETARY", cType: "DB_TYPE_C_MONETARY", size: sizeInput},
	hostvar.KindObjectID:    {dbType: "DB_TYPE_OBJECT", cType: "DB_TYPE_C_OBJECT"},
	hostvar.KindDBValue:     {dbType: "DB_TYPE_DB_VALUE", cType: "0"},
}

// getTypes is the C type code uci_get_value converts into.
var getTypes = map[hostvar.Kind]string{
	hostvar.KindShort:       "DB_TYPE_C_SHORT",
	hostvar.KindInteger:     "DB_TYPE_C_INT",
	hostvar.KindLong:        "DB_TYPE_C_LONG",
	hostvar.KindFloat:       "DB_TYPE_C_FLOAT",
	hostvar.KindDouble:      "DB_TYPE_C_DOUBLE",
	hostvar.KindCharPointer: "DB_TYPE_C_CHAR",
	hostvar.KindCharArray:   "DB_TYPE_C_CHAR",
	hostvar.KindObjectID:    "DB_TYPE_C_OBJECT",
	hostvar.KindBasicSet:    "DB_TYPE_C_SET",
	hostvar.KindMultiset:    "DB_TYPE_C_SET",
	hostvar.KindSequence:    "DB_TYPE_C_SET",
	hostvar.KindCollection:  "DB_TYPE_C_SET",
	hostvar.KindTime:        "DB_TYPE_C_TIME",
	hostvar.KindTimestamp:   "DB_TYPE_C_TIMESTAMP",
	hostvar.KindDate:        "DB_TYPE_C_DATE",
	hostvar.KindMonetary:    "DB_TYPE_C_MONETARY",
	hostvar.KindVarchar:     "DB_TYPE_C_VARCHAR",
	hostvar.KindBit:         "DB_TYPE_C_BIT",
	hostvar.KindVarbit:      "DB_TYPE_C_VARBIT",
}

// putValue emits the uci_put_value call that binds one input reference.
func (t *Translator) putValue(ref *hostvar.HostRef) {
	ind := ref.IndAddrExpr()
	k := ref.Kind()
	rule, ok := putRules[k]
	if !ok {
		t.Reporter.Report(diagnostics.ErrT001, "uci_put_value")
		t.call("uci_put_value(%s, DB_TYPE_UNKNOWN, 0, 0, 0, NULL, 0)", ind)
		return
	}

	dbType := rule.dbType
	if k == hostvar.KindCollection {
		dbType = fmt.Sprintf("db_col_type(%s)", ref.Expr())
	}
	prec := "0"
	if rule.precision {
		prec = ref.Precision()
	}
	buf := ref.AddrExpr()
	if rule.buf == bufExpr {
		buf = ref.Expr()
	}
	size := "0"
	if rule.size == sizeInput || (rule.size == sizeVarchar && t.opts.DisableVarcharLength) {
		size = ref.InputSize()
	}

	t.call("uci_put_value(%s, %s, %s, 0, %s, %s, %s)", ind, dbType, prec, rule.cType, buf, size)
}

// getValue emits the call that copies one result column into ref. cid is
// the cursor the row came from, -1 for single-row statements.
func (t *Translator) getValue(cid int, ref *hostvar.HostRef) {
	k := ref.Kind()
	if k == hostvar.KindDBValue {
		t.call("uci_get_db_value(%d, %s)", cid, ref.AddrExpr())
		return
	}
	cType, ok := getTypes[k]
	if !ok {
		t.Reporter.Report(diagnostics.ErrT001, "uci_get_value")
		cType = "0"
	}
	length := "NULL"
	if k == hostvar.KindVarchar || k == hostvar.KindVarbit {
		length = "&" + ref.InputSize()
	}
	t.call("uci_get_value(%d, %s, (void *)(%s), %s, (int)(%s), %s)",
		cid, ref.IndAddrExpr(), ref.AddrExpr(), cType, ref.OutputSize(), length)
}
