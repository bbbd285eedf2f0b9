package hostvar

// Kind is the runtime marshalling type a host reference is bound to.
type Kind int

const (
	KindShort Kind = iota
	KindInteger
	KindLong
	KindFloat
	KindDouble
	KindCharPointer
	KindCharArray
	KindObjectID
	KindBasicSet
	KindMultiset
	KindSequence
	KindCollection
	KindTime
	KindTimestamp
	KindDate
	KindMonetary
	KindDBValue
	KindVarchar
	KindBit
	KindVarbit

	// Kinds below are never valid in a plain host variable list.
	numVariableKinds

	KindStringConst
	KindSQLDA
	KindStruct
	KindBad
	KindUninit
)

var kindNames = [...]string{
	KindShort:       "SHORT",
	KindInteger:     "INTEGER",
	KindLong:        "LONG",
	KindFloat:       "FLOAT",
	KindDouble:      "DOUBLE",
	KindCharPointer: "CHAR_POINTER",
	KindCharArray:   "CHAR_ARRAY",
	KindObjectID:    "OBJECTID",
	KindBasicSet:    "BASICSET",
	KindMultiset:    "MULTISET",
	KindSequence:    "SEQUENCE",
	KindCollection:  "COLLECTION",
	KindTime:        "TIME",
	KindTimestamp:   "TIMESTAMP",
	KindDate:        "DATE",
	KindMonetary:    "MONETARY",
	KindDBValue:     "DB_VALUE",
	KindVarchar:     "VARCHAR",
	KindBit:         "BIT",
	KindVarbit:      "VARBIT",
	KindStringConst: "STRING_CONST",
	KindSQLDA:       "SQLDA",
	KindStruct:      "STRUCT",
	KindBad:         "BAD",
	KindUninit:      "UNINIT",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// IsVariable reports whether the kind can be exchanged with the runtime
// as an ordinary host variable.
func (k Kind) IsVariable() bool {
	return k >= 0 && k < numVariableKinds
}

// IsCharString covers the kinds whose value is passed as the expression
// itself rather than its address.
func (k Kind) IsCharString() bool {
	return k == KindCharArray || k == KindCharPointer || k == KindStringConst
}

// IsPseudo covers VARCHAR, BIT and VARBIT.
func (k Kind) IsPseudo() bool {
	return k == KindVarchar || k == KindBit || k == KindVarbit
}

// KindSet is a small bit set of kinds.
type KindSet uint64

func NewKindSet(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= 1 << uint(k)
	}
	return s
}

func (s KindSet) Has(k Kind) bool {
	return k >= 0 && s&(1<<uint(k)) != 0
}

// Frequently checked sets.
var (
	StringKinds     = NewKindSet(KindCharArray, KindCharPointer, KindStringConst, KindVarchar)
	DescriptorKinds = NewKindSet(KindSQLDA)
	ObjectKinds     = NewKindSet(KindObjectID)
)

// Descriptions used with CheckType.
const (
	WantCharString = "a character string"
	WantDescriptor = "a pointer to a CUBRIDDA descriptor"
	WantObject     = "a pointer to a DB_OBJECT"
)
