package config

// SourceFileExt is the extension of embedded-SQL input files.
const SourceFileExt = ".ec"

// OutputFileExt replaces SourceFileExt on the generated file.
const OutputFileExt = ".c"

// Version is reported by --version.
const Version = "esqlpp 1.0"

// Runtime names that the generated code refers to. They are fixed by the
// runtime header and must match it exactly.
const (
	FileIDVarName      = "uci_esqlxc_file"
	NotFoundMacroName  = "SQL_NOT_FOUND"
	WarnCharMacroName  = "SQL_WARNING_CHAR"
	NullIndicatorName  = "uci_null_ind"
	DefaultIncludeFile = "cubrid_esql.h"
)

// uci_start option bits.
const (
	UciOptUnsafeNull = 0x0001
)

// Pseudo-type field names. The varchar2 style switches to the short pair.
const (
	VarcharLengthName  = "length"
	VarcharArrayName   = "array"
	Varchar2LengthName = "len"
	Varchar2ArrayName  = "arr"
)

// Builtin runtime record types the binder recognizes.
const (
	DescriptorTypeName = "CUBRIDDA"
	IndicatorTypeName  = "DB_INDICATOR"
)
