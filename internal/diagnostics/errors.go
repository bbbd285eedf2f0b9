package diagnostics

import (
	"fmt"

	"github.com/funvibe/esqlpp/internal/token"
)

type ErrorCode string

// Declaration errors
const (
	ErrD001 ErrorCode = "D001" // illegal storage class combination
	ErrD002 ErrorCode = "D002" // storage class not allowed
	ErrD003 ErrorCode = "D003" // illegal type combination
	ErrD004 ErrorCode = "D004" // illegal modifier combination
	ErrD005 ErrorCode = "D005" // bad pseudo-type declaration
	ErrD006 ErrorCode = "D006" // redefinition
)

// Host variable errors
const (
	ErrH001 ErrorCode = "H001" // type not acceptable
	ErrH002 ErrorCode = "H002" // deref not allowed
	ErrH003 ErrorCode = "H003" // not a pointer
	ErrH004 ErrorCode = "H004" // not a struct
	ErrH005 ErrorCode = "H005" // not a pointer to a struct
	ErrH006 ErrorCode = "H006" // no such field
	ErrH007 ErrorCode = "H007" // indicator must be short
	ErrH008 ErrorCode = "H008" // indicator not allowed with struct
	ErrH009 ErrorCode = "H009" // incomplete struct definition
	ErrH010 ErrorCode = "H010" // host variable of wrong kind
	ErrH011 ErrorCode = "H011" // undeclared host variable
	ErrH012 ErrorCode = "H012" // unknown host variable kind
	ErrH013 ErrorCode = "H013" // indicator not allowed here
)

// Statement errors
const (
	ErrS001 ErrorCode = "S001" // unexpected token
	ErrS002 ErrorCode = "S002" // cursor undefined
	ErrS003 ErrorCode = "S003" // USING not permitted on static cursor
	ErrS004 ErrorCode = "S004" // cursor redefinition
	ErrS005 ErrorCode = "S005" // unterminated statement
	ErrS006 ErrorCode = "S006" // unbalanced braces
)

// Translator errors
const (
	ErrT001 ErrorCode = "T001" // unexpected kind in translator
)

// Manifest errors
const (
	ErrM001 ErrorCode = "M001" // manifest database failure
)

var errorMessages = map[ErrorCode]string{
	ErrD001: "illegal storage class combination",
	ErrD002: "storage class not allowed here",
	ErrD003: "illegal type combination",
	ErrD004: "illegal modifier combination",
	ErrD005: "bad pseudo-type declaration: %s needs an array length",
	ErrD006: "redefinition of symbol \"%s\"",

	ErrH001: "type \"%s\" not acceptable for host variable \"%s\"",
	ErrH002: "cannot dereference \"%s\" with \"%s\"",
	ErrH003: "\"%s\" is not a pointer",
	ErrH004: "\"%s\" is not a struct",
	ErrH005: "\"%s\" is not a pointer to a struct",
	ErrH006: "%s has no field \"%s\"",
	ErrH007: "indicator \"%s\" must be a short integer",
	ErrH008: "indicator not allowed with struct host variable",
	ErrH009: "incomplete definition of struct host variable \"%s\"",
	ErrH010: "host variable \"%s\" must be %s",
	ErrH011: "host variable \"%s\" is not declared",
	ErrH012: "unknown host variable type \"%s\"",
	ErrH013: "indicator not allowed with host variable \"%s\"",

	ErrS001: "unexpected %s in %s",
	ErrS002: "cursor \"%s\" undefined",
	ErrS003: "USING not permitted with static cursor \"%s\"",
	ErrS004: "cursor \"%s\" already declared",
	ErrS005: "unterminated EXEC SQL statement",
	ErrS006: "unbalanced \"}\"",

	ErrT001: "unexpected host variable kind in %s",

	ErrM001: "statement manifest: %s",
}

// DiagnosticError is one reported problem tied to a source position.
type DiagnosticError struct {
	Code    ErrorCode
	File    string
	Token   token.Token
	Message string
	Hint    string
}

// NewError formats the message for code with args.
func NewError(code ErrorCode, tok token.Token, args ...interface{}) *DiagnosticError {
	msg, ok := errorMessages[code]
	if !ok {
		msg = string(code)
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &DiagnosticError{Code: code, Token: tok, Message: msg}
}

// WithHint attaches a "did you mean" suggestion.
func (e *DiagnosticError) WithHint(hint string) *DiagnosticError {
	e.Hint = hint
	return e
}

func (e *DiagnosticError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += fmt.Sprintf(" (did you mean \"%s\"?)", e.Hint)
	}
	switch {
	case e.File != "" && e.Token.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Token.Line, msg)
	case e.File != "":
		return fmt.Sprintf("%s: %s", e.File, msg)
	case e.Token.Line > 0:
		return fmt.Sprintf("%d: %s", e.Token.Line, msg)
	}
	return msg
}
