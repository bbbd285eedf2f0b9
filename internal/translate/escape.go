package translate

import "strings"

// breakColumn is where long literals start looking for a comma to break at.
const breakColumn = 75

// EscapeString makes text safe inside a C string literal. Quotes,
// backslashes, newlines and form feeds get a backslash; NUL becomes \000.
// added is the number of bytes the escaping inserted.
func EscapeString(text string) (escaped string, added int) {
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '"', '\'', '\\', '\n', '\f':
			sb.WriteByte('\\')
			sb.WriteByte(c)
			added++
		case 0:
			sb.WriteString(`\000`)
			added += 3
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), added
}

// printLiteral writes an escaped literal body. Past every breakColumn
// characters the literal is closed and reopened after the next comma.
func (t *Translator) printLiteral(s string) {
	needBreak := false
	for i := 0; i < len(s); i++ {
		t.w.Write([]byte{s[i]})
		needBreak = needBreak || (i > 0 && i%breakColumn == 0)
		if needBreak && s[i] == ',' {
			t.printf("\"\n")
			t.LineDirective()
			t.printf("\"")
			needBreak = false
		}
	}
}
