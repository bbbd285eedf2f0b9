package hostvar

import "strings"

// TranslateString rewrites a C ("...") or SQL ('...') string literal into
// text that a C compiler reads back as the original string. With inString
// the result is meant to be embedded inside another C string literal, so
// the delimiters themselves are escaped or kept as SQL quotes.
func TranslateString(str string, inString bool) string {
	if str == "" {
		return ""
	}
	var sb strings.Builder

	if str[0] == '"' {
		delim := `"`
		if inString {
			delim = `\"`
		}
		sb.WriteString(delim)
		for i := 1; i < len(str) && str[i] != '"'; i++ {
			c := str[i]
			if c != '\\' {
				sb.WriteByte(c)
				continue
			}
			i++
			if i >= len(str) {
				break
			}
			switch str[i] {
			case '"':
				sb.WriteString(`\\\"`)
			case '\n':
				// line continuation
			default:
				sb.WriteString(`\\`)
				sb.WriteByte(str[i])
			}
		}
		sb.WriteString(delim)
		return sb.String()
	}

	delim := byte('"')
	if inString {
		delim = '\''
	}
	sb.WriteByte(delim)
	for i := 1; i < len(str); i++ {
		switch c := str[i]; c {
		case '\\':
			if i+1 < len(str) && str[i+1] == '\n' {
				i++
			} else {
				sb.WriteString(`\\`)
			}
		case '\'':
			// a doubled quote stands for one quote; a lone one closes the literal
			if i+1 < len(str) && str[i+1] == '\'' {
				i++
				if inString {
					sb.WriteByte('\'')
				}
				sb.WriteByte('\'')
			}
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(delim)
	return sb.String()
}
