package cpp

import "strings"

type sourceLine struct {
	number int
	text   string
}

// splitLines splits content into logical lines, joining backslash continuations.
// Each logical line carries the number of its first physical line.
func splitLines(content string) []sourceLine {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	physical := strings.Split(content, "\n")
	if len(physical) > 0 && physical[len(physical)-1] == "" {
		physical = physical[:len(physical)-1]
	}

	lines := make([]sourceLine, 0, len(physical))
	for i := 0; i < len(physical); i++ {
		start := i + 1
		text := physical[i]
		for strings.HasSuffix(text, "\\") && i+1 < len(physical) {
			i++
			text = text[:len(text)-1] + physical[i]
		}
		lines = append(lines, sourceLine{number: start, text: text})
	}
	return lines
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func startsWithDigit(s string) bool {
	return s != "" && isDigit(s[0])
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

// splitIdentifier returns the identifier at the start of s (after spaces) and the rest.
func splitIdentifier(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	if s == "" || !isIdentStart(s[0]) {
		return "", s
	}
	end := 1
	for end < len(s) && isIdentChar(s[end]) {
		end++
	}
	return s[:end], s[end:]
}

// stripComments removes // and /* */ comments outside of literals.
func stripComments(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			end := skipLiteral(s, i)
			sb.WriteString(s[i:end])
			i = end - 1
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			return sb.String()
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			closing := strings.Index(s[i+2:], "*/")
			if closing < 0 {
				return sb.String()
			}
			sb.WriteByte(' ')
			i += closing + 3
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// endsInBlockComment reports whether s opens a /* comment that is still open at its end.
func endsInBlockComment(s string) bool {
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"' || s[i] == '\'':
			i = skipLiteral(s, i) - 1
		case s[i] == '/' && i+1 < len(s) && s[i+1] == '/':
			return false
		case s[i] == '/' && i+1 < len(s) && s[i+1] == '*':
			closing := strings.Index(s[i+2:], "*/")
			if closing < 0 {
				return true
			}
			i += closing + 3
		}
	}
	return false
}

// skipLiteral returns the index just past the string or character literal starting at i.
func skipLiteral(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(s)
}

// expand replaces object-like macros in text. Names in disabled are left alone so a
// macro never expands inside its own replacement.
func (p *Preprocessor) expand(text string, disabled map[string]bool) string {
	if len(p.macros) == 0 {
		return text
	}

	var sb strings.Builder
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '"' || c == '\'':
			end := skipLiteral(text, i)
			sb.WriteString(text[i:end])
			i = end
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			sb.WriteString(text[i:])
			i = len(text)
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := len(text)
			if closing := strings.Index(text[i+2:], "*/"); closing >= 0 {
				end = i + 2 + closing + 2
			}
			sb.WriteString(text[i:end])
			i = end
		case isDigit(c):
			end := i + 1
			for end < len(text) && (isIdentChar(text[end]) || text[end] == '.') {
				end++
			}
			sb.WriteString(text[i:end])
			i = end
		case isIdentStart(c):
			end := i + 1
			for end < len(text) && isIdentChar(text[end]) {
				end++
			}
			name := text[i:end]
			m, ok := p.macros[name]
			if ok && !m.functionLike && !disabled[name] {
				inner := make(map[string]bool, len(disabled)+1)
				for k := range disabled {
					inner[k] = true
				}
				inner[name] = true
				sb.WriteString(p.expand(m.body, inner))
			} else {
				sb.WriteString(name)
			}
			i = end
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}
