package logic

import (
	"strings"
	"unicode"
)

func isIdent(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func isIdents(text string) bool {
	for _, ch := range text {
		if !isIdent(ch) {
			return false
		}
	}
	return true
}

func isVarFirst(ch rune) bool {
	return ch == '_' || unicode.IsUpper(ch)
}

// IsVar returns whether text is a valid variable name.
func IsVar(text string) bool {
	ch, err := firstRune(text)
	if err != nil {
		return false
	}
	if !isVarFirst(ch) {
		return false
	}
	return isIdents(text)
}

// IsInt returns whether text is a sequence of decimal digits.
func IsInt(text string) bool {
	if text == "" {
		return false
	}
	for _, ch := range text {
		if !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}

// IsIdent returns whether text can be written as an atom without quotes.
func IsIdent(text string) bool {
	ch, err := firstRune(text)
	if err != nil || !unicode.IsLower(ch) {
		return false
	}
	return isIdents(text)
}

var escapeChars = map[rune]string{
	'\n': "\\n",
	'\t': "\\t",
	'\r': "\\r",
	'\'': "\\'",
	'\\': "\\\\",
}

// Words that are operators in program text.
var reserved = map[string]bool{"not": true, "is": true, "mod": true}

// FormatAtom returns the text of an atom, quoting it if necessary.
func FormatAtom(text string) string {
	if IsIdent(text) && !reserved[text] || text == "[]" {
		return text
	}
	var b strings.Builder
	b.WriteRune('\'')
	for _, ch := range text {
		if exp, ok := escapeChars[ch]; ok {
			b.WriteString(exp)
		} else {
			b.WriteRune(ch)
		}
	}
	b.WriteRune('\'')
	return b.String()
}

// UnquoteAtom reverses FormatAtom for a quoted atom, including its quotes.
func UnquoteAtom(text string) string {
	text = strings.TrimSuffix(strings.TrimPrefix(text, "'"), "'")
	var b strings.Builder
	escaped := false
	for _, ch := range text {
		if escaped {
			switch ch {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			default:
				b.WriteRune(ch)
			}
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
