package scan

import (
	"regexp/syntax"
	"strings"
)

// ExtractKeyword returns the longest literal that must appear in any text
// matched by regexStr, or "" if there is none. Case-folded literals are
// ignored because the keyword gate is case-sensitive.
func ExtractKeyword(regexStr string) string {
	re, err := syntax.Parse(regexStr, syntax.Perl)
	if err != nil {
		return ""
	}
	return requiredLiteral(re.Simplify())
}

func requiredLiteral(re *syntax.Regexp) string {
	switch re.Op {
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return ""
		}
		return string(re.Rune)

	case syntax.OpConcat:
		var best string
		for _, sub := range re.Sub {
			if candidate := requiredLiteral(sub); len(candidate) > len(best) {
				best = candidate
			}
		}
		return best

	case syntax.OpCapture, syntax.OpPlus:
		return requiredLiteral(re.Sub[0])

	case syntax.OpRepeat:
		if re.Min > 0 {
			return requiredLiteral(re.Sub[0])
		}
		return ""

	default:
		// alternations, optional and star parts guarantee nothing
		return ""
	}
}

var weakKeywords = map[string]bool{
	"http": true, "https": true, "application": true, "password": true,
	"username": true, "token": true, "auth": true, "bearer": true,
	"private": true, "public": true, "secret": true, "access": true,
	"function": true, "return": true, "const": true,
}

// IsValidKeyword reports whether kw is selective enough to gate a pattern
func IsValidKeyword(kw string) bool {
	if len(kw) < 4 {
		return false
	}
	if weakKeywords[strings.ToLower(kw)] {
		return false
	}
	return !isRepetitive(kw)
}

func isRepetitive(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
