package parser

import (
	"regexp"
	"strings"
)

// The model's structured output fails in a handful of recurring ways. Each
// repair below fixes exactly one of them and nothing else, so the chain stays
// testable against a corpus of known-malformed samples.

var (
	reTrailingComma   = regexp.MustCompile(`,(\s*[}\]])`)
	reUnquotedKey     = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	reObjectAdjacency = regexp.MustCompile(`}(\s*){`)
	rePropAdjacency   = regexp.MustCompile(`"(\s*\n\s*)"`)
	reQuotedLiteral   = regexp.MustCompile(`:(\s*)"(null|true|false)"`)
	reSingleQuotedKey = regexp.MustCompile(`'([^'\n]+)'(\s*):`)
)

// stripCodeFences removes a leading ```json / trailing ``` wrapper.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if parts := strings.SplitN(s, "\n", 2); len(parts) == 2 {
			s = parts[1]
		} else {
			s = strings.TrimPrefix(s, "```")
			s = strings.TrimPrefix(s, "json")
		}
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// isolateObject cuts the substring between the first '{' and the last '}',
// dropping any prose the model wrapped around the payload.
func isolateObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}

func removeTrailingCommas(s string) string {
	return reTrailingComma.ReplaceAllString(s, "$1")
}

func quoteUnquotedKeys(s string) string {
	return reUnquotedKey.ReplaceAllString(s, `$1"$2":`)
}

// closeUnterminatedStrings appends a closing quote when the payload ends
// mid-string, the usual symptom of a truncated response.
func closeUnterminatedStrings(s string) string {
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		}
	}
	if inString {
		return s + `"`
	}
	return s
}

// insertMissingCommas restores commas between back-to-back objects and
// between a string value and the next property key split across lines.
func insertMissingCommas(s string) string {
	s = reObjectAdjacency.ReplaceAllString(s, "},$1{")
	return rePropAdjacency.ReplaceAllString(s, `",$1"`)
}

func unquoteStringifiedLiterals(s string) string {
	return reQuotedLiteral.ReplaceAllString(s, ":$1$2")
}

func normalizeSingleQuotedKeys(s string) string {
	return reSingleQuotedKey.ReplaceAllString(s, `"$1"$2:`)
}

// insertObjectCommas is the narrow comma pass used by the aggressive stage:
// object adjacency only, nothing touching string content.
func insertObjectCommas(s string) string {
	return reObjectAdjacency.ReplaceAllString(s, "},$1{")
}

// extractBalancedObjects walks region and returns every top-level, balanced
// {...} object, tracking strings and escapes so braces inside values do not
// confuse the count.
func extractBalancedObjects(region string) []string {
	var objects []string
	depth := 0
	start := -1
	inString := false
	escaped := false
	for i := 0; i < len(region); i++ {
		c := region[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					objects = append(objects, region[start:i+1])
					start = -1
				}
			}
		}
	}
	return objects
}
