package dates

import (
	"strconv"
	"strings"
)

// Format is the order of day/month/year components in a document's dates.
type Format string

const (
	FormatDMY Format = "DMY"
	FormatMDY Format = "MDY"
	FormatYMD Format = "YMD"
)

var monthsByName = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

func monthByName(tok string) (int, bool) {
	m, ok := monthsByName[strings.ToLower(strings.TrimSpace(tok))]
	return m, ok
}

// tokenize splits a date string on the separators SOF documents actually
// use: dashes, slashes, dots and whitespace.
func tokenize(date string) []string {
	fields := strings.FieldsFunc(date, func(r rune) bool {
		return r == '-' || r == '/' || r == '.' || r == ' ' || r == '\t' || r == ','
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// InferFormat tallies one vote per date that carries unambiguous evidence: a
// numeric token in (12,31] can only be a day, and its position relative to a
// 4-digit year fixes the component order; a month name at position 0 votes
// MDY, at position 1 votes DMY. Ties and absent evidence fall back to DMY,
// the dominant convention in source documents.
func InferFormat(dateStrings []string) Format {
	votes := map[Format]int{}
	for _, d := range dateStrings {
		if f, ok := voteFor(d); ok {
			votes[f]++
		}
	}
	best := FormatDMY
	for _, f := range []Format{FormatMDY, FormatYMD} {
		if votes[f] > votes[best] {
			best = f
		}
	}
	return best
}

func voteFor(date string) (Format, bool) {
	toks := tokenize(date)
	if len(toks) < 3 {
		return "", false
	}

	if _, ok := monthByName(toks[0]); ok {
		return FormatMDY, true
	}
	if _, ok := monthByName(toks[1]); ok {
		return FormatDMY, true
	}

	dayPos, yearPos := -1, -1
	dayCount := 0
	for i, t := range toks {
		n, err := strconv.Atoi(t)
		if err != nil {
			continue
		}
		if n > 1000 {
			yearPos = i
			continue
		}
		if n > 12 && n <= 31 {
			dayCount++
			dayPos = i
		}
	}
	if dayCount != 1 {
		return "", false
	}

	switch {
	case yearPos == 0 && dayPos == 2:
		return FormatYMD, true
	case dayPos == 0:
		return FormatDMY, true
	case dayPos == 1:
		return FormatMDY, true
	}
	return "", false
}
