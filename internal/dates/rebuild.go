package dates

import (
	"fmt"
	"strconv"
)

// rebuild re-expresses a raw date string as YYYY-MM-DD under the inferred
// format. The bool is false when any component cannot be extracted, in which
// case the caller leaves the original string untouched.
func rebuild(date string, f Format) (string, bool) {
	toks := tokenize(date)
	if len(toks) < 3 {
		return "", false
	}

	var dayTok, monthTok, yearTok string
	switch f {
	case FormatDMY:
		dayTok, monthTok, yearTok = toks[0], toks[1], toks[2]
	case FormatMDY:
		monthTok, dayTok, yearTok = toks[0], toks[1], toks[2]
	case FormatYMD:
		yearTok, monthTok, dayTok = toks[0], toks[1], toks[2]
	default:
		return "", false
	}

	day, ok := parseDay(dayTok)
	if !ok {
		return "", false
	}
	month, ok := parseMonth(monthTok)
	if !ok {
		return "", false
	}
	year, ok := parseYear(yearTok)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

func parseDay(tok string) (int, bool) {
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}

func parseMonth(tok string) (int, bool) {
	if m, ok := monthByName(tok); ok {
		return m, true
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 || n > 12 {
		return 0, false
	}
	return n, true
}

// parseYear accepts 4-digit years in 1900-2100 and pivots 2-digit years:
// values through 50 land in 20xx, the rest in 19xx.
func parseYear(tok string) (int, bool) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	switch {
	case len(tok) <= 2:
		if n <= 50 {
			return 2000 + n, true
		}
		return 1900 + n, true
	case len(tok) == 4 && n >= 1900 && n <= 2100:
		return n, true
	}
	return 0, false
}
