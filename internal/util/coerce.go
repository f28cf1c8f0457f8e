package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reCurrencyNumber = regexp.MustCompile(`^\$?[0-9,.]+$`)
	reSlashDate      = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)
	reISOPrefix      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// LooksNumeric reports whether a raw cell value matches the optional-currency
// numeric pattern (e.g. "45.99", "$1,200", "1,000.50").
func LooksNumeric(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" || v == "$" {
		return false
	}
	return reCurrencyNumber.MatchString(v) && strings.ContainsAny(v, "0123456789")
}

// ParseMoney strips currency formatting ($ and thousands commas) and parses
// the remainder as a float.
func ParseMoney(value string) (float64, bool) {
	v := strings.TrimSpace(value)
	v = strings.TrimPrefix(v, "$")
	v = strings.ReplaceAll(v, ",", "")
	if v == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

var genericDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"01/02/2006 15:04",
}

// ParseCommonDate normalizes the date shapes the parser is allowed to infer
// from raw cells: ISO-prefixed strings (truncated to the date part) and
// M/D/YYYY or M-D-YYYY with 2- to 4-digit years.
func ParseCommonDate(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", false
	}

	if reISOPrefix.MatchString(v) {
		return v[:10], true
	}

	if m := reSlashDate.FindStringSubmatch(v); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 && year >= 1900 {
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
		}
		return "", false
	}

	return "", false
}

// ParseDate is ParseCommonDate plus a generic-layout fallback, used by the
// normalizer when coercing mapped date fields.
func ParseDate(value string) (string, bool) {
	if iso, ok := ParseCommonDate(value); ok {
		return iso, true
	}
	v := strings.TrimSpace(value)
	if v == "" || reSlashDate.MatchString(v) {
		return "", false
	}
	for _, layout := range genericDateLayouts {
		if parsed, err := time.Parse(layout, v); err == nil {
			return parsed.Format("2006-01-02"), true
		}
	}
	return "", false
}

var truthyWords = map[string]struct{}{
	"yes": {}, "true": {}, "y": {}, "1": {}, "on": {}, "checked": {},
}

// ParseBool maps common spreadsheet truthy spellings (and numeric 1) to true.
// Everything else, including unrecognized text, is false.
func ParseBool(value any) bool {
	switch t := value.(type) {
	case bool:
		return t
	case string:
		_, ok := truthyWords[strings.ToLower(strings.TrimSpace(t))]
		return ok
	case float64:
		return t == 1
	case int:
		return t == 1
	default:
		return false
	}
}
