// Package normalize converts raw extracted strings into canonical,
// type-specific representations and validates them against declared rules.
// All functions are pure; failures never panic and never drop the raw value.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/docreview/internal/model"
)

// canonicalDateLayout is the single output form for DATE fields.
const canonicalDateLayout = "2006-01-02"

// monthNameLayouts are tried in order for month-name date forms.
var monthNameLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
}

var (
	slashDate    = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})`)
	isoDate      = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	currencyAmt  = regexp.MustCompile(`-?[\d,]+(?:\.\d+)?`)
	percentValue = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

var titleCaser = cases.Title(language.English)

// truthy and falsy are the closed boolean token sets. Anything outside
// both sets fails normalization.
var (
	truthy = map[string]bool{"yes": true, "y": true, "true": true, "t": true, "1": true, "agreed": true, "confirmed": true}
	falsy  = map[string]bool{"no": true, "n": true, "false": true, "f": true, "0": true, "denied": true, "rejected": true}
)

// Normalize converts raw into the canonical form for the field type.
// ok is false when no canonical form could be produced; the caller keeps
// the raw value and applies a confidence penalty instead of failing.
func Normalize(raw string, fieldType model.FieldType, rules map[string]string) (normalized string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	switch fieldType {
	case model.FieldTypeDate:
		return normalizeDate(raw)
	case model.FieldTypeCurrency:
		return normalizeCurrency(raw, rules)
	case model.FieldTypePercentage:
		return normalizePercentage(raw)
	case model.FieldTypeEntity:
		return normalizeEntity(raw), true
	case model.FieldTypeBoolean:
		return normalizeBoolean(raw)
	case model.FieldTypeMultiSelect:
		return normalizeMultiSelect(raw, rules), true
	case model.FieldTypeText, model.FieldTypeFreeform:
		return collapseSpace(raw), true
	default:
		return "", false
	}
}

// normalizeDate accepts slash/dash numeric forms, ISO form, and month-name
// forms, and emits YYYY-MM-DD. For ambiguous numeric forms where both
// leading parts could be a month, the month-first reading wins (US locale,
// matching the extraction prompts); when only one reading is valid, that
// reading wins.
func normalizeDate(raw string) (string, bool) {
	if m := isoDate.FindString(raw); m != "" {
		if t, err := time.Parse(canonicalDateLayout, m); err == nil {
			return t.Format(canonicalDateLayout), true
		}
	}

	if m := slashDate.FindStringSubmatch(raw); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if d, valid := resolveDayMonth(a, b, year); valid {
			return d, true
		}
	}

	cleaned := collapseSpace(raw)
	for _, layout := range monthNameLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format(canonicalDateLayout), true
		}
	}
	// Month-name form embedded in a longer phrase ("dated as of March 1, 2024").
	if m := monthNamePhrase.FindString(cleaned); m != "" {
		for _, layout := range monthNameLayouts {
			if t, err := time.Parse(layout, m); err == nil {
				return t.Format(canonicalDateLayout), true
			}
		}
	}
	return "", false
}

var monthNamePhrase = regexp.MustCompile(
	`(?i)(January|February|March|April|May|June|July|August|September|October|November|December|` +
		`Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+\d{1,2},?\s+\d{4}`)

// resolveDayMonth builds a canonical date from two numeric parts, preferring
// the month-first interpretation when both are plausible months.
func resolveDayMonth(a, b, year int) (string, bool) {
	mk := func(month, day int) (string, bool) {
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes overflow (e.g. Feb 30 -> Mar 2); reject those.
		if int(t.Month()) != month || t.Day() != day || t.Year() != year {
			return "", false
		}
		return t.Format(canonicalDateLayout), true
	}
	aIsMonth := a >= 1 && a <= 12
	bIsMonth := b >= 1 && b <= 12
	switch {
	case aIsMonth:
		if d, valid := mk(a, b); valid {
			return d, true
		}
		if bIsMonth {
			return mk(b, a)
		}
	case bIsMonth:
		return mk(b, a)
	}
	return "", false
}

// normalizeCurrency strips symbols and thousands separators and emits a
// currency-code-prefixed decimal, e.g. "USD 50000.00".
func normalizeCurrency(raw string, rules map[string]string) (string, bool) {
	code := "USD"
	if c := rules[model.NormCurrencyCode]; c != "" {
		code = strings.ToUpper(c)
	}
	switch {
	case strings.Contains(raw, "€"):
		code = "EUR"
	case strings.Contains(raw, "£"):
		code = "GBP"
	}
	for _, known := range []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY"} {
		if strings.Contains(strings.ToUpper(raw), known) {
			code = known
			break
		}
	}

	m := currencyAmt.FindString(strings.ReplaceAll(raw, "$", ""))
	if m == "" {
		return "", false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return "", false
	}
	if strings.Contains(raw, "(") && strings.Contains(raw, ")") && amount > 0 {
		amount = -amount // accounting negative
	}
	return fmt.Sprintf("%s %.2f", code, amount), true
}

// normalizePercentage emits a plain numeric string constrained to [0,100].
func normalizePercentage(raw string) (string, bool) {
	m := percentValue.FindString(raw)
	if m == "" {
		return "", false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v < 0 || v > 100 {
		return "", false
	}
	return strconv.FormatFloat(v, 'f', -1, 64), true
}

// normalizeEntity title-cases the name and collapses internal whitespace.
func normalizeEntity(raw string) string {
	return titleCaser.String(collapseSpace(raw))
}

func normalizeBoolean(raw string) (string, bool) {
	token := strings.ToLower(strings.TrimSpace(raw))
	token = strings.TrimRight(token, ".")
	if truthy[token] {
		return "true", true
	}
	if falsy[token] {
		return "false", true
	}
	return "", false
}

// normalizeMultiSelect splits on the declared delimiter (default ","),
// trims items, and de-duplicates preserving first-seen order.
func normalizeMultiSelect(raw string, rules map[string]string) string {
	delim := ","
	if d := rules[model.NormDelimiter]; d != "" {
		delim = d
	}
	seen := make(map[string]bool)
	var items []string
	for _, item := range strings.Split(raw, delim) {
		item = collapseSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, item)
	}
	return strings.Join(items, ", ")
}

func collapseSpace(s string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}
