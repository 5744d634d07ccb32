package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/sells-group/docreview/internal/model"
)

// Baseline confidences for heuristic matches. Fixed per pattern class, not
// derived from match length.
const (
	typedPatternConfidence   = 0.6
	labelWindowConfidence    = 0.4
	aliasSentenceConfidence  = 0.35
	fallbackContextChars     = 300
	fallbackMaxCapturedChars = 500
)

// patternMatcher is one field-type-specific heuristic: a compiled pattern
// and its fixed baseline confidence.
type patternMatcher struct {
	re         *regexp.Regexp
	confidence float64
}

var datePatterns = []patternMatcher{
	{regexp.MustCompile(`(?i)(?:dated|dated as of|as of|effective)\s+((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4})`), 0.7},
	{regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}`), typedPatternConfidence},
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), typedPatternConfidence},
	{regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`), typedPatternConfidence},
}

var currencyPatterns = []patternMatcher{
	{regexp.MustCompile(`(?i)(?:purchase price|consideration|amount|fee|rent)\s*(?:of|is|:)?\s*(\$[\d,]+(?:\.\d+)?)`), 0.7},
	{regexp.MustCompile(`\$[\d,]+(?:\.\d+)?`), typedPatternConfidence},
	{regexp.MustCompile(`(?i)(USD|EUR|GBP)\s*[\d,]+(?:\.\d+)?`), typedPatternConfidence},
}

var percentagePatterns = []patternMatcher{
	{regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:%|percent)`), typedPatternConfidence},
}

var entityPatterns = []patternMatcher{
	{regexp.MustCompile(`(?i)by and between\s+([A-Z][A-Za-z0-9\s&.,'-]+?)\s+(?:and|AND)\b`), 0.7},
	{regexp.MustCompile(`(?i)\bbetween\s+([A-Z][A-Za-z0-9\s&.,'-]+?)\s+and\b`), typedPatternConfidence},
}

var booleanPatterns = []patternMatcher{
	{regexp.MustCompile(`(?i)\b(yes|no|true|false)\b`), 0.4},
}

// fieldNamePatterns maps field-name keywords to dedicated matchers,
// consulted before generic label windows.
var fieldNamePatterns = map[string][]patternMatcher{
	"governing": {
		{regexp.MustCompile(`(?i)governed by the laws of\s+([A-Za-z\s]+?)(?:\.|,|;|\n)`), 0.7},
	},
	"jurisdiction": {
		{regexp.MustCompile(`(?i)courts of\s+([A-Za-z\s,]+?)\s+shall have`), 0.7},
		{regexp.MustCompile(`(?i)submit to the[a-z\s]*jurisdiction of\s+([A-Za-z\s,]+?)(?:\.|;|\n)`), typedPatternConfidence},
	},
	"termination": {
		{regexp.MustCompile(`(?i)(?:terminate[ds]?|termination)[:\s]+([A-Za-z0-9\s,\-$().%]+?)(?:[.;]|\n)`), typedPatternConfidence},
	},
	"liability": {
		{regexp.MustCompile(`(?i)liability[a-z\s]*shall not exceed\s+([A-Za-z0-9\s,$.]+?)(?:[.;]|\n)`), 0.7},
	},
}

// FallbackStrategy applies ordered field-type-specific pattern matchers
// against the full document text; the first match wins. When typed patterns
// miss, it falls back to a label window after the field's name and finally
// to the first sentence mentioning the field. No match means not found with
// confidence zero.
type FallbackStrategy struct{}

// NewFallbackStrategy creates the heuristic strategy.
func NewFallbackStrategy() *FallbackStrategy {
	return &FallbackStrategy{}
}

func (s *FallbackStrategy) Name() model.Method {
	return model.MethodFallback
}

func (s *FallbackStrategy) Extract(_ context.Context, doc *model.Document, field *model.FieldDefinition) (*RawExtraction, error) {
	aliases := fieldAliases(field)

	for _, pm := range matchersFor(field, aliases) {
		if raw := applyMatcher(pm, doc.Text); raw != nil {
			return raw, nil
		}
	}

	for _, alias := range aliases {
		if raw := labelWindow(doc.Text, alias); raw != nil {
			return raw, nil
		}
	}

	for _, alias := range aliases {
		if raw := aliasSentence(doc.Text, alias); raw != nil {
			return raw, nil
		}
	}

	return &RawExtraction{}, nil
}

// matchersFor assembles the ordered matcher list: name-keyed patterns
// first, then patterns for the declared field type.
func matchersFor(field *model.FieldDefinition, aliases []string) []patternMatcher {
	var matchers []patternMatcher

	lowerName := strings.ToLower(field.Name + " " + field.DisplayName)
	for keyword, pms := range fieldNamePatterns {
		if strings.Contains(lowerName, keyword) {
			matchers = append(matchers, pms...)
		}
	}

	switch field.FieldType {
	case model.FieldTypeDate:
		matchers = append(matchers, datePatterns...)
	case model.FieldTypeCurrency:
		matchers = append(matchers, currencyPatterns...)
	case model.FieldTypePercentage:
		matchers = append(matchers, percentagePatterns...)
	case model.FieldTypeEntity:
		matchers = append(matchers, entityPatterns...)
	case model.FieldTypeBoolean:
		// Booleans only make sense near the field's label.
		for _, alias := range aliases {
			re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(alias) + `[:\s]+.{0,40}?\b(yes|no|true|false)\b`)
			if err == nil {
				matchers = append(matchers, patternMatcher{re, booleanPatterns[0].confidence})
			}
		}
	}
	return matchers
}

func applyMatcher(pm patternMatcher, text string) *RawExtraction {
	loc := pm.re.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}

	// Prefer the first capture group; fall back to the whole match.
	start, end := loc[0], loc[1]
	if len(loc) >= 4 && loc[2] >= 0 {
		start, end = loc[2], loc[3]
	}
	value := strings.TrimSpace(text[start:end])
	if value == "" {
		return nil
	}

	return &RawExtraction{
		Value:      value,
		RawText:    contextAround(text, loc[0], loc[1]),
		Confidence: pm.confidence,
	}
}

// labelWindow captures the remainder of the line after "<alias>:" or
// "<alias> is/means".
func labelWindow(text, alias string) *RawExtraction {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(alias) + `\s*(?:[:\-]|is|means)\s+(.+)`)
	if err != nil {
		return nil
	}
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil || loc[2] < 0 {
		return nil
	}
	captured := text[loc[2]:loc[3]]
	if idx := strings.IndexByte(captured, '\n'); idx >= 0 {
		captured = captured[:idx]
	}
	if len(captured) > fallbackMaxCapturedChars {
		captured = captured[:fallbackMaxCapturedChars]
	}
	value := strings.Trim(strings.TrimSpace(captured), ".,;:")
	if value == "" {
		return nil
	}
	return &RawExtraction{
		Value:      value,
		RawText:    contextAround(text, loc[0], loc[1]),
		Confidence: labelWindowConfidence,
	}
}

// aliasSentence returns the first sentence containing the alias.
func aliasSentence(text, alias string) *RawExtraction {
	re, err := regexp.Compile(`(?i)([^.\n]*\b` + regexp.QuoteMeta(alias) + `\b[^.\n]*\.?)`)
	if err != nil {
		return nil
	}
	m := re.FindString(text)
	value := strings.TrimSpace(m)
	if value == "" {
		return nil
	}
	if len(value) > fallbackMaxCapturedChars {
		value = value[:fallbackMaxCapturedChars]
	}
	return &RawExtraction{
		Value:      value,
		RawText:    value,
		Confidence: aliasSentenceConfidence,
	}
}

// fieldAliases derives the label variants to search for: name, display
// name, and underscore-to-space forms.
func fieldAliases(field *model.FieldDefinition) []string {
	seen := make(map[string]bool)
	var aliases []string
	add := func(a string) {
		a = strings.TrimSpace(a)
		if a == "" || seen[strings.ToLower(a)] {
			return
		}
		seen[strings.ToLower(a)] = true
		aliases = append(aliases, a)
	}
	add(field.Name)
	add(field.DisplayName)
	if strings.Contains(field.Name, "_") {
		add(strings.ReplaceAll(field.Name, "_", " "))
	}
	return aliases
}

func contextAround(text string, start, end int) string {
	from := start - fallbackContextChars
	if from < 0 {
		from = 0
	}
	to := end + fallbackContextChars
	if to > len(text) {
		to = len(text)
	}
	return strings.TrimSpace(text[from:to])
}
