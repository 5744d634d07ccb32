package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/docreview/internal/model"
)

// Validate checks a normalized value against the field's declared rules.
// FREEFORM fields skip validation entirely. Validation failure is non-fatal:
// callers lower confidence but still surface the value.
func Validate(value string, fieldType model.FieldType, rules map[string]string) bool {
	if fieldType == model.FieldTypeFreeform {
		return true
	}
	if value == "" {
		return false
	}

	switch fieldType {
	case model.FieldTypeDate:
		return isoDate.MatchString(value)

	case model.FieldTypeCurrency:
		return validateCurrency(value, rules)

	case model.FieldTypePercentage:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		lo, hi := 0.0, 100.0
		if s := rules[model.RuleMinValue]; s != "" {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				lo = f
			}
		}
		if s := rules[model.RuleMaxValue]; s != "" {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				hi = f
			}
		}
		return v >= lo && v <= hi

	case model.FieldTypeBoolean:
		return value == "true" || value == "false"

	case model.FieldTypeMultiSelect:
		return validateMultiSelect(value, rules)

	case model.FieldTypeEntity, model.FieldTypeText:
		return validateText(value, rules)
	}
	return false
}

func validateCurrency(value string, rules map[string]string) bool {
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return false
	}
	amount, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return false
	}
	if amount < 0 && rules[model.RuleAllowNegative] != "true" {
		return false
	}
	return true
}

func validateMultiSelect(value string, rules map[string]string) bool {
	allowed := rules[model.RuleAllowedValues]
	if allowed == "" {
		return true
	}
	allowedSet := make(map[string]bool)
	for _, a := range strings.Split(allowed, ",") {
		allowedSet[strings.ToLower(strings.TrimSpace(a))] = true
	}
	for _, item := range strings.Split(value, ",") {
		if !allowedSet[strings.ToLower(strings.TrimSpace(item))] {
			return false
		}
	}
	return true
}

func validateText(value string, rules map[string]string) bool {
	if s := rules[model.RuleMaxLength]; s != "" {
		if maxLen, err := strconv.Atoi(s); err == nil && len(value) > maxLen {
			return false
		}
	}
	if p := rules[model.RulePattern]; p != "" {
		re, err := regexp.Compile(p)
		if err != nil {
			// An uncompilable declared pattern should not sink the value.
			return true
		}
		return re.MatchString(value)
	}
	return true
}
