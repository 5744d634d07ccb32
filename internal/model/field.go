package model

// FieldType identifies the data type of an extracted field.
type FieldType string

const (
	FieldTypeText        FieldType = "TEXT"
	FieldTypeDate        FieldType = "DATE"
	FieldTypeCurrency    FieldType = "CURRENCY"
	FieldTypePercentage  FieldType = "PERCENTAGE"
	FieldTypeEntity      FieldType = "ENTITY"
	FieldTypeBoolean     FieldType = "BOOLEAN"
	FieldTypeMultiSelect FieldType = "MULTI_SELECT"
	FieldTypeFreeform    FieldType = "FREEFORM"
)

// Valid reports whether ft is one of the known field types.
func (ft FieldType) Valid() bool {
	switch ft {
	case FieldTypeText, FieldTypeDate, FieldTypeCurrency, FieldTypePercentage,
		FieldTypeEntity, FieldTypeBoolean, FieldTypeMultiSelect, FieldTypeFreeform:
		return true
	}
	return false
}

// Validation rule keys recognized by the normalizer.
const (
	RuleAllowNegative = "allow_negative" // CURRENCY: "true" permits negative amounts
	RuleMinValue      = "min_value"      // PERCENTAGE: lower bound override
	RuleMaxValue      = "max_value"      // PERCENTAGE: upper bound override
	RuleAllowedValues = "allowed_values" // MULTI_SELECT: comma-separated allowed items
	RuleMaxLength     = "max_length"     // TEXT/ENTITY: maximum character length
	RulePattern       = "pattern"        // TEXT/ENTITY: regex the value must match
)

// Normalization rule keys.
const (
	NormCurrencyCode = "currency_code" // CURRENCY: ISO code to prefix (default USD)
	NormDelimiter    = "delimiter"     // MULTI_SELECT: item delimiter (default ",")
)

// FieldDefinition is a single user-declared schema entry: what to extract,
// how to validate it, and how to canonicalize it. Definitions are immutable
// once attached to a template version.
type FieldDefinition struct {
	Name               string            `json:"name" yaml:"name"`
	DisplayName        string            `json:"display_name" yaml:"display_name"`
	Description        string            `json:"description,omitempty" yaml:"description,omitempty"`
	FieldType          FieldType         `json:"field_type" yaml:"field_type"`
	Required           bool              `json:"required" yaml:"required"`
	ValidationRules    map[string]string `json:"validation_rules,omitempty" yaml:"validation_rules,omitempty"`
	NormalizationRules map[string]string `json:"normalization_rules,omitempty" yaml:"normalization_rules,omitempty"`
	Examples           []string          `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// FieldTemplate is a versioned, ordered collection of field definitions.
// Editing a template produces a new version; extraction results always
// reference the version they were produced against.
type FieldTemplate struct {
	ID      string            `json:"id" yaml:"id"`
	Name    string            `json:"name" yaml:"name"`
	Version int               `json:"version" yaml:"version"`
	Fields  []FieldDefinition `json:"fields" yaml:"fields"`
}

// TemplateRegistry is an indexed view over a template's field definitions.
type TemplateRegistry struct {
	Template *FieldTemplate
	byName   map[string]*FieldDefinition
	required []*FieldDefinition
}

// NewTemplateRegistry creates a TemplateRegistry with indexed lookups.
func NewTemplateRegistry(tpl *FieldTemplate) *TemplateRegistry {
	r := &TemplateRegistry{
		Template: tpl,
		byName:   make(map[string]*FieldDefinition, len(tpl.Fields)),
	}
	for i := range tpl.Fields {
		f := &tpl.Fields[i]
		r.byName[f.Name] = f
		if f.Required {
			r.required = append(r.required, f)
		}
	}
	return r
}

// ByName returns the field definition for the given name, or nil if not found.
func (r *TemplateRegistry) ByName(name string) *FieldDefinition {
	return r.byName[name]
}

// Required returns all required field definitions.
func (r *TemplateRegistry) Required() []*FieldDefinition {
	return r.required
}

// FieldOrder returns field names in declared template order.
func (r *TemplateRegistry) FieldOrder() []string {
	names := make([]string, len(r.Template.Fields))
	for i, f := range r.Template.Fields {
		names[i] = f.Name
	}
	return names
}
