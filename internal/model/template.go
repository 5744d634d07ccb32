package model

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

var fieldNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// LoadTemplate reads a field template from a YAML file and validates it.
func LoadTemplate(path string) (*FieldTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read template %s", path)
	}

	var tpl FieldTemplate
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, eris.Wrapf(err, "model: parse template %s", path)
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Validate checks template well-formedness: a name, at least one field,
// snake_case unique field names, and known field types.
func (t *FieldTemplate) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return eris.New("model: template name is required")
	}
	if len(t.Fields) == 0 {
		return eris.Errorf("model: template %s has no fields", t.Name)
	}

	seen := make(map[string]bool, len(t.Fields))
	for i := range t.Fields {
		f := &t.Fields[i]
		if !fieldNameRe.MatchString(f.Name) {
			return eris.Errorf("model: invalid field name %q", f.Name)
		}
		if seen[f.Name] {
			return eris.Errorf("model: duplicate field name %q", f.Name)
		}
		seen[f.Name] = true
		if !f.FieldType.Valid() {
			return eris.Errorf("model: field %s has unknown type %q", f.Name, f.FieldType)
		}
		if f.DisplayName == "" {
			f.DisplayName = titleize(f.Name)
		}
	}
	return nil
}

// titleize turns a snake_case field name into a display label.
func titleize(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// LoadReferences reads human-labeled reference values from a YAML file.
func LoadReferences(path string) ([]Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read references %s", path)
	}
	var refs []Reference
	if err := yaml.Unmarshal(data, &refs); err != nil {
		return nil, eris.Wrapf(err, "model: parse references %s", path)
	}
	for i, ref := range refs {
		if ref.DocumentID == "" || ref.FieldName == "" {
			return nil, eris.Errorf("model: reference %d missing document_id or field_name", i)
		}
	}
	return refs, nil
}
