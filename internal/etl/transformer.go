package etl

import (
	"errors"
	"fmt"

	"github.com/BartekS5/assetimport/internal/fieldpath"
	"github.com/BartekS5/assetimport/internal/schema"
	"github.com/BartekS5/assetimport/pkg/models"
	"github.com/BartekS5/assetimport/pkg/utils"
)

// Transformer turns one source row into a partial asset record plus validation results.
// It holds no per-row state and is safe for concurrent use.
type Transformer struct {
	Registry   *schema.Registry
	EnumPolicy models.EnumPolicy
}

func NewTransformer(registry *schema.Registry, enumPolicy models.EnumPolicy) *Transformer {
	if enumPolicy == "" {
		enumPolicy = models.EnumLenient
	}
	return &Transformer{Registry: registry, EnumPolicy: enumPolicy}
}

// TransformRow applies m to row. It never fails: problems are reported in the outcome.
func (t *Transformer) TransformRow(row models.SourceRow, m models.Mapping) models.ValidationOutcome {
	out := models.ValidationOutcome{
		Record:   models.Record{},
		Errors:   map[string]string{},
		Warnings: map[string]string{},
	}
	// required paths that already carry an error from a mapped header
	reported := map[string]bool{}

	for _, header := range m.Columns.Headers() {
		path := m.Columns[header]
		field, ok := t.Registry.Lookup(path)
		if !ok {
			out.Errors[header] = fmt.Sprintf("%s is not an importable field", path)
			continue
		}

		raw := row[header]
		if utils.IsBlank(raw) {
			if field.Required {
				out.Errors[header] = fmt.Sprintf("%s is required but has no value", path)
				reported[path] = true
			}
			continue
		}

		// A value returned alongside an error is still written.
		val, warning, err := t.coerce(field, raw)
		if err != nil {
			out.Errors[header] = err.Error()
			reported[path] = true
			if val == nil {
				continue
			}
		}
		if warning != "" {
			out.Warnings[header] = warning
		}
		fieldpath.Write(out.Record, field.Parsed(), val)
	}

	for _, c := range m.Custom {
		raw := row[c.Header]
		if utils.IsBlank(raw) {
			continue
		}
		p, err := fieldpath.Parse(c.Path())
		if err != nil {
			out.Errors[c.Header] = fmt.Sprintf("invalid custom key %q: %v", c.Key, err)
			continue
		}
		fieldpath.Write(out.Record, p, utils.Stringify(raw))
	}

	checkCompleteness(t.Registry, &out, reported)

	out.IsValid = len(out.Errors) == 0
	return out
}

func (t *Transformer) coerce(f schema.FieldDescriptor, raw interface{}) (interface{}, string, error) {
	switch f.Kind {
	case schema.KindString:
		return raw, "", nil

	case schema.KindNumber:
		n, err := utils.ConvertToFloat(raw)
		if err != nil {
			return nil, "", fmt.Errorf("%s must be a number, got %q", f.Path, utils.Stringify(raw))
		}
		return n, "", nil

	case schema.KindBoolean:
		b, err := utils.ConvertToBool(raw)
		if err != nil {
			return nil, "", fmt.Errorf("%s must be true or false, got %q", f.Path, utils.Stringify(raw))
		}
		return b, "", nil

	case schema.KindISODate:
		ts, err := utils.ConvertDateTime(raw)
		if err != nil {
			return nil, "", fmt.Errorf("%s must be a valid date (e.g. YYYY-MM-DD or ISO-8601), got %q", f.Path, utils.Stringify(raw))
		}
		return utils.FormatISO(ts), "", nil

	case schema.KindStringArrayCSV:
		return utils.SplitCSV(raw), "", nil

	case schema.KindEnum:
		s := utils.Stringify(raw)
		if f.Allows(s) {
			return s, "", nil
		}
		msg := fmt.Sprintf("%s: %q is not one of the allowed values", f.Path, s)
		switch t.EnumPolicy {
		case models.EnumStrict:
			return nil, "", errors.New(msg)
		case models.EnumWarn:
			return s, msg, nil
		default:
			return s, "", errors.New(msg)
		}

	default:
		panic(fmt.Sprintf("etl: unknown value kind %v for field %s", f.Kind, f.Path))
	}
}
