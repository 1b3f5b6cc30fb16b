// Package schema holds the catalog of importable asset fields.
package schema

import (
	"fmt"

	"github.com/BartekS5/assetimport/internal/fieldpath"
)

// Kind decides how a raw source value is coerced and validated.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindISODate
	KindStringArrayCSV
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindISODate:
		return "isoDate"
	case KindStringArrayCSV:
		return "stringArrayCsv"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FieldDescriptor describes one addressable path into an asset record.
// Enum is only meaningful for KindEnum.
type FieldDescriptor struct {
	Path     string
	Label    string
	Required bool
	Kind     Kind
	Enum     []string

	parsed fieldpath.Path
}

// Parsed returns the pre-parsed path.
func (f FieldDescriptor) Parsed() fieldpath.Path {
	if f.parsed == nil {
		return fieldpath.MustParse(f.Path)
	}
	return f.parsed
}

// Allows reports whether v is one of the enum values. Matching is case-sensitive.
func (f FieldDescriptor) Allows(v string) bool {
	for _, e := range f.Enum {
		if e == v {
			return true
		}
	}
	return false
}

// Registry is an immutable, ordered set of field descriptors.
type Registry struct {
	fields []FieldDescriptor
	byPath map[string]int
}

// NewRegistry builds a registry. Duplicate or malformed paths are programmer errors and panic.
func NewRegistry(fields ...FieldDescriptor) *Registry {
	r := &Registry{
		fields: make([]FieldDescriptor, 0, len(fields)),
		byPath: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if _, dup := r.byPath[f.Path]; dup {
			panic(fmt.Sprintf("schema: duplicate field path %q", f.Path))
		}
		if f.Kind == KindEnum && len(f.Enum) == 0 {
			panic(fmt.Sprintf("schema: enum field %q has no values", f.Path))
		}
		f.parsed = fieldpath.MustParse(f.Path)
		f.Enum = append([]string(nil), f.Enum...)
		r.byPath[f.Path] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r
}

// clone copies f so callers cannot modify the catalog's enum values.
func (f FieldDescriptor) clone() FieldDescriptor {
	f.Enum = append([]string(nil), f.Enum...)
	return f
}

// AllFields returns a copy of every descriptor in catalog order.
func (r *Registry) AllFields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.clone()
	}
	return out
}

// RequiredFields returns the descriptors flagged as required, in catalog order.
func (r *Registry) RequiredFields() []FieldDescriptor {
	var out []FieldDescriptor
	for _, f := range r.fields {
		if f.Required {
			out = append(out, f.clone())
		}
	}
	return out
}

// Lookup finds the descriptor for path.
func (r *Registry) Lookup(path string) (FieldDescriptor, bool) {
	i, ok := r.byPath[path]
	if !ok {
		return FieldDescriptor{}, false
	}
	return r.fields[i].clone(), true
}

// LabelOf returns the human label for path, or the path itself when it is not catalogued.
func (r *Registry) LabelOf(path string) string {
	if f, ok := r.Lookup(path); ok && f.Label != "" {
		return f.Label
	}
	return path
}

func (r *Registry) Len() int {
	return len(r.fields)
}
