package models

import (
	"fmt"
	"sort"
	"strings"
)

// ColumnMapping maps a source header to a target field path.
// A header with no entry is not imported.
type ColumnMapping map[string]string

// Clone returns an independent copy.
func (c ColumnMapping) Clone() ColumnMapping {
	out := make(ColumnMapping, len(c))
	for h, p := range c {
		out[h] = p
	}
	return out
}

// Headers returns the mapped headers in sorted order.
func (c ColumnMapping) Headers() []string {
	out := make([]string, 0, len(c))
	for h := range c {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// ExtendedTarget is the container a custom mapping writes into.
type ExtendedTarget string

const (
	TargetExtended         ExtendedTarget = "extended"
	TargetHardwareExtended ExtendedTarget = "hardware.extended"
)

func (t ExtendedTarget) Valid() bool {
	return t == TargetExtended || t == TargetHardwareExtended
}

// CustomMapping sends a source header verbatim to <Target>.<Key>, bypassing the field catalog.
type CustomMapping struct {
	Header string         `json:"header" yaml:"header"`
	Key    string         `json:"key" yaml:"key"`
	Target ExtendedTarget `json:"target" yaml:"target"`
}

// Path is the dot path the custom value is written to.
func (c CustomMapping) Path() string {
	target := c.Target
	if target == "" {
		target = TargetExtended
	}
	return string(target) + "." + c.Key
}

func (c CustomMapping) validate() error {
	if strings.TrimSpace(c.Header) == "" {
		return fmt.Errorf("custom mapping has no source header")
	}
	key := strings.TrimSpace(c.Key)
	if key == "" || strings.ContainsAny(key, ".[]") {
		return fmt.Errorf("custom mapping for %q: invalid key %q", c.Header, c.Key)
	}
	if c.Target != "" && !c.Target.Valid() {
		return fmt.Errorf("custom mapping for %q: unknown target %q", c.Header, c.Target)
	}
	return nil
}

// Mapping is the active mapping of an import session: standard column
// mappings plus extended-property mappings. A header is claimed by at most one of them.
type Mapping struct {
	Columns ColumnMapping
	Custom  []CustomMapping
}

func NewMapping(columns ColumnMapping) Mapping {
	if columns == nil {
		columns = ColumnMapping{}
	}
	return Mapping{Columns: columns}
}

// Clone returns an independent copy.
func (m Mapping) Clone() Mapping {
	return Mapping{
		Columns: m.Columns.Clone(),
		Custom:  append([]CustomMapping(nil), m.Custom...),
	}
}

// Assign maps header to path, releasing any custom mapping that held the header.
func (m *Mapping) Assign(header, path string) {
	if m.Columns == nil {
		m.Columns = ColumnMapping{}
	}
	m.RemoveCustom(header)
	m.Columns[header] = path
}

// Unassign marks header as not imported.
func (m *Mapping) Unassign(header string) {
	delete(m.Columns, header)
	m.RemoveCustom(header)
}

// AddCustom claims header for an extended-property mapping, releasing any standard mapping.
func (m *Mapping) AddCustom(c CustomMapping) error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.Target == "" {
		c.Target = TargetExtended
	}
	delete(m.Columns, c.Header)
	m.RemoveCustom(c.Header)
	m.Custom = append(m.Custom, c)
	return nil
}

// RemoveCustom drops the custom mapping for header, if any.
func (m *Mapping) RemoveCustom(header string) {
	kept := m.Custom[:0]
	for _, c := range m.Custom {
		if c.Header != header {
			kept = append(kept, c)
		}
	}
	m.Custom = kept
}

// Claimed reports whether any mapping consumes header.
func (m Mapping) Claimed(header string) bool {
	if _, ok := m.Columns[header]; ok {
		return true
	}
	for _, c := range m.Custom {
		if c.Header == header {
			return true
		}
	}
	return false
}

// Targets reports whether some header maps to path.
func (m Mapping) Targets(path string) bool {
	for _, p := range m.Columns {
		if p == path {
			return true
		}
	}
	return false
}
