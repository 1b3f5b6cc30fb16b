package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrorPolicy controls whether invalid preview rows block a commit.
type ErrorPolicy string

const (
	ErrorPolicyStopOnFirstError ErrorPolicy = "stopOnFirstError"
	ErrorPolicySkipInvalidRows  ErrorPolicy = "skipInvalidRows"
)

func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip", "skipinvalidrows":
		return ErrorPolicySkipInvalidRows, nil
	case "stop", "stoponfirsterror":
		return ErrorPolicyStopOnFirstError, nil
	}
	return "", fmt.Errorf("unknown error policy %q", s)
}

// EnumPolicy controls how enum mismatches are treated.
type EnumPolicy string

const (
	// EnumLenient writes the value but reports an error, so the row is invalid.
	EnumLenient EnumPolicy = "lenient"
	// EnumStrict rejects the value and invalidates the row.
	EnumStrict EnumPolicy = "strict"
	// EnumWarn writes the value and reports a warning. The row stays valid.
	EnumWarn EnumPolicy = "warn"
)

func ParseEnumPolicy(s string) (EnumPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return EnumLenient, nil
	case "strict":
		return EnumStrict, nil
	case "warn":
		return EnumWarn, nil
	}
	return "", fmt.Errorf("unknown enum policy %q", s)
}

// MappingProfile is the on-disk form of a mapping, reusable across imports.
type MappingProfile struct {
	Columns     map[string]string `json:"columns" yaml:"columns"`
	Custom      []CustomMapping   `json:"custom,omitempty" yaml:"custom,omitempty"`
	ErrorPolicy ErrorPolicy       `json:"errorPolicy,omitempty" yaml:"errorPolicy,omitempty"`
	EnumPolicy  EnumPolicy        `json:"enumPolicy,omitempty" yaml:"enumPolicy,omitempty"`
}

// LoadProfile parses profile data. format is "json" or "yaml".
func LoadProfile(data []byte, format string) (*MappingProfile, error) {
	var p MappingProfile
	switch format {
	case "json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported profile format %q", format)
	}
	return &p, nil
}

// Mapping converts the profile into a session mapping, validating custom entries.
func (p *MappingProfile) Mapping() (Mapping, error) {
	m := NewMapping(nil)
	for h, path := range p.Columns {
		if strings.TrimSpace(path) == "" {
			continue
		}
		m.Columns[h] = path
	}
	for _, c := range p.Custom {
		if _, taken := m.Columns[c.Header]; taken {
			return Mapping{}, fmt.Errorf("header %q is mapped both to %q and to a custom key", c.Header, m.Columns[c.Header])
		}
		if m.Claimed(c.Header) {
			return Mapping{}, fmt.Errorf("header %q has more than one custom mapping", c.Header)
		}
		if err := m.AddCustom(c); err != nil {
			return Mapping{}, err
		}
	}
	return m, nil
}

// ProfileFromMapping captures m for saving.
func ProfileFromMapping(m Mapping, errPolicy ErrorPolicy, enumPolicy EnumPolicy) *MappingProfile {
	return &MappingProfile{
		Columns:     map[string]string(m.Columns.Clone()),
		Custom:      append([]CustomMapping(nil), m.Custom...),
		ErrorPolicy: errPolicy,
		EnumPolicy:  enumPolicy,
	}
}

// Marshal encodes the profile. format is "json" or "yaml".
func (p *MappingProfile) Marshal(format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(p, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(p)
	}
	return nil, fmt.Errorf("unsupported profile format %q", format)
}
