package etl

import (
	"fmt"
	"strings"

	"github.com/BartekS5/assetimport/internal/fieldpath"
	"github.com/BartekS5/assetimport/internal/schema"
	"github.com/BartekS5/assetimport/pkg/models"
)

const unmappedPrefix = "_unmapped_"

// UnmappedKey is the error key used for a required field no column supplied.
func UnmappedKey(path string) string {
	return unmappedPrefix + path
}

// IsUnmappedKey reports whether an error key came from the completeness pass.
func IsUnmappedKey(key string) (string, bool) {
	if strings.HasPrefix(key, unmappedPrefix) {
		return strings.TrimPrefix(key, unmappedPrefix), true
	}
	return "", false
}

// checkCompleteness flags every required field that did not end up populated
// and was not already reported against a mapped header.
func checkCompleteness(reg *schema.Registry, out *models.ValidationOutcome, reported map[string]bool) {
	for _, f := range reg.RequiredFields() {
		if reported[f.Path] {
			continue
		}
		if v, ok := fieldpath.Read(out.Record, f.Parsed()); ok && !isEmpty(v) {
			continue
		}
		out.Errors[UnmappedKey(f.Path)] = fmt.Sprintf("%s is required but no column supplies it", f.Path)
	}
}

func isEmpty(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []string:
		return len(x) == 0
	case []interface{}:
		return len(x) == 0
	}
	return false
}

// MissingRequired lists required fields that no header maps to. The same
// completeness error would otherwise repeat on every row.
func MissingRequired(reg *schema.Registry, m models.Mapping) []string {
	var missing []string
	for _, f := range reg.RequiredFields() {
		if !m.Targets(f.Path) {
			missing = append(missing, f.Path)
		}
	}
	return missing
}

// UnmappedHeaders lists headers claimed by neither a standard nor a custom mapping, in input order.
func UnmappedHeaders(headers []string, m models.Mapping) []string {
	var out []string
	for _, h := range headers {
		if !m.Claimed(h) {
			out = append(out, h)
		}
	}
	return out
}
