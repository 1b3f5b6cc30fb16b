package models

// SourceRow is one parsed input row: header -> raw scalar
// (string, float64, json.Number, bool or nil).
type SourceRow map[string]interface{}

// Record is a partially populated asset document built from one row.
type Record map[string]interface{}

// ValidationOutcome is the result of transforming a single row.
// Errors and Warnings are keyed by source header; completeness errors use
// a synthetic "_unmapped_<path>" key.
type ValidationOutcome struct {
	Row      int               `json:"row"`
	Record   Record            `json:"record"`
	Errors   map[string]string `json:"errors,omitempty"`
	Warnings map[string]string `json:"warnings,omitempty"`
	IsValid  bool              `json:"isValid"`
}

// PreviewReport summarizes a bounded dry run.
type PreviewReport struct {
	Outcomes        []ValidationOutcome `json:"outcomes"`
	Total           int                 `json:"total"`
	ValidCount      int                 `json:"validCount"`
	InvalidCount    int                 `json:"invalidCount"`
	UnmappedHeaders []string            `json:"unmappedHeaders,omitempty"`
	MissingRequired []string            `json:"missingRequired,omitempty"`
}

// CommitReport summarizes a full import run.
type CommitReport struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}
