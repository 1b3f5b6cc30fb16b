package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/davecgh/go-spew/spew"

	"github.com/BartekS5/assetimport/internal/automap"
	"github.com/BartekS5/assetimport/internal/etl"
	"github.com/BartekS5/assetimport/internal/schema"
	"github.com/BartekS5/assetimport/pkg/models"
	"github.com/BartekS5/assetimport/pkg/utils"
)

var (
	accent = lipgloss.AdaptiveColor{Light: "#005577", Dark: "#00aadd"}

	titleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"}).
		Bold(true).
		Margin(1, 0, 0, 0)

	headerCellStyle = lipgloss.NewStyle().
		Foreground(accent).
		Bold(true).
		Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#626262", Dark: "#a8a8a8"})

	successStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#859900", Dark: "#50fa7b"}).
		Bold(true)

	warningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#b58900", Dark: "#f1fa8c"}).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#dc322f", Dark: "#ff5555"}).
		Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(accent)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})
}

func title(w io.Writer, s string) {
	fmt.Fprintln(w, titleStyle.Render(s))
}

func renderFields(w io.Writer, fields []schema.FieldDescriptor) {
	t := newTable("Path", "Label", "Kind", "Required", "Allowed values")
	for _, f := range fields {
		required := ""
		if f.Required {
			required = "yes"
		}
		t.Row(f.Path, f.Label, f.Kind.String(), required, strings.Join(f.Enum, ", "))
	}
	title(w, fmt.Sprintf("Importable fields (%d)", len(fields)))
	fmt.Fprintln(w, t.String())
}

func renderMapping(w io.Writer, headers []string, m models.Mapping, reg *schema.Registry) {
	t := newTable("Column", "Field", "Label")
	for _, h := range headers {
		if path, ok := m.Columns[h]; ok {
			t.Row(h, path, reg.LabelOf(path))
			continue
		}
		if c, ok := customFor(m, h); ok {
			t.Row(h, c.Path(), "custom")
			continue
		}
		t.Row(h, mutedStyle.Render("(not imported)"), "")
	}
	title(w, "Column mapping")
	fmt.Fprintln(w, t.String())
}

func customFor(m models.Mapping, header string) (models.CustomMapping, bool) {
	for _, c := range m.Custom {
		if c.Header == header {
			return c, true
		}
	}
	return models.CustomMapping{}, false
}

func renderCollisions(w io.Writer, collisions []automap.Collision) {
	for _, c := range collisions {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf(
			"Columns %s all match %s; kept %q", strings.Join(c.Headers, ", "), c.Path, c.Headers[0])))
	}
}

func renderMissing(w io.Writer, missing []string) {
	if len(missing) == 0 {
		return
	}
	fmt.Fprintln(w, errorStyle.Render("Required fields with no column: "+strings.Join(missing, ", ")))
}

func renderPreview(w io.Writer, report models.PreviewReport, debug bool) {
	t := newTable("Row", "Status", "Device ID", "Issues")
	for _, o := range report.Outcomes {
		status := successStyle.Render("valid")
		if !o.IsValid {
			status = errorStyle.Render("invalid")
		}
		t.Row(strconv.Itoa(o.Row), status, utils.Stringify(o.Record[schema.DeviceIDPath]), issues(o))
	}

	title(w, fmt.Sprintf("Preview of %d rows", report.Total))
	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "%s  %s\n",
		successStyle.Render(fmt.Sprintf("%d valid", report.ValidCount)),
		errorStyle.Render(fmt.Sprintf("%d invalid", report.InvalidCount)))

	if len(report.UnmappedHeaders) > 0 {
		fmt.Fprintln(w, mutedStyle.Render("Not imported: "+strings.Join(report.UnmappedHeaders, ", ")))
	}
	renderMissing(w, report.MissingRequired)

	if debug {
		for _, o := range report.Outcomes {
			fmt.Fprintf(w, "--- row %d\n", o.Row)
			spew.Fdump(w, o.Record)
		}
	}
}

// issues joins errors then warnings, sorted by key so output is stable.
func issues(o models.ValidationOutcome) string {
	var lines []string
	for _, k := range sortedKeys(o.Errors) {
		label := k
		if path, ok := etl.IsUnmappedKey(k); ok {
			label = path
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, o.Errors[k]))
	}
	for _, k := range sortedKeys(o.Warnings) {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("%s: %s", k, o.Warnings[k])))
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderCommit(w io.Writer, r models.CommitReport) {
	t := newTable("Total", "Created", "Updated", "Failed")
	t.Row(strconv.Itoa(r.Total), strconv.Itoa(r.Created), strconv.Itoa(r.Updated), strconv.Itoa(r.Failed))
	title(w, "Import finished")
	fmt.Fprintln(w, t.String())
}

func renderSuggestions(w io.Writer, asset string, suggestions []string) {
	title(w, "Mitigations for "+asset)
	if len(suggestions) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No suggestions."))
		return
	}
	for i, s := range suggestions {
		fmt.Fprintf(w, "%d. %s\n", i+1, s)
	}
}
