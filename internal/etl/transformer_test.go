package etl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/assetimport/internal/schema"
	"github.com/BartekS5/assetimport/pkg/models"
)

func scenarioRegistry() *schema.Registry {
	return schema.NewRegistry(
		schema.FieldDescriptor{Path: "deviceId", Label: "Device ID", Required: true},
		schema.FieldDescriptor{Path: "name", Label: "Asset Name", Required: true},
		schema.FieldDescriptor{Path: "stage", Label: "Asset Stage", Required: true},
		schema.FieldDescriptor{Path: "purchaseCost", Label: "Purchase Cost", Kind: schema.KindNumber},
		schema.FieldDescriptor{Path: "tags", Label: "Tags", Kind: schema.KindStringArrayCSV},
	)
}

func TestTransformRow_EndToEndScenario(t *testing.T) {
	tr := NewTransformer(scenarioRegistry(), models.EnumLenient)
	m := models.NewMapping(models.ColumnMapping{"Device": "deviceId", "Stage": "stage"})
	row := models.SourceRow{"Device": "D1", "Stage": "Active", "Cost": "100"}

	out := tr.TransformRow(row, m)

	assert.False(t, out.IsValid)
	assert.Equal(t, "D1", out.Record["deviceId"])
	assert.Equal(t, "Active", out.Record["stage"])
	assert.NotContains(t, out.Record, "purchaseCost")
	assert.NotContains(t, out.Errors, "Cost")
	assert.Equal(t, map[string]string{
		UnmappedKey("name"): "name is required but no column supplies it",
	}, out.Errors)
}

func TestTransformRow_RequiredButUnmapped(t *testing.T) {
	reg := schema.NewRegistry(
		schema.FieldDescriptor{Path: "name", Required: true},
		schema.FieldDescriptor{Path: "zone"},
	)
	tr := NewTransformer(reg, "")
	m := models.NewMapping(models.ColumnMapping{"Zone": "zone"})

	rows := []models.SourceRow{
		{"Zone": "A", "name": "would match if mapped"},
		{},
		{"Zone": ""},
	}
	for _, row := range rows {
		out := tr.TransformRow(row, m)
		assert.False(t, out.IsValid)
		assert.Contains(t, out.Errors, UnmappedKey("name"))
		path, ok := IsUnmappedKey(UnmappedKey("name"))
		assert.True(t, ok)
		assert.Equal(t, "name", path)
	}
}

func TestTransformRow_RequiredButEmpty(t *testing.T) {
	tr := NewTransformer(scenarioRegistry(), "")
	m := models.NewMapping(models.ColumnMapping{"Device": "deviceId", "Name": "name", "Stage": "stage"})

	out := tr.TransformRow(models.SourceRow{"Device": "D1", "Name": "   ", "Stage": "Active"}, m)

	assert.False(t, out.IsValid)
	assert.Equal(t, map[string]string{"Name": "name is required but has no value"}, out.Errors)
	assert.NotContains(t, out.Record, "name")
}

func TestTransformRow_NumericCoercion(t *testing.T) {
	tr := NewTransformer(scenarioRegistry(), "")
	m := models.NewMapping(models.ColumnMapping{
		"Device": "deviceId", "Name": "name", "Stage": "stage", "Cost": "purchaseCost",
	})
	base := models.SourceRow{"Device": "D1", "Name": "PLC 1", "Stage": "Active"}

	bad := cloneRow(base)
	bad["Cost"] = "12.5abc"
	out := tr.TransformRow(bad, m)
	assert.False(t, out.IsValid)
	assert.Contains(t, out.Errors, "Cost")
	assert.NotContains(t, out.Record, "purchaseCost")

	good := cloneRow(base)
	good["Cost"] = "12.5"
	out = tr.TransformRow(good, m)
	assert.True(t, out.IsValid, "%v", out.Errors)
	assert.Empty(t, out.Errors)
	assert.Equal(t, 12.5, out.Record["purchaseCost"])

	native := cloneRow(base)
	native["Cost"] = json.Number("7")
	out = tr.TransformRow(native, m)
	assert.Equal(t, 7.0, out.Record["purchaseCost"])
}

func TestTransformRow_CSVArray(t *testing.T) {
	tr := NewTransformer(scenarioRegistry(), "")
	m := models.NewMapping(models.ColumnMapping{"Tags": "tags"})

	out := tr.TransformRow(models.SourceRow{"Tags": "a, b ,,c"}, m)
	assert.Equal(t, []string{"a", "b", "c"}, out.Record["tags"])
	assert.NotContains(t, out.Errors, "Tags")
}

func TestTransformRow_AssetKinds(t *testing.T) {
	tr := NewTransformer(schema.Assets(), models.EnumLenient)
	m := models.NewMapping(models.ColumnMapping{
		"Device":     "deviceId",
		"Name":       "name",
		"Stage":      "stage",
		"Encrypted":  "security.encryptionEnabled",
		"Installed":  "installationDate",
		"Vendor":     "hardware.vendor",
		"Process":    "context.businessProcesses[0].name",
		"ProcessRol": "context.businessProcesses[0].role",
	})
	row := models.SourceRow{
		"Device": "PLC-001", "Name": "Line PLC", "Stage": "Operational",
		"Encrypted": "TRUE", "Installed": "2023-04-01", "Vendor": "Siemens",
		"Process": "Packaging", "ProcessRol": "controller",
	}

	out := tr.TransformRow(row, m)

	require.True(t, out.IsValid, "%v", out.Errors)
	assert.Equal(t, models.Record{
		"deviceId":         "PLC-001",
		"name":             "Line PLC",
		"stage":            "Operational",
		"installationDate": "2023-04-01T00:00:00.000Z",
		"security":         map[string]interface{}{"encryptionEnabled": true},
		"hardware":         map[string]interface{}{"vendor": "Siemens"},
		"context": map[string]interface{}{
			"businessProcesses": []interface{}{
				map[string]interface{}{"name": "Packaging", "role": "controller"},
			},
		},
	}, out.Record)
}

func TestTransformRow_CoercionErrors(t *testing.T) {
	tr := NewTransformer(schema.Assets(), "")
	m := models.NewMapping(models.ColumnMapping{
		"Device": "deviceId", "Name": "name", "Stage": "stage",
		"Encrypted": "security.encryptionEnabled", "Installed": "installationDate",
	})

	out := tr.TransformRow(models.SourceRow{
		"Device": "D1", "Name": "n", "Stage": "Active",
		"Encrypted": "yes", "Installed": "sometime last year",
	}, m)

	assert.False(t, out.IsValid)
	assert.Len(t, out.Errors, 2)
	assert.Contains(t, out.Errors["Encrypted"], "true or false")
	assert.Contains(t, out.Errors["Installed"], "valid date")
	assert.NotContains(t, out.Record, "security")
	assert.NotContains(t, out.Record, "installationDate")
}

func TestTransformRow_EnumPolicy(t *testing.T) {
	m := models.NewMapping(models.ColumnMapping{"Device": "deviceId", "Name": "name", "Stage": "stage"})
	row := models.SourceRow{"Device": "D1", "Name": "n", "Stage": "active"}

	lenient := NewTransformer(schema.Assets(), models.EnumLenient).TransformRow(row, m)
	assert.False(t, lenient.IsValid)
	assert.Equal(t, "active", lenient.Record["stage"])
	assert.Contains(t, lenient.Errors["Stage"], "not one of the allowed values")
	assert.Empty(t, lenient.Warnings)
	assert.NotContains(t, lenient.Errors, UnmappedKey("stage"))

	warn := NewTransformer(schema.Assets(), models.EnumWarn).TransformRow(row, m)
	assert.True(t, warn.IsValid)
	assert.Equal(t, "active", warn.Record["stage"])
	assert.Contains(t, warn.Warnings["Stage"], "not one of the allowed values")

	strict := NewTransformer(schema.Assets(), models.EnumStrict).TransformRow(row, m)
	assert.False(t, strict.IsValid)
	assert.NotContains(t, strict.Record, "stage")
	assert.Contains(t, strict.Errors, "Stage")
	// the header error already covers the required field
	assert.NotContains(t, strict.Errors, UnmappedKey("stage"))
}

func TestTransformRow_ClearedMappingWritesNothing(t *testing.T) {
	tr := NewTransformer(scenarioRegistry(), "")
	m := models.NewMapping(models.ColumnMapping{"Device": "deviceId", "Cost": "purchaseCost"})
	row := models.SourceRow{"Device": "D1", "Cost": "10"}

	out := tr.TransformRow(row, m)
	assert.Equal(t, 10.0, out.Record["purchaseCost"])

	m.Unassign("Cost")
	out = tr.TransformRow(row, m)
	assert.NotContains(t, out.Record, "purchaseCost")
}

func TestTransformRow_CustomMappings(t *testing.T) {
	tr := NewTransformer(scenarioRegistry(), "")
	m := models.NewMapping(models.ColumnMapping{"Device": "deviceId"})
	require.NoError(t, m.AddCustom(models.CustomMapping{Header: "Colour", Key: "colour"}))
	require.NoError(t, m.AddCustom(models.CustomMapping{Header: "MTBF", Key: "MTBF", Target: models.TargetHardwareExtended}))
	require.NoError(t, m.AddCustom(models.CustomMapping{Header: "Blank", Key: "blank"}))

	out := tr.TransformRow(models.SourceRow{"Device": "D1", "Colour": " grey ", "MTBF": json.Number("5000"), "Blank": ""}, m)

	assert.Equal(t, map[string]interface{}{"colour": " grey "}, out.Record["extended"])
	assert.Equal(t, map[string]interface{}{"extended": map[string]interface{}{"MTBF": "5000"}}, out.Record["hardware"])
	assert.NotContains(t, out.Errors, "Colour")
}

func TestTransformRow_UnknownPath(t *testing.T) {
	tr := NewTransformer(scenarioRegistry(), "")
	m := models.NewMapping(models.ColumnMapping{"X": "does.not.exist"})

	out := tr.TransformRow(models.SourceRow{"X": "1"}, m)
	assert.Contains(t, out.Errors["X"], "not an importable field")
}

func TestTransformRow_UnknownKindPanics(t *testing.T) {
	reg := schema.NewRegistry(schema.FieldDescriptor{Path: "weird", Kind: schema.Kind(99)})
	tr := NewTransformer(reg, "")
	m := models.NewMapping(models.ColumnMapping{"W": "weird"})

	assert.Panics(t, func() { tr.TransformRow(models.SourceRow{"W": "x"}, m) })
}

func TestTransformRow_DoesNotMutateRow(t *testing.T) {
	tr := NewTransformer(scenarioRegistry(), "")
	m := models.NewMapping(models.ColumnMapping{"Tags": "tags"})
	row := models.SourceRow{"Tags": "a,b"}

	tr.TransformRow(row, m)
	assert.Equal(t, models.SourceRow{"Tags": "a,b"}, row)
}

func cloneRow(r models.SourceRow) models.SourceRow {
	out := make(models.SourceRow, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
