package fieldpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Path
	}{
		{"deviceId", Path{{Key: "deviceId"}}},
		{"hardware.extended.MTBF", Path{{Key: "hardware"}, {Key: "extended"}, {Key: "MTBF"}}},
		{"context.businessProcesses[0].name", Path{
			{Key: "context"},
			{Key: "businessProcesses", Index: 0, Indexed: true},
			{Key: "name"},
		}},
		{"a.b[12]", Path{{Key: "a"}, {Key: "b", Index: 12, Indexed: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
			assert.Equal(t, tt.input, p.String())
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, input := range []string{"", "a..b", ".a", "a.", "a[", "a[x]", "a[-1]", "[0]", "a]b", "a[0]b"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("a..b") })
}

func TestPathHelpers(t *testing.T) {
	p := MustParse("context.businessProcesses[0].name")
	assert.Equal(t, "name", p.Last())
	assert.True(t, p.HasIndex())

	p = MustParse("hardware.businessProcesses[3]")
	assert.Equal(t, "businessProcesses", p.Last())
	assert.False(t, MustParse("hardware.vendor").HasIndex())
}

func TestRoundTrip(t *testing.T) {
	values := []any{"x", 12.5, true, false, 0.0, ""}
	for _, raw := range []string{"name", "hardware.vendor", "a.b.c.d"} {
		for _, v := range values {
			obj := map[string]any{}
			p := MustParse(raw)
			Write(obj, p, v)

			got, _ := Read(obj, p)
			assert.Equal(t, v, got, "path %s", raw)
		}
	}
}

func TestWrite_ArrayIndex(t *testing.T) {
	obj := map[string]any{}
	Write(obj, MustParse("a.b[2].c"), "x")

	a, ok := obj["a"].(map[string]any)
	require.True(t, ok)
	b, ok := a["b"].([]any)
	require.True(t, ok)
	require.Len(t, b, 3)
	assert.Nil(t, b[0])
	assert.Nil(t, b[1])
	assert.Equal(t, map[string]any{"c": "x"}, b[2])

	got, ok := Read(obj, MustParse("a.b[2].c"))
	assert.True(t, ok)
	assert.Equal(t, "x", got)

	_, ok = Read(obj, MustParse("a.b[0].c"))
	assert.False(t, ok)
}

func TestWrite_LastWriteWins(t *testing.T) {
	obj := map[string]any{}
	p := MustParse("hardware.vendor")
	Write(obj, p, "Siemens")
	Write(obj, p, "ABB")

	assert.Equal(t, map[string]any{"hardware": map[string]any{"vendor": "ABB"}}, obj)
}

func TestWrite_ReplacesWrongShape(t *testing.T) {
	obj := map[string]any{
		"hardware": "legacy",
		"context":  map[string]any{"businessProcesses": "not-an-array"},
	}

	Write(obj, MustParse("hardware.vendor"), "Siemens")
	Write(obj, MustParse("context.businessProcesses[0].name"), "Packaging")

	assert.Equal(t, "Siemens", obj["hardware"].(map[string]any)["vendor"])
	bp := obj["context"].(map[string]any)["businessProcesses"].([]any)
	assert.Equal(t, map[string]any{"name": "Packaging"}, bp[0])
}

func TestWrite_PreservesSiblings(t *testing.T) {
	obj := map[string]any{}
	Write(obj, MustParse("context.businessProcesses[0].name"), "Packaging")
	Write(obj, MustParse("context.businessProcesses[0].role"), "primary")
	Write(obj, MustParse("context.deviceGroup"), "Line 1")

	bp := obj["context"].(map[string]any)["businessProcesses"].([]any)
	assert.Equal(t, map[string]any{"name": "Packaging", "role": "primary"}, bp[0])
	assert.Equal(t, "Line 1", obj["context"].(map[string]any)["deviceGroup"])
}

func TestRead_Missing(t *testing.T) {
	obj := map[string]any{"hardware": map[string]any{"vendor": "ABB"}, "tags": []any{"a"}}

	cases := []string{"name", "hardware.model", "hardware.vendor.x", "tags[3]", "hardware[0]", "zone.name"}
	for _, raw := range cases {
		v, ok := Read(obj, MustParse(raw))
		assert.False(t, ok, raw)
		assert.Nil(t, v, raw)
	}

	_, ok := Read(nil, MustParse("name"))
	assert.False(t, ok)
}
