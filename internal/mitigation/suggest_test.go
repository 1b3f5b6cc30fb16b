package mitigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/assetimport/pkg/models"
)

func TestRequestFromRecord(t *testing.T) {
	rec := models.Record{
		"deviceId":    "PLC-001",
		"name":        "Line PLC",
		"os_firmware": "TIA Portal V17",
		"hardware":    map[string]interface{}{"type": "PLC"},
		"extended": map[string]interface{}{
			"software":        "OPC UA Server, , Web Server",
			"vulnerabilities": "CVE-2023-0001",
		},
	}

	req := RequestFromRecord(rec)
	assert.Equal(t, Request{
		AssetType:       "PLC",
		AssetName:       "Line PLC",
		Software:        []string{"TIA Portal V17", "OPC UA Server", "Web Server"},
		Vulnerabilities: []string{"CVE-2023-0001"},
	}, req)
}

func TestRequestFromRecord_FallsBackToDeviceID(t *testing.T) {
	req := RequestFromRecord(models.Record{"deviceId": "D9"})
	assert.Equal(t, "D9", req.AssetName)
	assert.Empty(t, req.AssetType)
	assert.Empty(t, req.Software)
}

func TestRuleSuggester(t *testing.T) {
	out, err := RuleSuggester{}.Suggest(context.Background(), Request{
		AssetType:       "plc",
		AssetName:       "Line PLC",
		Software:        []string{"Web Server", "web server", "OPC UA Server"},
		Vulnerabilities: []string{"CVE-2023-0001"},
	})
	require.NoError(t, err)

	require.Len(t, out, 6)
	assert.Contains(t, out[0], "isolated OT network zone")
	assert.Equal(t, "Patch OPC UA Server to the latest vendor-supported release.", out[2])
	assert.Equal(t, "Patch Web Server to the latest vendor-supported release.", out[3])
	assert.Contains(t, out[4], "CVE-2023-0001")
	assert.Equal(t, baseline, out[5])
}

func TestRuleSuggester_Errors(t *testing.T) {
	_, err := RuleSuggester{}.Suggest(context.Background(), Request{AssetType: "PLC"})
	assert.ErrorIs(t, err, ErrNoAssetName)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RuleSuggester{}.Suggest(ctx, Request{AssetName: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRuleSuggester_UnknownTypeGetsBaseline(t *testing.T) {
	var s Suggester = RuleSuggester{}
	out, err := s.Suggest(context.Background(), Request{AssetType: "Toaster", AssetName: "T1"})
	require.NoError(t, err)
	assert.Equal(t, []string{baseline}, out)
}
