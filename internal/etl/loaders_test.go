package etl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BartekS5/assetimport/internal/schema"
	"github.com/BartekS5/assetimport/pkg/models"
)

func TestFlattenInto(t *testing.T) {
	rec := models.Record{
		"deviceId": "D1",
		"hardware": map[string]interface{}{
			"vendor":   "Siemens",
			"extended": map[string]interface{}{"MTBF": 5000.0},
		},
		"tags":     []string{"a", "b"},
		"extended": map[string]interface{}{},
		"context": map[string]interface{}{
			"businessProcesses": []interface{}{map[string]interface{}{"name": "Packaging"}},
		},
	}

	set := bson.M{}
	flattenInto(set, "", rec)

	assert.Equal(t, bson.M{
		"deviceId":                  "D1",
		"hardware.vendor":           "Siemens",
		"hardware.extended.MTBF":    5000.0,
		"tags":                      []string{"a", "b"},
		"extended":                  map[string]interface{}{},
		"context.businessProcesses": []interface{}{map[string]interface{}{"name": "Packaging"}},
	}, set)
}

func TestNewSQLLoader_TableName(t *testing.T) {
	l, err := NewSQLLoader(nil, "assets_2024")
	require.NoError(t, err)
	assert.Equal(t, "assets_2024", l.Table)

	for _, bad := range []string{"", "assets; DROP TABLE x", "dbo.assets", "1assets", "as sets"} {
		_, err := NewSQLLoader(nil, bad)
		assert.Error(t, err, bad)
	}
}

func TestMissingRequiredAndUnmappedHeaders(t *testing.T) {
	m := models.NewMapping(models.ColumnMapping{"Device": "deviceId", "Stage": "stage"})
	require.NoError(t, m.AddCustom(models.CustomMapping{Header: "Colour", Key: "colour"}))

	assert.Equal(t, []string{"name"}, MissingRequired(schema.Assets(), m))
	assert.Equal(t, []string{"Notes", "Rack"},
		UnmappedHeaders([]string{"Device", "Notes", "Stage", "Colour", "Rack"}, m))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, isEmpty(nil))
	assert.True(t, isEmpty("  "))
	assert.True(t, isEmpty([]string{}))
	assert.True(t, isEmpty([]interface{}{}))
	assert.False(t, isEmpty(0.0))
	assert.False(t, isEmpty(false))
	assert.False(t, isEmpty([]string{"x"}))
}

func TestMongoUpsert_StringKey(t *testing.T) {
	l := &MongoLoader{KeyField: schema.DeviceIDPath}

	w, ok := l.upsert(models.Record{"deviceId": json.Number("42"), "name": "Pump"})
	require.True(t, ok)
	assert.Equal(t, bson.M{"deviceId": "42"}, w.Filter)
	assert.True(t, *w.Upsert)

	update, ok := w.Update.(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{"deviceId": "42", "name": "Pump"}, update["$set"])

	_, ok = l.upsert(models.Record{"name": "No key"})
	assert.False(t, ok)
	_, ok = l.upsert(models.Record{"deviceId": "  "})
	assert.False(t, ok)
}

func TestBulkResult(t *testing.T) {
	assert.Equal(t, LoadResult{}, bulkResult(nil))
	assert.Equal(t, LoadResult{Created: 2, Updated: 1},
		bulkResult(&mongo.BulkWriteResult{UpsertedCount: 2, MatchedCount: 1, ModifiedCount: 1}))
}
