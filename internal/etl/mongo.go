package etl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BartekS5/assetimport/internal/schema"
	"github.com/BartekS5/assetimport/pkg/logger"
	"github.com/BartekS5/assetimport/pkg/models"
	"github.com/BartekS5/assetimport/pkg/utils"
)

// MongoLoader upserts asset documents keyed on deviceId. Fields the import
// does not touch are preserved on existing documents.
type MongoLoader struct {
	Collection *mongo.Collection
	KeyField   string
	Timeout    time.Duration
}

func NewMongoLoader(client *mongo.Client, database, collection string) *MongoLoader {
	return &MongoLoader{
		Collection: client.Database(database).Collection(collection),
		KeyField:   schema.DeviceIDPath,
		Timeout:    30 * time.Second,
	}
}

// EnsureIndexes creates the unique index on the natural key.
func (m *MongoLoader) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := m.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: m.KeyField, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create %s index: %w", m.KeyField, err)
	}
	return nil
}

func (m *MongoLoader) Load(ctx context.Context, records []models.Record) (LoadResult, error) {
	var writes []mongo.WriteModel

	for _, rec := range records {
		w, ok := m.upsert(rec)
		if !ok {
			logger.Errorf("Skipping record without %s", m.KeyField)
			continue
		}
		writes = append(writes, w)
	}

	if len(writes) == 0 {
		return LoadResult{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	// ordered, so a deviceId repeated inside one batch updates the first insert
	res, err := m.Collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	// on error res still counts the writes applied before the failing one
	result := bulkResult(res)
	if err != nil {
		return result, err
	}
	logger.Infof("Mongo BulkWrite: Match %d, Mod %d, Upsert %d", res.MatchedCount, res.ModifiedCount, res.UpsertedCount)

	return result, nil
}

// upsert builds the write for one record. The key is always stored as a string
// so the same asset matches whether it came from CSV or JSON.
func (m *MongoLoader) upsert(rec models.Record) (*mongo.UpdateOneModel, bool) {
	id := utils.Stringify(rec[m.KeyField])
	if strings.TrimSpace(id) == "" {
		return nil, false
	}

	set := bson.M{}
	flattenInto(set, "", rec)
	set[m.KeyField] = id

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"deviceRef": uuid.NewString()},
	}
	return mongo.NewUpdateOneModel().SetFilter(bson.M{m.KeyField: id}).SetUpdate(update).SetUpsert(true), true
}

func bulkResult(res *mongo.BulkWriteResult) LoadResult {
	if res == nil {
		return LoadResult{}
	}
	return LoadResult{Created: int(res.UpsertedCount), Updated: int(res.MatchedCount)}
}

// flattenInto turns nested maps into dotted $set keys so sibling fields
// already stored on the document survive the update. Arrays are set whole.
func flattenInto(dst bson.M, prefix string, src map[string]interface{}) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok && len(nested) > 0 {
			flattenInto(dst, key, nested)
			continue
		}
		dst[key] = v
	}
}
