package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/BartekS5/assetimport/pkg/logger"
	"github.com/BartekS5/assetimport/pkg/models"
)

const DefaultBatchSize = 100

// Pipeline hands records to a Loader in fixed-size batches.
type Pipeline struct {
	Loader    Loader
	BatchSize int
}

func NewPipeline(loader Loader, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{Loader: loader, BatchSize: batchSize}
}

// Run loads every record. On failure the result covers the batches already loaded.
func (p *Pipeline) Run(ctx context.Context, records []models.Record) (LoadResult, error) {
	logger.Infof("Starting load. Records: %d, Batch Size: %d", len(records), p.BatchSize)

	var total LoadResult
	processed := 0
	startTime := time.Now()

	for offset := 0; offset < len(records); offset += p.BatchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		end := min(offset+p.BatchSize, len(records))
		res, err := p.Loader.Load(ctx, records[offset:end])
		total.Add(res)
		if err != nil {
			logger.Errorf("Loading failed at offset %d: %v", offset, err)
			return total, fmt.Errorf("load batch at offset %d: %w", offset, err)
		}

		processed = end
		rate := 0.0
		if d := time.Since(startTime).Seconds(); d > 0 {
			rate = float64(processed) / d
		}
		logger.Infof("Batch done. Total: %d. Rate: %.2f records/sec. Created: %d, Updated: %d",
			processed, rate, total.Created, total.Updated)
	}

	logger.Infof("Load finished. Created: %d, Updated: %d", total.Created, total.Updated)
	return total, nil
}
