package etl

import (
	"context"
	"errors"
	"fmt"

	"github.com/BartekS5/assetimport/pkg/logger"
	"github.com/BartekS5/assetimport/pkg/models"
)

const DefaultPreviewLimit = 10

// ErrCommitBlocked is returned when the error policy forbids committing.
var ErrCommitBlocked = errors.New("commit blocked by error policy")

// Processor runs the transformer over a batch of rows.
type Processor struct {
	Transformer  *Transformer
	Loader       Loader
	BatchSize    int
	PreviewLimit int
}

func NewProcessor(t *Transformer, loader Loader) *Processor {
	if loader == nil {
		loader = SimulatedLoader{}
	}
	return &Processor{
		Transformer:  t,
		Loader:       loader,
		BatchSize:    DefaultBatchSize,
		PreviewLimit: DefaultPreviewLimit,
	}
}

func (p *Processor) previewLimit() int {
	if p.PreviewLimit <= 0 {
		return DefaultPreviewLimit
	}
	return p.PreviewLimit
}

// Preview transforms at most limit rows, in input order. limit <= 0 uses the processor default.
func (p *Processor) Preview(ctx context.Context, rows []models.SourceRow, m models.Mapping, limit int) (models.PreviewReport, error) {
	if limit <= 0 {
		limit = p.previewLimit()
	}
	n := min(limit, len(rows))

	report := models.PreviewReport{Outcomes: make([]models.ValidationOutcome, 0, n)}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return models.PreviewReport{}, err
		}
		out := p.Transformer.TransformRow(rows[i], m)
		out.Row = i + 1
		report.Outcomes = append(report.Outcomes, out)
		if out.IsValid {
			report.ValidCount++
		} else {
			report.InvalidCount++
		}
	}
	report.Total = len(report.Outcomes)
	return report, nil
}

// CheckPolicy decides whether a commit may proceed given the preview outcomes.
func CheckPolicy(policy models.ErrorPolicy, outcomes []models.ValidationOutcome) error {
	if policy != models.ErrorPolicyStopOnFirstError {
		return nil
	}
	for _, o := range outcomes {
		if !o.IsValid {
			return fmt.Errorf("%w: row %d is invalid", ErrCommitBlocked, o.Row)
		}
	}
	return nil
}

// Commit transforms every row and loads the valid ones. The error policy is
// checked against the preview window only: with stopOnFirstError an invalid
// row there blocks the whole commit before anything is loaded. Invalid rows
// outside the window are counted as failed either way.
func (p *Processor) Commit(ctx context.Context, rows []models.SourceRow, m models.Mapping, policy models.ErrorPolicy) (models.CommitReport, error) {
	window := p.previewLimit()
	report := models.CommitReport{Total: len(rows)}

	var (
		valid   []models.Record
		preview []models.ValidationOutcome
	)
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return models.CommitReport{}, err
		}
		out := p.Transformer.TransformRow(row, m)
		out.Row = i + 1

		if i < window {
			preview = append(preview, out)
			if i == min(window, len(rows))-1 {
				if err := CheckPolicy(policy, preview); err != nil {
					return models.CommitReport{}, err
				}
			}
		}

		if !out.IsValid {
			logger.Debugf("Row %d rejected: %v", out.Row, out.Errors)
			continue
		}
		valid = append(valid, out.Record)
	}

	res, err := NewPipeline(p.Loader, p.BatchSize).Run(ctx, valid)
	report.Created = res.Created
	report.Updated = res.Updated
	report.Failed = report.Total - report.Created - report.Updated
	if err != nil {
		return report, err
	}

	logger.Infof("Commit finished. Total: %d, Created: %d, Updated: %d, Failed: %d",
		report.Total, report.Created, report.Updated, report.Failed)
	return report, nil
}
