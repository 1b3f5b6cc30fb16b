package etl

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/assetimport/pkg/models"
)

func batchRows(n int, invalid ...int) []models.SourceRow {
	bad := map[int]bool{}
	for _, i := range invalid {
		bad[i] = true
	}
	rows := make([]models.SourceRow, n)
	for i := range rows {
		cost := "10"
		if bad[i] {
			cost = "ten"
		}
		rows[i] = models.SourceRow{
			"Device": fmt.Sprintf("D%d", i+1),
			"Name":   fmt.Sprintf("Asset %d", i+1),
			"Stage":  "Active",
			"Cost":   cost,
		}
	}
	return rows
}

func batchMapping() models.Mapping {
	return models.NewMapping(models.ColumnMapping{
		"Device": "deviceId", "Name": "name", "Stage": "stage", "Cost": "purchaseCost",
	})
}

func TestProcessor_PreviewLimit(t *testing.T) {
	p := NewProcessor(NewTransformer(scenarioRegistry(), ""), nil)

	report, err := p.Preview(context.Background(), batchRows(25, 3), batchMapping(), 0)
	require.NoError(t, err)

	assert.Equal(t, DefaultPreviewLimit, report.Total)
	assert.Len(t, report.Outcomes, DefaultPreviewLimit)
	assert.Equal(t, 9, report.ValidCount)
	assert.Equal(t, 1, report.InvalidCount)
	for i, o := range report.Outcomes {
		assert.Equal(t, i+1, o.Row)
	}
	assert.False(t, report.Outcomes[3].IsValid)

	report, err = p.Preview(context.Background(), batchRows(3), batchMapping(), 5)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
}

func TestProcessor_PreviewCancelled(t *testing.T) {
	p := NewProcessor(NewTransformer(scenarioRegistry(), ""), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Preview(ctx, batchRows(2), batchMapping(), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessor_CommitCounts(t *testing.T) {
	loader := &recordingLoader{}
	p := NewProcessor(NewTransformer(scenarioRegistry(), ""), loader)
	p.BatchSize = 4

	report, err := p.Commit(context.Background(), batchRows(10, 1, 4, 8), batchMapping(), models.ErrorPolicySkipInvalidRows)
	require.NoError(t, err)

	assert.Equal(t, models.CommitReport{Total: 10, Created: 7, Updated: 0, Failed: 3}, report)
	assert.Equal(t, []int{4, 3}, loader.batches)
	assert.Equal(t, "D1", loader.records[0]["deviceId"])
}

func TestProcessor_CommitUpdatedCounts(t *testing.T) {
	loader := &recordingLoader{existing: map[string]bool{"D2": true, "D3": true}}
	p := NewProcessor(NewTransformer(scenarioRegistry(), ""), loader)

	report, err := p.Commit(context.Background(), batchRows(5, 4), batchMapping(), "")
	require.NoError(t, err)
	assert.Equal(t, models.CommitReport{Total: 5, Created: 2, Updated: 2, Failed: 1}, report)
}

func TestProcessor_CommitBlockedByPolicy(t *testing.T) {
	loader := &recordingLoader{}
	p := NewProcessor(NewTransformer(scenarioRegistry(), ""), loader)

	_, err := p.Commit(context.Background(), batchRows(10, 6), batchMapping(), models.ErrorPolicyStopOnFirstError)
	assert.ErrorIs(t, err, ErrCommitBlocked)
	assert.Contains(t, err.Error(), "row 7")
	assert.Empty(t, loader.batches)
}

func TestProcessor_StopPolicyOnlyChecksPreviewWindow(t *testing.T) {
	loader := &recordingLoader{}
	p := NewProcessor(NewTransformer(scenarioRegistry(), ""), loader)
	p.PreviewLimit = 2

	report, err := p.Commit(context.Background(), batchRows(4, 3), batchMapping(), models.ErrorPolicyStopOnFirstError)
	require.NoError(t, err)
	assert.Equal(t, models.CommitReport{Total: 4, Created: 3, Failed: 1}, report)
}

func TestProcessor_CommitLoaderFailure(t *testing.T) {
	loader := &recordingLoader{failAt: 2}
	p := NewProcessor(NewTransformer(scenarioRegistry(), ""), loader)
	p.BatchSize = 2

	report, err := p.Commit(context.Background(), batchRows(6), batchMapping(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errLoaderDown)
	assert.Equal(t, 6, report.Total)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 4, report.Failed)
}

func TestCheckPolicy(t *testing.T) {
	outcomes := []models.ValidationOutcome{{Row: 1, IsValid: true}, {Row: 2}}

	assert.NoError(t, CheckPolicy(models.ErrorPolicySkipInvalidRows, outcomes))
	assert.ErrorIs(t, CheckPolicy(models.ErrorPolicyStopOnFirstError, outcomes), ErrCommitBlocked)
	assert.NoError(t, CheckPolicy(models.ErrorPolicyStopOnFirstError, outcomes[:1]))
}
