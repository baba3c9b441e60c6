package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// TaskQueue is the Temporal task queue served by the importer worker.
const TaskQueue = "geo-import"

// ImportInput is a batch of geometries stored all-or-nothing.
type ImportInput struct {
	BatchID string
	Items   []domain.IngestMessage
}

// ImportResult lists the stored feature IDs in input order.
type ImportResult struct {
	FeatureIDs []string
}

// ImportWorkflow validates every item, then stores them one by one. If a store fails, the
// features already stored by this run are deleted (saga compensation) and the error returned.
func ImportWorkflow(ctx workflow.Context, input ImportInput) (*ImportResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting import workflow", "batch", input.BatchID, "items", len(input.Items))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidGeometry},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: reject the whole batch before writing anything
	if err := workflow.ExecuteActivity(ctx, "ValidateItems", input.Items).Get(ctx, nil); err != nil {
		return nil, err
	}

	// Step 2: store
	result := &ImportResult{FeatureIDs: make([]string, 0, len(input.Items))}
	for i, item := range input.Items {
		var id string
		err := workflow.ExecuteActivity(ctx, "StoreFeature", item).Get(ctx, &id)
		if err != nil {
			logger.Warn("store failed, compensating", "item", i, "stored", len(result.FeatureIDs), "error", err)
			compensate(ctx, result.FeatureIDs)
			return nil, fmt.Errorf("item %d (%s): %w", i, item.Name, err)
		}
		result.FeatureIDs = append(result.FeatureIDs, id)
	}

	logger.Info("Import completed", "batch", input.BatchID, "stored", len(result.FeatureIDs))
	return result, nil
}

// compensate deletes stored features, newest first.
func compensate(ctx workflow.Context, ids []string) {
	logger := workflow.GetLogger(ctx)
	for i := len(ids) - 1; i >= 0; i-- {
		if err := workflow.ExecuteActivity(ctx, "DeleteFeature", ids[i]).Get(ctx, nil); err != nil {
			logger.Error("compensation failed", "feature", ids[i], "error", err)
		}
	}
}
