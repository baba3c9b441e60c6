package workflows

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/core/usecases"
)

// ErrTypeInvalidGeometry marks activity errors caused by bad input. They are not retried.
const ErrTypeInvalidGeometry = "InvalidGeometry"

// ImportActivities holds the activity implementations for the import workflow.
type ImportActivities struct {
	Features    *usecases.FeatureService
	Conversions *usecases.ConversionService
}

// ValidateItems decodes every item without storing anything.
func (a *ImportActivities) ValidateItems(ctx context.Context, items []domain.IngestMessage) error {
	for i := range items {
		req, err := usecases.IngestRequest(&items[i])
		if err == nil {
			_, err = a.Conversions.Decode(ctx, req.DecodeRequest)
		}
		if err != nil {
			return invalid(fmt.Errorf("item %d (%s): %w", i, items[i].Name, err))
		}
	}
	activity.GetLogger(ctx).Info("batch validated", "items", len(items))
	return nil
}

// StoreFeature stores one item and returns the new feature ID.
func (a *ImportActivities) StoreFeature(ctx context.Context, item domain.IngestMessage) (string, error) {
	f, err := a.Features.Ingest(ctx, &item)
	if err != nil {
		if domain.IsInvalidInput(err) {
			return "", invalid(err)
		}
		return "", fmt.Errorf("store %s: %w", item.Name, err)
	}
	return f.ID, nil
}

// DeleteFeature removes a feature (saga compensation). A feature that is already gone counts as
// deleted.
func (a *ImportActivities) DeleteFeature(ctx context.Context, id string) error {
	err := a.Features.Delete(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete feature %s: %w", id, err)
	}
	activity.GetLogger(ctx).Info("feature deleted (saga compensation)", "feature", id)
	return nil
}

func invalid(err error) error {
	return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidGeometry, err)
}
