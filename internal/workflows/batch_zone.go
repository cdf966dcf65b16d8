package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/geooffset/internal/core/domain"
)

// BatchZoneInput is the input for the batch zone workflow.
type BatchZoneInput struct {
	Name     string
	Requests []domain.OffsetRequest
}

// ZoneName is the name of the n-th zone (1-based) of a batch.
func ZoneName(batch string, n int) string {
	return fmt.Sprintf("%s-%d", batch, n)
}

// BatchZoneWorkflow offsets every request and stores each result as a zone named
// "<Name>-<n>". If any step fails, the zones already created are deleted (saga
// compensation) and the error is returned. The result is the list of zone IDs.
func BatchZoneWorkflow(ctx workflow.Context, input BatchZoneInput) ([]string, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting batch zone workflow", "name", input.Name, "requests", len(input.Requests))

	if len(input.Requests) == 0 {
		return nil, temporal.NewNonRetryableApplicationError("batch has no requests", "bad_request", nil)
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var created []string
	compensate := func(cause error) error {
		logger.Warn("batch failed, compensating", "error", cause, "zones", len(created))
		for i := len(created) - 1; i >= 0; i-- {
			if err := workflow.ExecuteActivity(ctx, "DeleteZone", created[i]).Get(ctx, nil); err != nil {
				logger.Error("compensation failed", "zone_id", created[i], "error", err)
			}
		}
		return cause
	}

	// Step 1: create one zone per request
	for i, req := range input.Requests {
		name := ZoneName(input.Name, i+1)
		var id string
		if err := workflow.ExecuteActivity(ctx, "CreateZone", name, req).Get(ctx, &id); err != nil {
			return nil, compensate(err)
		}
		created = append(created, id)
	}

	// Step 2: announce the batch
	if err := workflow.ExecuteActivity(ctx, "PublishBatchCompleted", input.Name, created).Get(ctx, nil); err != nil {
		return nil, compensate(err)
	}

	logger.Info("Batch zone workflow completed", "zones", len(created))
	return created, nil
}
