// Package temporal starts batch zone workflows on a Temporal cluster.
package temporal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/geooffset/internal/workflows"
)

// Starter implements the HTTP adapter's BatchStarter with a Temporal client.
type Starter struct {
	client    client.Client
	taskQueue string
}

// Dial connects to Temporal.
func Dial(hostPort, namespace, taskQueue string) (*Starter, error) {
	c, err := client.Dial(client.Options{
		HostPort:  hostPort,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("temporal client: %w", err)
	}
	return &Starter{client: c, taskQueue: taskQueue}, nil
}

// StartBatch launches a BatchZoneWorkflow and returns its workflow and run IDs.
func (s *Starter) StartBatch(ctx context.Context, input workflows.BatchZoneInput) (string, string, error) {
	run, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "batch-zone-" + uuid.NewString(),
		TaskQueue: s.taskQueue,
	}, workflows.BatchZoneWorkflow, input)
	if err != nil {
		return "", "", fmt.Errorf("start batch workflow: %w", err)
	}
	return run.GetID(), run.GetRunID(), nil
}

// Client exposes the underlying client, e.g. for a worker in the same process.
func (s *Starter) Client() client.Client {
	return s.client
}

// Close releases the client.
func (s *Starter) Close() {
	s.client.Close()
}
