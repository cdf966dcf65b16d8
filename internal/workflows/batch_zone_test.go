package workflows_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/geooffset/internal/core/domain"
	"github.com/samirrijal/geooffset/internal/workflows"
)

// fakeZones is an in-memory ZoneStore that, like the repository, returns the stored
// zone when an ID is created twice.
type fakeZones struct {
	mu      sync.Mutex
	zones   map[string]string
	order   []string
	deleted []string
	failOn  string
	// lostReplyOn stores the zone but reports a failure once, as when the activity
	// times out after the insert committed.
	lostReplyOn string
	calls       map[string]int
}

func newFakeZones() *fakeZones {
	return &fakeZones{zones: map[string]string{}, calls: map[string]int{}}
}

func (f *fakeZones) CreateWithID(ctx context.Context, id, name string, req domain.OffsetRequest) (*domain.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	if f.failOn != "" && strings.HasSuffix(name, f.failOn) {
		return nil, errors.New("db down")
	}
	if len(req.Polygon) < 3 {
		return nil, domain.ErrEmptyResult
	}
	if id == "" {
		return nil, errors.New("batch zones need a preset id")
	}
	if _, ok := f.zones[id]; !ok {
		f.zones[id] = name
		f.order = append(f.order, id)
	}
	if f.lostReplyOn != "" && strings.HasSuffix(name, f.lostReplyOn) && f.calls[name] == 1 {
		return nil, errors.New("context deadline exceeded")
	}
	return &domain.Zone{ID: id, Name: name}, nil
}

func (f *fakeZones) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.zones[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.zones, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []domain.ZoneEvent
}

func (f *fakeEvents) PublishOffsetComputed(ctx context.Context, e *domain.OffsetComputedEvent) error {
	return nil
}

func (f *fakeEvents) PublishZoneEvent(ctx context.Context, e *domain.ZoneEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *e)
	return nil
}

var triangle = domain.Polygon{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.001}, {Lat: 0.001, Lon: 0}}

func batch(n int) workflows.BatchZoneInput {
	in := workflows.BatchZoneInput{Name: "depots"}
	for i := 0; i < n; i++ {
		in.Requests = append(in.Requests, domain.OffsetRequest{Polygon: triangle, OffsetMeters: 5})
	}
	return in
}

func newEnv(t *testing.T, zones *fakeZones, events *fakeEvents) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(workflows.BatchZoneWorkflow)
	env.RegisterActivity(&workflows.ZoneActivities{Zones: zones, Events: events})
	return env
}

func TestBatchZoneWorkflow_Success(t *testing.T) {
	zones := newFakeZones()
	events := &fakeEvents{}
	env := newEnv(t, zones, events)

	env.ExecuteWorkflow(workflows.BatchZoneWorkflow, batch(3))

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	if err := env.GetWorkflowResult(&ids); err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 || len(zones.zones) != 3 {
		t.Fatalf("expected 3 zones, got ids=%v stored=%v", ids, zones.zones)
	}
	if zones.zones[ids[0]] != "depots-1" || zones.zones[ids[2]] != "depots-3" {
		t.Errorf("unexpected names %v", zones.zones)
	}
	if len(events.events) != 1 || events.events[0].Type != "batch_completed" || len(events.events[0].ZoneIDs) != 3 {
		t.Errorf("unexpected events %+v", events.events)
	}
}

func TestBatchZoneWorkflow_CompensatesOnFailure(t *testing.T) {
	zones := newFakeZones()
	zones.failOn = "-3"
	events := &fakeEvents{}
	env := newEnv(t, zones, events)

	env.ExecuteWorkflow(workflows.BatchZoneWorkflow, batch(4))

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if env.GetWorkflowError() == nil {
		t.Fatal("expected workflow error")
	}
	if len(zones.zones) != 0 {
		t.Errorf("expected all zones rolled back, still have %v", zones.zones)
	}
	if len(zones.order) != 2 || len(zones.deleted) != 2 ||
		zones.deleted[0] != zones.order[1] || zones.deleted[1] != zones.order[0] {
		t.Errorf("expected reverse-order deletion of %v, got %v", zones.order, zones.deleted)
	}
	if zones.calls["depots-3"] != 3 {
		t.Errorf("expected 3 attempts for a transient failure, got %d", zones.calls["depots-3"])
	}
	if zones.calls["depots-4"] != 0 {
		t.Error("later requests must not run after a failure")
	}
	if len(events.events) != 0 {
		t.Error("failed batches must not be announced")
	}
}

func TestBatchZoneWorkflow_RetryAfterCommitDoesNotDuplicate(t *testing.T) {
	zones := newFakeZones()
	zones.lostReplyOn = "-2"
	env := newEnv(t, zones, &fakeEvents{})
	env.SetStartWorkflowOptions(client.StartWorkflowOptions{ID: "batch-zone-abc"})

	env.ExecuteWorkflow(workflows.BatchZoneWorkflow, batch(3))

	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	if err := env.GetWorkflowResult(&ids); err != nil {
		t.Fatal(err)
	}
	if zones.calls["depots-2"] != 2 {
		t.Errorf("expected the second zone to be retried once, got %d calls", zones.calls["depots-2"])
	}
	if len(zones.zones) != 3 || len(ids) != 3 {
		t.Fatalf("expected 3 zones without duplicates, got ids=%v stored=%v", ids, zones.zones)
	}
	if ids[1] != workflows.BatchZoneID("batch-zone-abc", "depots-2") {
		t.Errorf("expected deterministic id for depots-2, got %s", ids[1])
	}
}

func TestBatchZoneID(t *testing.T) {
	a := workflows.BatchZoneID("wf-1", "depots-1")
	if a != workflows.BatchZoneID("wf-1", "depots-1") {
		t.Error("expected a stable id")
	}
	if a == workflows.BatchZoneID("wf-2", "depots-1") || a == workflows.BatchZoneID("wf-1", "depots-2") {
		t.Error("expected distinct ids per workflow and zone")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("expected a uuid, got %q", a)
	}
}

func TestBatchZoneWorkflow_ClientErrorNotRetried(t *testing.T) {
	zones := newFakeZones()
	env := newEnv(t, zones, &fakeEvents{})

	in := batch(2)
	in.Requests[1].Polygon = triangle[:2]
	env.ExecuteWorkflow(workflows.BatchZoneWorkflow, in)

	if env.GetWorkflowError() == nil {
		t.Fatal("expected workflow error")
	}
	if zones.calls["depots-2"] != 1 {
		t.Errorf("expected a single attempt for a client error, got %d", zones.calls["depots-2"])
	}
	if len(zones.zones) != 0 {
		t.Errorf("expected rollback, still have %v", zones.zones)
	}
}

func TestBatchZoneWorkflow_EmptyBatch(t *testing.T) {
	env := newEnv(t, newFakeZones(), &fakeEvents{})

	env.ExecuteWorkflow(workflows.BatchZoneWorkflow, workflows.BatchZoneInput{Name: "none"})

	if env.GetWorkflowError() == nil {
		t.Fatal("expected error for an empty batch")
	}
}
