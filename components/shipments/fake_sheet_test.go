package shipments

import (
	"context"
	"sync"
	"time"
)

type patchCall struct {
	AWB    string
	Person string
}

type fakeSheet struct {
	mu          sync.Mutex
	shipments   []ShipmentRecord
	assignments []AssignmentRecord
	shipErr     error
	assignErr   error
	patchErrs   []error
	onShipments func(call int) ([]ShipmentRecord, error)

	shipmentCalls   int
	assignmentCalls int
	patches         []patchCall
}

func (f *fakeSheet) FetchShipments(ctx context.Context) ([]ShipmentRecord, error) {
	f.mu.Lock()
	f.shipmentCalls++
	call := f.shipmentCalls
	hook := f.onShipments
	records, err := cloneRecords(f.shipments), f.shipErr
	f.mu.Unlock()
	if hook != nil {
		return hook(call)
	}
	return records, err
}

func (f *fakeSheet) FetchAssignments(ctx context.Context) ([]AssignmentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignmentCalls++
	if f.assignErr != nil {
		return nil, f.assignErr
	}
	return append([]AssignmentRecord(nil), f.assignments...), nil
}

func (f *fakeSheet) UpdateAssignment(ctx context.Context, awb, person string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patchCall{AWB: awb, Person: person})
	if len(f.patchErrs) == 0 {
		f.assignments = append(f.assignments, AssignmentRecord{AWBNumber: awb, PickUpPersonName: person})
		return nil
	}
	err := f.patchErrs[0]
	f.patchErrs = f.patchErrs[1:]
	if err == nil {
		f.assignments = append(f.assignments, AssignmentRecord{AWBNumber: awb, PickUpPersonName: person})
	}
	return err
}

func (f *fakeSheet) counts() (shipments, assignments, patches int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shipmentCalls, f.assignmentCalls, len(f.patches)
}

type recordingSleep struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recordingSleep) Sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = append(r.waits, d)
	return nil
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingTelemetry) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

type recordingHook struct {
	mu     sync.Mutex
	events []BoardEvent
}

func (h *recordingHook) BoardUpdated(_ context.Context, event BoardEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHook) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.Type)
	}
	return out
}

func record(awb string, status Status, person string) ShipmentRecord {
	return ShipmentRecord{AWBNumber: awb, Status: status, PickUpPersonName: person}
}
