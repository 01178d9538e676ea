package commands

import (
	"context"
	"errors"
	"testing"

	shipments "github.com/goliatone/go-courier-dashboard/components/shipments"
)

type stubService struct {
	assignResult shipments.AssignResult
	assignErr    error
	refreshErr   error
	dismissed    bool

	assignCalls  int
	refreshCalls int
	dismissCalls int
	lastRequest  shipments.AssignRequest
}

func (s *stubService) Assign(_ context.Context, _ shipments.ViewerContext, req shipments.AssignRequest) (shipments.AssignResult, error) {
	s.assignCalls++
	s.lastRequest = req
	return s.assignResult, s.assignErr
}

func (s *stubService) Refresh(context.Context, shipments.ViewerContext) error {
	s.refreshCalls++
	return s.refreshErr
}

func (s *stubService) DismissFailure(context.Context, shipments.ViewerContext, string) bool {
	s.dismissCalls++
	return s.dismissed
}

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}

func TestAssignPickupCommand(t *testing.T) {
	service := &stubService{assignResult: shipments.AssignResult{AWBNumber: "A1", Person: "anish", Attempts: 1, OK: true}}
	telemetry := &stubTelemetry{}
	cmd := NewAssignPickupCommand(service, telemetry)

	var result shipments.AssignResult
	err := cmd.Execute(context.Background(), AssignPickupInput{AWBNumber: "A1", Person: "anish", Result: &result})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.lastRequest.AWBNumber != "A1" || service.lastRequest.Person != "anish" {
		t.Fatalf("unexpected request %+v", service.lastRequest)
	}
	if !result.OK {
		t.Fatalf("expected result to be copied back")
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry to record event")
	}
}

func TestAssignPickupCommandReportsFailedUpdate(t *testing.T) {
	cause := &shipments.RemoteError{StatusCode: 429}
	service := &stubService{assignResult: shipments.AssignResult{AWBNumber: "A1", Attempts: 3, Err: cause}}
	cmd := NewAssignPickupCommand(service, nil)

	err := cmd.Execute(context.Background(), AssignPickupInput{AWBNumber: "A1", Person: "anish"})
	var failed *shipments.AssignmentFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected AssignmentFailedError, got %v", err)
	}
	if failed.Result.Attempts != 3 || !errors.Is(err, cause) {
		t.Fatalf("unexpected failure %+v", failed.Result)
	}
}

func TestAssignPickupCommandPassesValidationErrors(t *testing.T) {
	service := &stubService{assignErr: shipments.ErrUnknownAssignee}
	cmd := NewAssignPickupCommand(service, nil)
	if err := cmd.Execute(context.Background(), AssignPickupInput{AWBNumber: "A1", Person: "x"}); !errors.Is(err, shipments.ErrUnknownAssignee) {
		t.Fatalf("expected ErrUnknownAssignee, got %v", err)
	}
	if err := NewAssignPickupCommand(nil, nil).Execute(context.Background(), AssignPickupInput{}); err == nil {
		t.Fatalf("expected error without service")
	}
}

func TestRefreshBoardCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRefreshBoardCommand(service, nil)
	viewer := shipments.ViewerContext{SessionID: "s1", Role: "admin"}
	if err := cmd.Execute(context.Background(), RefreshBoardInput{Viewer: viewer}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.refreshCalls != 1 {
		t.Fatalf("expected refresh call")
	}
	if err := cmd.Execute(context.Background(), RefreshBoardInput{}); err == nil {
		t.Fatalf("expected error without session")
	}

	service.refreshErr = shipments.ClassifyFetchError(&shipments.RemoteError{StatusCode: 500})
	var fe *shipments.FetchError
	if err := cmd.Execute(context.Background(), RefreshBoardInput{Viewer: viewer}); !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestDismissFailureCommand(t *testing.T) {
	service := &stubService{dismissed: true}
	telemetry := &stubTelemetry{}
	cmd := NewDismissFailureCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), DismissFailureInput{AWBNumber: "A1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.dismissCalls != 1 || telemetry.calls != 1 {
		t.Fatalf("expected dismiss call and telemetry")
	}
	if err := cmd.Execute(context.Background(), DismissFailureInput{}); err == nil {
		t.Fatalf("expected error without awb")
	}
}

type capturedTelemetry struct {
	event   string
	payload map[string]any
}

func (c *capturedTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	c.event = event
	c.payload = payload
}

func TestCommandTelemetryCarriesSession(t *testing.T) {
	telemetry := &capturedTelemetry{}
	cmd := NewRefreshBoardCommand(&stubService{}, telemetry)
	viewer := shipments.ViewerContext{SessionID: "s7", Role: "deepak"}
	if err := cmd.Execute(context.Background(), RefreshBoardInput{Viewer: viewer}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if telemetry.event != "shipments.command.refresh" {
		t.Fatalf("unexpected event %q", telemetry.event)
	}
	if telemetry.payload["session"] != "s7" || telemetry.payload["role"] != "deepak" {
		t.Fatalf("unexpected payload %+v", telemetry.payload)
	}
}
