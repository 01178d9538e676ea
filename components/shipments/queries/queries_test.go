package queries

import (
	"context"
	"testing"

	shipments "github.com/goliatone/go-courier-dashboard/components/shipments"
)

type stubViewService struct {
	calls int
	last  shipments.ViewQuery
}

func (s *stubViewService) View(_ context.Context, viewer shipments.ViewerContext, query shipments.ViewQuery) (shipments.BoardView, error) {
	s.calls++
	s.last = query
	return shipments.BoardView{Viewer: viewer}, nil
}

type stubController struct {
	calls int
}

func (s *stubController) ViewPayload(context.Context, shipments.ViewerContext, shipments.ViewQuery) (map[string]any, error) {
	s.calls++
	return map[string]any{"rows": []any{}}, nil
}

func TestBoardViewQuery(t *testing.T) {
	service := &stubViewService{}
	query := NewBoardViewQuery(service)
	view, err := query.Query(context.Background(), BoardViewInput{
		Viewer: shipments.ViewerContext{SessionID: "s1", Role: "admin"},
		Query:  shipments.ViewQuery{Tab: "connections", Page: 2},
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 || service.last.Page != 2 || view.Viewer.Role != "admin" {
		t.Fatalf("unexpected query call %+v", service.last)
	}
	if _, err := NewBoardViewQuery(nil).Query(context.Background(), BoardViewInput{}); err == nil {
		t.Fatalf("expected error without service")
	}
}

func TestBoardPayloadQuery(t *testing.T) {
	controller := &stubController{}
	payload, err := NewBoardPayloadQuery(controller).Query(context.Background(), BoardViewInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if controller.calls != 1 || payload["rows"] == nil {
		t.Fatalf("expected payload from controller")
	}
}
