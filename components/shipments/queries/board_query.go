package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	shipments "github.com/goliatone/go-courier-dashboard/components/shipments"
)

// BoardViewInput selects the viewer and the tab/page to show.
type BoardViewInput struct {
	Viewer shipments.ViewerContext
	Query  shipments.ViewQuery
}

type viewService interface {
	View(ctx context.Context, viewer shipments.ViewerContext, query shipments.ViewQuery) (shipments.BoardView, error)
}

// BoardViewQuery executes read-only board resolution.
type BoardViewQuery struct {
	service viewService
}

// NewBoardViewQuery builds the query.
func NewBoardViewQuery(service viewService) *BoardViewQuery {
	return &BoardViewQuery{service: service}
}

var _ gocommand.Querier[BoardViewInput, shipments.BoardView] = (*BoardViewQuery)(nil)

// Query resolves the board view for the viewer.
func (q *BoardViewQuery) Query(ctx context.Context, input BoardViewInput) (shipments.BoardView, error) {
	if q.service == nil {
		return shipments.BoardView{}, errors.New("board query requires service")
	}
	return q.service.View(ctx, input.Viewer, input.Query)
}
