package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	shipments "github.com/goliatone/go-courier-dashboard/components/shipments"
)

type payloadController interface {
	ViewPayload(ctx context.Context, viewer shipments.ViewerContext, query shipments.ViewQuery) (map[string]any, error)
}

// BoardPayloadQuery returns the template payload of a board view.
type BoardPayloadQuery struct {
	controller payloadController
}

// NewBoardPayloadQuery builds the query.
func NewBoardPayloadQuery(controller payloadController) *BoardPayloadQuery {
	return &BoardPayloadQuery{controller: controller}
}

var _ gocommand.Querier[BoardViewInput, map[string]any] = (*BoardPayloadQuery)(nil)

// Query shapes the viewer's board for rendering.
func (q *BoardPayloadQuery) Query(ctx context.Context, input BoardViewInput) (map[string]any, error) {
	if q.controller == nil {
		return nil, errors.New("payload query requires controller")
	}
	return q.controller.ViewPayload(ctx, input.Viewer, input.Query)
}
