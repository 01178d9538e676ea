package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	shipments "github.com/goliatone/go-courier-dashboard/components/shipments"
)

// RefreshBoardInput reloads the viewer's board from the sheets.
type RefreshBoardInput struct {
	Viewer shipments.ViewerContext
}

type refreshService interface {
	Refresh(ctx context.Context, viewer shipments.ViewerContext) error
}

// RefreshBoardCommand re-fetches shipments and assignments for a session.
type RefreshBoardCommand struct {
	service   refreshService
	telemetry Telemetry
}

// NewRefreshBoardCommand creates the command.
func NewRefreshBoardCommand(service refreshService, telemetry Telemetry) *RefreshBoardCommand {
	return &RefreshBoardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshBoardInput] = (*RefreshBoardCommand)(nil)

// Execute reloads the board. The classified fetch error is returned as is.
func (c *RefreshBoardCommand) Execute(ctx context.Context, msg RefreshBoardInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.Viewer.SessionID == "" {
		return errors.New("refresh command requires session id")
	}
	if err := c.service.Refresh(ctx, msg.Viewer); err != nil {
		return err
	}
	recordCommand(ctx, c.telemetry, "refresh", msg.Viewer, nil)
	return nil
}
