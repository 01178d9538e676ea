package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	shipments "github.com/goliatone/go-courier-dashboard/components/shipments"
)

// DismissFailureInput clears the failure indicator of one shipment.
type DismissFailureInput struct {
	Viewer    shipments.ViewerContext
	AWBNumber string
}

type dismissService interface {
	DismissFailure(ctx context.Context, viewer shipments.ViewerContext, awb string) bool
}

// DismissFailureCommand removes an assignment failure indicator.
type DismissFailureCommand struct {
	service   dismissService
	telemetry Telemetry
}

// NewDismissFailureCommand creates the command.
func NewDismissFailureCommand(service dismissService, telemetry Telemetry) *DismissFailureCommand {
	return &DismissFailureCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DismissFailureInput] = (*DismissFailureCommand)(nil)

// Execute dismisses the indicator. Dismissing an absent indicator is a no-op.
func (c *DismissFailureCommand) Execute(ctx context.Context, msg DismissFailureInput) error {
	if c.service == nil {
		return errors.New("dismiss command requires service")
	}
	if msg.AWBNumber == "" {
		return errors.New("dismiss command requires awb number")
	}
	removed := c.service.DismissFailure(ctx, msg.Viewer, msg.AWBNumber)
	recordCommand(ctx, c.telemetry, "dismiss", msg.Viewer, map[string]any{
		"awb":     msg.AWBNumber,
		"removed": removed,
	})
	return nil
}
