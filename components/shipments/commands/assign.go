package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	shipments "github.com/goliatone/go-courier-dashboard/components/shipments"
)

// AssignPickupInput names the shipment by AWB number and the person to assign.
// Result, when set, receives the outcome of the update.
type AssignPickupInput struct {
	Viewer    shipments.ViewerContext `json:"-"`
	AWBNumber string                  `json:"awb_number"`
	Person    string                  `json:"person"`
	Result    *shipments.AssignResult `json:"-"`
}

type assignService interface {
	Assign(ctx context.Context, viewer shipments.ViewerContext, req shipments.AssignRequest) (shipments.AssignResult, error)
}

// AssignPickupCommand wraps Service.Assign so transports can update pickup
// assignments without linking directly against the service.
type AssignPickupCommand struct {
	service   assignService
	telemetry Telemetry
}

// NewAssignPickupCommand creates a command instance.
func NewAssignPickupCommand(service assignService, telemetry Telemetry) *AssignPickupCommand {
	return &AssignPickupCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AssignPickupInput] = (*AssignPickupCommand)(nil)

// Execute delegates to the shipments service. An update that did not persist
// is returned as *shipments.AssignmentFailedError.
func (c *AssignPickupCommand) Execute(ctx context.Context, msg AssignPickupInput) error {
	if c.service == nil {
		return errors.New("assign command requires service")
	}
	result, err := c.service.Assign(ctx, msg.Viewer, shipments.AssignRequest{
		AWBNumber: msg.AWBNumber,
		Person:    msg.Person,
	})
	if msg.Result != nil {
		*msg.Result = result
	}
	if err != nil {
		return err
	}
	recordCommand(ctx, c.telemetry, "assign", msg.Viewer, map[string]any{
		"awb":      msg.AWBNumber,
		"person":   msg.Person,
		"ok":       result.OK,
		"attempts": result.Attempts,
	})
	if !result.OK {
		return &shipments.AssignmentFailedError{Result: result}
	}
	return nil
}
