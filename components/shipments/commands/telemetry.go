package commands

import (
	"context"

	shipments "github.com/goliatone/go-courier-dashboard/components/shipments"
)

// Telemetry is the board telemetry seam; commands record under
// "shipments.command.<name>".
type Telemetry = shipments.Telemetry

type discardTelemetry struct{}

func (discardTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return discardTelemetry{}
	}
	return t
}

// recordCommand tags payload with the viewer's session and role.
func recordCommand(ctx context.Context, t Telemetry, name string, viewer shipments.ViewerContext, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["session"] = viewer.SessionID
	payload["role"] = viewer.Role
	t.Record(ctx, "shipments.command."+name, payload)
}
