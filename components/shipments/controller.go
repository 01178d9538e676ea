package shipments

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const defaultBoardTemplate = "board.html"

type viewService interface {
	View(ctx context.Context, viewer ViewerContext, query ViewQuery) (BoardView, error)
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service  viewService
	Renderer Renderer
	Chart    *StatusChart
	Maps     MapLinker
	Template string
}

// Controller turns board views into template payloads and rendered HTML.
type Controller struct {
	opts ControllerOptions
}

// NewController builds a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultBoardTemplate
	}
	return &Controller{opts: opts}
}

// ViewPayload resolves the viewer's board and shapes it for templates and JSON.
func (c *Controller) ViewPayload(ctx context.Context, viewer ViewerContext, query ViewQuery) (map[string]any, error) {
	if c.opts.Service == nil {
		return nil, errors.New("shipments: controller service not configured")
	}
	view, err := c.opts.Service.View(ctx, viewer, query)
	if err != nil {
		return nil, err
	}
	payload := c.payload(view)
	if c.opts.Chart != nil {
		html, err := c.opts.Chart.Render("Shipments by status", view.Counts)
		if err != nil {
			return nil, fmt.Errorf("shipments: render status chart: %w", err)
		}
		payload["chart_html"] = html
	}
	return payload, nil
}

// RenderTemplate renders the board page for the viewer into out.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, query ViewQuery, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errors.New("shipments: controller renderer not configured")
	}
	payload, err := c.ViewPayload(ctx, viewer, query)
	if err != nil {
		return err
	}
	if _, err := c.opts.Renderer.Render(c.opts.Template, payload, out); err != nil {
		return fmt.Errorf("shipments: render %s: %w", c.opts.Template, err)
	}
	return nil
}

func (c *Controller) payload(view BoardView) map[string]any {
	layout := LayoutFor(view.UI.ActiveTab)
	failures := make(map[string]AssignmentFailure, len(view.Failures))
	for _, f := range view.Failures {
		failures[f.AWBNumber] = f
	}

	rows := make([]map[string]any, 0, len(view.Page.Items))
	for i, record := range view.Page.Items {
		cells := make([]map[string]any, 0, len(layout.Columns))
		for _, col := range layout.Columns {
			cells = append(cells, map[string]any{"label": col.Label, "value": col.Value(record)})
		}
		row := map[string]any{
			"index":    i,
			"awb":      record.AWBNumber,
			"status":   string(record.Status),
			"tone":     record.Status.Tone(),
			"assignee": record.PickUpPersonName,
			"cells":    cells,
		}
		if layout.ShowMap {
			row["map_url"] = c.opts.Maps.URL(record.Latitude, record.Longitude)
		}
		if failure, ok := failures[record.AWBNumber]; ok {
			row["failure"] = failure.Message
		}
		rows = append(rows, row)
	}

	tabs := make([]map[string]any, 0, len(Tabs))
	for _, tab := range Tabs {
		tabs = append(tabs, map[string]any{
			"key":    string(tab),
			"label":  tab.Label(),
			"active": tab == view.UI.ActiveTab,
		})
	}

	pages := make([]int, 0, view.Page.TotalPages)
	for i := 1; i <= view.Page.TotalPages; i++ {
		pages = append(pages, i)
	}

	return map[string]any{
		"viewer": map[string]any{
			"role": view.Viewer.Role,
			"name": view.Viewer.Name,
		},
		"tabs":        tabs,
		"active_tab":  string(view.UI.ActiveTab),
		"assignable":  layout.Assignable,
		"rows":        rows,
		"page":        view.Page.Number,
		"total":       view.Page.Total,
		"total_pages": view.Page.TotalPages,
		"pages":       pages,
		"loading":     view.UI.Loading,
		"error":       view.UI.ErrorMessage,
		"options":     view.AssigneeNames,
		"failures":    view.Failures,
		"counts":      view.Counts,
	}
}
