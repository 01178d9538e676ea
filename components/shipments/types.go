package shipments

import (
	"context"
	"time"
)

// RecordSource reads the shipment and assignment sheets.
type RecordSource interface {
	FetchShipments(ctx context.Context) ([]ShipmentRecord, error)
	FetchAssignments(ctx context.Context) ([]AssignmentRecord, error)
}

// AssignmentWriter patches the pickup person of a single shipment row.
type AssignmentWriter interface {
	UpdateAssignment(ctx context.Context, awb, person string) error
}

// SheetClient is a convenience union for clients that read and write the sheets.
type SheetClient interface {
	RecordSource
	AssignmentWriter
}

// RefreshHook notifies transports (REST/WebSocket) about board changes.
type RefreshHook interface {
	BoardUpdated(ctx context.Context, event BoardEvent) error
}

// Status is the spreadsheet STATUS tag of a shipment. The set is open ended.
type Status string

const (
	StatusPending          Status = "PENDING"
	StatusCompleted        Status = "COMPLETED"
	StatusPickup           Status = "PICKUP"
	StatusOutgoingManifest Status = "OUTGOING MANIFEST"
	StatusPaymentDone      Status = "PAYMENT DONE"
)

// Tone maps a status to the display category used by the board.
func (s Status) Tone() string {
	switch s {
	case StatusPending:
		return "danger"
	case StatusCompleted:
		return "success"
	default:
		return "neutral"
	}
}

// ShipmentRecord is one row of the shipment sheet, keyed by AWB number.
type ShipmentRecord struct {
	AWBNumber            string
	Status               Status
	Name                 string
	ConsigneeName        string
	Destination          string
	ActualWeight         string
	PostPickupWeight     string
	PostNumberOfPackages string
	PhoneNumber          string
	VendorName           string
	Latitude             string
	Longitude            string
	PickUpPersonName     string
	// Extra keeps sheet columns the dashboard does not model.
	Extra map[string]string
}

// AssignmentRecord pairs an AWB number with its pickup person.
type AssignmentRecord struct {
	AWBNumber        string `json:"AWB_NUMBER"`
	PickUpPersonName string `json:"PickUpPersonName"`
}

// AssignmentIndex maps AWB numbers to assigned pickup persons.
type AssignmentIndex map[string]string

// NewAssignmentIndex folds assignment rows into an index; later rows win.
func NewAssignmentIndex(rows []AssignmentRecord) AssignmentIndex {
	index := make(AssignmentIndex, len(rows))
	for _, row := range rows {
		if row.AWBNumber == "" {
			continue
		}
		index[row.AWBNumber] = row.PickUpPersonName
	}
	return index
}

// ViewerContext captures the identity resolved from the session token.
// An empty Role means no identity.
type ViewerContext struct {
	SessionID string
	Role      string
	Name      string
	// Expires is when the session token lapses; zero never lapses.
	Expires time.Time
}

// UIState is the transient per-board state. It is rebuilt on every load and
// never persisted.
type UIState struct {
	ActiveTab    Tab    `json:"active_tab"`
	CurrentPage  int    `json:"current_page"`
	ErrorMessage string `json:"error_message,omitempty"`
	Loading      bool   `json:"loading"`
}

// AssignmentFailure is a dismissible indicator for an assignment that did not persist.
type AssignmentFailure struct {
	AWBNumber string    `json:"awb_number"`
	Person    string    `json:"person"`
	Message   string    `json:"message"`
	Attempts  int       `json:"attempts"`
	At        time.Time `json:"at"`
}

// BoardEvent describes changes that transports might care about.
type BoardEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	AWBNumber string    `json:"awb_number,omitempty"`
	Person    string    `json:"person,omitempty"`
	Message   string    `json:"message,omitempty"`
	At        time.Time `json:"at"`
}

const (
	EventBoardLoaded        = "board.loaded"
	EventAssignmentUpdated  = "assignment.updated"
	EventAssignmentFailed   = "assignment.failed"
	EventFailureDismissed   = "assignment.failure_dismissed"
	EventAssignmentsRefresh = "assignments.refreshed"
)

// ViewQuery selects the tab and page of a board view. Zero values keep the
// board's current selection.
type ViewQuery struct {
	Tab  string `json:"tab,omitempty"`
	Page int    `json:"page,omitempty"`
}

// BoardView is the derived, render-ready view of a board.
type BoardView struct {
	Viewer        ViewerContext       `json:"viewer"`
	UI            UIState             `json:"ui"`
	Page          Page                `json:"page"`
	Counts        []StatusCount       `json:"counts"`
	Failures      []AssignmentFailure `json:"failures,omitempty"`
	AssigneeNames []string            `json:"assignee_options"`
}

// StatusCount is the number of role-visible records in a tab.
type StatusCount struct {
	Tab    Tab    `json:"tab"`
	Status Status `json:"status"`
	Count  int    `json:"count"`
}
