package shipments

import (
	"strings"

	"github.com/ettle/strcase"
)

// DefaultPageSize is the number of rows per board page.
const DefaultPageSize = 10

// Tab selects one status column of the board.
type Tab string

const (
	TabPickup      Tab = "pickup"
	TabConnections Tab = "connections"
	TabPaymentDone Tab = "paymentDone"
)

// Tabs lists the board tabs in display order.
var Tabs = []Tab{TabPickup, TabConnections, TabPaymentDone}

var tabStatus = map[Tab]Status{
	TabPickup:      StatusPickup,
	TabConnections: StatusOutgoingManifest,
	TabPaymentDone: StatusPaymentDone,
}

var tabLabels = map[Tab]string{
	TabPickup:      "Pickup",
	TabConnections: "Connections",
	TabPaymentDone: "Payment Done",
}

// ParseTab normalizes a selector such as "payment-done" or "payment_done" to
// its Tab form. Unknown selectors are returned normalized but unmatched.
func ParseTab(s string) Tab {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return Tab(strcase.ToCamel(s))
}

// Status returns the status a tab shows.
func (t Tab) Status() (Status, bool) {
	status, ok := tabStatus[t]
	return status, ok
}

// Label is the display name of the tab.
func (t Tab) Label() string {
	if label, ok := tabLabels[t]; ok {
		return label
	}
	return string(t)
}

// FilterByRole keeps the records visible to role. Administrative roles see
// everything, pickup persons see their own assignments, anything else sees nothing.
func FilterByRole(records []ShipmentRecord, role string, roles RoleDirectory) []ShipmentRecord {
	switch roles.Classify(role) {
	case RoleAdmin:
		return cloneRecords(records)
	case RolePickupPerson:
		out := make([]ShipmentRecord, 0, len(records))
		for _, r := range records {
			if r.PickUpPersonName == role {
				out = append(out, r)
			}
		}
		return out
	default:
		return []ShipmentRecord{}
	}
}

// FilterByTab keeps the records whose status matches the tab. Unknown tabs
// yield an empty set.
func FilterByTab(records []ShipmentRecord, tab Tab) []ShipmentRecord {
	status, ok := tab.Status()
	if !ok {
		return []ShipmentRecord{}
	}
	out := make([]ShipmentRecord, 0, len(records))
	for _, r := range records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// Paginate returns the 1-based page window [(page-1)*size, page*size).
// Pages before the first or past the end are empty.
func Paginate(records []ShipmentRecord, page, size int) []ShipmentRecord {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 || len(records) == 0 || page-1 > (len(records)-1)/size {
		return []ShipmentRecord{}
	}
	start := (page - 1) * size
	end := min(start+size, len(records))
	return cloneRecords(records[start:end])
}

// Page is one window of the filtered board.
type Page struct {
	Tab        Tab              `json:"tab"`
	Number     int              `json:"number"`
	Size       int              `json:"size"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
	Items      []ShipmentRecord `json:"items"`
}

// KeyAt resolves the AWB number of the i-th row of this page. Interactive
// clients call it with the page they rendered, at the moment of interaction.
func (p Page) KeyAt(i int) (string, bool) {
	if i < 0 || i >= len(p.Items) {
		return "", false
	}
	awb := p.Items[i].AWBNumber
	return awb, awb != ""
}

// BuildPage derives the visible page for role, tab and page number.
func BuildPage(records []ShipmentRecord, role string, roles RoleDirectory, tab Tab, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	filtered := FilterByTab(FilterByRole(records, role, roles), tab)
	totalPages := (len(filtered) + size - 1) / size
	return Page{
		Tab:        tab,
		Number:     page,
		Size:       size,
		Total:      len(filtered),
		TotalPages: totalPages,
		Items:      Paginate(filtered, page, size),
	}
}

// CountByTab counts the role-visible records in every tab.
func CountByTab(records []ShipmentRecord, role string, roles RoleDirectory) []StatusCount {
	visible := FilterByRole(records, role, roles)
	counts := make([]StatusCount, 0, len(Tabs))
	for _, tab := range Tabs {
		status, _ := tab.Status()
		counts = append(counts, StatusCount{
			Tab:    tab,
			Status: status,
			Count:  len(FilterByTab(visible, tab)),
		})
	}
	return counts
}
