package shipments

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []ShipmentRecord {
	return []ShipmentRecord{
		record("A1", StatusPickup, "anish"),
		record("A2", StatusPickup, "sathish"),
		record("A3", StatusOutgoingManifest, "anish"),
		record("A4", StatusPaymentDone, ""),
		record("A5", StatusPending, "anish"),
	}
}

func TestFilterByRole(t *testing.T) {
	roles := DefaultRoles()
	records := sampleRecords()

	assert.Len(t, FilterByRole(records, "admin", roles), len(records))
	assert.Len(t, FilterByRole(records, "deepak", roles), len(records))

	anish := FilterByRole(records, "anish", roles)
	require.Len(t, anish, 3)
	for _, r := range anish {
		assert.Equal(t, "anish", r.PickUpPersonName)
	}

	assert.Empty(t, FilterByRole(records, "guest", roles))
	assert.Empty(t, FilterByRole(records, "", roles))
}

func TestFilterByRoleDoesNotAliasInput(t *testing.T) {
	records := sampleRecords()
	out := FilterByRole(records, "admin", DefaultRoles())
	out[0].AWBNumber = "changed"
	assert.Equal(t, "A1", records[0].AWBNumber)
}

func TestFilterByTab(t *testing.T) {
	records := sampleRecords()

	pickup := FilterByTab(records, TabPickup)
	require.Len(t, pickup, 2)
	assert.Equal(t, "A1", pickup[0].AWBNumber)
	assert.Equal(t, "A2", pickup[1].AWBNumber)

	connections := FilterByTab(records, TabConnections)
	require.Len(t, connections, 1)
	assert.Equal(t, "A3", connections[0].AWBNumber)

	assert.Empty(t, FilterByTab(records, Tab("unknown")))
}

func manyRecords(n int) []ShipmentRecord {
	out := make([]ShipmentRecord, n)
	for i := range out {
		out[i] = record(fmt.Sprintf("AWB%02d", i+1), StatusPickup, "")
	}
	return out
}

func TestPaginateWindows(t *testing.T) {
	records := manyRecords(25)

	page := Paginate(records, 3, 10)
	require.Len(t, page, 5)
	assert.Equal(t, "AWB21", page[0].AWBNumber)
	assert.Equal(t, "AWB25", page[4].AWBNumber)

	assert.Len(t, Paginate(records, 1, 10), 10)
	assert.Empty(t, Paginate(records, 0, 10))
	assert.Empty(t, Paginate(records, -1, 10))
	assert.Empty(t, Paginate(records, 4, 10))
	assert.Len(t, Paginate(records, 1, 0), DefaultPageSize)
}

func TestPaginateHugePageIsEmpty(t *testing.T) {
	records := manyRecords(25)
	assert.Empty(t, Paginate(records, math.MaxInt, 10))
	assert.Empty(t, Paginate(records, math.MaxInt/10+2, 10))
	assert.Empty(t, Paginate(nil, math.MaxInt, 10))

	page := BuildPage(records, "admin", DefaultRoles(), TabPickup, math.MaxInt, 10)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalPages)
}

func TestPaginatePagesCoverFilteredList(t *testing.T) {
	records := manyRecords(23)
	var joined []ShipmentRecord
	for p := 1; p <= 3; p++ {
		items := Paginate(records, p, 10)
		assert.LessOrEqual(t, len(items), 10)
		joined = append(joined, items...)
	}
	assert.Equal(t, records, joined)
}

func TestBuildPage(t *testing.T) {
	records := append(manyRecords(12), record("X1", StatusPaymentDone, ""))
	page := BuildPage(records, "admin", DefaultRoles(), TabPickup, 2, 10)

	assert.Equal(t, TabPickup, page.Tab)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "AWB11", page.Items[0].AWBNumber)

	empty := BuildPage(records, "guest", DefaultRoles(), TabPickup, 1, 10)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.TotalPages)
	assert.Empty(t, empty.Items)
}

func TestPageKeyAt(t *testing.T) {
	page := Page{Items: []ShipmentRecord{record("A1", StatusPickup, ""), record("", StatusPickup, "")}}

	awb, ok := page.KeyAt(0)
	assert.True(t, ok)
	assert.Equal(t, "A1", awb)

	_, ok = page.KeyAt(1)
	assert.False(t, ok)
	_, ok = page.KeyAt(2)
	assert.False(t, ok)
	_, ok = page.KeyAt(-1)
	assert.False(t, ok)
}

func TestCountByTab(t *testing.T) {
	counts := CountByTab(sampleRecords(), "anish", DefaultRoles())
	require.Len(t, counts, 3)
	assert.Equal(t, StatusCount{Tab: TabPickup, Status: StatusPickup, Count: 1}, counts[0])
	assert.Equal(t, StatusCount{Tab: TabConnections, Status: StatusOutgoingManifest, Count: 1}, counts[1])
	assert.Equal(t, StatusCount{Tab: TabPaymentDone, Status: StatusPaymentDone, Count: 0}, counts[2])
}

func TestParseTab(t *testing.T) {
	cases := map[string]Tab{
		"pickup":        TabPickup,
		" connections ": TabConnections,
		"paymentDone":   TabPaymentDone,
		"payment-done":  TabPaymentDone,
		"payment_done":  TabPaymentDone,
		"":              "",
	}
	for input, want := range cases {
		assert.Equal(t, want, ParseTab(input), "input %q", input)
	}
}

func TestTabLabelsAndStatus(t *testing.T) {
	assert.Equal(t, "Payment Done", TabPaymentDone.Label())
	status, ok := TabConnections.Status()
	assert.True(t, ok)
	assert.Equal(t, StatusOutgoingManifest, status)
	_, ok = Tab("other").Status()
	assert.False(t, ok)
	assert.Equal(t, "other", Tab("other").Label())
}

func TestStatusTone(t *testing.T) {
	assert.Equal(t, "danger", StatusPending.Tone())
	assert.Equal(t, "success", StatusCompleted.Tone())
	assert.Equal(t, "neutral", StatusPickup.Tone())
	assert.Equal(t, "neutral", Status("ON HOLD").Tone())
}

func TestRoleDirectory(t *testing.T) {
	roles := DefaultRoles()
	assert.Equal(t, RoleAdmin, roles.Classify("admin"))
	assert.Equal(t, RolePickupPerson, roles.Classify("sathish"))
	assert.Equal(t, RoleNone, roles.Classify("Admin"))
	assert.Equal(t, []string{Unassigned, "anish", "sathish"}, roles.AssigneeOptions())
	assert.True(t, roles.ValidAssignee(Unassigned))
	assert.False(t, roles.ValidAssignee("admin"))

	assert.Equal(t, roles, RoleDirectory{}.normalized())
}
