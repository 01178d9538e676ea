package shipments

// Column is one labelled cell of a board row.
type Column struct {
	Label string
	Value func(ShipmentRecord) string
}

// TabLayout describes how a tab renders its rows.
type TabLayout struct {
	Columns    []Column
	Assignable bool
	ShowMap    bool
}

var tabLayouts = map[Tab]TabLayout{
	TabPickup: {
		Columns: []Column{
			{Label: "Consignee", Value: func(r ShipmentRecord) string { return r.ConsigneeName }},
			{Label: "Destination", Value: func(r ShipmentRecord) string { return r.Destination }},
		},
		Assignable: true,
		ShowMap:    true,
	},
	TabConnections: {
		Columns: []Column{
			{Label: "Consignee", Value: func(r ShipmentRecord) string { return r.Name }},
			{Label: "Destination", Value: func(r ShipmentRecord) string { return r.Destination }},
			{Label: "Post Pickup Packages", Value: func(r ShipmentRecord) string { return r.PostNumberOfPackages }},
			{Label: "Post Pickup Weight", Value: func(r ShipmentRecord) string { return r.PostPickupWeight }},
			{Label: "Phone number", Value: func(r ShipmentRecord) string { return r.PhoneNumber }},
		},
	},
	TabPaymentDone: {
		Columns: []Column{
			{Label: "Actual Weight", Value: func(r ShipmentRecord) string { return r.ActualWeight }},
			{Label: "Vendor Name", Value: func(r ShipmentRecord) string { return r.VendorName }},
			{Label: "Consignee", Value: func(r ShipmentRecord) string { return r.Name }},
			{Label: "Destination", Value: func(r ShipmentRecord) string { return r.Destination }},
		},
		ShowMap: true,
	},
}

// LayoutFor returns the row layout of tab. Unknown tabs get no columns.
func LayoutFor(tab Tab) TabLayout {
	return tabLayouts[tab]
}
