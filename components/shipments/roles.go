package shipments

import "slices"

// Unassigned is the assignee option that clears a pickup assignment.
const Unassigned = "Unassigned"

// RoleKind classifies a viewer role.
type RoleKind int

const (
	RoleNone RoleKind = iota
	RoleAdmin
	RolePickupPerson
)

// RoleDirectory lists the administrative and pickup-person roles.
type RoleDirectory struct {
	Admins        []string
	PickupPersons []string
}

// DefaultRoles returns the stock role directory.
func DefaultRoles() RoleDirectory {
	return RoleDirectory{
		Admins:        []string{"admin", "deepak"},
		PickupPersons: []string{"anish", "sathish"},
	}
}

// Classify reports what kind of role the viewer holds.
func (d RoleDirectory) Classify(role string) RoleKind {
	if role == "" {
		return RoleNone
	}
	if slices.Contains(d.Admins, role) {
		return RoleAdmin
	}
	if slices.Contains(d.PickupPersons, role) {
		return RolePickupPerson
	}
	return RoleNone
}

// AssigneeOptions lists the values a pickup assignment may take.
func (d RoleDirectory) AssigneeOptions() []string {
	out := make([]string, 0, len(d.PickupPersons)+1)
	out = append(out, Unassigned)
	return append(out, d.PickupPersons...)
}

// ValidAssignee reports whether person is one of the assignee options.
func (d RoleDirectory) ValidAssignee(person string) bool {
	return person == Unassigned || slices.Contains(d.PickupPersons, person)
}

func (d RoleDirectory) normalized() RoleDirectory {
	if len(d.Admins) == 0 && len(d.PickupPersons) == 0 {
		return DefaultRoles()
	}
	return d
}
