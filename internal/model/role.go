package model

// Role is a tier in the reporting hierarchy.
type Role string

const (
	RoleBase     Role = "base"
	RoleTaluka   Role = "taluka"
	RoleDistrict Role = "district"
	RoleState    Role = "state"
)

// Valid reports whether r is one of the four known tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleBase, RoleTaluka, RoleDistrict, RoleState:
		return true
	}
	return false
}

// Parent returns the role a user of this tier must report to.
// State has no parent.
func (r Role) Parent() (Role, bool) {
	switch r {
	case RoleBase:
		return RoleTaluka, true
	case RoleTaluka:
		return RoleDistrict, true
	case RoleDistrict:
		return RoleState, true
	}
	return "", false
}
