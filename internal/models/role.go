package models

import "fmt"

// Role is the closed set of account roles.
type Role string

const (
	RoleWholesaler Role = "WHOLESALER"
	RoleRetailer   Role = "RETAILER"
)

// ParseRole converts a raw claim or form value into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleWholesaler:
		return RoleWholesaler, nil
	case RoleRetailer:
		return RoleRetailer, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// CanManageInventory reports whether the role may create, edit and delete products.
func (r Role) CanManageInventory() bool {
	switch r {
	case RoleWholesaler:
		return true
	case RoleRetailer:
		return false
	default:
		return false
	}
}

// CanBrowseWholesalers reports whether the role may list a wholesaler's catalog.
func (r Role) CanBrowseWholesalers() bool {
	switch r {
	case RoleRetailer:
		return true
	case RoleWholesaler:
		return false
	default:
		return false
	}
}
