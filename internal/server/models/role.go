package models

import (
	"fmt"
	"slices"

	"github.com/dmitrijs2005/seedclassifier/internal/common"
)

// Role is the value of the users.role enum.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleShiftLead     Role = "shiftLead"
	RoleDataScientist Role = "dataScientist"
)

// Permission is an action a role may perform.
type Permission string

const (
	PermCreateUsers  Permission = "create:users"
	PermReadUsers    Permission = "read:users"
	PermUpdateUsers  Permission = "update:users"
	PermDeleteUsers  Permission = "delete:users"
	PermUploadImages Permission = "upload:images"
	PermReadReports  Permission = "read:reports"
)

var permissions = map[Role][]Permission{
	RoleAdmin: {
		PermCreateUsers,
		PermReadUsers,
		PermUpdateUsers,
		PermDeleteUsers,
		PermUploadImages,
		PermReadReports,
	},
	RoleShiftLead:     {PermUploadImages},
	RoleDataScientist: {PermReadReports},
}

// ParseRole validates s against the known roles.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := permissions[r]; !ok {
		return "", fmt.Errorf("%w: %q", common.ErrorUnknownRole, s)
	}
	return r, nil
}

// Can reports whether the role grants p. Unknown roles grant nothing.
func (r Role) Can(p Permission) bool {
	return slices.Contains(permissions[r], p)
}
