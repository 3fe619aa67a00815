package user

import (
	"fmt"
	"slices"
	"strings"
)

// Org is one of the organizations a user can belong to.
type Org string

const (
	OrgA Org = "ORG_A"
	OrgB Org = "ORG_B"
	OrgC Org = "ORG_C"
)

var orgValues = []Org{OrgA, OrgB, OrgC}

// Role is one of the permission sets a user can hold.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

var roleValues = []Role{RoleAdmin, RoleManager, RoleUser}

// Orgs returns every organization in display order.
func Orgs() []Org {
	return slices.Clone(orgValues)
}

// Roles returns every role in display order.
func Roles() []Role {
	return slices.Clone(roleValues)
}

// Valid reports whether o is a known organization.
func (o Org) Valid() bool {
	return slices.Contains(orgValues, o)
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return slices.Contains(roleValues, r)
}

// ParseOrg converts raw input into an Org. Matching is case-insensitive.
func ParseOrg(s string) (Org, error) {
	o := Org(strings.ToUpper(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("unknown organization %q", s)
	}
	return o, nil
}

// ParseRole converts raw input into a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
