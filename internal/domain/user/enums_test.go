package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrgs_DefinedOrder(t *testing.T) {
	assert.Equal(t, []Org{OrgA, OrgB, OrgC}, Orgs())
}

func TestRoles_DefinedOrder(t *testing.T) {
	assert.Equal(t, []Role{RoleAdmin, RoleManager, RoleUser}, Roles())
}

func TestOrgs_ReturnsCopy(t *testing.T) {
	orgs := Orgs()
	orgs[0] = "MUTATED"
	assert.Equal(t, OrgA, Orgs()[0])
}

func TestParseOrg(t *testing.T) {
	o, err := ParseOrg(" org_b ")
	require.NoError(t, err)
	assert.Equal(t, OrgB, o)

	_, err = ParseOrg("ORG_Z")
	assert.Error(t, err)

	_, err = ParseOrg("")
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("ROOT")
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, OrgC.Valid())
	assert.False(t, Org("org_c").Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("").Valid())
}

func TestFullName(t *testing.T) {
	u := User{FirstName: "Ann", LastName: "Bo"}
	assert.Equal(t, "Ann Bo", u.FullName())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(21, 2, 10)
	assert.Equal(t, int64(3), p.TotalPages)

	p = NewPagination(0, 1, 10)
	assert.Equal(t, int64(0), p.TotalPages)
}
