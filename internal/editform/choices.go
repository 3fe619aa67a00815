package editform

import "user-admin-console/internal/domain/user"

// Choice is one radio option.
type Choice struct {
	Value   string
	Label   string
	Checked bool
}

// OrgChoices lists every organization in order, marking the selected one.
func OrgChoices(selected user.Org) []Choice {
	orgs := user.Orgs()
	choices := make([]Choice, 0, len(orgs))
	for _, o := range orgs {
		choices = append(choices, Choice{Value: string(o), Label: string(o), Checked: o == selected})
	}
	return choices
}

// RoleChoices lists every role in order, marking the selected one.
func RoleChoices(selected user.Role) []Choice {
	roles := user.Roles()
	choices := make([]Choice, 0, len(roles))
	for _, r := range roles {
		choices = append(choices, Choice{Value: string(r), Label: string(r), Checked: r == selected})
	}
	return choices
}
