package user

// User represents a console user record.
type User struct {
	ID        string // ID is the opaque identifier, immutable once created
	FirstName string // FirstName is the given name of the user
	LastName  string // LastName is the family name of the user
	Email     string // Email is the unique email address of the user
	Enabled   bool   // Enabled reports whether the account may sign in
	Org       Org    // Org is the organization the user belongs to
	Role      Role   // Role is the permission set granted to the user
}

// FullName returns the user's display name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
