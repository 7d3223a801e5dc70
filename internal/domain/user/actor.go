package user

// Actor is the authenticated caller of a service operation, taken from the
// access token claims.
type Actor struct {
	UserID         string
	EmployeeID     string
	OrganizationID string
	Role           Role
}

func (a Actor) IsManager() bool {
	return a.Role == RoleManager || a.Role == RoleAdmin
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// RequireEmployee fails for callers whose token carries no employee profile.
func (a Actor) RequireEmployee() error {
	if a.EmployeeID == "" {
		return ErrEmployeeProfileRequired
	}
	return nil
}

// SystemActor is used by background jobs and the CLI.
func SystemActor(organizationID string) Actor {
	return Actor{UserID: "system", OrganizationID: organizationID, Role: RoleAdmin}
}
