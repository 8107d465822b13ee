package domain

// Principal is the verified caller identity passed into every gated
// operation. The zero value is the anonymous caller.
type Principal struct {
	UserID   int64
	Username string
	Role     Role
}

// Anonymous is the principal used when no token was presented.
var Anonymous = Principal{}

// Authenticated reports whether p carries a verified identity.
func (p Principal) Authenticated() bool {
	return p.UserID > 0 && p.Role.Valid()
}

// PrincipalOf builds the principal for a freshly authenticated user.
func PrincipalOf(u *User) Principal {
	return Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}
