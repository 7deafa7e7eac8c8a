package domain

// RoleModerator grants message deletion over any author. It is carried as a
// verified claim on the identity, never inferred from the name.
const RoleModerator = "moderator"

// Identity is the authenticated principal behind a connection, as produced
// by the token verifier. The Name is the participant token used in room
// naming and authorship checks.
type Identity struct {
	Name  string
	Roles []string
}

func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
