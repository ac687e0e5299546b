package user

import "strings"

// Principal is the authenticated caller resolved by the account provider.
type Principal struct {
	UserID   string
	Username string
	Email    string
}

// Identity is the acting user passed into every write operation.
// The zero value is the absent identity.
type Identity struct {
	name string
}

func Anonymous() Identity {
	return Identity{}
}

func Known(name string) Identity {
	return Identity{name: strings.TrimSpace(name)}
}

// IdentityOf prefers the username and falls back to the subject id.
func IdentityOf(p Principal) Identity {
	if name := strings.TrimSpace(p.Username); name != "" {
		return Known(name)
	}
	return Known(p.UserID)
}

func (i Identity) Name() (string, bool) {
	if i.name == "" {
		return "", false
	}
	return i.name, true
}

func (i Identity) IsAbsent() bool {
	return i.name == ""
}
