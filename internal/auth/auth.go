// Package auth verifies API credentials and issues the tokens that carry the
// verified identity.
package auth

import "crypto/subtle"

// Credential is one configured API account.
type Credential struct {
	Username string
	Password string
	UserID   string
}

// Principal is a verified caller.
type Principal struct {
	UserID string
}

// Adapter checks credentials against a fixed list.
type Adapter struct {
	creds []Credential
}

// NewAdapter creates an adapter over creds. Entries with an empty username or
// password are dropped.
func NewAdapter(creds ...Credential) *Adapter {
	kept := make([]Credential, 0, len(creds))
	for _, c := range creds {
		if c.Username != "" && c.Password != "" {
			kept = append(kept, c)
		}
	}
	return &Adapter{creds: kept}
}

// Verify returns the principal whose username and password both match.
// An empty username or password never matches.
func (a *Adapter) Verify(username, password string) (Principal, bool) {
	if username == "" || password == "" {
		return Principal{}, false
	}
	for _, c := range a.creds {
		if equal(c.Username, username) && equal(c.Password, password) {
			return Principal{UserID: c.UserID}, true
		}
	}
	return Principal{}, false
}

// Identity projects the token identity into the request identity.
func (a *Adapter) Identity(c Claims) map[string]string {
	return map[string]string{"user_id": c.Identity}
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
