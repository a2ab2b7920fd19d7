package model

// Credentials is what the backend issued on a successful login. Access and
// Refresh are opaque to this module.
type Credentials struct {
	Access  string
	Refresh string
	Role    string
	User    *User
}

// Session is the authentication state of the running shell. A zero Session
// is logged out.
type Session struct {
	Credentials *Credentials
}

func (s Session) Authenticated() bool {
	return s.Credentials != nil
}

// Role reports the session's role claim. An empty role is treated as no
// claim at all.
func (s Session) Role() (string, bool) {
	if s.Credentials == nil || s.Credentials.Role == "" {
		return "", false
	}
	return s.Credentials.Role, true
}
