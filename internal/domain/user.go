package domain

// User is the authenticated identity returned by the session bootstrap call.
type User struct {
	ID       string
	Username string
	Name     string
	Email    string
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	return CoalesceStr(u.Name, u.Username)
}

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
