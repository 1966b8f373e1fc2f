package firemock

// User is the signed-in identity an auth emulation reports.
type User struct {
	UID       string
	Email     string
	Anonymous bool
}

// AuthProvider is the hook an auth emulation plugs into a Database. The
// database only ever asks who is signed in.
type AuthProvider interface {
	CurrentUser() (User, bool)
}

// StaticAuth reports a fixed user; the zero value reports nobody.
type StaticAuth struct {
	User     User
	SignedIn bool
}

// SignedInAs returns a StaticAuth for u.
func SignedInAs(u User) StaticAuth {
	return StaticAuth{User: u, SignedIn: true}
}

// CurrentUser implements AuthProvider.
func (a StaticAuth) CurrentUser() (User, bool) {
	return a.User, a.SignedIn
}
