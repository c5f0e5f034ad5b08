// Package session owns the navigation gate: one authentication-state
// subscription held for the lifetime of the application that redirects
// between the unauthenticated and authenticated parts of the UI.
package session

import "github.com/mlevkov/duochat/auth"

// Route identifies a screen.
type Route string

const (
	RouteIndex      Route = "index"
	RouteLogin      Route = "login"
	RouteChats      Route = "chats"
	RouteCreateChat Route = "create-chat"
	RouteChat       Route = "chat"
	RouteProfile    Route = "profile"
)

// Authenticated reports whether r lies within the signed-in section of the
// UI. The index route belongs to neither section; it resolves itself.
func Authenticated(r Route) bool {
	return r != RouteLogin && r != RouteIndex
}

// Navigator is the navigation surface the gate drives.
type Navigator interface {
	Current() Route
	Replace(Route)
}

// AuthSource is the slice of the auth client the gate consumes.
type AuthSource interface {
	OnStateChange(fn auth.StateFunc) (cancel func())
}

// Gate holds the application-lifetime auth subscription. Detach is the single
// cancellation point.
type Gate struct {
	cancel func()
}

// Attach subscribes to authentication-state changes and applies the redirect
// rules on every event:
//
//   - signed out + inside the authenticated section → login
//   - signed in + on the login screen → chat list
//   - index route → untouched, to avoid redirect races during startup
func Attach(src AuthSource, nav Navigator) *Gate {
	g := &Gate{}
	g.cancel = src.OnStateChange(func(s *auth.Session) {
		redirect(nav, s != nil)
	})
	return g
}

// Detach releases the subscription.
func (g *Gate) Detach() {
	g.cancel()
}

func redirect(nav Navigator, signedIn bool) {
	current := nav.Current()
	if current == RouteIndex {
		return
	}
	switch {
	case !signedIn && Authenticated(current):
		nav.Replace(RouteLogin)
	case signedIn && current == RouteLogin:
		nav.Replace(RouteChats)
	}
}
