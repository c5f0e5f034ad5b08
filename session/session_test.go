package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/mlevkov/duochat/auth"
)

type fakeNav struct {
	route    Route
	replaced []Route
}

func (n *fakeNav) Current() Route { return n.route }
func (n *fakeNav) Replace(r Route) {
	n.route = r
	n.replaced = append(n.replaced, r)
}

// fakeAuth lets tests drive state events by hand.
type fakeAuth struct {
	fn        auth.StateFunc
	current   *auth.Session
	cancelled bool
}

func (a *fakeAuth) OnStateChange(fn auth.StateFunc) func() {
	a.fn = fn
	fn(a.current)
	return func() { a.cancelled = true }
}

func (a *fakeAuth) emit(s *auth.Session) {
	a.current = s
	a.fn(s)
}

func TestGateRedirects(t *testing.T) {
	signedIn := &auth.Session{UID: "uid-a", Email: "a@x.com"}

	tests := []struct {
		name  string
		route Route
		state *auth.Session
		want  Route
	}{
		{name: "signed out on chats goes to login", route: RouteChats, state: nil, want: RouteLogin},
		{name: "signed out on chat goes to login", route: RouteChat, state: nil, want: RouteLogin},
		{name: "signed out on profile goes to login", route: RouteProfile, state: nil, want: RouteLogin},
		{name: "signed out on login stays", route: RouteLogin, state: nil, want: RouteLogin},
		{name: "signed in on login goes to chats", route: RouteLogin, state: signedIn, want: RouteChats},
		{name: "signed in on chats stays", route: RouteChats, state: signedIn, want: RouteChats},
		{name: "index is exempt when signed out", route: RouteIndex, state: nil, want: RouteIndex},
		{name: "index is exempt when signed in", route: RouteIndex, state: signedIn, want: RouteIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := &fakeNav{route: tt.route}
			src := &fakeAuth{current: tt.state}
			gate := Attach(src, nav)
			defer gate.Detach()

			assert.Equal(t, tt.want, nav.Current())
		})
	}
}

func TestGateFollowsStateChanges(t *testing.T) {
	nav := &fakeNav{route: RouteLogin}
	src := &fakeAuth{}
	gate := Attach(src, nav)

	src.emit(&auth.Session{UID: "uid-a"})
	assert.Equal(t, RouteChats, nav.Current())

	// sign-out from deep inside the authenticated section
	nav.route = RouteChat
	src.emit(nil)
	assert.Equal(t, RouteLogin, nav.Current())

	gate.Detach()
	assert.True(t, src.cancelled, "detach must release the subscription")
}
