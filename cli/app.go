// Package cli is the terminal frontend: a small screen loop that drives the
// view controllers over stdin/stdout and lets the session gate decide which
// section of the UI is reachable.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mlevkov/duochat/auth"
	"github.com/mlevkov/duochat/session"
	"github.com/mlevkov/duochat/store"
)

// Authenticator is the slice of the auth client the UI needs. Both the
// Identity Toolkit client and the local demo authenticator satisfy it.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignUp(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut()
	Current() (*auth.Session, bool)
	OnStateChange(fn auth.StateFunc) (cancel func())
}

// router holds the current screen and the selected conversation. The session
// gate drives Replace on auth-state changes; screens drive it on commands.
type router struct {
	mu     sync.Mutex
	route  session.Route
	chatID string
}

func (r *router) Current() session.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.route
}

func (r *router) Replace(route session.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.route = route
	if route != session.RouteChat {
		r.chatID = ""
	}
}

func (r *router) openChat(chatID string) {
	r.mu.Lock()
	r.chatID = chatID
	r.route = session.RouteChat
	r.mu.Unlock()
}

func (r *router) currentChat() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chatID
}

type App struct {
	auth   Authenticator
	store  store.Store
	nav    *router
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(a Authenticator, st store.Store) *App {
	return &App{
		auth:   a,
		store:  st,
		nav:    &router{route: session.RouteIndex},
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run attaches the session gate and loops over screens until the user quits.
// Each screen method blocks until it navigates away or asks to exit.
func (a *App) Run(ctx context.Context) {
	gate := session.Attach(a.auth, a.nav)
	defer gate.Detach()

	// the index screen resolves the initial route from the auth state
	if _, ok := a.auth.Current(); ok {
		a.nav.Replace(session.RouteChats)
	} else {
		a.nav.Replace(session.RouteLogin)
	}

	for {
		var quit bool
		switch a.nav.Current() {
		case session.RouteLogin:
			quit = a.loginScreen(ctx)
		case session.RouteChats:
			quit = a.chatsScreen(ctx)
		case session.RouteChat:
			quit = a.chatScreen(ctx)
		case session.RouteCreateChat:
			quit = a.createChatScreen(ctx)
		case session.RouteProfile:
			quit = a.profileScreen(ctx)
		default:
			return
		}
		if quit {
			fmt.Fprintln(a.out, "Bye!")
			return
		}
	}
}

// alert renders a blocking error the way the mobile app shows a modal.
func (a *App) alert(msg string) {
	fmt.Fprintf(a.out, "! %s\n", msg)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
