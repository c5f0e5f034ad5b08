package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/mlevkov/duochat/profile"
	"github.com/mlevkov/duochat/session"
)

// profileScreen shows the account record and lets the user rename themselves
// or sign out. Signing out navigates through the session gate.
func (a *App) profileScreen(ctx context.Context) bool {
	uid, email := "", ""
	if s, ok := a.auth.Current(); ok {
		uid, email = s.UID, s.Email
	}

	ctrl := profile.New(a.store)
	if err := ctrl.Load(ctx, uid, email); err != nil {
		a.alert("Failed to load profile data")
	}

	a.renderProfile(ctrl)
	a.printf("Commands: show, name <new name>, signout, back, exit\n")

	for a.nav.Current() == session.RouteProfile {
		cmd, err := a.readLine("profile> ")
		if err != nil {
			return true
		}

		switch {
		case cmd == "":
		case cmd == "show":
			a.renderProfile(ctrl)
		case strings.HasPrefix(cmd, "name "):
			a.rename(ctx, ctrl, uid, email, strings.TrimPrefix(cmd, "name "))
		case cmd == "signout":
			if a.confirm("Sign out?") {
				a.auth.SignOut()
			}
		case cmd == "back":
			a.nav.Replace(session.RouteChats)
		case cmd == "exit" || cmd == "quit":
			return true
		default:
			a.printf("Unknown command: %s\n", cmd)
		}
	}
	return false
}

func (a *App) renderProfile(ctrl *profile.Controller) {
	a.printf("Email:        %s\n", ctrl.Email())
	a.printf("Display name: %s\n", ctrl.DisplayName())
}

func (a *App) rename(ctx context.Context, ctrl *profile.Controller, uid, email, name string) {
	err := ctrl.Save(ctx, uid, email, name)
	switch {
	case errors.Is(err, profile.ErrBlankDisplayName):
		a.alert("Display name cannot be empty")
	case err != nil:
		a.alert("Failed to update display name. Please try again.")
	default:
		a.printf("Display name updated successfully!\n")
	}
}
