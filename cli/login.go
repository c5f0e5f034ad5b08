package cli

import (
	"context"
	"errors"
	"io"

	"github.com/mlevkov/duochat/auth"
	"github.com/mlevkov/duochat/session"
)

// loginScreen handles sign-in and sign-up. It returns true when the user
// quits; navigation away happens through the session gate reacting to a
// successful sign-in.
func (a *App) loginScreen(ctx context.Context) bool {
	a.printf("Welcome to duochat. Commands: signin, signup, exit\n")

	for a.nav.Current() == session.RouteLogin {
		cmd, err := a.readLine("login> ")
		if err != nil {
			return true
		}

		switch cmd {
		case "":
			continue
		case "signin":
			a.authenticate(ctx, false)
		case "signup":
			a.authenticate(ctx, true)
		case "exit", "quit":
			return true
		default:
			a.printf("Unknown command: %s\n", cmd)
		}
	}
	return false
}

func (a *App) authenticate(ctx context.Context, signUp bool) {
	email, err := a.readLine("Email: ")
	if err != nil {
		return
	}
	password, err := a.readSecret("Password: ")
	if err != nil && !errors.Is(err, io.EOF) {
		return
	}

	if err := auth.ValidateCredentials(email, password); err != nil {
		a.alert(auth.UserMessage(err))
		return
	}

	if signUp {
		_, err = a.auth.SignUp(ctx, email, password)
	} else {
		_, err = a.auth.SignIn(ctx, email, password)
	}
	if err != nil {
		a.alert(auth.UserMessage(err))
		return
	}
	if signUp {
		a.printf("Account created successfully!\n")
	}
	// the session gate picks up the state change and navigates to chats
}
