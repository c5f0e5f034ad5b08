package cli

import (
	"context"
	"errors"

	"github.com/mlevkov/duochat/auth"
	"github.com/mlevkov/duochat/newchat"
	"github.com/mlevkov/duochat/session"
)

// createChatScreen asks for a display name and opens the resulting
// conversation, reused or freshly created.
func (a *App) createChatScreen(ctx context.Context) bool {
	uid, email := "", ""
	if s, ok := a.auth.Current(); ok {
		uid, email = s.UID, s.Email
	}

	a.printf("Start a new chat. Enter a display name, or /back, /exit\n")

	flow := newchat.New(a.store)
	for a.nav.Current() == session.RouteCreateChat {
		name, err := a.readLine("Display name: ")
		if err != nil {
			return true
		}

		switch name {
		case "":
			continue
		case "/back":
			a.nav.Replace(session.RouteChats)
			continue
		case "/exit", "/quit":
			return true
		}

		result, err := flow.Create(ctx, uid, email, name)
		if err != nil {
			a.alert(createAlert(err))
			continue
		}
		if result.Existing {
			a.printf("You already have a chat with %s.\n", name)
		}
		a.nav.openChat(result.ConversationID)
	}
	return false
}

func createAlert(err error) string {
	switch {
	case errors.Is(err, newchat.ErrBlankName):
		return "Please enter a display name"
	case errors.Is(err, auth.ErrNotSignedIn):
		return "You must be logged in to create a chat"
	case errors.Is(err, newchat.ErrSelfChat):
		return "You cannot create a chat with yourself"
	case errors.Is(err, newchat.ErrNoSuchUser):
		return "No user found with that display name"
	default:
		return "Failed to create chat. Please try again."
	}
}
