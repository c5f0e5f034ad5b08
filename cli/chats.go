package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/mlevkov/duochat/chatlist"
	"github.com/mlevkov/duochat/session"
)

// chatsScreen shows the live conversation list. Rows are addressed by their
// printed number.
func (a *App) chatsScreen(ctx context.Context) bool {
	uid := ""
	if s, ok := a.auth.Current(); ok {
		uid = s.UID
	}

	list := chatlist.New(a.store, uid, nil)
	if err := list.Mount(ctx); err != nil {
		a.alert("Failed to load chats. Please try again.")
	}
	defer list.Unmount()

	a.renderChats(list)
	a.printf("Commands: list, open <n>, new, profile, exit\n")

	for a.nav.Current() == session.RouteChats {
		cmd, err := a.readLine("chats> ")
		if err != nil {
			return true
		}

		switch {
		case cmd == "":
		case cmd == "list":
			a.renderChats(list)
		case strings.HasPrefix(cmd, "open "):
			a.openChat(list, strings.TrimPrefix(cmd, "open "))
		case cmd == "new":
			a.nav.Replace(session.RouteCreateChat)
		case cmd == "profile":
			a.nav.Replace(session.RouteProfile)
		case cmd == "exit" || cmd == "quit":
			return true
		default:
			a.printf("Unknown command: %s\n", cmd)
		}
	}
	return false
}

func (a *App) renderChats(list *chatlist.Controller) {
	if list.Loading() {
		a.printf("Loading...\n")
		return
	}
	rows := list.Rows()
	if len(rows) == 0 {
		a.printf("No chats yet. Start a new conversation to see it here.\n")
		return
	}
	for i, row := range rows {
		a.printf("%3d. Chat with %s\n", i+1, row.Title)
	}
}

func (a *App) openChat(list *chatlist.Controller, arg string) {
	n, err := strconv.Atoi(arg)
	rows := list.Rows()
	if err != nil || n < 1 || n > len(rows) {
		a.printf("No such chat: %s\n", arg)
		return
	}
	a.nav.openChat(rows[n-1].ConversationID)
}
