package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mlevkov/duochat/conversation"
	"github.com/mlevkov/duochat/session"
	"github.com/mlevkov/duochat/store"
)

// chatScreen shows one conversation. Plain input lines are message drafts;
// commands start with "/".
func (a *App) chatScreen(ctx context.Context) bool {
	uid := ""
	if s, ok := a.auth.Current(); ok {
		uid = s.UID
	}

	thread := conversation.New(a.store, a.nav.currentChat(), uid, nil)
	if err := thread.Mount(ctx); err != nil {
		a.alert("Failed to load messages. Please try again.")
	}
	defer thread.Unmount()

	if thread.NoChatSelected() {
		a.printf("No chat selected. Select a chat from the chats screen to start messaging.\n")
		a.nav.Replace(session.RouteChats)
		return false
	}

	a.printf("--- %s ---\n", thread.Title())
	a.renderTranscript(thread, uid)
	a.printf("Type a message, or /show, /back, /exit\n")

	// a failed send keeps the draft for /retry
	draft := ""

	for a.nav.Current() == session.RouteChat {
		line, err := a.readLine("> ")
		if err != nil {
			return true
		}

		switch {
		case line == "":
		case line == "/show":
			a.printf("--- %s ---\n", thread.Title())
			a.renderTranscript(thread, uid)
		case line == "/back":
			a.nav.Replace(session.RouteChats)
		case line == "/exit" || line == "/quit":
			return true
		case line == "/retry":
			if draft == "" {
				a.printf("Nothing to retry.\n")
				continue
			}
			draft = a.send(ctx, thread, draft, uid)
		case strings.HasPrefix(line, "/"):
			a.printf("Unknown command: %s\n", line)
		default:
			draft = a.send(ctx, thread, line, uid)
		}
	}
	return false
}

// send submits the draft and returns what is left in the input: empty on
// success, the draft itself on failure so it can be resubmitted.
func (a *App) send(ctx context.Context, thread *conversation.Controller, draft, uid string) string {
	switch err := conversation.ValidateDraft(draft); {
	case errors.Is(err, conversation.ErrBlankMessage):
		return ""
	case errors.Is(err, conversation.ErrMessageTooLong):
		a.alert(fmt.Sprintf("Message is too long (max %d characters).", conversation.MaxMessageLen))
		return ""
	}

	if err := thread.Send(ctx, draft); err != nil {
		switch {
		case errors.Is(err, conversation.ErrNoCounterpart):
			a.alert("Sending is unavailable for this chat.")
			return ""
		case errors.Is(err, conversation.ErrSendInFlight):
			// dropped, not queued
			return draft
		default:
			a.alert("Failed to send message. Type /retry to try again.")
			return draft
		}
	}
	a.renderTranscript(thread, uid)
	return ""
}

func (a *App) renderTranscript(thread *conversation.Controller, uid string) {
	if thread.Loading() {
		a.printf("Loading...\n")
		return
	}
	messages := thread.Transcript()
	if len(messages) == 0 {
		a.printf("No messages yet. Start a conversation!\n")
		return
	}
	for _, m := range messages {
		a.printf("%s %s: %s\n", m.Timestamp.Format("15:04"), a.senderLabel(m, uid, thread.Title()), m.Text)
	}
}

func (a *App) senderLabel(m store.Message, uid, title string) string {
	if m.From == uid {
		return "me"
	}
	return title
}
