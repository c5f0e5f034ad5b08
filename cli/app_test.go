package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/duochat/auth"
	"github.com/mlevkov/duochat/session"
	"github.com/mlevkov/duochat/store"
)

// newScriptedApp wires an App to a scripted stdin and a captured stdout.
func newScriptedApp(a Authenticator, st store.Store, script string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	app := &App{
		auth:   a,
		store:  st,
		nav:    &router{route: session.RouteIndex},
		reader: bufio.NewReader(strings.NewReader(script)),
		out:    out,
	}
	return app, out
}

// stubPasswords replaces the password reader with a queue of canned entries.
func stubPasswords(t *testing.T, passwords ...string) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func() (string, error) {
		if len(passwords) == 0 {
			return "", nil
		}
		pw := passwords[0]
		passwords = passwords[1:]
		return pw, nil
	}
}

func TestRunSignInThenQuit(t *testing.T) {
	stubPasswords(t, "secret1")
	app, out := newScriptedApp(auth.NewLocal(), store.NewMemory(), strings.Join([]string{
		"signin",
		"alice@example.com",
		"exit",
	}, "\n")+"\n")

	app.Run(context.Background())

	assert.Contains(t, out.String(), "No chats yet")
	assert.Contains(t, out.String(), "Bye!")
	assert.NotContains(t, out.String(), "! ")
}

func TestRunRejectsShortPassword(t *testing.T) {
	stubPasswords(t, "123")
	app, out := newScriptedApp(auth.NewLocal(), store.NewMemory(), strings.Join([]string{
		"signin",
		"alice@example.com",
		"exit",
	}, "\n")+"\n")

	app.Run(context.Background())

	assert.Contains(t, out.String(), "! Password must be at least 6 characters.")
	assert.NotContains(t, out.String(), "No chats yet")
}

func TestRunSkipsLoginWhenAlreadySignedIn(t *testing.T) {
	authn := auth.NewLocal()
	_, err := authn.SignIn(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	app, out := newScriptedApp(authn, store.NewMemory(), "exit\n")
	app.Run(context.Background())

	assert.NotContains(t, out.String(), "Welcome to duochat")
	assert.Contains(t, out.String(), "No chats yet")
}

// seedUser signs the email in once to learn its principal, stores the
// profile, and signs back out.
func seedUser(t *testing.T, authn *auth.Local, st *store.Memory, email, displayName string) string {
	t.Helper()
	s, err := authn.SignIn(context.Background(), email, "secret1")
	require.NoError(t, err)
	require.NoError(t, st.SaveProfile(context.Background(), s.UID, store.Profile{
		Email:       email,
		DisplayName: displayName,
	}))
	authn.SignOut()
	return s.UID
}

func TestRunCreateChatAndMessage(t *testing.T) {
	authn := auth.NewLocal()
	st := store.NewMemory()
	aliceUID := seedUser(t, authn, st, "alice@example.com", "Alice")
	bobUID := seedUser(t, authn, st, "bob@example.com", "Bob")

	stubPasswords(t, "secret1")
	app, out := newScriptedApp(authn, st, strings.Join([]string{
		"signin",
		"alice@example.com",
		"new",
		"Bob",
		"hi",
		"/back",
		"exit",
	}, "\n")+"\n")

	app.Run(context.Background())

	assert.Contains(t, out.String(), "--- Bob ---")
	assert.Contains(t, out.String(), "me: hi")

	conversations, err := st.ConversationsWith(context.Background(), bobUID)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.ElementsMatch(t, []string{aliceUID, bobUID}, conversations[0].Participants)

	// the counterpart sees the message from their own session
	stubPasswords(t, "secret1")
	bobApp, bobOut := newScriptedApp(authn, st, strings.Join([]string{
		"signin",
		"bob@example.com",
		"open 1",
		"/back",
		"exit",
	}, "\n")+"\n")

	bobApp.Run(context.Background())

	assert.Contains(t, bobOut.String(), "Chat with Alice")
	assert.Contains(t, bobOut.String(), "Alice: hi")
}

func TestRunCreateChatGuards(t *testing.T) {
	authn := auth.NewLocal()
	st := store.NewMemory()
	seedUser(t, authn, st, "alice@example.com", "Alice")

	stubPasswords(t, "secret1")
	app, out := newScriptedApp(authn, st, strings.Join([]string{
		"signin",
		"alice@example.com",
		"new",
		"Nobody",
		"Alice",
		"/back",
		"exit",
	}, "\n")+"\n")

	app.Run(context.Background())

	assert.Contains(t, out.String(), "! No user found with that display name")
	assert.Contains(t, out.String(), "! You cannot create a chat with yourself")
}

func TestRunRejectsOverlongMessage(t *testing.T) {
	authn := auth.NewLocal()
	st := store.NewMemory()
	aliceUID := seedUser(t, authn, st, "alice@example.com", "Alice")
	bobUID := seedUser(t, authn, st, "bob@example.com", "Bob")
	chatID, err := st.CreateConversation(context.Background(), aliceUID, bobUID)
	require.NoError(t, err)

	stubPasswords(t, "secret1")
	app, out := newScriptedApp(authn, st, strings.Join([]string{
		"signin",
		"alice@example.com",
		"open 1",
		strings.Repeat("a", 501),
		"/back",
		"exit",
	}, "\n")+"\n")

	app.Run(context.Background())

	assert.Contains(t, out.String(), "Message is too long (max 500 characters).")

	messages := []store.Message{}
	cancel, err := st.WatchMessages(context.Background(), chatID, func(ms []store.Message) {
		messages = ms
	})
	require.NoError(t, err)
	cancel()
	assert.Empty(t, messages)
}

func TestRunProfileRename(t *testing.T) {
	authn := auth.NewLocal()
	st := store.NewMemory()
	uid := seedUser(t, authn, st, "alice@example.com", "Alice")

	stubPasswords(t, "secret1")
	app, out := newScriptedApp(authn, st, strings.Join([]string{
		"signin",
		"alice@example.com",
		"profile",
		"name Alice Anderson",
		"back",
		"exit",
	}, "\n")+"\n")

	app.Run(context.Background())

	assert.Contains(t, out.String(), "Display name: Alice")
	assert.Contains(t, out.String(), "Display name updated successfully!")

	p, err := st.Profile(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, "Alice Anderson", p.DisplayName)
}

func TestRunSignOutReturnsToLogin(t *testing.T) {
	authn := auth.NewLocal()
	st := store.NewMemory()
	seedUser(t, authn, st, "alice@example.com", "Alice")

	stubPasswords(t, "secret1")
	app, out := newScriptedApp(authn, st, strings.Join([]string{
		"signin",
		"alice@example.com",
		"profile",
		"signout",
		"y",
		"exit",
	}, "\n")+"\n")

	app.Run(context.Background())

	assert.Contains(t, out.String(), "Welcome to duochat")
	_, signedIn := authn.Current()
	assert.False(t, signedIn)
}
