package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Local is an in-process authenticator for the memory backend: any email and
// password passing validation signs in, and the account identifier is derived
// from the email so repeated logins map to the same principal. State
// subscription semantics match Client.
type Local struct {
	mu      sync.Mutex
	session *Session
	subs    map[int]StateFunc
	nextSub int
}

func NewLocal() *Local {
	return &Local{subs: map[int]StateFunc{}}
}

func (l *Local) SignIn(_ context.Context, email, password string) (*Session, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	session := &Session{
		UID:       localUID(email),
		Email:     email,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	l.setSession(session)
	return session, nil
}

func (l *Local) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return l.SignIn(ctx, email, password)
}

func (l *Local) SignOut() {
	l.setSession(nil)
}

func (l *Local) Current() (*Session, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session, l.session != nil
}

func (l *Local) OnStateChange(fn StateFunc) (cancel func()) {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	session := l.session
	l.mu.Unlock()

	fn(session)

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

func (l *Local) setSession(s *Session) {
	l.mu.Lock()
	l.session = s
	subs := make([]StateFunc, 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

func localUID(email string) string {
	sum := sha256.Sum256([]byte(email))
	return "local-" + hex.EncodeToString(sum[:8])
}
