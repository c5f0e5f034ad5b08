// Package auth signs users in and out against the Firebase Identity Toolkit
// REST API and broadcasts authentication-state changes to subscribers. The
// Admin SDK cannot perform email/password sign-in, so the client speaks to
// the same endpoints the mobile SDKs use.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mlevkov/duochat/log"
)

const (
	identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	secureTokenURL     = "https://securetoken.googleapis.com/v1"

	contentTypeHeader = "Content-Type"
	jsonContentType   = "application/json"
)

// Session is the signed-in principal. A nil *Session means "none".
type Session struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// StateFunc receives every authentication-state change. A nil session means
// the user is signed out.
type StateFunc func(s *Session)

// Refresh scheduling. The margin keeps the token valid through in-flight
// requests; the floor stops a mis-set clock from producing a tight loop.
const (
	refreshMargin = 5 * time.Minute
	refreshFloor  = 10 * time.Second
	idleRecheck   = time.Minute
)

// Client is safe for use from multiple goroutines. One instance is built in
// main and shared by every screen.
type Client struct {
	apiKey     string
	httpClient *http.Client

	// endpoint bases, overridable in tests
	identityURL string
	tokenURL    string

	// refresh timing, overridable in tests
	refreshMargin time.Duration
	refreshFloor  time.Duration
	idleRecheck   time.Duration

	mu      sync.Mutex
	session *Session
	subs    map[int]StateFunc
	nextSub int
}

func New(apiKey string) *Client {
	return &Client{
		apiKey:        apiKey,
		httpClient:    http.DefaultClient,
		identityURL:   identityToolkitURL,
		tokenURL:      secureTokenURL,
		refreshMargin: refreshMargin,
		refreshFloor:  refreshFloor,
		idleRecheck:   idleRecheck,
		subs:          map[int]StateFunc{},
	}
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type credentialsResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// SignIn authenticates with email and password. On success the session is
// stored and broadcast to state subscribers.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.exchangeCredentials(ctx, "accounts:signInWithPassword", email, password)
}

// SignUp creates a new account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.exchangeCredentials(ctx, "accounts:signUp", email, password)
}

func (c *Client) exchangeCredentials(ctx context.Context, endpoint, email, password string) (*Session, error) {
	body, err := json.Marshal(credentialsRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, err
	}

	var resp credentialsResponse
	if err := c.post(ctx, c.identityURL+"/"+endpoint, jsonContentType, body, &resp); err != nil {
		return nil, err
	}

	session := &Session{
		UID:          resp.LocalID,
		Email:        resp.Email,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    tokenExpiry(resp.IDToken, resp.ExpiresIn),
	}
	c.setSession(session)
	return session, nil
}

type refreshResponse struct {
	UserID       string `json:"user_id"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

// Refresh exchanges the stored refresh token for a fresh ID token. The
// session identity is unchanged, so no state event is broadcast.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return ErrNotSignedIn
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {session.RefreshToken},
	}

	var resp refreshResponse
	err := c.post(ctx, c.tokenURL+"/token", "application/x-www-form-urlencoded", []byte(form.Encode()), &resp)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil { // signed out while the refresh was in flight
		return ErrNotSignedIn
	}
	c.session.IDToken = resp.IDToken
	c.session.RefreshToken = resp.RefreshToken
	c.session.ExpiresAt = tokenExpiry(resp.IDToken, resp.ExpiresIn)
	return nil
}

// KeepFresh refreshes the ID token shortly before it expires, for as long as
// ctx lives. Run it in its own goroutine; cancelling ctx is the only way to
// stop it. While signed out it idles and re-checks periodically; a failed
// refresh is logged and retried on the next wake-up.
func (c *Client) KeepFresh(ctx context.Context) {
	logger := log.LoggerFromContext(ctx)
	for {
		timer := time.NewTimer(c.refreshDelay())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		err := c.Refresh(ctx)
		switch {
		case err == nil, errors.Is(err, ErrNotSignedIn):
		case ctx.Err() != nil:
			return
		default:
			logger.Error("refreshing token", slog.String("errorMsg", err.Error()))
		}
	}
}

// refreshDelay is the time until the next refresh attempt: the configured
// margin before the session expires, bounded below by the floor, or the idle
// interval when there is no session (or no known expiry) to track.
func (c *Client) refreshDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || c.session.ExpiresAt.IsZero() {
		return c.idleRecheck
	}
	delay := time.Until(c.session.ExpiresAt) - c.refreshMargin
	if delay < c.refreshFloor {
		delay = c.refreshFloor
	}
	return delay
}

// SignOut drops the session and broadcasts "none" to subscribers. The
// backend holds no server-side session, so this is purely local.
func (c *Client) SignOut() {
	c.setSession(nil)
}

// Current returns the signed-in session, or false when there is none.
func (c *Client) Current() (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, c.session != nil
}

// OnStateChange registers fn for authentication-state events and invokes it
// immediately with the current state. The returned cancel releases the
// subscription; it is the only teardown point.
func (c *Client) OnStateChange(fn StateFunc) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	session := c.session
	c.mu.Unlock()

	fn(session)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Client) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	subs := make([]StateFunc, 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		endpoint+"?key="+url.QueryEscape(c.apiKey),
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	req.Header.Set(contentTypeHeader, contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := parseAPIError(data)
		log.LoggerFromContext(ctx).Error("auth request failed",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			slog.String("code", apiErr.Code),
		)
		return apiErr
	}
	return json.Unmarshal(data, out)
}

// tokenExpiry reads the exp claim from the ID token without verifying it;
// verification is the backend's job, the client only schedules refresh.
// Falls back to the expiresIn duration returned alongside the token.
func tokenExpiry(idToken, expiresIn string) time.Time {
	token, _, err := jwt.NewParser().ParseUnverified(idToken, jwt.MapClaims{})
	if err == nil {
		if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(expiresIn)); err == nil {
		return time.Now().Add(time.Duration(secs) * time.Second)
	}
	return time.Time{}
}
