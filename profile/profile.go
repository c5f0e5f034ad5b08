// Package profile drives the profile screen: load (or seed) the current
// user's record and upsert the display name.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mlevkov/duochat/store"
)

var ErrBlankDisplayName = errors.New("display name is blank")

type Controller struct {
	store store.Store

	mu          sync.Mutex
	email       string
	displayName string
}

func New(st store.Store) *Controller {
	return &Controller{store: st}
}

// Load fetches the profile record once. Without a signed-in user it skips
// loading. An absent record seeds both fields from the account email; a
// failed read falls back to the account email and reports the error so the
// screen can alert.
func (c *Controller) Load(ctx context.Context, uid, accountEmail string) error {
	if uid == "" {
		return nil
	}

	p, err := c.store.Profile(ctx, uid)

	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.email = accountEmail
		c.displayName = accountEmail
	case err != nil:
		c.email = accountEmail
		return fmt.Errorf("loading profile: %w", err)
	default:
		c.email = p.Email
		if c.email == "" {
			c.email = accountEmail
		}
		c.displayName = p.DisplayName
	}
	return nil
}

// Save upserts the profile with the trimmed display name and the account
// email, leaving any other stored fields untouched.
func (c *Controller) Save(ctx context.Context, uid, accountEmail, displayName string) error {
	trimmed := strings.TrimSpace(displayName)
	if trimmed == "" {
		return ErrBlankDisplayName
	}

	err := c.store.SaveProfile(ctx, uid, store.Profile{
		Email:       accountEmail,
		DisplayName: trimmed,
	})
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	c.mu.Lock()
	c.displayName = trimmed
	c.mu.Unlock()
	return nil
}

func (c *Controller) Email() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.email
}

func (c *Controller) DisplayName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayName
}
