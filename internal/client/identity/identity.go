// Package identity tracks who is signed in and the member profile that goes
// with that account.
//
// The profile is nil until the store confirms a row for the identity. Ready
// is closed after the first fetch attempt that reached the store, whether it
// found a profile or not; transport failures leave it open so the caller can
// retry. Watchers are signalled when the identity changes or a profile is set.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/logging"
)

var ErrNotSignedIn = errors.New("not signed in")

// ProfileStore is the remote side of profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, studyYear int) (*models.Profile, error)
}

// ProfileCache keeps the last confirmed profile on disk for display.
// Get returns (nil, nil) when nothing is cached for id.
type ProfileCache interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) error
	Clear(ctx context.Context) error
}

type onboarding struct {
	StudyYear int `validate:"min=1,max=5"`
}

type Context struct {
	store    ProfileStore
	cache    ProfileCache
	logger   logging.Logger
	validate *validator.Validate

	mu       sync.RWMutex
	identity *models.Identity
	profile  *models.Profile
	ready    chan struct{}
	isReady  bool
	watchers map[uint64]chan struct{}
	nextID   uint64
}

// New creates a signed-out context. cache may be nil.
func New(store ProfileStore, cache ProfileCache, logger logging.Logger) *Context {
	return &Context{
		store:    store,
		cache:    cache,
		logger:   logger.With("module", "identity"),
		validate: validator.New(),
		ready:    make(chan struct{}),
		watchers: make(map[uint64]chan struct{}),
	}
}

// SetIdentity switches the signed-in account; nil signs out. Setting the
// same account again only refreshes its attributes.
func (c *Context) SetIdentity(ctx context.Context, id *models.Identity) {
	c.mu.Lock()
	if sameAccount(c.identity, id) {
		c.identity = id
		c.mu.Unlock()
		return
	}

	c.identity = id
	c.profile = nil
	c.ready = make(chan struct{})
	c.isReady = false
	c.notifyLocked()
	c.mu.Unlock()

	if id == nil && c.cache != nil {
		if err := c.cache.Clear(ctx); err != nil {
			c.logger.Warn(ctx, "profile cache clear failed", "error", err)
		}
	}
}

func sameAccount(a, b *models.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

func (c *Context) Identity() *models.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// ID is the signed-in account id, or "".
func (c *Context) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return ""
	}
	return c.identity.ID
}

// Profile is the confirmed profile, or nil.
func (c *Context) Profile() *models.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// Ready is closed once the profile fetch for the current identity resolved.
func (c *Context) Ready() <-chan struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

func (c *Context) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// LoadProfile fetches the profile of the current identity. A missing profile
// is not an error: the context becomes ready with a nil profile.
func (c *Context) LoadProfile(ctx context.Context) error {
	id := c.ID()
	if id == "" {
		return ErrNotSignedIn
	}

	p, err := c.store.GetProfile(ctx, id)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		c.logger.Info(ctx, "no profile yet", "user_id", id)
		c.setProfile(ctx, id, nil)
		return nil
	case err != nil:
		c.logger.Warn(ctx, "profile fetch failed", "user_id", id, "error", err)
		return fmt.Errorf("load profile: %w", err)
	}

	c.setProfile(ctx, id, p)
	return nil
}

// SaveProfile creates or updates the member profile with the given study
// year. Name and email are taken from the account by the store.
func (c *Context) SaveProfile(ctx context.Context, studyYear int) (*models.Profile, error) {
	if err := c.validate.Struct(onboarding{StudyYear: studyYear}); err != nil {
		return nil, fmt.Errorf("%w: study year must be between 1 and 5", common.ErrorValidation)
	}

	id := c.ID()
	if id == "" {
		return nil, ErrNotSignedIn
	}

	p, err := c.store.UpsertProfile(ctx, studyYear)
	if err != nil {
		return nil, err
	}

	c.setProfile(ctx, id, p)
	return p, nil
}

// setProfile stores p for account id and marks the context ready, unless the
// account changed while the request was out.
func (c *Context) setProfile(ctx context.Context, id string, p *models.Profile) {
	c.mu.Lock()
	if c.identity == nil || c.identity.ID != id {
		c.mu.Unlock()
		return
	}

	c.profile = p
	if !c.isReady {
		c.isReady = true
		close(c.ready)
	}
	if p != nil {
		c.notifyLocked()
	}
	c.mu.Unlock()

	if p != nil && c.cache != nil {
		if err := c.cache.Save(ctx, p); err != nil {
			c.logger.Warn(ctx, "profile cache save failed", "error", err)
		}
	}
}

// DisplayProfile returns the confirmed profile or, before that, the cached
// one. It is meant for rendering only.
func (c *Context) DisplayProfile(ctx context.Context) *models.Profile {
	c.mu.RLock()
	p, id := c.profile, c.identity
	c.mu.RUnlock()

	if p != nil || id == nil || c.cache == nil {
		return p
	}

	cached, err := c.cache.Get(ctx, id.ID)
	if err != nil {
		c.logger.Warn(ctx, "profile cache read failed", "error", err)
		return nil
	}
	return cached
}

// WelcomeName picks the greeting: profile name, then account full name.
func (c *Context) WelcomeName(ctx context.Context) string {
	if p := c.DisplayProfile(ctx); p != nil && p.DisplayName != "" {
		return p.DisplayName
	}
	if id := c.Identity(); id != nil && id.FullName != "" {
		return id.FullName
	}
	return "Welcome!"
}

// Watch registers for change signals. Signals are coalesced; the receiver
// should re-read Identity and Profile. The returned func unregisters.
func (c *Context) Watch() (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	key := c.nextID
	ch := make(chan struct{}, 1)
	c.watchers[key] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.watchers, key)
	}
}

func (c *Context) notifyLocked() {
	for _, ch := range c.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
