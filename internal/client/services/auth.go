// Package services contains the application services of the worklogger
// client: sign-in and session restore, entry submission and deletion, and
// exports.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/worklogger/internal/client/client"
	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/cryptox"
	"github.com/dmitrijs2005/worklogger/internal/logging"
)

// ErrNoSession means there is no stored session to restore.
var ErrNoSession = errors.New("no stored session")

// AuthClient is the part of the log store gateway used for accounts.
type AuthClient interface {
	Register(ctx context.Context, username, fullName, email string, salt, verifier []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) error
	Restore(ctx context.Context, refreshToken string) error
	Logout()
	SetTokenObserver(fn func(refreshToken string))
	WhoAmI(ctx context.Context) (*models.Identity, error)
	Ping(ctx context.Context) error
	Close() error
}

// AuthService defines authentication operations for the CLI.
//
// Login and Restore both end with a WhoAmI call, so a successful result is a
// confirmed identity. Every refresh token the client receives is written to
// the metadata repository; Logout wipes it.
type AuthService interface {
	Register(ctx context.Context, username, fullName, email string, password []byte) error
	Login(ctx context.Context, username string, password []byte) (*models.Identity, error)
	Restore(ctx context.Context) (*models.Identity, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client AuthClient
	meta   metadata.Repository
	logger logging.Logger
}

// NewAuthService constructs an AuthService bound to the given client and
// metadata repository. It registers itself as the client's token observer.
func NewAuthService(c AuthClient, meta metadata.Repository, logger logging.Logger) AuthService {
	a := &authService{client: c, meta: meta, logger: logger.With("module", "auth")}
	c.SetTokenObserver(a.saveRefreshToken)
	return a
}

func (a *authService) saveRefreshToken(token string) {
	ctx := context.Background()
	if err := a.meta.SetString(ctx, metadata.KeyRefreshToken, token); err != nil {
		a.logger.Warn(ctx, "refresh token not persisted", "error", err)
	}
}

// Register creates a new account on the server. It generates a random salt,
// derives the verifier from the password and sends salt and verifier.
func (a *authService) Register(ctx context.Context, username, fullName, email string, password []byte) error {
	username = strings.TrimSpace(username)
	if username == "" || len(password) == 0 {
		return fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	salt := cryptox.NewSalt(cryptox.SaltSize)
	verifier := cryptox.Verifier(password, salt)

	if err := a.client.Register(ctx, username, strings.TrimSpace(fullName), strings.TrimSpace(email), salt, verifier); err != nil {
		return err
	}
	return nil
}

// Login authenticates against the server and resolves the identity.
func (a *authService) Login(ctx context.Context, username string, password []byte) (*models.Identity, error) {
	salt, err := a.client.GetSalt(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get salt error: %w", err)
	}

	if err := a.client.Login(ctx, username, cryptox.Verifier(password, salt)); err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	id, err := a.client.WhoAmI(ctx)
	if err != nil {
		return nil, fmt.Errorf("whoami error: %w", err)
	}

	if err := a.meta.SetString(ctx, metadata.KeyUsername, username); err != nil {
		a.logger.Warn(ctx, "username not persisted", "error", err)
	}
	return id, nil
}

// Restore resumes the stored session. A rejected refresh token is removed.
func (a *authService) Restore(ctx context.Context) (*models.Identity, error) {
	token, err := a.meta.GetString(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if token == "" {
		return nil, ErrNoSession
	}

	if err := a.client.Restore(ctx, token); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			_ = a.meta.SetString(ctx, metadata.KeyRefreshToken, "")
		}
		return nil, fmt.Errorf("restore error: %w", err)
	}

	id, err := a.client.WhoAmI(ctx)
	if err != nil {
		return nil, fmt.Errorf("whoami error: %w", err)
	}
	return id, nil
}

// Logout drops the tokens and the stored session.
func (a *authService) Logout(ctx context.Context) error {
	a.client.Logout()
	return a.meta.Clear(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
