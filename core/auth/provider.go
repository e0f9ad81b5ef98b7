package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrNoCredential       = errors.New("credential not found")
)

type (
	// Identity is an authenticated account as reported by the session
	// provider. It carries no role: authorization data lives in the
	// user role records.
	Identity struct {
		UID   string
		Email string
	}

	// Credential is a provider-managed login secret. The password itself is
	// write-only; only its hash is stored.
	Credential struct {
		Email        string    `bson:"_id"`
		PasswordHash []byte    `bson:"passwordHash"`
		CreatedAt    time.Time `bson:"createdAt"` // UTC
		UpdatedAt    time.Time `bson:"updatedAt"` // UTC
	}

	CredentialRepository interface {
		CreateCredential(ctx context.Context, cred Credential) error
		GetCredential(ctx context.Context, email string) (Credential, error)
		UpdateCredential(ctx context.Context, cred Credential) error
		DeleteCredential(ctx context.Context, email string) error
	}

	// Provider owns the process-wide session state. Consumers depend on this
	// interface, never on a concrete provider, so tests can substitute an
	// in-memory fake.
	Provider interface {
		// SignIn authenticates the credential and makes it the current
		// session. The current session is left untouched on failure.
		SignIn(ctx context.Context, email, password string) (Identity, error)
		// SignOut clears the current session. Signing out of a clear
		// session is a no-op.
		SignOut(ctx context.Context) error
		// CreateAccount registers a new credential without signing it in.
		CreateAccount(ctx context.Context, email, password string) (Identity, error)
		// DeleteAccount removes a credential; used to compensate failed
		// provisioning runs.
		DeleteAccount(ctx context.Context, email string) error
		// SetPassword replaces the credential's password.
		SetPassword(ctx context.Context, email, password string) error
		// CurrentIdentity reports the current session, if any.
		CurrentIdentity() (Identity, bool)
		// OnChange subscribes fn to session-state changes. fn fires once
		// immediately with the current state and again on every subsequent
		// sign-in and sign-out, with nil for a clear session. The returned
		// func unsubscribes.
		OnChange(fn func(*Identity)) (unsubscribe func())
	}
)
