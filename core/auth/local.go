package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/shulehub/shule/core"
)

// LocalProvider implements Provider over a credential repository with bcrypt
// password checks. It holds the singleton current-session state and fans out
// change notifications to subscribers.
type LocalProvider struct {
	repo   CredentialRepository
	logger core.Logger

	mu      sync.RWMutex
	current *Identity
	subs    map[int]func(*Identity)
	nextSub int
}

var _ Provider = (*LocalProvider)(nil)

func NewLocalProvider(repo CredentialRepository, logger core.Logger) *LocalProvider {
	return &LocalProvider{
		repo: repo,
		logger: logger,
		subs: make(map[int]func(*Identity)),
	}
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (Identity, error) {
	email = core.CleanString(email, true /* lower */)

	cred, err := p.repo.GetCredential(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNoCredential {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, errors.Wrap(err, "finding credential by email")
	}
	if err = bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	id := Identity{UID: cred.Email, Email: cred.Email}
	p.setCurrent(&id)
	return id, nil
}

func (p *LocalProvider) SignOut(ctx context.Context) error {
	p.setCurrent(nil)
	return nil
}

func (p *LocalProvider) CreateAccount(ctx context.Context, email, password string) (Identity, error) {
	email = core.CleanString(email, true /* lower */)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, errors.Wrap(err, "hashing password")
	}

	now := time.Now().UTC()
	cred := Credential{Email: email, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}
	if err = p.repo.CreateCredential(ctx, cred); err != nil {
		return Identity{}, err
	}
	return Identity{UID: email, Email: email}, nil
}

func (p *LocalProvider) DeleteAccount(ctx context.Context, email string) error {
	return p.repo.DeleteCredential(ctx, core.CleanString(email, true /* lower */))
}

func (p *LocalProvider) SetPassword(ctx context.Context, email, password string) error {
	email = core.CleanString(email, true /* lower */)

	cred, err := p.repo.GetCredential(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	cred.PasswordHash = hash
	cred.UpdatedAt = time.Now().UTC()
	return p.repo.UpdateCredential(ctx, cred)
}

func (p *LocalProvider) CurrentIdentity() (Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return Identity{}, false
	}
	return *p.current, true
}

func (p *LocalProvider) OnChange(fn func(*Identity)) func() {
	p.mu.Lock()
	key := p.nextSub
	p.nextSub++
	p.subs[key] = fn
	current := p.current
	p.mu.Unlock()

	// subscription fires once with the current state
	fn(copyIdentity(current))

	return func() {
		p.mu.Lock()
		delete(p.subs, key)
		p.mu.Unlock()
	}
}

func (p *LocalProvider) setCurrent(id *Identity) {
	p.mu.Lock()
	p.current = id
	subs := make([]func(*Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(copyIdentity(id))
	}
}

// copyIdentity hands each subscriber its own copy of the session state.
func copyIdentity(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}
