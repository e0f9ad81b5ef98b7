package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/shulehub/shule/core/auth"
	"github.com/shulehub/shule/core/user"
)

// fakeProvider records calls; SignIn can be made to block for concurrency
// tests.
type fakeProvider struct {
	mu          sync.Mutex
	current     *auth.Identity
	signInErr   error
	signInGate  chan struct{} // when set, SignIn blocks until closed
	signInCalls int
	signOuts    int
}

var _ auth.Provider = (*fakeProvider)(nil)

func (p *fakeProvider) SignIn(_ context.Context, email, _ string) (auth.Identity, error) {
	p.mu.Lock()
	p.signInCalls++
	gate := p.signInGate
	p.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if p.signInErr != nil {
		return auth.Identity{}, p.signInErr
	}
	id := auth.Identity{UID: email, Email: email}
	p.mu.Lock()
	p.current = &id
	p.mu.Unlock()
	return id, nil
}

func (p *fakeProvider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOuts++
	p.current = nil
	return nil
}

func (p *fakeProvider) CreateAccount(_ context.Context, email, _ string) (auth.Identity, error) {
	return auth.Identity{UID: email, Email: email}, nil
}

func (p *fakeProvider) DeleteAccount(context.Context, string) error { return nil }

func (p *fakeProvider) SetPassword(context.Context, string, string) error { return nil }

func (p *fakeProvider) CurrentIdentity() (auth.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return auth.Identity{}, false
	}
	return *p.current, true
}

func (p *fakeProvider) OnChange(fn func(*auth.Identity)) func() {
	fn(p.current)
	return func() {}
}

// fakeUserSvc serves role records from a fixed map.
type fakeUserSvc struct {
	user.ServiceInterface // panic on anything not overridden

	users      map[string]user.User // by email
	getErr     error
	lastLogins int
	loginErr   error
}

func (s *fakeUserSvc) GetByEmail(_ context.Context, email string) (user.User, error) {
	if s.getErr != nil {
		return user.User{}, s.getErr
	}
	usr, ok := s.users[email]
	if !ok {
		return user.User{}, errors.Wrap(user.ErrNotFound, email)
	}
	return usr, nil
}

func (s *fakeUserSvc) GetByID(_ context.Context, id string) (user.User, error) {
	for _, usr := range s.users {
		if usr.ID == id {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (s *fakeUserSvc) SetLastLogin(_ context.Context, usr user.User) (user.User, error) {
	s.lastLogins++
	if s.loginErr != nil {
		return usr, s.loginErr
	}
	return usr, nil
}

// recordingAlerter captures every alert message in order.
type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (a *recordingAlerter) Alert(msg string) {
	a.mu.Lock()
	a.messages = append(a.messages, msg)
	a.mu.Unlock()
}

func (a *recordingAlerter) last() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.messages) == 0 {
		return ""
	}
	return a.messages[len(a.messages)-1]
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
