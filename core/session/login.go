package session

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/auth"
	"github.com/shulehub/shule/core/nav"
	"github.com/shulehub/shule/core/user"
)

var (
	// ErrMissingCredentials rejects empty inputs before any provider call.
	ErrMissingCredentials = errors.New(MsgMissingCredentials)
	// ErrSubmitInFlight rejects a submit while a previous one is running.
	ErrSubmitInFlight = errors.New("a submission is already in progress")

	ErrAccountDeactivated = errors.New("account deactivated")
)

// RoleMismatchError is returned when the authenticated account's stored role
// does not match the role selected before login.
type RoleMismatchError struct {
	Expected user.Role
	Actual   user.Role
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("role mismatch: expected %s, but found %s", e.Expected, e.Actual)
}

// Form carries login inputs. Password is cleared after every submit attempt,
// whatever the outcome; Email persists for retry.
type Form struct {
	Role     user.Role
	Email    string
	Password string
}

// LoginFlow authenticates a user for a specific, pre-selected role and
// authorizes only if the stored role record matches. A mismatch signs the
// session back out so a wrong-portal login never leaves a live session.
type LoginFlow struct {
	provider auth.Provider
	users    user.ServiceInterface
	stack    *nav.Stack
	alert    Alerter
	logger   core.Logger

	inFlight int32
}

func NewLoginFlow(
	provider auth.Provider,
	users user.ServiceInterface,
	stack *nav.Stack,
	alert Alerter,
	logger core.Logger,
) *LoginFlow {
	if alert == nil {
		alert = NopAlerter()
	}
	return &LoginFlow{
		provider: provider,
		users:    users,
		stack:    stack,
		alert:    alert,
		logger:   logger,
	}
}

// Submit runs the role-gated login sequence. On success the navigation stack
// is reset to a single entry at the role's portal. The returned User is the
// matched role record; it is zero on any error.
func (f *LoginFlow) Submit(ctx context.Context, form *Form) (user.User, error) {
	if !atomic.CompareAndSwapInt32(&f.inFlight, 0, 1) {
		return user.User{}, ErrSubmitInFlight
	}
	defer func() {
		form.Password = ""
		atomic.StoreInt32(&f.inFlight, 0)
	}()

	if form.Email == "" || form.Password == "" {
		f.alert.Alert(MsgMissingCredentials)
		return user.User{}, ErrMissingCredentials
	}
	form.Email = core.CleanString(form.Email, true /* lower */)

	id, err := f.provider.SignIn(ctx, form.Email, form.Password)
	if err != nil {
		f.logger.Error("login: sign-in failed", errors.Wrap(err, form.Email))
		f.alert.Alert(MsgSomethingWentWrong)
		return user.User{}, errors.Wrap(err, "signing in")
	}

	usr, err := f.users.GetByEmail(ctx, id.Email)
	if err != nil {
		// An authenticated session with no role record cannot be routed;
		// always revert it rather than leaving a half-usable session.
		f.signOut(ctx)
		if errors.Cause(err) == user.ErrNotFound {
			f.alert.Alert(MsgUserDataNotFound)
			return user.User{}, errors.Wrap(user.ErrNotFound, "resolving role record")
		}
		f.logger.Error("login: resolving role record", errors.Wrap(err, id.Email))
		f.alert.Alert(MsgSomethingWentWrong)
		return user.User{}, errors.Wrap(err, "resolving role record")
	}

	if !usr.IsActive {
		f.signOut(ctx)
		f.alert.Alert(ErrAccountDeactivated.Error())
		return user.User{}, ErrAccountDeactivated
	}

	if usr.Role != form.Role {
		f.signOut(ctx)
		mErr := &RoleMismatchError{Expected: form.Role, Actual: usr.Role}
		f.alert.Alert(mErr.Error())
		return user.User{}, mErr
	}

	dest, err := nav.DestinationFor(usr.Role)
	if err != nil {
		f.signOut(ctx)
		f.logger.Error("login: unrecognized role on record", errors.Wrapf(err, "user %s", usr.ID), usr)
		f.alert.Alert(MsgSomethingWentWrong)
		return user.User{}, err
	}

	if usr, err = f.users.SetLastLogin(ctx, usr); err != nil {
		// routing still proceeds; lastLogin is advisory
		f.logger.Warn("login: setting lastLogin", errors.Wrapf(err, "user %s", usr.ID))
	}

	f.stack.Reset(dest)
	return usr, nil
}

func (f *LoginFlow) signOut(ctx context.Context) {
	if err := f.provider.SignOut(ctx); err != nil {
		f.logger.Error("login: compensating sign-out", err)
	}
}
