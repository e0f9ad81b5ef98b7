package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/auth"
	"github.com/shulehub/shule/core/nav"
	"github.com/shulehub/shule/core/user"
)

// Bootstrapper reacts to session-state changes pushed by the auth provider
// and routes to the matching portal. On process start the provider fires the
// subscription once with the persisted session, so a previously signed-in
// user lands directly on their dashboard with no role selection shown.
type Bootstrapper struct {
	provider auth.Provider
	users    user.ServiceInterface
	stack    *nav.Stack
	alert    Alerter
	logger   core.Logger
}

func NewBootstrapper(
	provider auth.Provider,
	users user.ServiceInterface,
	stack *nav.Stack,
	alert Alerter,
	logger core.Logger,
) *Bootstrapper {
	if alert == nil {
		alert = NopAlerter()
	}
	return &Bootstrapper{
		provider: provider,
		users:    users,
		stack:    stack,
		alert:    alert,
		logger:   logger,
	}
}

// Run subscribes to the provider and starts routing. The returned func
// unsubscribes.
func (b *Bootstrapper) Run() (stop func()) {
	return b.provider.OnChange(b.Handle)
}

// Handle routes a single session-state event. Handling the same event twice
// yields the same single-entry stack: Reset is idempotent. Handle never
// writes to any store.
func (b *Bootstrapper) Handle(id *auth.Identity) {
	if id == nil {
		b.stack.Reset(nav.RoleSelect)
		return
	}

	usr, err := b.users.GetByEmail(context.Background(), id.Email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			b.alert.Alert(MsgUserDataNotFound)
		} else {
			b.logger.Error("bootstrap: resolving role record", errors.Wrap(err, id.Email))
			b.alert.Alert(MsgSomethingWentWrong)
		}
		b.stack.Reset(nav.RoleSelect)
		return
	}

	dest, err := nav.DestinationFor(usr.Role)
	if err != nil {
		b.logger.Error("bootstrap: unrecognized role on record", errors.Wrapf(err, "user %s", usr.ID), usr)
		b.alert.Alert(MsgSomethingWentWrong)
		b.stack.Reset(nav.RoleSelect)
		return
	}

	b.stack.Reset(dest)
}
