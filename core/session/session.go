// Package session implements the startup session bootstrapping and the
// role-gated login flow shared by the API server and the admin tooling.
package session

// User-facing alert messages. Tests assert on these verbatim.
const (
	MsgMissingCredentials = "please enter a valid email and password"
	MsgSomethingWentWrong = "something went wrong"
	MsgUserDataNotFound   = "user data not found"
)

type (
	// Alerter surfaces a user-visible message, the flow-boundary equivalent
	// of a blocking alert dialog.
	Alerter interface {
		Alert(message string)
	}

	AlertFunc func(message string)
)

func (f AlertFunc) Alert(message string) { f(message) }

// NopAlerter discards alerts.
func NopAlerter() Alerter { return AlertFunc(func(string) {}) }
