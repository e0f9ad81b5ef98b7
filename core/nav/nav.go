package nav

import (
	"sync"

	"github.com/shulehub/shule/core/user"
)

// Destination is an internal navigation target name. Destinations are not
// externally addressable.
type Destination string

const (
	RoleSelect  Destination = "RoleSelection"
	Login       Destination = "Login"
	AdminHome   Destination = "AdminDashboard"
	TeacherHome Destination = "TeacherDashboard"
	StudentHome Destination = "StudentDashboard"
)

// DestinationFor maps a role onto its portal. An unrecognized role is a hard
// error, never a silent default.
func DestinationFor(role user.Role) (Destination, error) {
	switch role {
	case user.RoleAdmin:
		return AdminHome, nil
	case user.RoleTeacher:
		return TeacherHome, nil
	case user.RoleStudent:
		return StudentHome, nil
	}
	return "", user.ErrUnknownRole
}

// Stack is a navigation history stack. Reset replaces the whole history with
// a single entry so the user cannot navigate back into the login flow.
type Stack struct {
	mu      sync.RWMutex
	entries []Destination
}

func NewStack() *Stack {
	return &Stack{entries: []Destination{RoleSelect}}
}

func (s *Stack) Push(d Destination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, d)
}

// Reset replaces the entire stack with a single entry at d.
func (s *Stack) Reset(d Destination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = []Destination{d}
}

func (s *Stack) Current() Destination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[len(s.entries)-1]
}

func (s *Stack) Depth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Stack) Entries() []Destination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]Destination, len(s.entries))
	copy(entries, s.entries)
	return entries
}
