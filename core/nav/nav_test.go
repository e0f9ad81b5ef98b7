package nav

import (
	"testing"

	"github.com/shulehub/shule/core/user"
)

func TestDestinationFor(t *testing.T) {
	tests := []struct {
		name    string
		role    user.Role
		want    Destination
		wantErr bool
	}{
		{name: "admin", role: user.RoleAdmin, want: AdminHome},
		{name: "teacher", role: user.RoleTeacher, want: TeacherHome},
		{name: "student", role: user.RoleStudent, want: StudentHome},
		{name: "unknown role is an error", role: user.Role("janitor"), wantErr: true},
		{name: "empty role is an error", role: user.Role(""), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DestinationFor(tt.role)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DestinationFor(%q) expected an error; got %q", tt.role, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DestinationFor(%q) failed: %v", tt.role, err)
			}
			if got != tt.want {
				t.Errorf("DestinationFor(%q) = %q; want %q", tt.role, got, tt.want)
			}
		})
	}
}

func TestStack_Reset(t *testing.T) {
	s := NewStack()
	if got := s.Current(); got != RoleSelect {
		t.Fatalf("new stack starts at %q; want %q", got, RoleSelect)
	}

	s.Push(Login)
	s.Push(TeacherHome)
	if got := s.Depth(); got != 3 {
		t.Fatalf("Depth() = %d; want 3", got)
	}

	// a reset must collapse the whole history, not just swap the top
	s.Reset(AdminHome)
	if got := s.Depth(); got != 1 {
		t.Errorf("Depth() after Reset = %d; want 1", got)
	}
	if got := s.Current(); got != AdminHome {
		t.Errorf("Current() after Reset = %q; want %q", got, AdminHome)
	}
}

func TestStack_Entries_isolated(t *testing.T) {
	s := NewStack()
	s.Push(Login)

	entries := s.Entries()
	entries[0] = StudentHome // must not leak into the stack
	if got := s.Entries()[0]; got != RoleSelect {
		t.Errorf("Entries() shares backing array; got %q", got)
	}
}
