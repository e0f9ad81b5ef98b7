// Package access holds the explicit authorization policy. Every data
// operation checks CanAccess before touching a repository; scoping is never
// left to query filters alone.
package access

import "github.com/shulehub/shule/core/user"

// Kind names a protected resource family.
type Kind string

const (
	KindStudent   Kind = "student"
	KindTeacher   Kind = "teacher"
	KindMarks     Kind = "marks"
	KindFee       Kind = "fee"
	KindClass     Kind = "class"
	KindSyllabus  Kind = "syllabus"
	KindTimetable Kind = "timetable"
	KindUser      Kind = "user"
)

// Actor is the authenticated principal: its role record plus, for teachers
// and students, the class/registration scope resolved from its domain record.
type Actor struct {
	Role  user.Role
	Email string
	Class string // teacher's assigned class, or student's admitted class
	RegNo int    // student registration number; zero otherwise
}

// Resource describes the target of an operation.
type Resource struct {
	Kind       Kind
	Class      string // owning class, when the resource is class-scoped
	OwnerEmail string // owning identity, when the resource is personal
	RegNo      int    // owning student, for marks/fees/student records
	Write      bool
}

// CanAccess reports whether actor may perform the operation described by res.
//
// Admins may do anything. Teachers read and write within their own class
// only. Students read their own records only. Unrecognized roles get nothing.
func CanAccess(actor Actor, res Resource) bool {
	switch actor.Role {
	case user.RoleAdmin:
		return true
	case user.RoleTeacher:
		return teacherCanAccess(actor, res)
	case user.RoleStudent:
		return studentCanAccess(actor, res)
	}
	return false
}

func teacherCanAccess(actor Actor, res Resource) bool {
	switch res.Kind {
	case KindTeacher, KindUser:
		// own profile, read-only
		return !res.Write && res.OwnerEmail == actor.Email
	case KindStudent, KindFee:
		return !res.Write && sameClass(actor, res)
	case KindMarks:
		// marks are the one thing a teacher writes, within their class
		return sameClass(actor, res)
	case KindClass, KindSyllabus, KindTimetable:
		return !res.Write && (res.Class == "" || sameClass(actor, res))
	}
	return false
}

func studentCanAccess(actor Actor, res Resource) bool {
	if res.Write {
		return false
	}
	switch res.Kind {
	case KindStudent, KindUser:
		return res.OwnerEmail == actor.Email || ownRegNo(actor, res)
	case KindMarks, KindFee:
		return ownRegNo(actor, res)
	case KindClass, KindSyllabus, KindTimetable:
		return res.Class == "" || res.Class == actor.Class
	}
	return false
}

func sameClass(actor Actor, res Resource) bool {
	return actor.Class != "" && actor.Class == res.Class
}

func ownRegNo(actor Actor, res Resource) bool {
	return actor.RegNo != 0 && actor.RegNo == res.RegNo
}
