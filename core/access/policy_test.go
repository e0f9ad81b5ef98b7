package access

import (
	"testing"

	"github.com/shulehub/shule/core/user"
)

func TestCanAccess(t *testing.T) {
	admin := Actor{Role: user.RoleAdmin, Email: "admin_1@shule.school"}
	teacher := Actor{Role: user.RoleTeacher, Email: "teacher_1@shule.school", Class: "5th"}
	idleTeacher := Actor{Role: user.RoleTeacher, Email: "teacher_2@shule.school"} // no class assigned
	student := Actor{Role: user.RoleStudent, Email: "student_7@shule.school", Class: "5th", RegNo: 7}

	tests := []struct {
		name  string
		actor Actor
		res   Resource
		want  bool
	}{
		// admin
		{name: "admin reads anything", actor: admin, res: Resource{Kind: KindStudent, Class: "3rd"}, want: true},
		{name: "admin writes anything", actor: admin, res: Resource{Kind: KindFee, Write: true}, want: true},

		// teacher
		{name: "teacher reads own class students", actor: teacher, res: Resource{Kind: KindStudent, Class: "5th"}, want: true},
		{name: "teacher denied other class students", actor: teacher, res: Resource{Kind: KindStudent, Class: "3rd"}, want: false},
		{name: "teacher cannot write students", actor: teacher, res: Resource{Kind: KindStudent, Class: "5th", Write: true}, want: false},
		{name: "teacher writes own class marks", actor: teacher, res: Resource{Kind: KindMarks, Class: "5th", Write: true}, want: true},
		{name: "teacher denied other class marks", actor: teacher, res: Resource{Kind: KindMarks, Class: "3rd", Write: true}, want: false},
		{name: "teacher reads own class fees", actor: teacher, res: Resource{Kind: KindFee, Class: "5th"}, want: true},
		{name: "teacher cannot write fees", actor: teacher, res: Resource{Kind: KindFee, Class: "5th", Write: true}, want: false},
		{name: "teacher reads own profile", actor: teacher, res: Resource{Kind: KindTeacher, OwnerEmail: "teacher_1@shule.school"}, want: true},
		{name: "teacher denied another profile", actor: teacher, res: Resource{Kind: KindTeacher, OwnerEmail: "teacher_9@shule.school"}, want: false},
		{name: "teacher reads own class syllabus", actor: teacher, res: Resource{Kind: KindSyllabus, Class: "5th"}, want: true},
		{name: "unassigned teacher denied class data", actor: idleTeacher, res: Resource{Kind: KindStudent, Class: "5th"}, want: false},

		// student
		{name: "student reads own record by regNo", actor: student, res: Resource{Kind: KindStudent, RegNo: 7}, want: true},
		{name: "student reads own record by email", actor: student, res: Resource{Kind: KindStudent, OwnerEmail: "student_7@shule.school"}, want: true},
		{name: "student denied classmate record", actor: student, res: Resource{Kind: KindStudent, RegNo: 8, Class: "5th"}, want: false},
		{name: "student reads own marks", actor: student, res: Resource{Kind: KindMarks, RegNo: 7}, want: true},
		{name: "student denied writing own marks", actor: student, res: Resource{Kind: KindMarks, RegNo: 7, Write: true}, want: false},
		{name: "student reads own fees", actor: student, res: Resource{Kind: KindFee, RegNo: 7}, want: true},
		{name: "student denied other fees", actor: student, res: Resource{Kind: KindFee, RegNo: 8}, want: false},
		{name: "student reads own class timetable", actor: student, res: Resource{Kind: KindTimetable, Class: "5th"}, want: true},
		{name: "student denied other class timetable", actor: student, res: Resource{Kind: KindTimetable, Class: "3rd"}, want: false},

		// unknown role gets nothing
		{name: "unknown role denied", actor: Actor{Role: user.Role("janitor")}, res: Resource{Kind: KindClass}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccess(tt.actor, tt.res); got != tt.want {
				t.Errorf("CanAccess() = %v; want %v", got, tt.want)
			}
		})
	}
}
