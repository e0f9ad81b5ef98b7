package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/shulehub/shule/core/marks"
	"github.com/shulehub/shule/core/provision"
	"github.com/shulehub/shule/core/student"
)

func TestCounter_sequences(t *testing.T) {
	ctx := context.Background()
	counter := NewCounterRepository(NewDB())

	for want := 1; want <= 3; want++ {
		got, err := counter.NextID(ctx, provision.SeqStudents)
		if err != nil {
			t.Fatalf("NextID() failed: %v", err)
		}
		if got != want {
			t.Fatalf("NextID() = %d; want %d", got, want)
		}
	}

	// sequences are independent per name
	got, err := counter.NextID(ctx, provision.SeqTeachers)
	if err != nil {
		t.Fatalf("NextID() failed: %v", err)
	}
	if got != 1 {
		t.Errorf("NextID(teachers) = %d; want 1", got)
	}
}

func TestMarksRepository_MergeTerm(t *testing.T) {
	ctx := context.Background()
	repo := NewMarksRepository(NewDB())

	first := marks.TermMarks{"English": {40}, "Math": {50}}
	if _, err := repo.MergeTerm(ctx, 1, "5th", "1st Term", first); err != nil {
		t.Fatalf("MergeTerm() failed: %v", err)
	}

	// a later term must not clobber the earlier one
	second := marks.TermMarks{"English": {35}}
	sheet, err := repo.MergeTerm(ctx, 1, "5th", "2nd Term", second)
	if err != nil {
		t.Fatalf("MergeTerm() failed: %v", err)
	}
	if len(sheet.Terms) != 2 {
		t.Fatalf("sheet has %d terms; want 2", len(sheet.Terms))
	}
	if got := sheet.Terms["1st Term"]["Math"][0]; got != 50 {
		t.Errorf("1st Term Math = %d; want 50", got)
	}

	// re-submitting a term overwrites only the submitted subjects
	if _, err = repo.MergeTerm(ctx, 1, "5th", "1st Term", marks.TermMarks{"English": {45}}); err != nil {
		t.Fatalf("MergeTerm() failed: %v", err)
	}
	sheet, err = repo.GetSheet(ctx, 1)
	if err != nil {
		t.Fatalf("GetSheet() failed: %v", err)
	}
	if got := sheet.Terms["1st Term"]["English"][0]; got != 45 {
		t.Errorf("1st Term English = %d; want 45", got)
	}
	if got := sheet.Terms["1st Term"]["Math"][0]; got != 50 {
		t.Errorf("1st Term Math = %d; want 50 after partial resubmit", got)
	}

	// returned sheets are detached copies
	sheet.Terms["1st Term"]["English"][0] = -999
	fresh, _ := repo.GetSheet(ctx, 1)
	if got := fresh.Terms["1st Term"]["English"][0]; got != 45 {
		t.Error("GetSheet() leaks internal state")
	}

	// every submission is recorded in history
	history, err := repo.HistoryForStudent(ctx, 1)
	if err != nil {
		t.Fatalf("HistoryForStudent() failed: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("history has %d entries; want 3", len(history))
	}
}

func TestStudentRepository_WatchStudents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := NewDB()
	repo := NewStudentRepository(db)

	if _, err := repo.CreateStudent(ctx, student.Student{RegNo: 1, Name: "Neema", Class: "5th"}); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}

	snapshots, stop, err := repo.WatchStudents(ctx, student.QueryFilter{Class: "5th"})
	if err != nil {
		t.Fatalf("WatchStudents() failed: %v", err)
	}
	defer stop()

	// initial snapshot arrives without any write
	snap := nextSnapshot(t, snapshots)
	if len(snap) != 1 || snap[0].RegNo != 1 {
		t.Fatalf("initial snapshot = %+v; want student 1", snap)
	}

	// a write in the watched class produces a fresh snapshot
	if _, err = repo.CreateStudent(ctx, student.Student{RegNo: 2, Name: "Juma", Class: "5th"}); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	snap = waitForLen(t, snapshots, 2)
	if snap[1].RegNo != 2 {
		t.Errorf("snapshot = %+v; want students 1 and 2", snap)
	}

	// writes outside the filter still signal, but the snapshot stays scoped
	if _, err = repo.CreateStudent(ctx, student.Student{RegNo: 3, Name: "Amani", Class: "3rd"}); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	snap = nextSnapshot(t, snapshots)
	for _, s := range snap {
		if s.Class != "5th" {
			t.Errorf("snapshot leaked class %q", s.Class)
		}
	}
}

func nextSnapshot(t *testing.T, ch <-chan []student.Student) []student.Student {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

// waitForLen reads snapshots until one has n students; coalesced signals may
// skip intermediate states.
func waitForLen(t *testing.T, ch <-chan []student.Student, n int) []student.Student {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-ch:
			if len(snap) == n {
				return snap
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %d students", n)
			return nil
		}
	}
}
