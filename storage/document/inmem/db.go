// Package inmem implements the document store contracts in memory. It backs
// unit tests and the zero-dependency dev server.
package inmem

import (
	"sync"

	"github.com/shulehub/shule/core/auth"
	"github.com/shulehub/shule/core/fee"
	"github.com/shulehub/shule/core/marks"
	"github.com/shulehub/shule/core/school"
	"github.com/shulehub/shule/core/student"
	"github.com/shulehub/shule/core/teacher"
	"github.com/shulehub/shule/core/user"
)

// DB is a process-local document store. One RWMutex guards all tables; the
// data sets involved are tiny.
type DB struct {
	sync.RWMutex

	users       map[string]*user.User
	credentials map[string]*auth.Credential
	students    map[int]*student.Student
	teachers    map[int]*teacher.Teacher
	sheets      map[int]*marks.Sheet
	history     []marks.HistoryEntry
	fees        map[string]*fee.Fee
	classes     map[string]struct{}
	syllabi     map[string]map[string]string
	timetable   map[string]*school.TimetableEntry
	counters    map[string]int

	watchers  map[int]chan struct{}
	nextWatch int
}

func NewDB() *DB {
	return &DB{
		users:       make(map[string]*user.User),
		credentials: make(map[string]*auth.Credential),
		students:    make(map[int]*student.Student),
		teachers:    make(map[int]*teacher.Teacher),
		sheets:      make(map[int]*marks.Sheet),
		fees:        make(map[string]*fee.Fee),
		classes:     make(map[string]struct{}),
		syllabi:     make(map[string]map[string]string),
		timetable:   make(map[string]*school.TimetableEntry),
		counters:    make(map[string]int),
		watchers:    make(map[int]chan struct{}),
	}
}

// subscribe registers a change signal channel. Callers must hold no lock.
func (db *DB) subscribe() (ch chan struct{}, cancel func()) {
	db.Lock()
	defer db.Unlock()

	key := db.nextWatch
	db.nextWatch++
	ch = make(chan struct{}, 1)
	db.watchers[key] = ch
	return ch, func() {
		db.Lock()
		defer db.Unlock()
		delete(db.watchers, key)
	}
}

// broadcast signals all watchers; non-blocking, a pending signal coalesces.
// Callers must hold the write lock.
func (db *DB) broadcast() {
	for _, ch := range db.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

