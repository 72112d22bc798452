// Package memrepo implements every repository and the transactor in memory. Transactions are
// serialized by one mutex and roll back by restoring a snapshot, so services and handlers can be
// tested with real atomicity and the same uniqueness rules as the Postgres schema.
package memrepo

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/repositories"
)

var errNoSQL = errors.New("memrepo: SQL is not supported")

// txExecutor marks a call as running inside a memrepo transaction. Its SQL methods are never used.
type txExecutor struct{}

func (txExecutor) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}

func (txExecutor) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errNoSQL
}

func (txExecutor) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

type state struct {
	nextID  int
	events  map[int]models.Event
	days    map[int]models.EventDay
	regs    map[int]models.EventRegistration
	entries map[int]models.DayEntry
	teams   map[int]models.Team
}

func newState() *state {
	return &state{
		events:  make(map[int]models.Event),
		days:    make(map[int]models.EventDay),
		regs:    make(map[int]models.EventRegistration),
		entries: make(map[int]models.DayEntry),
		teams:   make(map[int]models.Team),
	}
}

func (st *state) id() int {
	st.nextID++
	return st.nextID
}

func (st *state) clone() *state {
	c := newState()
	c.nextID = st.nextID
	for k, v := range st.events {
		c.events[k] = cloneEvent(v)
	}
	for k, v := range st.days {
		c.days[k] = v
	}
	for k, v := range st.regs {
		c.regs[k] = cloneRegistration(v)
	}
	for k, v := range st.entries {
		c.entries[k] = cloneEntry(v)
	}
	for k, v := range st.teams {
		c.teams[k] = cloneTeam(v)
	}
	return c
}

// Store holds the whole dataset.
type Store struct {
	mu          sync.Mutex
	st          *state
	now         func() time.Time
	failNextTxs []error
}

func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

// view runs fn with the store locked unless the caller already holds the lock via a transaction.
func (s *Store) view(exec repositories.SQLExecutor, fn func(st *state) error) error {
	if _, inTx := exec.(txExecutor); !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

// FailNextTransaction makes the next transaction fail with err before running its body.
func (s *Store) FailNextTransaction(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextTxs = append(s.failNextTxs, err)
}

// SeedTeam stores an externally managed team roster.
func (s *Store) SeedTeam(team models.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.teams[team.ID] = cloneTeam(team)
}

type transactor struct {
	s *Store
}

func (s *Store) Transactor() repositories.Transactor {
	return &transactor{s: s}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn repositories.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if len(t.s.failNextTxs) > 0 {
		err := t.s.failNextTxs[0]
		t.s.failNextTxs = t.s.failNextTxs[1:]
		return err
	}

	snapshot := t.s.st.clone()
	if err := fn(ctx, txExecutor{}); err != nil {
		t.s.st = snapshot
		return err
	}
	return nil
}

func cloneEvent(e models.Event) models.Event {
	if e.Winners != nil {
		e.Winners = append(models.Winners{}, e.Winners...)
	}
	if e.Description != nil {
		d := *e.Description
		e.Description = &d
	}
	return e
}

func cloneRegistration(r models.EventRegistration) models.EventRegistration {
	r.BullPairIDs = append([]int{}, r.BullPairIDs...)
	r.MemberIDs = append([]int{}, r.MemberIDs...)
	r.RejectionReason = clonePtr(r.RejectionReason)
	r.AdminNotes = clonePtr(r.AdminNotes)
	r.DecidedBy = clonePtr(r.DecidedBy)
	r.DecidedAt = clonePtr(r.DecidedAt)
	return r
}

func cloneEntry(e models.DayEntry) models.DayEntry {
	e.Performance = models.Performance{
		RockWeightKg:   clonePtr(e.Performance.RockWeightKg),
		DistanceMeters: clonePtr(e.Performance.DistanceMeters),
		TimeSeconds:    clonePtr(e.Performance.TimeSeconds),
	}
	e.PlayedAt = clonePtr(e.PlayedAt)
	e.Rank = clonePtr(e.Rank)
	return e
}

func cloneTeam(t models.Team) models.Team {
	t.BullPairs = append([]models.BullPair{}, t.BullPairs...)
	t.Members = append([]models.TeamMember{}, t.Members...)
	return t
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
