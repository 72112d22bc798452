package memrepo

import (
	"context"
	"sort"
	"time"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/repositories"
)

func (s *Store) Events() repositories.EventRepository               { return &eventRepo{s} }
func (s *Store) EventDays() repositories.EventDayRepository         { return &eventDayRepo{s} }
func (s *Store) Registrations() repositories.RegistrationRepository { return &registrationRepo{s} }
func (s *Store) DayEntries() repositories.DayEntryRepository        { return &dayEntryRepo{s} }
func (s *Store) Teams() repositories.TeamRepository                 { return &teamRepo{s} }

// --- events ---

type eventRepo struct{ s *Store }

func (r *eventRepo) Create(_ context.Context, exec repositories.SQLExecutor, e *models.Event) error {
	return r.s.view(exec, func(st *state) error {
		now := r.s.now()
		e.ID = st.id()
		e.CreatedAt, e.UpdatedAt = now, now
		if e.Winners == nil {
			e.Winners = models.Winners{}
		}
		st.events[e.ID] = cloneEvent(*e)
		return nil
	})
}

func (r *eventRepo) GetByID(_ context.Context, exec repositories.SQLExecutor, id int) (*models.Event, error) {
	var out *models.Event
	err := r.s.view(exec, func(st *state) error {
		e, ok := st.events[id]
		if !ok {
			return repositories.ErrEventNotFound
		}
		c := cloneEvent(e)
		out = &c
		return nil
	})
	return out, err
}

func (r *eventRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Event, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *eventRepo) List(_ context.Context, filter repositories.ListEventsFilter) ([]models.Event, error) {
	out := make([]models.Event, 0)
	err := r.s.view(nil, func(st *state) error {
		for _, e := range st.events {
			if filter.State != nil && e.State != *filter.State {
				continue
			}
			out = append(out, cloneEvent(e))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.After(out[j].StartsAt)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, filter.Limit, filter.Offset), err
}

func (r *eventRepo) UpdateDetails(_ context.Context, exec repositories.SQLExecutor, e *models.Event) error {
	return r.s.view(exec, func(st *state) error {
		cur, ok := st.events[e.ID]
		if !ok {
			return repositories.ErrEventNotFound
		}
		cur.Title, cur.Description, cur.Venue, cur.City = e.Title, clonePtr(e.Description), e.Venue, e.City
		cur.StartsAt, cur.EndsAt, cur.PrizePool = e.StartsAt, e.EndsAt, e.PrizePool
		cur.UpdatedAt = r.s.now()
		e.UpdatedAt = cur.UpdatedAt
		st.events[e.ID] = cur
		return nil
	})
}

func (r *eventRepo) UpdateState(_ context.Context, exec repositories.SQLExecutor, id int, next models.EventState) error {
	return r.s.view(exec, func(st *state) error {
		cur, ok := st.events[id]
		if !ok {
			return repositories.ErrEventNotFound
		}
		cur.State, cur.UpdatedAt = next, r.s.now()
		st.events[id] = cur
		return nil
	})
}

func (r *eventRepo) UpdateWinners(_ context.Context, exec repositories.SQLExecutor, id int, winners models.Winners) error {
	return r.s.view(exec, func(st *state) error {
		cur, ok := st.events[id]
		if !ok {
			return repositories.ErrEventNotFound
		}
		cur.Winners, cur.UpdatedAt = append(models.Winners{}, winners...), r.s.now()
		st.events[id] = cur
		return nil
	})
}

func (r *eventRepo) Delete(_ context.Context, exec repositories.SQLExecutor, id int) error {
	return r.s.view(exec, func(st *state) error {
		if _, ok := st.events[id]; !ok {
			return repositories.ErrEventNotFound
		}
		for _, d := range st.days {
			if d.EventID == id {
				return repositories.ErrEventHasDays
			}
		}
		for _, reg := range st.regs {
			if reg.EventID == id {
				return repositories.ErrEventHasRegistrations
			}
		}
		delete(st.events, id)
		return nil
	})
}

func (r *eventRepo) Count(_ context.Context) (int, error) {
	var n int
	err := r.s.view(nil, func(st *state) error {
		n = len(st.events)
		return nil
	})
	return n, err
}

// --- event days ---

type eventDayRepo struct{ s *Store }

func (r *eventDayRepo) Create(_ context.Context, exec repositories.SQLExecutor, d *models.EventDay) error {
	return r.s.view(exec, func(st *state) error {
		for _, existing := range st.days {
			if existing.EventID == d.EventID && existing.Date == d.Date {
				return repositories.ErrEventDayConflict
			}
		}
		now := r.s.now()
		d.ID = st.id()
		d.CreatedAt, d.UpdatedAt = now, now
		st.days[d.ID] = *d
		return nil
	})
}

func (r *eventDayRepo) GetByID(_ context.Context, exec repositories.SQLExecutor, id int) (*models.EventDay, error) {
	var out *models.EventDay
	err := r.s.view(exec, func(st *state) error {
		d, ok := st.days[id]
		if !ok {
			return repositories.ErrEventDayNotFound
		}
		out = &d
		return nil
	})
	return out, err
}

func (r *eventDayRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.EventDay, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *eventDayRepo) ListByEvent(_ context.Context, exec repositories.SQLExecutor, eventID int) ([]models.EventDay, error) {
	out := make([]models.EventDay, 0)
	err := r.s.view(exec, func(st *state) error {
		for _, d := range st.days {
			if d.EventID == eventID {
				out = append(out, d)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, err
}

func (r *eventDayRepo) UpdateStatus(_ context.Context, exec repositories.SQLExecutor, id int, status models.DayStatus) error {
	return r.s.view(exec, func(st *state) error {
		d, ok := st.days[id]
		if !ok {
			return repositories.ErrEventDayNotFound
		}
		d.Status, d.UpdatedAt = status, r.s.now()
		st.days[id] = d
		return nil
	})
}

// --- registrations ---

type registrationRepo struct{ s *Store }

func (r *registrationRepo) Create(_ context.Context, exec repositories.SQLExecutor, reg *models.EventRegistration) error {
	return r.s.view(exec, func(st *state) error {
		for _, existing := range st.regs {
			if existing.EventID == reg.EventID && existing.TeamID == reg.TeamID {
				return repositories.ErrRegistrationConflict
			}
		}
		now := r.s.now()
		reg.ID = st.id()
		reg.CreatedAt, reg.UpdatedAt = now, now
		st.regs[reg.ID] = cloneRegistration(*reg)
		return nil
	})
}

func (r *registrationRepo) GetByID(_ context.Context, exec repositories.SQLExecutor, id int) (*models.EventRegistration, error) {
	var out *models.EventRegistration
	err := r.s.view(exec, func(st *state) error {
		reg, ok := st.regs[id]
		if !ok {
			return repositories.ErrRegistrationNotFound
		}
		c := cloneRegistration(reg)
		out = &c
		return nil
	})
	return out, err
}

func (r *registrationRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.EventRegistration, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *registrationRepo) GetByEventAndTeam(_ context.Context, exec repositories.SQLExecutor, eventID, teamID int) (*models.EventRegistration, error) {
	var out *models.EventRegistration
	err := r.s.view(exec, func(st *state) error {
		for _, reg := range st.regs {
			if reg.EventID == eventID && reg.TeamID == teamID {
				c := cloneRegistration(reg)
				out = &c
				return nil
			}
		}
		return repositories.ErrRegistrationNotFound
	})
	return out, err
}

func (r *registrationRepo) ListByEvent(_ context.Context, eventID int, status *models.RegistrationStatus) ([]models.EventRegistration, error) {
	out := make([]models.EventRegistration, 0)
	err := r.s.view(nil, func(st *state) error {
		for _, reg := range st.regs {
			if reg.EventID != eventID || (status != nil && reg.Status != *status) {
				continue
			}
			out = append(out, cloneRegistration(reg))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *registrationRepo) UpdateDecision(_ context.Context, exec repositories.SQLExecutor, reg *models.EventRegistration) error {
	return r.s.view(exec, func(st *state) error {
		cur, ok := st.regs[reg.ID]
		if !ok {
			return repositories.ErrRegistrationNotFound
		}
		cur.Status = reg.Status
		cur.RejectionReason = clonePtr(reg.RejectionReason)
		cur.AdminNotes = clonePtr(reg.AdminNotes)
		cur.DecidedBy = clonePtr(reg.DecidedBy)
		cur.DecidedAt = clonePtr(reg.DecidedAt)
		cur.UpdatedAt = r.s.now()
		st.regs[reg.ID] = cur
		return nil
	})
}

// --- day entries ---

type dayEntryRepo struct{ s *Store }

func (r *dayEntryRepo) Upsert(_ context.Context, exec repositories.SQLExecutor, e *models.DayEntry) (bool, error) {
	inserted := false
	err := r.s.view(exec, func(st *state) error {
		for _, existing := range st.entries {
			if existing.EventDayID == e.EventDayID && existing.BullPairID == e.BullPairID {
				return nil
			}
		}
		now := r.s.now()
		e.ID = st.id()
		e.CreatedAt, e.UpdatedAt = now, now
		st.entries[e.ID] = cloneEntry(*e)
		inserted = true
		return nil
	})
	return inserted, err
}

func (r *dayEntryRepo) GetByID(_ context.Context, exec repositories.SQLExecutor, id int) (*models.DayEntry, error) {
	var out *models.DayEntry
	err := r.s.view(exec, func(st *state) error {
		e, ok := st.entries[id]
		if !ok {
			return repositories.ErrDayEntryNotFound
		}
		c := cloneEntry(e)
		out = &c
		return nil
	})
	return out, err
}

func (r *dayEntryRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.DayEntry, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *dayEntryRepo) ListByDay(_ context.Context, exec repositories.SQLExecutor, dayID int) ([]models.DayEntry, error) {
	var out []models.DayEntry
	err := r.s.view(exec, func(st *state) error {
		out = st.filterEntries(func(e models.DayEntry) bool { return e.EventDayID == dayID })
		return nil
	})
	return out, err
}

func (r *dayEntryRepo) FindPlaying(_ context.Context, exec repositories.SQLExecutor, dayID int) (*models.DayEntry, error) {
	var out *models.DayEntry
	err := r.s.view(exec, func(st *state) error {
		found := st.filterEntries(func(e models.DayEntry) bool {
			return e.EventDayID == dayID && e.GameStatus == models.GameStatusPlaying
		})
		if len(found) > 0 {
			out = &found[0]
		}
		return nil
	})
	return out, err
}

func (r *dayEntryRepo) FindActiveOnOtherDay(_ context.Context, exec repositories.SQLExecutor, bullPairID, dayID int) (*models.DayEntry, error) {
	var out *models.DayEntry
	err := r.s.view(exec, func(st *state) error {
		found := st.filterEntries(func(e models.DayEntry) bool {
			if e.BullPairID != bullPairID || e.EventDayID == dayID {
				return false
			}
			if e.GameStatus != models.GameStatusNext && e.GameStatus != models.GameStatusPlaying {
				return false
			}
			return st.days[e.EventDayID].Status == models.DayStatusOngoing
		})
		if len(found) > 0 {
			out = &found[0]
		}
		return nil
	})
	return out, err
}

func (r *dayEntryRepo) FindPlayingOnOtherDay(_ context.Context, exec repositories.SQLExecutor, bullPairID, dayID int) (*models.DayEntry, error) {
	var out *models.DayEntry
	err := r.s.view(exec, func(st *state) error {
		found := st.filterEntries(func(e models.DayEntry) bool {
			return e.BullPairID == bullPairID && e.EventDayID != dayID &&
				e.GameStatus == models.GameStatusPlaying &&
				st.days[e.EventDayID].Status == models.DayStatusOngoing
		})
		if len(found) > 0 {
			out = &found[0]
		}
		return nil
	})
	return out, err
}

func (r *dayEntryRepo) UpdateStatus(_ context.Context, exec repositories.SQLExecutor, id int, status models.GameStatus, playedAt *time.Time) error {
	return r.s.view(exec, func(st *state) error {
		e, ok := st.entries[id]
		if !ok {
			return repositories.ErrDayEntryNotFound
		}
		if status == models.GameStatusPlaying {
			for _, other := range st.entries {
				if other.ID != id && other.EventDayID == e.EventDayID && other.GameStatus == models.GameStatusPlaying {
					return repositories.ErrEntryPlayingConflict
				}
			}
		}
		e.GameStatus = status
		if e.PlayedAt == nil {
			e.PlayedAt = clonePtr(playedAt)
		}
		e.UpdatedAt = r.s.now()
		st.entries[id] = e
		return nil
	})
}

func (r *dayEntryRepo) UpdatePerformance(_ context.Context, exec repositories.SQLExecutor, id int, perf models.Performance) error {
	return r.s.view(exec, func(st *state) error {
		e, ok := st.entries[id]
		if !ok {
			return repositories.ErrDayEntryNotFound
		}
		e.Performance = perf
		e = cloneEntry(e)
		e.UpdatedAt = r.s.now()
		st.entries[id] = e
		return nil
	})
}

func (r *dayEntryRepo) ResetResults(_ context.Context, exec repositories.SQLExecutor, dayID int) error {
	return r.s.view(exec, func(st *state) error {
		for id, e := range st.entries {
			if e.EventDayID != dayID {
				continue
			}
			e.Rank, e.ResultCalculated, e.IsWinner = nil, false, false
			e.WinnerPrizeMoney.Valid = false
			st.entries[id] = e
		}
		return nil
	})
}

func (r *dayEntryRepo) AssignRank(_ context.Context, exec repositories.SQLExecutor, id int, rank int) error {
	return r.s.view(exec, func(st *state) error {
		e, ok := st.entries[id]
		if !ok {
			return repositories.ErrDayEntryNotFound
		}
		e.Rank, e.ResultCalculated, e.IsWinner = &rank, true, false
		e.UpdatedAt = r.s.now()
		st.entries[id] = e
		return nil
	})
}

func (r *dayEntryRepo) ListCompleted(_ context.Context, filter repositories.EntryStatsFilter) ([]models.DayEntry, error) {
	var out []models.DayEntry
	err := r.s.view(nil, func(st *state) error {
		out = st.filterEntries(func(e models.DayEntry) bool {
			switch {
			case e.GameStatus != models.GameStatusCompleted:
				return false
			case filter.EventID != nil && e.EventID != *filter.EventID:
				return false
			case filter.EventDayID != nil && e.EventDayID != *filter.EventDayID:
				return false
			case filter.BullPairID != nil && e.BullPairID != *filter.BullPairID:
				return false
			case filter.TeamID != nil && e.TeamID != *filter.TeamID:
				return false
			case filter.RankedOnly && !e.ResultCalculated:
				return false
			}
			return true
		})
		return nil
	})
	return out, err
}

func (st *state) filterEntries(keep func(models.DayEntry) bool) []models.DayEntry {
	out := make([]models.DayEntry, 0)
	for _, e := range st.entries {
		if keep(e) {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- teams ---

type teamRepo struct{ s *Store }

func (r *teamRepo) GetByID(_ context.Context, exec repositories.SQLExecutor, id int) (*models.Team, error) {
	var out *models.Team
	err := r.s.view(exec, func(st *state) error {
		t, ok := st.teams[id]
		if !ok {
			return repositories.ErrTeamNotFound
		}
		c := cloneTeam(t)
		out = &c
		return nil
	})
	return out, err
}

func (r *teamRepo) CountActive(_ context.Context) (int, int, error) {
	var teams, pairs int
	err := r.s.view(nil, func(st *state) error {
		for _, t := range st.teams {
			if t.IsActive {
				teams++
				pairs += len(t.BullPairs)
			}
		}
		return nil
	})
	return teams, pairs, err
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
