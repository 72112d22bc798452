package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/repositories/memrepo"
	"github.com/shopspring/decimal"
)

var (
	admin = models.Actor{UserID: 1, Role: models.RoleAdmin}
	ctx   = context.Background()
)

type recordingPublisher struct {
	mu     sync.Mutex
	sheets []models.DayResultSheet
}

func (p *recordingPublisher) PublishDayResults(_ context.Context, sheet models.DayResultSheet) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sheets = append(p.sheets, sheet)
	return "mem://results", nil
}

type fixture struct {
	store     *memrepo.Store
	now       time.Time
	publisher *recordingPublisher
	events    EventService
	regs      RegistrationService
	days      EventDayService
	game      GameplayService
	stats     StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		store:     memrepo.New(),
		now:       time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
		publisher: &recordingPublisher{},
	}
	clock := func() time.Time { return f.now }
	s := f.store
	f.events = NewEventService(s.Transactor(), s.Events(), s.EventDays(), logger)
	f.regs = NewRegistrationService(s.Transactor(), s.Events(), s.EventDays(), s.Registrations(), s.Teams(), logger, clock)
	f.days = NewEventDayService(s.Transactor(), s.Events(), s.EventDays(), logger)
	f.game = NewGameplayService(s.Transactor(), s.EventDays(), s.Registrations(), s.DayEntries(), s.Teams(), f.publisher, logger, clock)
	f.stats = NewStatsService(s.Events(), s.EventDays(), s.DayEntries(), s.Teams())
	return f
}

// seedTeam stores an approved, active team whose owner has userID = teamID*100.
// Pair ids are teamID*10+1 .. teamID*10+n, all in category AGE_GROUP/JUNIOR unless overridden.
func (f *fixture) seedTeam(teamID int, pairs int, categories ...models.Category) models.Team {
	team := models.Team{
		ID:       teamID,
		Name:     "Team " + string(rune('A'+teamID-1)),
		Status:   models.TeamStatusApproved,
		IsActive: true,
		Members: []models.TeamMember{
			{ID: teamID * 100, TeamID: teamID, UserID: teamID * 100, Name: "Owner", Role: models.MemberRoleOwner},
			{ID: teamID*100 + 1, TeamID: teamID, UserID: teamID*100 + 1, Name: "Member", Role: models.MemberRoleMember},
		},
	}
	for i := 1; i <= pairs; i++ {
		cat := models.Category{Type: models.CategoryAgeGroup, Value: "JUNIOR"}
		if i-1 < len(categories) {
			cat = categories[i-1]
		}
		team.BullPairs = append(team.BullPairs, models.BullPair{
			ID: teamID*10 + i, TeamID: teamID, BullA: "Raja", BullB: "Mani", Category: cat,
		})
	}
	f.store.SeedTeam(team)
	return team
}

func ownerOf(teamID int) models.Actor {
	return models.Actor{UserID: teamID * 100, Role: models.RoleUser, TeamID: teamID}
}

func (f *fixture) createEvent(t *testing.T) *models.Event {
	t.Helper()
	event, err := f.events.CreateEvent(ctx, admin, CreateEventInput{
		Title:     "Sankranti Bull Race",
		Venue:     "Village Ground",
		City:      "Ongole",
		StartsAt:  f.now.Add(24 * time.Hour),
		EndsAt:    f.now.Add(72 * time.Hour),
		PrizePool: decimal.NewFromInt(100000),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

func (f *fixture) approvedRegistration(t *testing.T, eventID, teamID int, pairIDs ...int) *models.EventRegistration {
	t.Helper()
	reg, err := f.regs.Register(ctx, ownerOf(teamID), eventID, RegisterInput{
		CaptainName: "Captain",
		BullPairIDs: pairIDs,
	})
	if err != nil {
		t.Fatalf("register team %d: %v", teamID, err)
	}
	reg, err = f.regs.DecideRegistration(ctx, admin, reg.ID, DecisionInput{Status: models.RegistrationApproved})
	if err != nil {
		t.Fatalf("approve registration: %v", err)
	}
	return reg
}

func (f *fixture) createDay(t *testing.T, eventID int, date string) *models.EventDay {
	t.Helper()
	prize := decimal.NewFromInt(5000)
	day, err := f.days.CreateDay(ctx, eventID, CreateDayInput{Date: date, PrizeMoney: &prize})
	if err != nil {
		t.Fatalf("create day %s: %v", date, err)
	}
	return day
}

func (f *fixture) ongoingDay(t *testing.T, eventID int, date string) *models.EventDay {
	t.Helper()
	day := f.createDay(t, eventID, date)
	day, err := f.days.TransitionDayStatus(ctx, day.ID, models.DayStatusOngoing)
	if err != nil {
		t.Fatalf("start day: %v", err)
	}
	return day
}

func (f *fixture) schedule(t *testing.T, dayID int, reg *models.EventRegistration, pairIDs ...int) map[int]models.DayEntry {
	t.Helper()
	inputs := make([]models.NewDayEntryInput, 0, len(pairIDs))
	for _, id := range pairIDs {
		inputs = append(inputs, models.NewDayEntryInput{RegistrationID: reg.ID, TeamID: reg.TeamID, BullPairID: id})
	}
	entries, err := f.game.AddPairsToDay(ctx, dayID, inputs)
	if err != nil {
		t.Fatalf("add pairs: %v", err)
	}
	byPair := make(map[int]models.DayEntry, len(entries))
	for _, e := range entries {
		byPair[e.BullPairID] = e
	}
	return byPair
}

// play runs an entry through PLAYING, records its performance and completes it.
func (f *fixture) play(t *testing.T, entryID int, distance, seconds float64) {
	t.Helper()
	if _, err := f.game.TransitionEntryStatus(ctx, entryID, models.GameStatusPlaying); err != nil {
		t.Fatalf("start entry %d: %v", entryID, err)
	}
	weight := 600.0
	if _, err := f.game.RecordPerformance(ctx, entryID, PerformanceInput{
		RockWeightKg: &weight, DistanceMeters: &distance, TimeSeconds: &seconds,
	}); err != nil {
		t.Fatalf("record entry %d: %v", entryID, err)
	}
	if _, err := f.game.TransitionEntryStatus(ctx, entryID, models.GameStatusCompleted); err != nil {
		t.Fatalf("complete entry %d: %v", entryID, err)
	}
}
