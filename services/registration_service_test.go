package services

import (
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/bullpair-events/models"
)

func TestRegisterDeadline(t *testing.T) {
	tests := []struct {
		name    string
		offset  time.Duration
		wantErr error
	}{
		{name: "before start", offset: -48 * time.Hour},
		{name: "after start before end", offset: -time.Second},
		{name: "exactly at end", offset: 0, wantErr: ErrConflict},
		{name: "after end", offset: time.Minute, wantErr: ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedTeam(1, 1)
			event := f.createEvent(t)
			f.now = event.EndsAt.Add(tt.offset)

			reg, err := f.regs.Register(ctx, ownerOf(1), event.ID, RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{11}})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reg.Status != models.RegistrationPending || reg.TeamID != 1 || reg.RegisteredBy != ownerOf(1).UserID {
				t.Fatalf("registration = %+v", reg)
			}
		})
	}
}

func TestRegisterPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, f *fixture, eventID int)
		actor   models.Actor
		input   RegisterInput
		wantErr error
	}{
		{
			name:  "owner registers",
			actor: ownerOf(1),
			input: RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{11, 12}, MemberIDs: []int{101}},
		},
		{
			name:  "admin registers any team",
			actor: admin,
			input: RegisterInput{TeamID: 1, CaptainName: "Ravi", BullPairIDs: []int{11}},
		},
		{
			name:    "no team on token",
			actor:   models.Actor{UserID: 500, Role: models.RoleUser},
			input:   RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{11}},
			wantErr: ErrForbiddenOperation,
		},
		{
			name:    "blank captain",
			actor:   ownerOf(1),
			input:   RegisterInput{CaptainName: " ", BullPairIDs: []int{11}},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "no pairs",
			actor:   ownerOf(1),
			input:   RegisterInput{CaptainName: "Ravi"},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "repeated pair",
			actor:   ownerOf(1),
			input:   RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{11, 11}},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "pair of another team",
			actor:   ownerOf(1),
			input:   RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{21}},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "member of another team",
			actor:   ownerOf(1),
			input:   RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{11}, MemberIDs: []int{200}},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "caller not on team",
			actor:   models.Actor{UserID: 200, Role: models.RoleUser},
			input:   RegisterInput{TeamID: 1, CaptainName: "Ravi", BullPairIDs: []int{11}},
			wantErr: ErrForbiddenOperation,
		},
		{
			name:    "unknown team",
			actor:   admin,
			input:   RegisterInput{TeamID: 9, CaptainName: "Ravi", BullPairIDs: []int{91}},
			wantErr: ErrForbiddenOperation,
		},
		{
			name: "team not approved",
			setup: func(t *testing.T, f *fixture, eventID int) {
				team := f.seedTeam(3, 1)
				team.Status = models.TeamStatusPending
				f.store.SeedTeam(team)
			},
			actor:   ownerOf(3),
			input:   RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{31}},
			wantErr: ErrForbiddenOperation,
		},
		{
			name: "team inactive",
			setup: func(t *testing.T, f *fixture, eventID int) {
				team := f.seedTeam(3, 1)
				team.IsActive = false
				f.store.SeedTeam(team)
			},
			actor:   ownerOf(3),
			input:   RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{31}},
			wantErr: ErrForbiddenOperation,
		},
		{
			name: "event completed",
			setup: func(t *testing.T, f *fixture, eventID int) {
				for _, s := range []models.EventState{models.EventStateOngoing, models.EventStateCompleted} {
					if _, err := f.events.TransitionState(ctx, eventID, s); err != nil {
						t.Fatal(err)
					}
				}
			},
			actor:   ownerOf(1),
			input:   RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{11}},
			wantErr: ErrConflict,
		},
		{
			name: "all days completed",
			setup: func(t *testing.T, f *fixture, eventID int) {
				day := f.ongoingDay(t, eventID, "2026-01-11")
				if _, err := f.days.TransitionDayStatus(ctx, day.ID, models.DayStatusCompleted); err != nil {
					t.Fatal(err)
				}
			},
			actor:   ownerOf(1),
			input:   RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{11}},
			wantErr: ErrConflict,
		},
		{
			name: "one day still open",
			setup: func(t *testing.T, f *fixture, eventID int) {
				day := f.ongoingDay(t, eventID, "2026-01-11")
				if _, err := f.days.TransitionDayStatus(ctx, day.ID, models.DayStatusCompleted); err != nil {
					t.Fatal(err)
				}
				f.createDay(t, eventID, "2026-01-12")
			},
			actor: ownerOf(1),
			input: RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{11}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedTeam(1, 2)
			f.seedTeam(2, 1)
			event := f.createEvent(t)
			if tt.setup != nil {
				tt.setup(t, f, event.ID)
			}
			_, err := f.regs.Register(ctx, tt.actor, event.ID, tt.input)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterUnknownEvent(t *testing.T) {
	f := newFixture(t)
	f.seedTeam(1, 1)
	tests := []struct {
		name  string
		actor models.Actor
	}{
		{name: "team owner", actor: ownerOf(1)},
		{name: "caller without team", actor: models.Actor{UserID: 500, Role: models.RoleUser}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.regs.Register(ctx, tt.actor, 42, RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{11}})
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("err = %v, want not found", err)
			}
		})
	}
}

func TestRegisterTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	f.seedTeam(1, 2)
	event := f.createEvent(t)

	input := RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{11}}
	if _, err := f.regs.Register(ctx, ownerOf(1), event.ID, input); err != nil {
		t.Fatal(err)
	}
	input.BullPairIDs = []int{12}
	if _, err := f.regs.Register(ctx, ownerOf(1), event.ID, input); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	regs, err := f.regs.ListRegistrations(ctx, event.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(regs) != 1 {
		t.Fatalf("registrations = %d, want 1", len(regs))
	}
}

func TestDecideRegistration(t *testing.T) {
	reason := "incomplete documents"
	tests := []struct {
		name    string
		input   DecisionInput
		wantErr error
	}{
		{name: "approve", input: DecisionInput{Status: models.RegistrationApproved}},
		{name: "reject with reason", input: DecisionInput{Status: models.RegistrationRejected, Reason: &reason}},
		{name: "reject without reason", input: DecisionInput{Status: models.RegistrationRejected}, wantErr: ErrValidationFailed},
		{name: "back to pending", input: DecisionInput{Status: models.RegistrationPending}, wantErr: ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedTeam(1, 1)
			event := f.createEvent(t)
			reg, err := f.regs.Register(ctx, ownerOf(1), event.ID, RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{11}})
			if err != nil {
				t.Fatal(err)
			}

			decided, err := f.regs.DecideRegistration(ctx, admin, reg.ID, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if decided.Status != tt.input.Status {
				t.Errorf("status = %s, want %s", decided.Status, tt.input.Status)
			}
			if decided.DecidedBy == nil || *decided.DecidedBy != admin.UserID || decided.DecidedAt == nil {
				t.Errorf("decision audit not recorded: %+v", decided)
			}
			if tt.input.Status == models.RegistrationRejected && (decided.RejectionReason == nil || *decided.RejectionReason != reason) {
				t.Errorf("rejection reason = %v", decided.RejectionReason)
			}

			// решение принимается один раз
			_, err = f.regs.DecideRegistration(ctx, admin, reg.ID, DecisionInput{Status: models.RegistrationApproved})
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("second decision: err = %v, want invalid transition", err)
			}
		})
	}
}

func TestApprovedParticipantsOrder(t *testing.T) {
	f := newFixture(t)
	for id := 1; id <= 3; id++ {
		f.seedTeam(id, 1)
	}
	event := f.createEvent(t)

	third := f.approvedRegistration(t, event.ID, 3, 31)
	f.now = f.now.Add(time.Minute)
	first := f.approvedRegistration(t, event.ID, 1, 11)
	f.now = f.now.Add(time.Minute)
	pending, err := f.regs.Register(ctx, ownerOf(2), event.ID, RegisterInput{CaptainName: "Ravi", BullPairIDs: []int{21}})
	if err != nil {
		t.Fatal(err)
	}

	participants, err := f.regs.GetApprovedParticipants(ctx, event.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(participants) != 2 {
		t.Fatalf("participants = %d, want 2", len(participants))
	}
	if participants[0].ID != third.ID || participants[1].ID != first.ID {
		t.Fatalf("order = [%d %d], want [%d %d]", participants[0].ID, participants[1].ID, third.ID, first.ID)
	}
	for i, p := range participants {
		if p.RegistrationOrder != i+1 {
			t.Errorf("participant %d order = %d", p.ID, p.RegistrationOrder)
		}
		if p.ID == pending.ID {
			t.Errorf("pending registration listed as participant")
		}
	}

	status := models.RegistrationPending
	regs, err := f.regs.ListRegistrations(ctx, event.ID, &status)
	if err != nil {
		t.Fatal(err)
	}
	if len(regs) != 1 || regs[0].ID != pending.ID {
		t.Fatalf("pending registrations = %+v", regs)
	}
}

func TestGetMyRegistration(t *testing.T) {
	f := newFixture(t)
	f.seedTeam(1, 1)
	event := f.createEvent(t)

	reg, err := f.regs.GetMyRegistration(ctx, event.ID, 1)
	if err != nil || reg != nil {
		t.Fatalf("before registering: reg = %v, err = %v", reg, err)
	}
	created := f.approvedRegistration(t, event.ID, 1, 11)
	reg, err = f.regs.GetMyRegistration(ctx, event.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if reg == nil || reg.ID != created.ID {
		t.Fatalf("reg = %+v, want id %d", reg, created.ID)
	}
	if _, err := f.regs.GetMyRegistration(ctx, 77, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown event: err = %v, want not found", err)
	}
}
