package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/repositories"
)

type RegisterInput struct {
	// TeamID defaults to the team carried by the caller's token.
	TeamID      int    `json:"team_id"`
	CaptainName string `json:"captain_name"`
	BullPairIDs []int  `json:"bull_pair_ids"`
	MemberIDs   []int  `json:"member_ids"`
}

type DecisionInput struct {
	Status     models.RegistrationStatus `json:"status"`
	Reason     *string                   `json:"reason"`
	AdminNotes *string                   `json:"admin_notes"`
}

type RegistrationService interface {
	Register(ctx context.Context, actor models.Actor, eventID int, input RegisterInput) (*models.EventRegistration, error)
	// GetMyRegistration returns nil without error when the team has not registered.
	GetMyRegistration(ctx context.Context, eventID, teamID int) (*models.EventRegistration, error)
	GetApprovedParticipants(ctx context.Context, eventID int) ([]models.EventRegistration, error)
	ListRegistrations(ctx context.Context, eventID int, status *models.RegistrationStatus) ([]models.EventRegistration, error)
	DecideRegistration(ctx context.Context, actor models.Actor, registrationID int, input DecisionInput) (*models.EventRegistration, error)
}

type registrationService struct {
	tx        repositories.Transactor
	eventRepo repositories.EventRepository
	dayRepo   repositories.EventDayRepository
	regRepo   repositories.RegistrationRepository
	teamRepo  repositories.TeamRepository
	logger    *slog.Logger
	now       Clock
}

func NewRegistrationService(
	tx repositories.Transactor,
	eventRepo repositories.EventRepository,
	dayRepo repositories.EventDayRepository,
	regRepo repositories.RegistrationRepository,
	teamRepo repositories.TeamRepository,
	logger *slog.Logger,
	clock Clock,
) RegistrationService {
	return &registrationService{
		tx:        tx,
		eventRepo: eventRepo,
		dayRepo:   dayRepo,
		regRepo:   regRepo,
		teamRepo:  teamRepo,
		logger:    logger,
		now:       clockOrDefault(clock),
	}
}

func validateRegisterInput(input RegisterInput) error {
	switch {
	case isBlank(input.CaptainName):
		return validationError("captain name is required")
	case len(input.BullPairIDs) == 0:
		return validationError("at least one bull pair must be selected")
	case hasDuplicates(input.BullPairIDs):
		return validationError("bull pairs must not be repeated")
	case hasDuplicates(input.MemberIDs):
		return validationError("members must not be repeated")
	}
	return nil
}

// checkRoster is the registration gate: the team must be approved and active, the caller must
// be on it, and the selected pairs and members must belong to its current roster.
func checkRoster(team *models.Team, actor models.Actor, pairIDs, memberIDs []int) error {
	if !team.IsApprovedAndActive() {
		return forbiddenError("team is not approved or not active")
	}
	if !actor.IsAdmin() && !team.HasUser(actor.UserID) {
		return forbiddenError("only the team owner or its members can register the team")
	}
	for _, id := range pairIDs {
		if _, ok := team.FindBullPair(id); !ok {
			return validationError("bull pair %d does not belong to team %d", id, team.ID)
		}
	}
	for _, id := range memberIDs {
		if !team.HasMember(id) {
			return validationError("member %d does not belong to team %d", id, team.ID)
		}
	}
	return nil
}

func (s *registrationService) Register(ctx context.Context, actor models.Actor, eventID int, input RegisterInput) (*models.EventRegistration, error) {
	if input.TeamID == 0 {
		input.TeamID = actor.TeamID
	}
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	reg := &models.EventRegistration{
		EventID:      eventID,
		TeamID:       input.TeamID,
		RegisteredBy: actor.UserID,
		CaptainName:  input.CaptainName,
		BullPairIDs:  input.BullPairIDs,
		MemberIDs:    input.MemberIDs,
		Status:       models.RegistrationPending,
	}
	if reg.MemberIDs == nil {
		reg.MemberIDs = []int{}
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		event, err := s.eventRepo.GetByID(ctx, exec, eventID)
		if err != nil {
			return err
		}
		if event.State == models.EventStateCompleted {
			return conflictError("registration is closed: event is completed")
		}
		if !event.RegistrationOpenAt(s.now()) {
			return conflictError("registration is closed: the event has ended")
		}

		if input.TeamID <= 0 {
			return forbiddenError("caller is not on any team")
		}
		team, err := s.teamRepo.GetByID(ctx, exec, input.TeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return forbiddenError("team is not approved or not active")
			}
			return err
		}
		if err := checkRoster(team, actor, input.BullPairIDs, input.MemberIDs); err != nil {
			return err
		}

		days, err := s.dayRepo.ListByEvent(ctx, exec, eventID)
		if err != nil {
			return err
		}
		if len(days) > 0 && allDaysCompleted(days) {
			return conflictError("registration is closed: all event days are completed")
		}

		return s.regRepo.Create(ctx, exec, reg)
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.Info("team registered for event",
		slog.Int("event_id", eventID),
		slog.Int("team_id", reg.TeamID),
		slog.Int("registration_id", reg.ID))
	return reg, nil
}

func allDaysCompleted(days []models.EventDay) bool {
	for _, d := range days {
		if d.Status != models.DayStatusCompleted {
			return false
		}
	}
	return true
}

func (s *registrationService) GetMyRegistration(ctx context.Context, eventID, teamID int) (*models.EventRegistration, error) {
	if _, err := s.eventRepo.GetByID(ctx, nil, eventID); err != nil {
		return nil, mapRepositoryError(err)
	}
	if teamID <= 0 {
		return nil, nil
	}
	reg, err := s.regRepo.GetByEventAndTeam(ctx, nil, eventID, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, nil
		}
		return nil, mapRepositoryError(err)
	}
	return reg, nil
}

func (s *registrationService) GetApprovedParticipants(ctx context.Context, eventID int) ([]models.EventRegistration, error) {
	approved := models.RegistrationApproved
	regs, err := s.ListRegistrations(ctx, eventID, &approved)
	if err != nil {
		return nil, err
	}
	for i := range regs {
		regs[i].RegistrationOrder = i + 1
	}
	return regs, nil
}

func (s *registrationService) ListRegistrations(ctx context.Context, eventID int, status *models.RegistrationStatus) ([]models.EventRegistration, error) {
	if status != nil && !status.IsValid() {
		return nil, validationError("unknown registration status %q", *status)
	}
	if _, err := s.eventRepo.GetByID(ctx, nil, eventID); err != nil {
		return nil, mapRepositoryError(err)
	}
	regs, err := s.regRepo.ListByEvent(ctx, eventID, status)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return regs, nil
}

func (s *registrationService) DecideRegistration(ctx context.Context, actor models.Actor, registrationID int, input DecisionInput) (*models.EventRegistration, error) {
	switch input.Status {
	case models.RegistrationApproved:
	case models.RegistrationRejected:
		if input.Reason == nil || isBlank(*input.Reason) {
			return nil, validationError("a reason is required to reject a registration")
		}
	default:
		return nil, validationError("status must be APPROVED or REJECTED")
	}

	var decided *models.EventRegistration
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		reg, err := s.regRepo.GetForUpdate(ctx, exec, registrationID)
		if err != nil {
			return err
		}
		if reg.Status != models.RegistrationPending {
			return invalidTransitionError("registration", reg.Status, input.Status)
		}

		now := s.now()
		adminID := actor.UserID
		reg.Status = input.Status
		reg.AdminNotes = input.AdminNotes
		reg.DecidedBy = &adminID
		reg.DecidedAt = &now
		reg.RejectionReason = nil
		if input.Status == models.RegistrationRejected {
			reg.RejectionReason = input.Reason
		}
		if err := s.regRepo.UpdateDecision(ctx, exec, reg); err != nil {
			return err
		}
		decided = reg
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.Info("registration decided",
		slog.Int("registration_id", registrationID),
		slog.String("status", string(input.Status)),
		slog.Int("decided_by", actor.UserID))
	return decided, nil
}
