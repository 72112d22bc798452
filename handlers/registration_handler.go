package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
	logger              *slog.Logger
}

func NewRegistrationHandler(rs services.RegistrationService, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: rs,
		logger:              logger,
	}
}

// Register godoc
// @Summary Подать заявку команды на событие
// @Description team_id по умолчанию берётся из токена.
// @Tags registrations
// @Accept json
// @Produce json
// @Param eventID path int true "Event ID"
// @Param body body services.RegisterInput true "Состав заявки"
// @Success 201 {object} map[string]interface{} "Заявка создана"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 403 {object} map[string]string "Команда не одобрена или вызывающий не в команде"
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Failure 409 {object} map[string]string "Регистрация закрыта или уже подана"
// @Security BearerAuth
// @Router /events/{eventID}/register [post]
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.registrationService.Register(r.Context(), actor, eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusCreated, jsonResponse{"registration": reg})
}

// MyRegistration godoc
// @Summary Заявка команды вызывающего на событие
// @Description registration равно null, если команда не подавала заявку.
// @Tags registrations
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Security BearerAuth
// @Router /events/{eventID}/my-registration [get]
func (h *RegistrationHandler) MyRegistration(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	reg, err := h.registrationService.GetMyRegistration(r.Context(), eventID, actor.TeamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"registration": reg})
}

// Participants godoc
// @Summary Одобренные участники события в порядке регистрации
// @Tags registrations
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Router /events/{eventID}/participants [get]
func (h *RegistrationHandler) Participants(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	regs, err := h.registrationService.GetApprovedParticipants(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"participants": regs})
}

// List godoc
// @Summary Все заявки события (администратор)
// @Tags registrations
// @Produce json
// @Param eventID path int true "Event ID"
// @Param status query string false "PENDING | APPROVED | REJECTED"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Неизвестный статус"
// @Security BearerAuth
// @Router /events/{eventID}/registrations [get]
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var status *models.RegistrationStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := models.RegistrationStatus(s)
		status = &st
	}

	regs, err := h.registrationService.ListRegistrations(r.Context(), eventID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"registrations": regs})
}

// Decide godoc
// @Summary Одобрить или отклонить заявку
// @Tags registrations
// @Accept json
// @Produce json
// @Param registrationID path int true "Registration ID"
// @Param body body services.DecisionInput true "Решение"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации или заявка уже рассмотрена"
// @Failure 404 {object} map[string]string "Заявка не найдена"
// @Security BearerAuth
// @Router /registrations/{registrationID}/status [patch]
func (h *RegistrationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.DecisionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.registrationService.DecideRegistration(r.Context(), actor, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"registration": reg})
}
