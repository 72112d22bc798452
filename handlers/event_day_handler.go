package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/services"
)

type EventDayHandler struct {
	dayService services.EventDayService
	logger     *slog.Logger
}

func NewEventDayHandler(ds services.EventDayService, logger *slog.Logger) *EventDayHandler {
	return &EventDayHandler{
		dayService: ds,
		logger:     logger,
	}
}

// Create godoc
// @Summary Добавить игровой день
// @Tags event-days
// @Accept json
// @Produce json
// @Param eventID path int true "Event ID"
// @Param body body services.CreateDayInput true "Дата (YYYY-MM-DD) и призовой фонд дня"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Failure 409 {object} map[string]string "Событие завершено или дата занята"
// @Security BearerAuth
// @Router /events/{eventID}/days [post]
func (h *EventDayHandler) Create(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateDayInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	day, err := h.dayService.CreateDay(r.Context(), eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusCreated, jsonResponse{"event_day": day})
}

// List godoc
// @Summary Дни события по дате
// @Tags event-days
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Router /events/{eventID}/days [get]
func (h *EventDayHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	days, err := h.dayService.ListDays(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"event_days": days})
}

// Get godoc
// @Summary Получить игровой день
// @Tags event-days
// @Produce json
// @Param dayID path int true "Event day ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "День не найден"
// @Router /event-days/{dayID} [get]
func (h *EventDayHandler) Get(w http.ResponseWriter, r *http.Request) {
	dayID, err := getIDFromURL(r, "dayID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	day, err := h.dayService.GetDay(r.Context(), dayID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"event_day": day})
}

// UpdateStatus godoc
// @Summary Перевести день в следующий статус
// @Tags event-days
// @Accept json
// @Produce json
// @Param dayID path int true "Event day ID"
// @Param body body statusInput true "Новый статус"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Недопустимый переход"
// @Failure 404 {object} map[string]string "День не найден"
// @Security BearerAuth
// @Router /event-days/{dayID}/status [patch]
func (h *EventDayHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	dayID, err := getIDFromURL(r, "dayID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	status, err := readStatus(w, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	day, err := h.dayService.TransitionDayStatus(r.Context(), dayID, models.DayStatus(status))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"event_day": day})
}
