package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/repositories"
	"github.com/Dosada05/bullpair-events/services"
)

const defaultPageSize = 20

type winnersInput struct {
	Winners models.Winners `json:"winners"`
}

type EventHandler struct {
	eventService services.EventService
	logger       *slog.Logger
}

func NewEventHandler(es services.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		eventService: es,
		logger:       logger,
	}
}

// Create godoc
// @Summary Создать событие
// @Tags events
// @Accept json
// @Produce json
// @Param body body services.CreateEventInput true "Данные события"
// @Success 201 {object} map[string]interface{} "Событие создано"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Только для администратора"
// @Security BearerAuth
// @Router /events [post]
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.CreateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusCreated, jsonResponse{"event": event})
}

// List godoc
// @Summary Список событий
// @Tags events
// @Produce json
// @Param state query string false "UPCOMING | ONGOING | COMPLETED"
// @Param limit query int false "Размер страницы (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Неверные параметры"
// @Router /events [get]
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListEventsFilter{Limit: defaultPageSize}
	if s := r.URL.Query().Get("state"); s != "" {
		state := models.EventState(s)
		filter.State = &state
	}
	limit, err := queryInt(r, "limit", 1)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if limit != nil {
		filter.Limit = *limit
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if offset != nil {
		filter.Offset = *offset
	}

	events, err := h.eventService.ListEvents(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"events": events})
}

// Get godoc
// @Summary Получить событие
// @Tags events
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Router /events/{eventID} [get]
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"event": event})
}

// Update godoc
// @Summary Изменить описание события
// @Description Разрешено, пока ни один день события не начался.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path int true "Event ID"
// @Param body body services.UpdateEventInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Failure 409 {object} map[string]string "День события уже начался"
// @Security BearerAuth
// @Router /events/{eventID} [patch]
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.UpdateDetails(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"event": event})
}

// UpdateStatus godoc
// @Summary Перевести событие в следующее состояние
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path int true "Event ID"
// @Param body body statusInput true "Новое состояние"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Недопустимый переход"
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Security BearerAuth
// @Router /events/{eventID}/status [patch]
func (h *EventHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	status, err := readStatus(w, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.TransitionState(r.Context(), id, models.EventState(status))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"event": event})
}

// AddWinners godoc
// @Summary Записать победителей завершённого события
// @Description Заменяет список победителей целиком.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path int true "Event ID"
// @Param body body winnersInput true "Победители"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 409 {object} map[string]string "Событие не завершено"
// @Security BearerAuth
// @Router /events/{eventID}/winners [post]
func (h *EventHandler) AddWinners(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input winnersInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.AddWinners(r.Context(), id, input.Winners)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"event": event})
}

// Delete godoc
// @Summary Удалить событие без дней и заявок
// @Tags events
// @Param eventID path int true "Event ID"
// @Success 204 "Удалено"
// @Failure 404 {object} map[string]string "Событие не найдено"
// @Failure 409 {object} map[string]string "У события есть дни или заявки"
// @Security BearerAuth
// @Router /events/{eventID} [delete]
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.eventService.DeleteEvent(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
