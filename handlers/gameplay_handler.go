package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/services"
)

type GameplayHandler struct {
	gameplayService services.GameplayService
	logger          *slog.Logger
}

func NewGameplayHandler(gs services.GameplayService, logger *slog.Logger) *GameplayHandler {
	return &GameplayHandler{
		gameplayService: gs,
		logger:          logger,
	}
}

type addPairsInput struct {
	Entries []models.NewDayEntryInput `json:"entries"`
}

// AddPairs godoc
// @Summary Поставить пары быков в очередь дня
// @Description Повторное добавление той же пары ничего не меняет. Пакет применяется целиком или не применяется.
// @Tags gameplay
// @Accept json
// @Produce json
// @Param dayID path int true "Event day ID"
// @Param body body addPairsInput true "Пары из одобренных заявок"
// @Success 200 {object} map[string]interface{} "Все заезды дня"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 404 {object} map[string]string "День или заявка не найдены"
// @Failure 409 {object} map[string]string "Заявка не одобрена, день завершён или пара занята в другом дне"
// @Security BearerAuth
// @Router /event-days/{dayID}/bullpairs [post]
func (h *GameplayHandler) AddPairs(w http.ResponseWriter, r *http.Request) {
	dayID, err := getIDFromURL(r, "dayID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input addPairsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.gameplayService.AddPairsToDay(r.Context(), dayID, input.Entries)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"entries": entries})
}

// ListEntries godoc
// @Summary Заезды дня в порядке выступления
// @Tags gameplay
// @Produce json
// @Param dayID path int true "Event day ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "День не найден"
// @Router /event-days/{dayID}/bullpairs [get]
func (h *GameplayHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	dayID, err := getIDFromURL(r, "dayID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.gameplayService.ListDayEntries(r.Context(), dayID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"entries": entries})
}

// UpdateEntryStatus godoc
// @Summary Сменить игровой статус пары
// @Description В каждом дне одновременно может играть только одна пара.
// @Tags gameplay
// @Accept json
// @Produce json
// @Param entryID path int true "Day entry ID"
// @Param body body statusInput true "NEXT | PLAYING | COMPLETED"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Недопустимый переход"
// @Failure 404 {object} map[string]string "Заезд не найден"
// @Failure 409 {object} map[string]string "Уже играет другая пара или день не идёт"
// @Security BearerAuth
// @Router /day-bullpairs/{entryID}/status [patch]
func (h *GameplayHandler) UpdateEntryStatus(w http.ResponseWriter, r *http.Request) {
	entryID, err := getIDFromURL(r, "entryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	status, err := readStatus(w, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.gameplayService.TransitionEntryStatus(r.Context(), entryID, models.GameStatus(status))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"entry": entry})
}

// RecordPerformance godoc
// @Summary Записать результат заезда
// @Tags gameplay
// @Accept json
// @Produce json
// @Param entryID path int true "Day entry ID"
// @Param body body services.PerformanceInput true "Вес камня, дистанция, время"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 409 {object} map[string]string "Пара ещё не играла или результаты зафиксированы"
// @Security BearerAuth
// @Router /day-bullpairs/{entryID}/performance [patch]
func (h *GameplayHandler) RecordPerformance(w http.ResponseWriter, r *http.Request) {
	entryID, err := getIDFromURL(r, "entryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PerformanceInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.gameplayService.RecordPerformance(r.Context(), entryID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"entry": entry})
}

// CalculateResults godoc
// @Summary Рассчитать места за день
// @Description Места считаются отдельно в каждой категории. Повторный расчёт даёт тот же результат.
// @Tags gameplay
// @Produce json
// @Param dayID path int true "Event day ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "День не найден"
// @Failure 409 {object} map[string]string "Не все пары завершили заезд или день закрыт"
// @Security BearerAuth
// @Router /event-days/{dayID}/results [post]
func (h *GameplayHandler) CalculateResults(w http.ResponseWriter, r *http.Request) {
	dayID, err := getIDFromURL(r, "dayID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.gameplayService.CalculateDayResults(r.Context(), dayID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"entries": entries})
}
