package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/bullpair-events/services"
)

type StatsHandler struct {
	statsService services.StatsService
	logger       *slog.Logger
}

func NewStatsHandler(s services.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{statsService: s, logger: logger}
}

func parseStatsFilter(r *http.Request) (services.StatsFilter, error) {
	var filter services.StatsFilter
	eventID, err := queryInt(r, "eventId", 1)
	if err != nil {
		return filter, err
	}
	rankedOnly, err := queryBool(r, "rankedOnly")
	if err != nil {
		return filter, err
	}
	filter.EventID = eventID
	filter.RankedOnly = rankedOnly
	return filter, nil
}

// PairStats godoc
// @Summary Статистика по парам быков
// @Tags stats
// @Produce json
// @Param eventId query int false "Только заезды этого события"
// @Param rankedOnly query bool false "Только заезды с рассчитанным местом"
// @Success 200 {object} map[string]interface{}
// @Router /stats/bullpairs [get]
func (h *StatsHandler) PairStats(w http.ResponseWriter, r *http.Request) {
	filter, err := parseStatsFilter(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stats, err := h.statsService.PairStats(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"bullpairs": stats})
}

// TeamStats godoc
// @Summary Статистика по командам
// @Tags stats
// @Produce json
// @Param eventId query int false "Только заезды этого события"
// @Param rankedOnly query bool false "Только заезды с рассчитанным местом"
// @Success 200 {object} map[string]interface{}
// @Router /stats/teams [get]
func (h *StatsHandler) TeamStats(w http.ResponseWriter, r *http.Request) {
	filter, err := parseStatsFilter(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stats, err := h.statsService.TeamStats(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"teams": stats})
}

// Leaderboard godoc
// @Summary Таблица результатов дня
// @Tags stats
// @Produce json
// @Param dayID path int true "Event day ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "День не найден"
// @Router /stats/event-days/{dayID}/leaderboard [get]
func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	dayID, err := getIDFromURL(r, "dayID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	rows, err := h.statsService.DayLeaderboard(r.Context(), dayID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"leaderboard": rows})
}

// Dashboard godoc
// @Summary Общие счётчики
// @Tags stats
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /stats/dashboard [get]
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.Dashboard(r.Context())
	if err != nil {
		serverErrorResponse(w, r, h.logger, err)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, stats)
}
