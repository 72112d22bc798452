package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Dosada05/bullpair-events/handlers"
	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/repositories"
	"github.com/Dosada05/bullpair-events/repositories/memrepo"
	"github.com/Dosada05/bullpair-events/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
)

const secret = "routes-test-secret"

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

type envelope struct {
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Retryable bool            `json:"retryable"`
	Data      json.RawMessage `json:"data"`
}

type apiClient struct {
	t      *testing.T
	router http.Handler
}

func newAPI(t *testing.T) (*apiClient, *memrepo.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memrepo.New()
	store.SeedTeam(models.Team{
		ID: 1, Name: "Kaveri Riders", Status: models.TeamStatusApproved, IsActive: true,
		BullPairs: []models.BullPair{
			{ID: 11, TeamID: 1, BullA: "Raja", BullB: "Mani", Category: models.Category{Type: models.CategoryAgeGroup, Value: "JUNIOR"}},
			{ID: 12, TeamID: 1, BullA: "Veera", BullB: "Shiva", Category: models.Category{Type: models.CategoryAgeGroup, Value: "JUNIOR"}},
		},
		Members: []models.TeamMember{{ID: 100, TeamID: 1, UserID: 100, Name: "Ravi", Role: models.MemberRoleOwner}},
	})

	tx := store.Transactor()
	eventSvc := services.NewEventService(tx, store.Events(), store.EventDays(), logger)
	regSvc := services.NewRegistrationService(tx, store.Events(), store.EventDays(), store.Registrations(), store.Teams(), logger, nil)
	daySvc := services.NewEventDayService(tx, store.Events(), store.EventDays(), logger)
	gameSvc := services.NewGameplayService(tx, store.EventDays(), store.Registrations(), store.DayEntries(), store.Teams(), nil, logger, nil)
	statsSvc := services.NewStatsService(store.Events(), store.EventDays(), store.DayEntries(), store.Teams())

	router := chi.NewRouter()
	SetupRoutes(router, Options{
		JWTSecret:      secret,
		AllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout: 5 * time.Second,
		Logger:         logger,
	}, Handlers{
		Events:        handlers.NewEventHandler(eventSvc, logger),
		Registrations: handlers.NewRegistrationHandler(regSvc, logger),
		Days:          handlers.NewEventDayHandler(daySvc, logger),
		Gameplay:      handlers.NewGameplayHandler(gameSvc, logger),
		Stats:         handlers.NewStatsHandler(statsSvc, logger),
		Health:        handlers.NewHealthHandler(okPinger{}, logger),
	})
	return &apiClient{t: t, router: router}, store
}

func (c *apiClient) token(claims jwt.MapClaims) string {
	c.t.Helper()
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		c.t.Fatal(err)
	}
	return s
}

func (c *apiClient) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		reader = bytes.NewReader(js)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			c.t.Fatalf("%s %s: response is not JSON: %s", method, path, rec.Body.String())
		}
	}
	return rec, env
}

func (c *apiClient) expect(method, path, token string, body interface{}, status int, out interface{}) envelope {
	c.t.Helper()
	rec, env := c.do(method, path, token, body)
	if rec.Code != status {
		c.t.Fatalf("%s %s: status %d, want %d: %s", method, path, rec.Code, status, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			c.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
	return env
}

func TestEventDayFlow(t *testing.T) {
	api, store := newAPI(t)
	admin := api.token(jwt.MapClaims{"user_id": 1, "role": "admin"})
	owner := api.token(jwt.MapClaims{"user_id": 100, "role": "user", "team_id": 1})

	start := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	newEvent := map[string]interface{}{
		"title":      "Pongal Bull Race",
		"venue":      "Temple Ground",
		"city":       "Madurai",
		"starts_at":  start,
		"ends_at":    start.Add(48 * time.Hour),
		"prize_pool": "150000",
	}

	api.expect(http.MethodPost, "/api/events", "", newEvent, http.StatusUnauthorized, nil)
	api.expect(http.MethodPost, "/api/events", owner, newEvent, http.StatusForbidden, nil)

	var created struct {
		Event models.Event `json:"event"`
	}
	env := api.expect(http.MethodPost, "/api/events", admin, newEvent, http.StatusCreated, &created)
	if env.Status != "success" || created.Event.State != models.EventStateUpcoming {
		t.Fatalf("create event: %+v", env)
	}
	eventPath := "/api/events/" + strconv.Itoa(created.Event.ID)

	var reg struct {
		Registration models.EventRegistration `json:"registration"`
	}
	regBody := map[string]interface{}{"captain_name": "Ravi", "bull_pair_ids": []int{11, 12}}
	api.expect(http.MethodPost, eventPath+"/register", owner, regBody, http.StatusCreated, &reg)
	env = api.expect(http.MethodPost, eventPath+"/register", owner, regBody, http.StatusConflict, nil)
	if env.Status != "fail" || env.Retryable {
		t.Fatalf("duplicate registration envelope: %+v", env)
	}

	var mine struct {
		Registration *models.EventRegistration `json:"registration"`
	}
	api.expect(http.MethodGet, eventPath+"/my-registration", owner, nil, http.StatusOK, &mine)
	if mine.Registration == nil || mine.Registration.ID != reg.Registration.ID {
		t.Fatalf("my registration = %+v", mine.Registration)
	}

	decidePath := "/api/registrations/" + strconv.Itoa(reg.Registration.ID) + "/status"
	api.expect(http.MethodPatch, decidePath, owner, map[string]string{"status": "APPROVED"}, http.StatusForbidden, nil)
	api.expect(http.MethodPatch, decidePath, admin, map[string]string{"status": "APPROVED"}, http.StatusOK, nil)

	var day struct {
		EventDay models.EventDay `json:"event_day"`
	}
	api.expect(http.MethodPost, eventPath+"/days", admin, map[string]interface{}{"date": start.Format(models.DateLayout), "prize_money": "20000"}, http.StatusCreated, &day)
	dayPath := "/api/event-days/" + strconv.Itoa(day.EventDay.ID)
	api.expect(http.MethodPatch, dayPath+"/status", admin, map[string]string{"status": "COMPLETED"}, http.StatusBadRequest, nil)
	api.expect(http.MethodPatch, dayPath+"/status", admin, map[string]string{"status": "ONGOING"}, http.StatusOK, nil)

	var scheduled struct {
		Entries []models.DayEntry `json:"entries"`
	}
	api.expect(http.MethodPost, dayPath+"/bullpairs", admin, map[string]interface{}{
		"entries": []map[string]int{
			{"registration_id": reg.Registration.ID, "team_id": 1, "bull_pair_id": 11},
			{"registration_id": reg.Registration.ID, "team_id": 1, "bull_pair_id": 12},
		},
	}, http.StatusOK, &scheduled)
	if len(scheduled.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(scheduled.Entries))
	}

	entryPath := func(e models.DayEntry) string { return "/api/day-bullpairs/" + strconv.Itoa(e.ID) }
	byPair := make(map[int]models.DayEntry)
	for _, e := range scheduled.Entries {
		byPair[e.BullPairID] = e
	}
	first, second := byPair[11], byPair[12]

	store.FailNextTransaction(repositories.ErrTxContention)
	rec, env := api.do(http.MethodPatch, entryPath(first)+"/status", admin, map[string]string{"status": "PLAYING"})
	if rec.Code != http.StatusConflict || rec.Header().Get("Retry-After") != "1" || !env.Retryable {
		t.Fatalf("contention response: %d %q %+v", rec.Code, rec.Header().Get("Retry-After"), env)
	}

	api.expect(http.MethodPatch, entryPath(first)+"/status", admin, map[string]string{"status": "PLAYING"}, http.StatusOK, nil)
	api.expect(http.MethodPatch, entryPath(second)+"/status", admin, map[string]string{"status": "PLAYING"}, http.StatusConflict, nil)

	play := func(e models.DayEntry, distance, seconds float64) {
		t.Helper()
		api.expect(http.MethodPatch, entryPath(e)+"/performance", admin, map[string]float64{
			"rock_weight_kg": 700, "distance_meters": distance, "time_seconds": seconds,
		}, http.StatusOK, nil)
		api.expect(http.MethodPatch, entryPath(e)+"/status", admin, map[string]string{"status": "COMPLETED"}, http.StatusOK, nil)
	}
	play(first, 80, 30)
	api.expect(http.MethodPost, dayPath+"/results", admin, nil, http.StatusConflict, nil)
	api.expect(http.MethodPatch, entryPath(second)+"/status", admin, map[string]string{"status": "PLAYING"}, http.StatusOK, nil)
	play(second, 95, 40)

	var results struct {
		Entries []models.DayEntry `json:"entries"`
	}
	api.expect(http.MethodPost, dayPath+"/results", admin, nil, http.StatusOK, &results)
	for _, e := range results.Entries {
		want := map[int]int{first.ID: 2, second.ID: 1}[e.ID]
		if e.Rank == nil || *e.Rank != want {
			t.Errorf("entry %d rank = %v, want %d", e.ID, e.Rank, want)
		}
	}

	var board struct {
		Leaderboard []models.LeaderboardRow `json:"leaderboard"`
	}
	api.expect(http.MethodGet, "/api/stats/event-days/"+strconv.Itoa(day.EventDay.ID)+"/leaderboard", "", nil, http.StatusOK, &board)
	if len(board.Leaderboard) != 2 || board.Leaderboard[0].BullPairID != 12 || board.Leaderboard[0].PairName != "Veera - Shiva" {
		t.Fatalf("leaderboard = %+v", board.Leaderboard)
	}

	var dash models.DashboardStats
	api.expect(http.MethodGet, "/api/stats/dashboard", "", nil, http.StatusOK, &dash)
	if dash != (models.DashboardStats{TeamsTotal: 1, BullsTotal: 4, EventsTotal: 1}) {
		t.Fatalf("dashboard = %+v", dash)
	}
}

func TestRequestErrors(t *testing.T) {
	api, _ := newAPI(t)
	admin := api.token(jwt.MapClaims{"user_id": 1, "role": "admin"})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		status int
	}{
		{name: "bad id", method: http.MethodGet, path: "/api/events/abc", status: http.StatusBadRequest},
		{name: "unknown event", method: http.MethodGet, path: "/api/events/404", status: http.StatusNotFound},
		{name: "unknown route", method: http.MethodGet, path: "/api/nothing", status: http.StatusNotFound},
		{name: "unknown body field", method: http.MethodPost, path: "/api/events", token: admin, body: map[string]string{"name": "x"}, status: http.StatusBadRequest},
		{name: "invalid stats filter", method: http.MethodGet, path: "/api/stats/bullpairs?rankedOnly=maybe", status: http.StatusBadRequest},
		{name: "invalid limit", method: http.MethodGet, path: "/api/events?limit=0", status: http.StatusBadRequest},
		{name: "health", method: http.MethodGet, path: "/healthz", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api.t = t
			rec, env := api.do(tt.method, tt.path, tt.token, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status >= 400 && env.Status != "fail" {
				t.Fatalf("envelope status = %q, want fail", env.Status)
			}
		})
	}
}
