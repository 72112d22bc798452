package services

import (
	"errors"
	"testing"

	"github.com/Dosada05/bullpair-events/models"
)

func ip(v int) *int { return &v }

func statsEntry(id, pairID, teamID int, rank *int, distance, seconds *float64) models.DayEntry {
	e := scoredEntry(id, catJunior, distance, seconds)
	e.BullPairID = pairID
	e.TeamID = teamID
	e.Rank = rank
	e.ResultCalculated = rank != nil
	return e
}

func TestAggregatePairs(t *testing.T) {
	next := statsEntry(5, 4, 2, nil, nil, nil)
	next.GameStatus = models.GameStatusNext
	entries := []models.DayEntry{
		statsEntry(1, 1, 1, ip(1), fp(100), fp(20)),
		statsEntry(2, 1, 1, ip(3), fp(80), fp(25)),
		statsEntry(3, 2, 2, ip(2), fp(95), fp(18)),
		statsEntry(4, 3, 1, nil, fp(120), nil),
		next,
	}

	stats := AggregatePairs(entries)
	if len(stats) != 3 {
		t.Fatalf("pairs = %d, want 3", len(stats))
	}
	order := []int{stats[0].BullPairID, stats[1].BullPairID, stats[2].BullPairID}
	if order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("order = %v, want [1 2 3]", order)
	}

	first := stats[0]
	switch {
	case first.Plays != 2 || first.RankedPlays != 2:
		t.Errorf("plays = %d/%d", first.Plays, first.RankedPlays)
	case first.Wins != 1 || first.Podiums != 2:
		t.Errorf("wins = %d, podiums = %d", first.Wins, first.Podiums)
	case first.BestRank == nil || *first.BestRank != 1 || first.BestDistance != 100:
		t.Errorf("best rank = %v at %v", first.BestRank, first.BestDistance)
	case first.AvgRank == nil || *first.AvgRank != 2:
		t.Errorf("avg rank = %v", first.AvgRank)
	case first.AvgDistance != 90 || first.MaxDistance != 100:
		t.Errorf("distance avg = %v max = %v", first.AvgDistance, first.MaxDistance)
	case first.BestTime == nil || *first.BestTime != 20:
		t.Errorf("best time = %v", first.BestTime)
	}

	unranked := stats[2]
	if unranked.BestRank != nil || unranked.AvgRank != nil || unranked.AvgTime != nil {
		t.Errorf("unranked pair has rank data: %+v", unranked)
	}
	if unranked.BestDistance != 120 {
		t.Errorf("best distance = %v, want max distance 120", unranked.BestDistance)
	}
}

func TestAggregateTeams(t *testing.T) {
	pairs := AggregatePairs([]models.DayEntry{
		statsEntry(1, 1, 1, ip(1), fp(100), fp(20)),
		statsEntry(2, 1, 1, ip(3), fp(80), fp(25)),
		statsEntry(3, 2, 2, ip(2), fp(95), fp(18)),
		statsEntry(4, 3, 1, nil, fp(120), nil),
	})
	teams := AggregateTeams(pairs)
	if len(teams) != 2 {
		t.Fatalf("teams = %d, want 2", len(teams))
	}

	top := teams[0]
	if top.TeamID != 1 {
		t.Fatalf("first team = %d, want 1", top.TeamID)
	}
	if top.Pairs != 2 || top.Plays != 3 || top.Wins != 1 || top.Podiums != 2 {
		t.Errorf("counters = %+v", top)
	}
	if top.BestPair == nil || top.BestPair.BullPairID != 1 || top.BestRank == nil || *top.BestRank != 1 {
		t.Errorf("best pair = %+v", top.BestPair)
	}
	if top.AvgDistance != 100 || top.MaxDistance != 120 {
		t.Errorf("distance avg = %v max = %v", top.AvgDistance, top.MaxDistance)
	}
	if top.AvgRank == nil || *top.AvgRank != 2 {
		t.Errorf("avg rank = %v", top.AvgRank)
	}
	if top.BestTime == nil || *top.BestTime != 20 {
		t.Errorf("best time = %v", top.BestTime)
	}
	if teams[1].TeamID != 2 || teams[1].Podiums != 1 {
		t.Errorf("second team = %+v", teams[1])
	}
}

func TestBuildLeaderboard(t *testing.T) {
	senior := statsEntry(1, 21, 2, ip(1), fp(50), fp(10))
	senior.Category = catSenior
	entries := []models.DayEntry{
		senior,
		statsEntry(2, 11, 1, ip(2), fp(80), fp(30)),
		statsEntry(3, 12, 1, nil, fp(90), fp(30)),
		statsEntry(4, 13, 1, ip(1), fp(100), fp(30)),
	}
	teams := map[int]*models.Team{
		1: {ID: 1, Name: "Team A", BullPairs: []models.BullPair{{ID: 13, BullA: "Raja", BullB: "Mani"}}},
	}

	rows := BuildLeaderboard(entries, teams)
	want := []int{4, 2, 3, 1}
	for i, id := range want {
		if rows[i].EntryID != id {
			t.Fatalf("row %d = entry %d, want %d", i, rows[i].EntryID, id)
		}
	}
	if rows[0].TeamName != "Team A" || rows[0].PairName != "Raja - Mani" {
		t.Errorf("names = %q / %q", rows[0].TeamName, rows[0].PairName)
	}
	if rows[3].TeamName != "" {
		t.Errorf("unknown team got a name: %q", rows[3].TeamName)
	}
}

func TestStatsServiceFilters(t *testing.T) {
	f := newFixture(t)
	f.seedTeam(1, 2)
	inactive := f.seedTeam(2, 3)
	inactive.IsActive = false
	f.store.SeedTeam(inactive)

	event := f.createEvent(t)
	reg := f.approvedRegistration(t, event.ID, 1, 11, 12)
	day1 := f.ongoingDay(t, event.ID, "2026-01-11")
	day2 := f.ongoingDay(t, event.ID, "2026-01-12")

	first := f.schedule(t, day1.ID, reg, 11, 12)
	f.play(t, first[11].ID, 100, 20)
	f.play(t, first[12].ID, 90, 20)
	if _, err := f.game.CalculateDayResults(ctx, day1.ID); err != nil {
		t.Fatal(err)
	}
	second := f.schedule(t, day2.ID, reg, 11)
	f.play(t, second[11].ID, 130, 20)

	all, err := f.stats.PairStats(ctx, StatsFilter{})
	if err != nil {
		t.Fatal(err)
	}
	ranked, err := f.stats.PairStats(ctx, StatsFilter{RankedOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if all[0].BullPairID != 11 || all[0].Plays != 2 || all[0].MaxDistance != 130 {
		t.Errorf("all plays = %+v", all[0])
	}
	if ranked[0].BullPairID != 11 || ranked[0].Plays != 1 || ranked[0].MaxDistance != 100 {
		t.Errorf("ranked plays = %+v", ranked[0])
	}
	if all[0].TeamName != "Team A" || all[0].PairName != "Raja - Mani" {
		t.Errorf("names = %q / %q", all[0].TeamName, all[0].PairName)
	}

	other := event.ID + 100
	none, err := f.stats.PairStats(ctx, StatsFilter{EventID: &other})
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("stats for unknown event = %+v", none)
	}

	teams, err := f.stats.TeamStats(ctx, StatsFilter{RankedOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(teams) != 1 || teams[0].Wins != 1 || teams[0].Podiums != 2 {
		t.Errorf("team stats = %+v", teams)
	}

	board, err := f.stats.DayLeaderboard(ctx, day1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(board) != 2 || board[0].BullPairID != 11 || *board[0].Rank != 1 {
		t.Errorf("leaderboard = %+v", board)
	}
	if _, err := f.stats.DayLeaderboard(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown day: err = %v, want not found", err)
	}

	dash, err := f.stats.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := models.DashboardStats{TeamsTotal: 1, BullsTotal: 4, EventsTotal: 1}
	if dash != want {
		t.Errorf("dashboard = %+v, want %+v", dash, want)
	}
}
