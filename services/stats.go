package services

import (
	"context"
	"errors"
	"sort"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/repositories"
	"golang.org/x/sync/errgroup"
)

// Чистые функции агрегации над завершёнными заездами. Кэша нет: каждый вызов
// отражает текущее ранжированное состояние.

type pairAccumulator struct {
	stats       models.PairStats
	rankSum     int
	distanceSum float64
	timeSum     float64
	timeCount   int
	bestRankIdx int
}

// AggregatePairs computes per-pair statistics over completed entries.
func AggregatePairs(entries []models.DayEntry) []models.PairStats {
	acc := make(map[int]*pairAccumulator)
	order := make([]int, 0)

	for _, e := range entries {
		if e.GameStatus != models.GameStatusCompleted {
			continue
		}
		a, ok := acc[e.BullPairID]
		if !ok {
			a = &pairAccumulator{stats: models.PairStats{
				BullPairID: e.BullPairID,
				TeamID:     e.TeamID,
				Category:   e.Category,
			}}
			acc[e.BullPairID] = a
			order = append(order, e.BullPairID)
		}
		st := &a.stats
		st.Plays++

		distance := rankDistance(e)
		a.distanceSum += distance
		if distance > st.MaxDistance {
			st.MaxDistance = distance
		}
		if t := e.Performance.TimeSeconds; t != nil {
			a.timeSum += *t
			a.timeCount++
			if st.BestTime == nil || *t < *st.BestTime {
				v := *t
				st.BestTime = &v
			}
		}
		if w := e.Performance.RockWeightKg; w != nil && *w > st.MaxRockWeight {
			st.MaxRockWeight = *w
		}

		if e.Rank != nil {
			rank := *e.Rank
			st.RankedPlays++
			a.rankSum += rank
			if rank == 1 {
				st.Wins++
			}
			if rank <= 3 {
				st.Podiums++
			}
			if st.BestRank == nil || rank < *st.BestRank || (rank == *st.BestRank && distance > st.BestDistance) {
				r := rank
				st.BestRank = &r
				st.BestDistance = distance
			}
		}
	}

	out := make([]models.PairStats, 0, len(order))
	for _, id := range order {
		a := acc[id]
		st := a.stats
		st.AvgDistance = a.distanceSum / float64(st.Plays)
		if st.BestRank == nil {
			st.BestDistance = st.MaxDistance
		}
		if st.RankedPlays > 0 {
			avg := float64(a.rankSum) / float64(st.RankedPlays)
			st.AvgRank = &avg
		}
		if a.timeCount > 0 {
			avg := a.timeSum / float64(a.timeCount)
			st.AvgTime = &avg
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool { return pairBetter(out[i], out[j]) })
	return out
}

// pairBetter orders by wins, podiums, best rank and max distance; pair id breaks ties.
func pairBetter(a, b models.PairStats) bool {
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	if a.Podiums != b.Podiums {
		return a.Podiums > b.Podiums
	}
	if ra, rb := rankOrMax(a.BestRank), rankOrMax(b.BestRank); ra != rb {
		return ra < rb
	}
	if a.MaxDistance != b.MaxDistance {
		return a.MaxDistance > b.MaxDistance
	}
	return a.BullPairID < b.BullPairID
}

func rankOrMax(r *int) int {
	if r == nil {
		return int(^uint(0) >> 1)
	}
	return *r
}

// AggregateTeams rolls pair statistics up to teams and picks each team's best pair by lowest rank.
func AggregateTeams(pairs []models.PairStats) []models.TeamStats {
	type teamAcc struct {
		stats       models.TeamStats
		rankSum     float64
		distanceSum float64
	}
	acc := make(map[int]*teamAcc)
	order := make([]int, 0)

	for i := range pairs {
		p := pairs[i]
		a, ok := acc[p.TeamID]
		if !ok {
			a = &teamAcc{stats: models.TeamStats{TeamID: p.TeamID, TeamName: p.TeamName}}
			acc[p.TeamID] = a
			order = append(order, p.TeamID)
		}
		st := &a.stats
		st.Pairs++
		st.Plays += p.Plays
		st.RankedPlays += p.RankedPlays
		st.Wins += p.Wins
		st.Podiums += p.Podiums
		a.distanceSum += p.AvgDistance * float64(p.Plays)
		if p.AvgRank != nil {
			a.rankSum += *p.AvgRank * float64(p.RankedPlays)
		}
		if p.MaxDistance > st.MaxDistance {
			st.MaxDistance = p.MaxDistance
		}
		if p.BestTime != nil && (st.BestTime == nil || *p.BestTime < *st.BestTime) {
			v := *p.BestTime
			st.BestTime = &v
		}
		if p.BestRank != nil && (st.BestPair == nil || bestPairBetter(p, *st.BestPair)) {
			best := p
			st.BestPair = &best
			r := *p.BestRank
			st.BestRank = &r
			st.BestDistance = p.BestDistance
		}
	}

	out := make([]models.TeamStats, 0, len(order))
	for _, id := range order {
		a := acc[id]
		st := a.stats
		if st.Plays > 0 {
			st.AvgDistance = a.distanceSum / float64(st.Plays)
		}
		if st.RankedPlays > 0 {
			avg := a.rankSum / float64(st.RankedPlays)
			st.AvgRank = &avg
		}
		if st.BestPair == nil {
			st.BestDistance = st.MaxDistance
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Podiums != b.Podiums {
			return a.Podiums > b.Podiums
		}
		if ra, rb := rankOrMax(a.BestRank), rankOrMax(b.BestRank); ra != rb {
			return ra < rb
		}
		return a.TeamID < b.TeamID
	})
	return out
}

func bestPairBetter(a, b models.PairStats) bool {
	if *a.BestRank != *b.BestRank {
		return *a.BestRank < *b.BestRank
	}
	return pairBetter(a, b)
}

// BuildLeaderboard sorts entries by category, rank, distance DESC, time ASC.
// Unranked entries follow the ranked ones of their category.
func BuildLeaderboard(entries []models.DayEntry, teams map[int]*models.Team) []models.LeaderboardRow {
	sorted := make([]models.DayEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if ka, kb := a.Category.Key(), b.Category.Key(); ka != kb {
			return ka < kb
		}
		if ra, rb := rankOrMax(a.Rank), rankOrMax(b.Rank); ra != rb {
			return ra < rb
		}
		if rankBefore(a, b) != rankBefore(b, a) {
			return rankBefore(a, b)
		}
		return a.ID < b.ID
	})

	rows := make([]models.LeaderboardRow, 0, len(sorted))
	for _, e := range sorted {
		row := models.LeaderboardRow{
			EntryID:        e.ID,
			BullPairID:     e.BullPairID,
			TeamID:         e.TeamID,
			Category:       e.Category,
			Rank:           e.Rank,
			DistanceMeters: e.Performance.DistanceMeters,
			TimeSeconds:    e.Performance.TimeSeconds,
			RockWeightKg:   e.Performance.RockWeightKg,
			GameStatus:     e.GameStatus,
		}
		if team, ok := teams[e.TeamID]; ok {
			row.TeamName = team.Name
			if pair, ok := team.FindBullPair(e.BullPairID); ok {
				row.PairName = pair.DisplayName()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func teamIDsOf(entries []models.DayEntry) []int {
	seen := make(map[int]struct{})
	ids := make([]int, 0)
	for _, e := range entries {
		if _, ok := seen[e.TeamID]; !ok {
			seen[e.TeamID] = struct{}{}
			ids = append(ids, e.TeamID)
		}
	}
	return ids
}

const teamLoadConcurrency = 8

// loadTeams fetches rosters concurrently. Teams that no longer exist are skipped.
func loadTeams(ctx context.Context, teamRepo repositories.TeamRepository, ids []int) (map[int]*models.Team, error) {
	teams := make([]*models.Team, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(teamLoadConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			team, err := teamRepo.GetByID(gctx, nil, id)
			if err != nil {
				if errors.Is(err, repositories.ErrTeamNotFound) {
					return nil
				}
				return err
			}
			teams[i] = team
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[int]*models.Team, len(ids))
	for _, t := range teams {
		if t != nil {
			out[t.ID] = t
		}
	}
	return out, nil
}
