package services

import (
	"math"
	"sort"

	"github.com/Dosada05/bullpair-events/models"
)

// rankDistance treats a missing distance as 0.
func rankDistance(e models.DayEntry) float64 {
	if e.Performance.DistanceMeters == nil {
		return 0
	}
	return *e.Performance.DistanceMeters
}

// rankTime treats a missing time as +Inf so the entry sorts last among equal distances.
func rankTime(e models.DayEntry) float64 {
	if e.Performance.TimeSeconds == nil {
		return math.Inf(1)
	}
	return *e.Performance.TimeSeconds
}

// rankBefore orders entries by distance DESC, then time ASC.
func rankBefore(a, b models.DayEntry) bool {
	da, db := rankDistance(a), rankDistance(b)
	if da != db {
		return da > db
	}
	return rankTime(a) < rankTime(b)
}

// RankEntries assigns category-scoped ranks 1..n and returns them keyed by entry id.
// Entries with identical distance and time keep their id order and still get distinct ranks.
func RankEntries(entries []models.DayEntry) map[int]int {
	ordered := make([]models.DayEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	byCategory := make(map[models.Category][]models.DayEntry)
	for _, e := range ordered {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	ranks := make(map[int]int, len(entries))
	for _, group := range byCategory {
		sort.SliceStable(group, func(i, j int) bool { return rankBefore(group[i], group[j]) })
		for i, e := range group {
			ranks[e.ID] = i + 1
		}
	}
	return ranks
}
