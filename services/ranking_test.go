package services

import (
	"testing"

	"github.com/Dosada05/bullpair-events/models"
)

func fp(v float64) *float64 { return &v }

func scoredEntry(id int, category models.Category, distance, seconds *float64) models.DayEntry {
	return models.DayEntry{
		ID:          id,
		Category:    category,
		GameStatus:  models.GameStatusCompleted,
		Performance: models.Performance{DistanceMeters: distance, TimeSeconds: seconds, RockWeightKg: fp(500)},
	}
}

var (
	catJunior = models.Category{Type: models.CategoryAgeGroup, Value: "JUNIOR"}
	catSenior = models.Category{Type: models.CategoryAgeGroup, Value: "SENIOR"}
)

func TestRankEntriesDistanceThenTime(t *testing.T) {
	entries := []models.DayEntry{
		scoredEntry(1, catJunior, fp(100), fp(20)),
		scoredEntry(2, catJunior, fp(90), fp(15)),
		scoredEntry(3, catJunior, fp(100), fp(18)),
	}
	ranks := RankEntries(entries)
	want := map[int]int{3: 1, 1: 2, 2: 3}
	for id, rank := range want {
		if ranks[id] != rank {
			t.Errorf("entry %d: rank %d, want %d", id, ranks[id], rank)
		}
	}
}

func TestRankEntriesIsCategoryScoped(t *testing.T) {
	entries := []models.DayEntry{
		scoredEntry(1, catJunior, fp(50), fp(30)),
		scoredEntry(2, catSenior, fp(10), fp(30)),
		scoredEntry(3, catJunior, fp(70), fp(30)),
		scoredEntry(4, catSenior, fp(20), fp(30)),
	}
	ranks := RankEntries(entries)
	want := map[int]int{3: 1, 1: 2, 4: 1, 2: 2}
	for id, rank := range want {
		if ranks[id] != rank {
			t.Errorf("entry %d: rank %d, want %d", id, ranks[id], rank)
		}
	}
}

func TestRankEntriesMissingValues(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.DayEntry
		want    map[int]int
	}{
		{
			name: "missing time ranks last among equal distance",
			entries: []models.DayEntry{
				scoredEntry(1, catJunior, fp(80), nil),
				scoredEntry(2, catJunior, fp(80), fp(45)),
			},
			want: map[int]int{2: 1, 1: 2},
		},
		{
			name: "missing distance counts as zero",
			entries: []models.DayEntry{
				scoredEntry(1, catJunior, nil, fp(10)),
				scoredEntry(2, catJunior, fp(1), fp(99)),
			},
			want: map[int]int{2: 1, 1: 2},
		},
		{
			name: "recorded zero time is not missing",
			entries: []models.DayEntry{
				scoredEntry(1, catJunior, fp(80), nil),
				scoredEntry(2, catJunior, fp(80), fp(0)),
			},
			want: map[int]int{2: 1, 1: 2},
		},
		{
			name: "exact ties keep id order with distinct ranks",
			entries: []models.DayEntry{
				scoredEntry(9, catJunior, fp(60), fp(30)),
				scoredEntry(4, catJunior, fp(60), fp(30)),
				scoredEntry(6, catJunior, fp(60), fp(30)),
			},
			want: map[int]int{4: 1, 6: 2, 9: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranks := RankEntries(tt.entries)
			for id, rank := range tt.want {
				if ranks[id] != rank {
					t.Errorf("entry %d: rank %d, want %d", id, ranks[id], rank)
				}
			}
		})
	}
}

func TestRankEntriesDeterministic(t *testing.T) {
	entries := []models.DayEntry{
		scoredEntry(1, catJunior, fp(60), fp(30)),
		scoredEntry(2, catJunior, fp(60), fp(30)),
		scoredEntry(3, catSenior, fp(10), nil),
	}
	first := RankEntries(entries)
	reversed := []models.DayEntry{entries[2], entries[1], entries[0]}
	second := RankEntries(reversed)
	for id, rank := range first {
		if second[id] != rank {
			t.Fatalf("entry %d: %d then %d", id, rank, second[id])
		}
	}
}
