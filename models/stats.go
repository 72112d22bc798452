package models

// PairStats - агрегаты по одной паре быков.
type PairStats struct {
	BullPairID    int      `json:"bull_pair_id"`
	PairName      string   `json:"pair_name,omitempty"`
	TeamID        int      `json:"team_id"`
	TeamName      string   `json:"team_name,omitempty"`
	Category      Category `json:"category"`
	Plays         int      `json:"plays"`
	RankedPlays   int      `json:"ranked_plays"`
	Wins          int      `json:"wins"`
	Podiums       int      `json:"podiums"`
	BestRank      *int     `json:"best_rank,omitempty"`
	AvgRank       *float64 `json:"avg_rank,omitempty"`
	BestDistance  float64  `json:"best_distance"`
	AvgDistance   float64  `json:"avg_distance"`
	MaxDistance   float64  `json:"max_distance"`
	BestTime      *float64 `json:"best_time,omitempty"`
	AvgTime       *float64 `json:"avg_time,omitempty"`
	MaxRockWeight float64  `json:"max_rock_weight"`
}

type TeamStats struct {
	TeamID       int        `json:"team_id"`
	TeamName     string     `json:"team_name,omitempty"`
	Pairs        int        `json:"pairs"`
	Plays        int        `json:"plays"`
	RankedPlays  int        `json:"ranked_plays"`
	Wins         int        `json:"wins"`
	Podiums      int        `json:"podiums"`
	BestRank     *int       `json:"best_rank,omitempty"`
	AvgRank      *float64   `json:"avg_rank,omitempty"`
	BestDistance float64    `json:"best_distance"`
	AvgDistance  float64    `json:"avg_distance"`
	MaxDistance  float64    `json:"max_distance"`
	BestTime     *float64   `json:"best_time,omitempty"`
	BestPair     *PairStats `json:"best_pair,omitempty"`
}

type LeaderboardRow struct {
	EntryID        int        `json:"entry_id"`
	BullPairID     int        `json:"bull_pair_id"`
	PairName       string     `json:"pair_name,omitempty"`
	TeamID         int        `json:"team_id"`
	TeamName       string     `json:"team_name,omitempty"`
	Category       Category   `json:"category"`
	Rank           *int       `json:"rank,omitempty"`
	DistanceMeters *float64   `json:"distance_meters"`
	TimeSeconds    *float64   `json:"time_seconds"`
	RockWeightKg   *float64   `json:"rock_weight_kg"`
	GameStatus     GameStatus `json:"game_status"`
}
