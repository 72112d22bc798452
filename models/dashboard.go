package models

type DashboardStats struct {
	TeamsTotal  int `json:"teams_total"`
	BullsTotal  int `json:"bulls_total"`
	EventsTotal int `json:"events_total"`
}
