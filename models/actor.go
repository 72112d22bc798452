package models

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// Actor - уже аутентифицированный вызывающий (данные берутся из JWT).
type Actor struct {
	UserID int
	Role   UserRole
	// TeamID is zero when the token carries no team.
	TeamID int
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
