package models

import "time"

// Команды ведутся внешней системой; здесь они доступны только для чтения.

type TeamStatus string

const (
	TeamStatusPending  TeamStatus = "PENDING"
	TeamStatusApproved TeamStatus = "APPROVED"
	TeamStatusRejected TeamStatus = "REJECTED"
)

type MemberRole string

const (
	MemberRoleOwner  MemberRole = "OWNER"
	MemberRoleMember MemberRole = "MEMBER"
)

type Team struct {
	ID        int          `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Status    TeamStatus   `json:"status" db:"status"`
	IsActive  bool         `json:"is_active" db:"is_active"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	BullPairs []BullPair   `json:"bull_pairs" db:"-"`
	Members   []TeamMember `json:"members" db:"-"`
}

type BullPair struct {
	ID       int      `json:"id" db:"id"`
	TeamID   int      `json:"team_id" db:"team_id"`
	BullA    string   `json:"bull_a" db:"bull_a"`
	BullB    string   `json:"bull_b" db:"bull_b"`
	Category Category `json:"category" db:"-"`
}

// DisplayName формирует имя пары в виде "A - B".
func (p BullPair) DisplayName() string {
	return p.BullA + " - " + p.BullB
}

type TeamMember struct {
	ID     int        `json:"id" db:"id"`
	TeamID int        `json:"team_id" db:"team_id"`
	UserID int        `json:"user_id" db:"user_id"`
	Name   string     `json:"name" db:"name"`
	Role   MemberRole `json:"role" db:"role"`
}

func (t *Team) IsApprovedAndActive() bool {
	return t.Status == TeamStatusApproved && t.IsActive
}

func (t *Team) FindBullPair(id int) (BullPair, bool) {
	for _, p := range t.BullPairs {
		if p.ID == id {
			return p, true
		}
	}
	return BullPair{}, false
}

func (t *Team) HasMember(memberID int) bool {
	for _, m := range t.Members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}

// HasUser reports whether the user is the team owner or one of its members.
func (t *Team) HasUser(userID int) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
