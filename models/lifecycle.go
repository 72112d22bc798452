package models

// Таблицы переходов для трёх сущностей с линейным жизненным циклом S0 -> S1 -> S2.
// Повторная установка того же состояния считается недопустимым переходом.

type EventState string

const (
	EventStateUpcoming  EventState = "UPCOMING"
	EventStateOngoing   EventState = "ONGOING"
	EventStateCompleted EventState = "COMPLETED"
)

type DayStatus string

const (
	DayStatusUpcoming  DayStatus = "UPCOMING"
	DayStatusOngoing   DayStatus = "ONGOING"
	DayStatusCompleted DayStatus = "COMPLETED"
)

type GameStatus string

const (
	GameStatusNext      GameStatus = "NEXT"
	GameStatusPlaying   GameStatus = "PLAYING"
	GameStatusCompleted GameStatus = "COMPLETED"
)

var eventStateTransitions = map[EventState][]EventState{
	EventStateUpcoming:  {EventStateOngoing},
	EventStateOngoing:   {EventStateCompleted},
	EventStateCompleted: {},
}

var dayStatusTransitions = map[DayStatus][]DayStatus{
	DayStatusUpcoming:  {DayStatusOngoing},
	DayStatusOngoing:   {DayStatusCompleted},
	DayStatusCompleted: {},
}

var gameStatusTransitions = map[GameStatus][]GameStatus{
	GameStatusNext:      {GameStatusPlaying},
	GameStatusPlaying:   {GameStatusCompleted},
	GameStatusCompleted: {},
}

func transitionAllowed[S comparable](table map[S][]S, current, next S) bool {
	for _, allowed := range table[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s EventState) IsValid() bool {
	_, ok := eventStateTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is the direct successor of s.
func (s EventState) CanTransitionTo(next EventState) bool {
	return transitionAllowed(eventStateTransitions, s, next)
}

func (s DayStatus) IsValid() bool {
	_, ok := dayStatusTransitions[s]
	return ok
}

func (s DayStatus) CanTransitionTo(next DayStatus) bool {
	return transitionAllowed(dayStatusTransitions, s, next)
}

func (s GameStatus) IsValid() bool {
	_, ok := gameStatusTransitions[s]
	return ok
}

func (s GameStatus) CanTransitionTo(next GameStatus) bool {
	return transitionAllowed(gameStatusTransitions, s, next)
}
