// Package game implements the four guessing-game state machines and
// their HTTP handlers. Each session owns one sampled target and a
// bounded interaction budget; all transitions go through the documented
// operations and are serialized per session by the store.
package game

import (
	"time"
)

// Type tags the game variant a session belongs to.
type Type string

const (
	TypeAnidle     Type = "anidle"
	TypeScreenshot Type = "screenshot"
	TypeCharacter  Type = "character"
	TypeTheme      Type = "theme"
)

// Status is the shared lifecycle of every machine.
type Status string

const (
	StatusActive Status = "active"
	StatusWon    Status = "won"
	StatusLost   Status = "lost"
)

// Session is the store-owned record for one running game. Exactly one of
// the per-game states is non-nil, selected by Type. A tagged union, so
// each machine carries only the fields it needs.
type Session struct {
	ID         string
	Type       Type
	UserID     string
	Difficulty string
	CreatedAt  time.Time

	Anidle     *AnidleState
	Screenshot *ScreenshotState
	Character  *CharacterState
	Theme      *ThemeState
}

// Clone returns a copy that shares no mutable state with s, satisfying
// the store's Cloner contract. Target records are never mutated after
// sampling, so their inner slices can be shared; per-game guess logs
// and counters cannot.
func (s Session) Clone() Session {
	out := s
	if s.Anidle != nil {
		out.Anidle = s.Anidle.clone()
	}
	if s.Screenshot != nil {
		out.Screenshot = s.Screenshot.clone()
	}
	if s.Character != nil {
		out.Character = s.Character.clone()
	}
	if s.Theme != nil {
		out.Theme = s.Theme.clone()
	}
	return out
}

// Status reports the lifecycle state of whichever machine is active.
func (s *Session) Status() Status {
	switch s.Type {
	case TypeAnidle:
		return s.Anidle.Status
	case TypeScreenshot:
		return s.Screenshot.Status
	case TypeCharacter:
		return s.Character.Status
	case TypeTheme:
		return s.Theme.Status
	default:
		return StatusLost
	}
}

// Complete reports whether the session reached a terminal state.
func (s *Session) Complete() bool {
	return s.Status() != StatusActive
}

// Duration is the wall-clock age of the session in whole seconds.
func (s *Session) Duration() int {
	return int(time.Since(s.CreatedAt).Seconds())
}
