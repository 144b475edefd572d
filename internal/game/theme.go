package game

import (
	"aniguess/pkg/models"
)

// themeMaxStage: stage 1 is audio only, stage 2 adds the video.
const themeMaxStage = 2

// ThemeState is the media-staged-reveal machine. The video URL stays
// internal until stage 2 or completion, since the video itself usually shows
// the answer.
type ThemeState struct {
	Target models.Anime
	Theme  models.ThemeAsset
	Kind   models.ThemeKind

	Stage    int // 1 = audio, 2 = video
	Attempts int // guesses left (starts at 1)
	Guesses  []string
	Status   Status
}

// NewThemeState starts at the audio stage with one guess.
func NewThemeState(target models.Anime, theme models.ThemeAsset, kind models.ThemeKind) *ThemeState {
	return &ThemeState{
		Target:   target,
		Theme:    theme,
		Kind:     kind,
		Stage:    1,
		Attempts: 1,
		Status:   StatusActive,
	}
}

func (st *ThemeState) clone() *ThemeState {
	out := *st
	out.Guesses = append([]string(nil), st.Guesses...)
	return &out
}

// VideoRevealed reports whether the video URL may appear in responses.
func (st *ThemeState) VideoRevealed() bool {
	return st.Stage >= themeMaxStage || st.Status != StatusActive
}

// Guess is allowed at any stage and consumes the single attempt; a
// title match wins, anything else loses.
func (st *ThemeState) Guess(animeName string) (bool, error) {
	if st.Status != StatusActive {
		return false, models.ErrSessionComplete
	}
	if st.Attempts <= 0 {
		return false, models.ErrAttemptsExhausted
	}

	st.Attempts--
	st.Guesses = append(st.Guesses, animeName)

	if titleMatches(animeName, st.Target.AllTitles()) {
		st.Status = StatusWon
		return true, nil
	}
	st.Status = StatusLost
	return false, nil
}

// Reveal advances to the video stage; past the last stage it is a no-op.
func (st *ThemeState) Reveal() error {
	if st.Status != StatusActive {
		return models.ErrSessionComplete
	}
	if st.Stage < themeMaxStage {
		st.Stage++
	}
	return nil
}

// GiveUp forces the session to lost, which also reveals the theme.
func (st *ThemeState) GiveUp() error {
	if st.Status != StatusActive {
		return models.ErrSessionComplete
	}
	st.Status = StatusLost
	return nil
}
