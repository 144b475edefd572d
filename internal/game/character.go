package game

import (
	"aniguess/internal/compare"
	"aniguess/pkg/models"
)

// CharacterState is the dual-field single-shot machine: one guess of
// (character name, anime name), both graded independently, win only when
// both match. Multi-card rounds are composed of independent instances of
// this machine; aggregation is display-only.
type CharacterState struct {
	Character models.Character
	Anime     models.Anime

	CharacterGuess   string
	AnimeGuess       string
	CharacterCorrect bool
	AnimeCorrect     bool
	Status           Status
}

// NewCharacterState starts the single-shot round.
func NewCharacterState(ch models.Character, anime models.Anime) *CharacterState {
	return &CharacterState{Character: ch, Anime: anime, Status: StatusActive}
}

func (st *CharacterState) clone() *CharacterState {
	out := *st
	return &out
}

// Guess evaluates both fields and always completes the session. A
// correct character with a wrong anime (or the reverse) is a loss.
func (st *CharacterState) Guess(characterName, animeName string) error {
	if st.Status != StatusActive {
		return models.ErrSessionComplete
	}

	st.CharacterGuess = characterName
	st.AnimeGuess = animeName
	st.CharacterCorrect = compare.MatchesAny(characterName, st.Character.AllNames())
	st.AnimeCorrect = compare.MatchesAny(animeName, st.Anime.AllTitles())

	if st.CharacterCorrect && st.AnimeCorrect {
		st.Status = StatusWon
	} else {
		st.Status = StatusLost
	}
	return nil
}

// GiveUp forces the session to lost.
func (st *CharacterState) GiveUp() error {
	if st.Status != StatusActive {
		return models.ErrSessionComplete
	}
	st.Status = StatusLost
	return nil
}
