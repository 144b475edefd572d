package game

import (
	"fmt"

	"aniguess/internal/compare"
	"aniguess/pkg/models"
)

// AnidleState is the attribute-guess machine: up to MaxGuesses attempts,
// graded multi-attribute feedback per guess, hints that burn attempts.
type AnidleState struct {
	Target      models.Anime
	Guesses     []AnidleGuess
	MaxGuesses  int
	HintPenalty int // attempts consumed by hints
	Status      Status
}

// AnidleGuess is one recorded guess with its verdicts.
type AnidleGuess struct {
	Anime      models.Anime      `json:"anime"`
	Comparison models.Comparison `json:"comparison"`
}

func (st *AnidleState) clone() *AnidleState {
	out := *st
	out.Guesses = append([]AnidleGuess(nil), st.Guesses...)
	return &out
}

// Remaining is the attempt budget left after guesses and hint costs.
func (st *AnidleState) Remaining() int {
	left := st.MaxGuesses - len(st.Guesses) - st.HintPenalty
	if left < 0 {
		return 0
	}
	return left
}

// Guess grades one resolved anime against the target. Winning requires
// canonical id equality; title equality alone never wins, since
// different entities can share a title.
func (st *AnidleState) Guess(guess models.Anime) (models.Comparison, error) {
	if st.Status != StatusActive {
		return models.Comparison{}, models.ErrSessionComplete
	}
	if st.Remaining() <= 0 {
		return models.Comparison{}, models.ErrAttemptsExhausted
	}

	comp := compare.Anime(guess, st.Target)
	st.Guesses = append(st.Guesses, AnidleGuess{Anime: guess, Comparison: comp})

	switch {
	case guess.ID == st.Target.ID:
		st.Status = StatusWon
	case st.Remaining() == 0:
		st.Status = StatusLost
	}
	return comp, nil
}

// Hint reveals one attribute of the target for a cost in attempts. The
// cost can end the game on the spot.
func (st *AnidleState) Hint(kind string, cost int) (string, error) {
	if st.Status != StatusActive {
		return "", models.ErrSessionComplete
	}

	value, err := st.hintValue(kind)
	if err != nil {
		return "", err
	}

	st.HintPenalty += cost
	if st.Remaining() == 0 {
		st.Status = StatusLost
	}
	return value, nil
}

func (st *AnidleState) hintValue(kind string) (string, error) {
	t := st.Target
	switch kind {
	case "genre":
		if len(t.Genres) > 0 {
			return t.Genres[0], nil
		}
	case "year":
		if t.Year != nil {
			return fmt.Sprintf("%ds", (*t.Year/10)*10), nil
		}
	case "studio":
		if len(t.Studios) > 0 {
			return t.Studios[0], nil
		}
	case "media_type":
		if t.Format != "" {
			return t.Format, nil
		}
	case "tag":
		if len(t.Tags) > 0 {
			return t.Tags[0], nil
		}
	default:
		return "", &models.DomainError{Code: models.CodeInvalidGuess, Message: "unknown hint kind: " + kind}
	}
	return "Unknown", nil
}

// GiveUp forces the session to lost.
func (st *AnidleState) GiveUp() error {
	if st.Status != StatusActive {
		return models.ErrSessionComplete
	}
	st.Status = StatusLost
	return nil
}
