package game

import (
	"strings"

	"aniguess/internal/compare"
	"aniguess/pkg/models"
)

// ScreenshotState is the staged-reveal machine: N image stages plus a
// final name-hint stage, and a single guess regardless of how many
// stages the player has seen.
type ScreenshotState struct {
	Target      models.Anime
	StageImages []models.ImageAsset // one per image stage, in reveal order
	TotalStages int                 // image stages + 1 name-hint stage
	Revealed    int                 // highest revealed stage, 1-based
	Current     int                 // stage being viewed
	Attempts    int                 // guesses left (starts at 1)
	Guesses     []string
	Status      Status
}

// NewScreenshotState starts at stage 1 with one guess.
func NewScreenshotState(target models.Anime, stages []models.ImageAsset) *ScreenshotState {
	return &ScreenshotState{
		Target:      target,
		StageImages: stages,
		TotalStages: len(stages) + 1,
		Revealed:    1,
		Current:     1,
		Attempts:    1,
		Status:      StatusActive,
	}
}

func (st *ScreenshotState) clone() *ScreenshotState {
	out := *st
	out.StageImages = append([]models.ImageAsset(nil), st.StageImages...)
	out.Guesses = append([]string(nil), st.Guesses...)
	return &out
}

// CurrentImage returns the image for the viewed stage, or nil on the
// name-hint stage.
func (st *ScreenshotState) CurrentImage() *models.ImageAsset {
	if st.Current < 1 || st.Current > len(st.StageImages) {
		return nil
	}
	return &st.StageImages[st.Current-1]
}

// NameHintRevealed reports whether the final stage has been reached.
func (st *ScreenshotState) NameHintRevealed() bool {
	return st.Revealed >= st.TotalStages
}

// Guess consumes the single attempt. A correct name wins; anything else
// ends the game lost. Titles match on normalized equality, or on
// containment for guesses longer than three characters.
func (st *ScreenshotState) Guess(name string) (bool, error) {
	if st.Status != StatusActive {
		return false, models.ErrSessionComplete
	}
	if st.Attempts <= 0 {
		return false, models.ErrAttemptsExhausted
	}

	st.Attempts--
	st.Guesses = append(st.Guesses, name)

	if titleMatches(name, st.Target.AllTitles()) {
		st.Status = StatusWon
		return true, nil
	}
	st.Status = StatusLost
	return false, nil
}

// Reveal advances the stage pointer by one and views the new stage.
// Revealing past the last stage is a no-op, not an error.
func (st *ScreenshotState) Reveal() error {
	if st.Status != StatusActive {
		return models.ErrSessionComplete
	}
	if st.Revealed < st.TotalStages {
		st.Revealed++
		st.Current = st.Revealed
	}
	return nil
}

// Navigate re-displays an already revealed stage without consuming
// anything. Stages not yet revealed are rejected.
func (st *ScreenshotState) Navigate(stage int) error {
	if stage < 1 || stage > st.Revealed {
		return &models.DomainError{Code: models.CodeInvalidGuess, Message: "stage not yet revealed"}
	}
	st.Current = stage
	return nil
}

// GiveUp forces the session to lost.
func (st *ScreenshotState) GiveUp() error {
	if st.Status != StatusActive {
		return models.ErrSessionComplete
	}
	st.Status = StatusLost
	return nil
}

// NameHint masks every title variant: the first two characters stay,
// spaces stay, everything else becomes a dash.
func (st *ScreenshotState) NameHint() map[string]string {
	hint := make(map[string]string, 3)
	if st.Target.Title != "" {
		hint["title"] = maskTitle(st.Target.Title)
	}
	if st.Target.TitleEnglish != "" {
		hint["title_english"] = maskTitle(st.Target.TitleEnglish)
	}
	if st.Target.TitleJapanese != "" {
		hint["title_japanese"] = maskTitle(st.Target.TitleJapanese)
	}
	return hint
}

func maskTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 2 {
		return title
	}
	var b strings.Builder
	for i, r := range runes {
		switch {
		case i < 2:
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune(' ')
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

// titleMatches accepts a normalized-equal title, or a guess of more than
// three characters contained in a title.
func titleMatches(guess string, titles []string) bool {
	if compare.MatchesAny(guess, titles) {
		return true
	}
	g := compare.Norm(guess)
	if len(g) <= 3 {
		return false
	}
	for _, t := range titles {
		if strings.Contains(compare.Norm(t), g) {
			return true
		}
	}
	return false
}
