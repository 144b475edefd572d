package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aniguess/pkg/models"
)

func intp(v int) *int { return &v }

func newAnidle(maxGuesses int) *AnidleState {
	return &AnidleState{
		Target: models.Anime{
			ID:      100,
			Title:   "Target Show",
			Year:    intp(2015),
			Genres:  []string{"Action"},
			Studios: []string{"Bones"},
			Format:  "TV",
			Tags:    []string{"Super Power"},
		},
		MaxGuesses: maxGuesses,
		Status:     StatusActive,
	}
}

func TestAnidle_WinByIDNotTitle(t *testing.T) {
	st := newAnidle(21)

	// same title, different catalog entry
	comp, err := st.Guess(models.Anime{ID: 999, Title: "Target Show"})
	require.NoError(t, err)
	assert.Equal(t, models.VerdictExact, comp.Title)
	assert.Equal(t, StatusActive, st.Status)

	_, err = st.Guess(models.Anime{ID: 100, Title: "Target Show"})
	require.NoError(t, err)
	assert.Equal(t, StatusWon, st.Status)
}

func TestAnidle_LostOnFinalGuess(t *testing.T) {
	st := newAnidle(2)

	_, err := st.Guess(models.Anime{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, st.Status)
	assert.Equal(t, 1, st.Remaining())

	_, err = st.Guess(models.Anime{ID: 2})
	require.NoError(t, err)
	assert.Equal(t, StatusLost, st.Status)
	assert.Equal(t, 0, st.Remaining())

	_, err = st.Guess(models.Anime{ID: 100})
	assert.ErrorIs(t, err, models.ErrSessionComplete)
}

func TestAnidle_FinalGuessCanStillWin(t *testing.T) {
	st := newAnidle(1)

	_, err := st.Guess(models.Anime{ID: 100})
	require.NoError(t, err)
	assert.Equal(t, StatusWon, st.Status)
}

func TestAnidle_HintBurnsAttempts(t *testing.T) {
	st := newAnidle(5)

	value, err := st.Hint("year", 3)
	require.NoError(t, err)
	assert.Equal(t, "2010s", value)
	assert.Equal(t, 2, st.Remaining())
	assert.Equal(t, StatusActive, st.Status)
}

func TestAnidle_HintCanLoseTheGame(t *testing.T) {
	st := newAnidle(3)

	_, err := st.Hint("genre", 3)
	require.NoError(t, err)
	assert.Equal(t, StatusLost, st.Status)
	assert.Equal(t, 0, st.Remaining())
}

func TestAnidle_HintKinds(t *testing.T) {
	st := newAnidle(21)

	genre, err := st.Hint("genre", 1)
	require.NoError(t, err)
	assert.Equal(t, "Action", genre)

	studio, err := st.Hint("studio", 1)
	require.NoError(t, err)
	assert.Equal(t, "Bones", studio)

	format, err := st.Hint("media_type", 1)
	require.NoError(t, err)
	assert.Equal(t, "TV", format)

	tag, err := st.Hint("tag", 1)
	require.NoError(t, err)
	assert.Equal(t, "Super Power", tag)

	_, err = st.Hint("bogus", 1)
	var derr *models.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, models.CodeInvalidGuess, derr.Code)
	// a rejected hint kind costs nothing
	assert.Equal(t, 17, st.Remaining())
}

func TestAnidle_HintMissingAttribute(t *testing.T) {
	st := &AnidleState{Target: models.Anime{ID: 1}, MaxGuesses: 21, Status: StatusActive}

	value, err := st.Hint("year", 1)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", value)
}

func TestAnidle_GiveUp(t *testing.T) {
	st := newAnidle(21)
	require.NoError(t, st.GiveUp())
	assert.Equal(t, StatusLost, st.Status)
	assert.ErrorIs(t, st.GiveUp(), models.ErrSessionComplete)
}
