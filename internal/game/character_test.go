package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aniguess/pkg/models"
)

func newCharacter() *CharacterState {
	ch := models.Character{
		ID:        417,
		Name:      "Lelouch Lamperouge",
		Nicknames: []string{"Zero"},
		Image:     "https://img",
	}
	anime := models.Anime{ID: 1575, Title: "Code Geass: Hangyaku no Lelouch", TitleEnglish: "Code Geass"}
	return NewCharacterState(ch, anime)
}

func TestCharacter_BothCorrectWins(t *testing.T) {
	st := newCharacter()

	require.NoError(t, st.Guess("lelouch lamperouge", "code geass"))
	assert.True(t, st.CharacterCorrect)
	assert.True(t, st.AnimeCorrect)
	assert.Equal(t, StatusWon, st.Status)
}

func TestCharacter_NicknameAccepted(t *testing.T) {
	st := newCharacter()

	require.NoError(t, st.Guess("Zero", "Code Geass"))
	assert.True(t, st.CharacterCorrect)
	assert.Equal(t, StatusWon, st.Status)
}

func TestCharacter_HalfRightStillLoses(t *testing.T) {
	st := newCharacter()

	require.NoError(t, st.Guess("Lelouch Lamperouge", "Death Note"))
	assert.True(t, st.CharacterCorrect)
	assert.False(t, st.AnimeCorrect)
	assert.Equal(t, StatusLost, st.Status)
}

func TestCharacter_SingleShot(t *testing.T) {
	st := newCharacter()

	require.NoError(t, st.Guess("wrong", "wrong"))
	assert.Equal(t, StatusLost, st.Status)

	err := st.Guess("Zero", "Code Geass")
	assert.ErrorIs(t, err, models.ErrSessionComplete)
}

func TestCharacter_GiveUp(t *testing.T) {
	st := newCharacter()
	require.NoError(t, st.GiveUp())
	assert.Equal(t, StatusLost, st.Status)
	assert.ErrorIs(t, st.GiveUp(), models.ErrSessionComplete)
}
