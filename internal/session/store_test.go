package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aniguess/pkg/models"
)

type counter struct {
	N int
}

func (c counter) Clone() counter { return c }

// journal carries reference-typed state, like real game sessions do.
type journal struct {
	Entries []string
}

func (j journal) Clone() journal {
	out := j
	out.Entries = append([]string(nil), j.Entries...)
	return out
}

func TestStore_CreateGetUpdate(t *testing.T) {
	s := New[counter](time.Hour)
	s.Create("a", counter{N: 1})

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.N)

	// mutating the copy does not touch the store
	got.N = 99
	again, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, again.N)

	err = s.Update("a", func(c *counter) error {
		c.N++
		return nil
	})
	require.NoError(t, err)

	got, err = s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 2, got.N)
}

func TestStore_GetDetachesReferenceState(t *testing.T) {
	s := New[journal](time.Hour)
	s.Create("a", journal{Entries: []string{"first"}})

	before, err := s.Get("a")
	require.NoError(t, err)

	require.NoError(t, s.Update("a", func(j *journal) error {
		j.Entries = append(j.Entries, "second")
		return nil
	}))

	// the earlier copy shares nothing with the stored value
	assert.Equal(t, []string{"first"}, before.Entries)

	after, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, after.Entries)
	after.Entries[0] = "mangled"

	again, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "first", again.Entries[0])
}

func TestStore_UnknownID(t *testing.T) {
	s := New[counter](time.Hour)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	err = s.Update("missing", func(c *counter) error { return nil })
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestStore_UpdateErrorStillTouches(t *testing.T) {
	s := New[counter](time.Hour)
	s.Create("a", counter{})

	wantErr := models.ErrInvalidGuess
	err := s.Update("a", func(c *counter) error {
		c.N = 5
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	// fn's mutation is kept even when it errors; transitions decide
	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 5, got.N)
}

func TestStore_ConcurrentUpdatesSerialize(t *testing.T) {
	s := New[counter](time.Hour)
	s.Create("a", counter{})

	const workers = 50
	const perWorker = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_ = s.Update("a", func(c *counter) error {
					c.N++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, got.N)
}

func TestStore_Remove(t *testing.T) {
	s := New[counter](time.Hour)
	s.Create("a", counter{})
	require.Equal(t, 1, s.Len())

	s.Remove("a")
	assert.Equal(t, 0, s.Len())

	_, err := s.Get("a")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	// removing twice is fine
	s.Remove("a")
}

func TestStore_SweepRemovesIdleOnly(t *testing.T) {
	s := New[counter](50 * time.Millisecond)
	s.Create("old", counter{})
	s.Create("fresh", counter{})

	time.Sleep(80 * time.Millisecond)

	// activity on one session keeps it alive
	require.NoError(t, s.Update("fresh", func(c *counter) error { return nil }))

	removed := s.sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())

	_, err := s.Get("old")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	_, err = s.Get("fresh")
	assert.NoError(t, err)
}

func TestStore_SweeperLifecycle(t *testing.T) {
	s := New[counter](10 * time.Millisecond)
	s.Create("a", counter{})
	s.StartSweeper(10 * time.Millisecond)
	defer s.Close()

	assert.Eventually(t, func() bool {
		return s.Len() == 0
	}, time.Second, 10*time.Millisecond)

	// Close twice must not panic
	s.Close()
}
