package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetDelete(t *testing.T) {
	s := NewStore[string](time.Minute)

	id := s.Put("saving")
	assert.Len(t, id, 36)

	v, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "saving", v)

	s.Delete(id)
	_, ok = s.Get(id)
	assert.False(t, ok)
}

func TestStore_UnknownID(t *testing.T) {
	s := NewStore[int](time.Minute)

	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestStore_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore[int](time.Minute)
	s.now = func() time.Time { return now }

	old := s.Put(1)
	now = now.Add(2 * time.Minute)

	_, ok := s.Get(old)
	assert.False(t, ok)

	fresh := s.Put(2)
	assert.Equal(t, 1, s.Len())
	v, ok := s.Get(fresh)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}
