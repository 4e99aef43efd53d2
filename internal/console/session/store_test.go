package session

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagipero/admin-console/internal/sagipero"
)

func TestStore_CreateGetDelete(t *testing.T) {
	st := NewStore(Options{Logger: zerolog.Nop()})
	client := sagipero.NewClient("http://backend.invalid/api", sagipero.WithToken("jwt"))

	s := st.Create(client, &sagipero.User{ID: "u1"})
	require.NotEmpty(t, s.ID)
	assert.Nil(t, s.Realtime)
	assert.Equal(t, 1, st.Len())

	got, ok := st.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	s.End()
	_, ok = st.Get(s.ID)
	assert.False(t, ok)
	assert.Empty(t, client.Token())
	assert.Equal(t, 0, st.Len())

	st.Delete("unknown")
}

func TestStore_Expiry(t *testing.T) {
	st := NewStore(Options{TTL: time.Hour, Logger: zerolog.Nop()})
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	idle := st.Create(sagipero.NewClient("http://x"), nil)
	busy := st.Create(sagipero.NewClient("http://x"), nil)

	now = now.Add(45 * time.Minute)
	_, ok := st.Get(busy.ID)
	require.True(t, ok)

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 1, st.Sweep())
	_, ok = st.Get(idle.ID)
	assert.False(t, ok)
	_, ok = st.Get(busy.ID)
	assert.True(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok = st.Get(busy.ID)
	assert.False(t, ok)
}

func TestStore_CloseAll(t *testing.T) {
	st := NewStore(Options{Logger: zerolog.Nop()})
	st.Create(sagipero.NewClient("http://x"), nil)
	st.Create(sagipero.NewClient("http://x"), nil)

	st.CloseAll()
	assert.Equal(t, 0, st.Len())
}

func TestSession_NotificationToast(t *testing.T) {
	st := NewStore(Options{Logger: zerolog.Nop()})
	s := st.Create(sagipero.NewClient("http://x"), nil)
	defer s.End()

	s.notificationToast([]byte(`{"title":"Flood","message":"Evacuate now"}`))
	s.notificationToast([]byte(`{"message":"no title"}`))
	s.notificationToast([]byte(`not json`))

	active := s.Toasts.Active()
	require.Len(t, active, 3)
	titles := []string{active[0].Title, active[1].Title, active[2].Title}
	assert.ElementsMatch(t, []string{"Flood", "Notification", "Notification"}, titles)
}
