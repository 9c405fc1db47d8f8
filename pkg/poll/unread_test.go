package poll

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/topup-desk/support-service/pkg/store"
)

func newUnreadFixture(t *testing.T) *store.LocalStore {
	t.Helper()
	st, err := store.NewLocalStore(store.LocalOptions{})
	require.NoError(t, err)
	return st
}

func TestUnreadTrackerAccumulatesWhileInactive(t *testing.T) {
	ctx := context.Background()
	st := newUnreadFixture(t)
	tracker := NewUnreadTracker(st, "s1", false)

	for i := 0; i < 3; i++ {
		_, err := st.SendMessage(ctx, store.SendMessageInput{
			SessionID: "s1", Body: "ответ поддержки", IsStaff: true,
		})
		require.NoError(t, err)
	}

	n, err := tracker.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestUnreadTrackerActivateClearsBacklog(t *testing.T) {
	ctx := context.Background()
	st := newUnreadFixture(t)
	tracker := NewUnreadTracker(st, "s1", false)

	_, err := st.SendMessage(ctx, store.SendMessageInput{
		SessionID: "s1", Body: "ответ поддержки", IsStaff: true,
	})
	require.NoError(t, err)

	require.NoError(t, tracker.Activate(ctx))

	n, err := tracker.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	// входящее в активный диалог гасится на ближайшем Count
	_, err = st.SendMessage(ctx, store.SendMessageInput{
		SessionID: "s1", Body: "ещё ответ", IsStaff: true,
	})
	require.NoError(t, err)
	n, err = tracker.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	n, err = st.UnreadCount(ctx, "s1", false)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestUnreadTrackerDeactivateResumesCounting(t *testing.T) {
	ctx := context.Background()
	st := newUnreadFixture(t)
	tracker := NewUnreadTracker(st, "s1", false)

	require.NoError(t, tracker.Activate(ctx))
	tracker.Deactivate()

	_, err := st.SendMessage(ctx, store.SendMessageInput{
		SessionID: "s1", Body: "ответ после закрытия", IsStaff: true,
	})
	require.NoError(t, err)

	n, err := tracker.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
