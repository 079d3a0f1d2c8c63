package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guerinoni/ghn/internal/model"
	"github.com/guerinoni/ghn/internal/store"
	"github.com/guerinoni/ghn/tests/testutil"
)

func TestReplaceAll_PreservesOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	list := []model.Notification{
		testutil.Notification("30", true),
		testutil.Notification("10", false),
		testutil.PullRequestNotification("20", 42, 99),
	}
	require.NoError(t, s.ReplaceAll(ctx, 1, list))

	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "30", got[0].ID)
	assert.Equal(t, "10", got[1].ID)
	assert.Equal(t, "20", got[2].ID)
	assert.Equal(t, list[2], got[2])
}

func TestReplaceAll_ClearsPreviousEntries(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, 1, []model.Notification{
		testutil.Notification("1", true),
		testutil.Notification("2", true),
	}))
	require.NoError(t, s.ReplaceAll(ctx, 2, []model.Notification{
		testutil.Notification("3", false),
	}))

	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)

	_, err = s.GetByID(ctx, "1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	seq, err := s.Seq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
}

func TestReplaceAll_Empty(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, 1, []model.Notification{testutil.Notification("1", true)}))
	require.NoError(t, s.ReplaceAll(ctx, 2, nil))

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLookups(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, 7, []model.Notification{
		testutil.Notification("a", true),
		testutil.PullRequestNotification("b", 1, 2),
		testutil.Notification("c", false),
	}))

	n, err := s.GetByID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, model.SubjectTypePullRequest, n.Subject.Type)

	n, err = s.GetByPosition(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "c", n.ID)

	_, err = s.GetByPosition(ctx, 3)
	assert.ErrorIs(t, err, store.ErrNotFound)

	count, err := s.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewMemoryStore_IsolatedInstances(t *testing.T) {
	a := testutil.NewTestStore(t)
	b := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, a.ReplaceAll(ctx, 1, []model.Notification{testutil.Notification("1", true)}))

	got, err := b.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
