package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shareit/internal/apperror"
)

func TestItemRequestCreate(t *testing.T) {
	env := newTestEnv(t)
	ann := env.user(t, "ann")

	req, err := env.requests.Create(context.Background(), ann.ID, "  Need a ladder ")
	require.NoError(t, err)
	assert.NotZero(t, req.ID)
	assert.Equal(t, "Need a ladder", req.Description)
	assert.True(t, req.Created.Equal(t0))
	assert.NotNil(t, req.Items)
	assert.Empty(t, req.Items)

	_, err = env.requests.Create(context.Background(), ann.ID, "")
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = env.requests.Create(context.Background(), 999, "Need a ladder")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestItemRequest_AnsweredItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")

	req, err := env.requests.Create(ctx, ann.ID, "Need a ladder")
	require.NoError(t, err)

	ladder, err := env.items.Create(ctx, bob.ID, NewItem{
		Name:        "Ladder",
		Description: "Three metres",
		Available:   ptr(true),
		RequestID:   &req.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, ladder.RequestID)
	assert.Equal(t, req.ID, *ladder.RequestID)

	got, err := env.requests.Get(ctx, bob.ID, req.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, ladder.ID, got.Items[0].ID)

	mine, err := env.requests.ListMine(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Len(t, mine[0].Items, 1)
}

func TestItemRequestListMine_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.user(t, "ann")

	first, err := env.requests.Create(ctx, ann.ID, "Need a ladder")
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	second, err := env.requests.Create(ctx, ann.ID, "Need a tent")
	require.NoError(t, err)

	mine, err := env.requests.ListMine(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	empty, err := env.requests.ListMine(ctx, env.user(t, "bob").ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestItemRequestListOthers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")
	eve := env.user(t, "eve")

	a, err := env.requests.Create(ctx, ann.ID, "Need a ladder")
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	_, err = env.requests.Create(ctx, bob.ID, "Need a tent")
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	c, err := env.requests.Create(ctx, eve.ID, "Need a kayak")
	require.NoError(t, err)

	others, err := env.requests.ListOthers(ctx, bob.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, others, 2)
	assert.Equal(t, a.ID, others[0].ID)
	assert.Equal(t, c.ID, others[1].ID)

	page, err := env.requests.ListOthers(ctx, bob.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, c.ID, page[0].ID)

	_, err = env.requests.ListOthers(ctx, bob.ID, 0, 0)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = env.requests.ListOthers(ctx, 999, 0, 10)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestItemRequestGet_Errors(t *testing.T) {
	env := newTestEnv(t)
	ann := env.user(t, "ann")

	_, err := env.requests.Get(context.Background(), ann.ID, 999)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = env.requests.Get(context.Background(), 999, 1)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
