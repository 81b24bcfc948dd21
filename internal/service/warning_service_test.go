package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

func TestWarningClampsAtMax(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.start(t, "3-1")
	id := h.student(t, 1).ID

	count, err := h.warnings.Count(ctx, session.ID, id)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	first, err := h.warnings.Warn(ctx, session.ID, id)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.False(t, first.PointsBlocked)

	second, err := h.warnings.Warn(ctx, session.ID, id)
	require.NoError(t, err)
	assert.True(t, second.PointsBlocked)

	third, err := h.warnings.Warn(ctx, session.ID, id)
	require.NoError(t, err)
	assert.False(t, third.Changed)
	assert.Equal(t, 2, third.Warning.Count)

	rows, err := h.warnings.ListBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWarningRequiresActiveSessionAndClass(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.start(t, "3-2")

	_, err := h.warnings.Warn(ctx, session.ID, h.student(t, 1).ID)
	requireCode(t, err, appErrors.ErrValidation)

	h.end(t, session.ID)
	_, err = h.warnings.Warn(ctx, session.ID, h.student(t, 1).ID)
	requireCode(t, err, appErrors.ErrSessionClosed)
}
