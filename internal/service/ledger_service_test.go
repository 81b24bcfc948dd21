package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

func TestLedgerBalancesReplayLog(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.student(t, 1).ID

	_, err := h.ledger.RecordEarn(ctx, EarnRequest{StudentID: id, Bucket: models.BucketHold, Points: 4, Reason: "참여"})
	require.NoError(t, err)
	_, err = h.ledger.RecordEarn(ctx, EarnRequest{StudentID: id, Bucket: models.BucketConfirmed, Points: 2, Reason: "보너스"})
	require.NoError(t, err)

	converted, err := h.ledger.Convert(ctx, id, nil, 3, "수동 확정")
	require.NoError(t, err)
	require.Len(t, converted, 2)

	_, err = h.ledger.RecordSpend(ctx, SpendRequest{StudentID: id, Points: 4, Reason: "상점"})
	require.NoError(t, err)

	hold, err := h.ledger.Balance(ctx, id, models.BucketHold)
	require.NoError(t, err)
	assert.Equal(t, 1, hold)
	summary := h.summary(t, id)
	assert.Equal(t, 1, summary.Confirmed)

	history, pagination, err := h.ledger.History(ctx, id, 1, 2)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, 5, pagination.TotalCount)
	assert.Equal(t, models.PointSpend, history[0].Type)
}

func TestLedgerRejectsInvalidAndOverdrawn(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.student(t, 1).ID

	_, err := h.ledger.RecordEarn(ctx, EarnRequest{StudentID: id, Bucket: models.BucketHold, Points: 0, Reason: "x"})
	requireCode(t, err, appErrors.ErrValidation)
	_, err = h.ledger.RecordEarn(ctx, EarnRequest{StudentID: id, Bucket: "LATER", Points: 1, Reason: "x"})
	requireCode(t, err, appErrors.ErrValidation)
	_, err = h.ledger.RecordSpend(ctx, SpendRequest{StudentID: id, Points: 1, Reason: "x"})
	requireCode(t, err, appErrors.ErrInsufficientPoints)
	_, err = h.ledger.Convert(ctx, id, nil, 1, "x")
	requireCode(t, err, appErrors.ErrInsufficientPoints)

	ledger, err := h.ledger.Ledger(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestLedgerConvertForMissionIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.student(t, 1).ID
	sid := "SES-1"

	_, err := h.ledger.RecordEarn(ctx, EarnRequest{StudentID: id, SessionID: &sid, Bucket: models.BucketHold, Points: 3, Reason: "참여"})
	require.NoError(t, err)

	first, err := h.ledger.ConvertForMission(ctx, id, sid, models.ConversionAll)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, models.ReasonMissionConversion, first[0].Reason)

	second, err := h.ledger.ConvertForMission(ctx, id, sid, models.ConversionAll)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, 3, h.summary(t, id).Confirmed)

	none, err := h.ledger.ConvertForMission(ctx, h.student(t, 2).ID, sid, models.ConversionAll)
	require.NoError(t, err)
	assert.Empty(t, none)
}
