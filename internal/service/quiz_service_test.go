package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

func TestQuizCatalogHidesAnswers(t *testing.T) {
	h := newHarness(t)
	items := h.quiz.Catalog()
	require.Len(t, items, 2)
	assert.Equal(t, "q1", items[0].ID)
	assert.Equal(t, models.QuizMCQ, items[0].Type)
	assert.Equal(t, models.QuizShort, items[1].Type)
}

func TestQuizSecondTryCorrect(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.start(t, "3-1")
	alice := h.student(t, 1)

	wrong, err := h.quiz.Attempt(ctx, alice, "q1", "산소")
	require.NoError(t, err)
	assert.True(t, wrong.Accepted)
	assert.False(t, wrong.Response.IsCorrect)
	assert.Nil(t, wrong.Point)
	assert.Equal(t, 1, wrong.Progress.Attempts)

	right, err := h.quiz.Attempt(ctx, alice, "q1", " 이산화탄소 ")
	require.NoError(t, err)
	assert.True(t, right.Accepted)
	assert.Equal(t, 2, right.Response.AttemptNo)
	assert.True(t, right.Progress.Solved)
	require.NotNil(t, right.Point)
	assert.Equal(t, models.QuizReason(2), right.Point.Reason)
	assert.Equal(t, "형성평가 정답 (2차)", right.Point.Reason)
	assert.Equal(t, session.ID, *right.Point.SessionID)

	third, err := h.quiz.Attempt(ctx, alice, "q1", "이산화탄소")
	require.NoError(t, err)
	assert.False(t, third.Accepted)
	assert.Equal(t, 2, third.Progress.Attempts)
	assert.Equal(t, 1, h.summary(t, alice.ID).Hold)
}

func TestQuizSolvedOnFirstTryRejectsMore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.start(t, "3-1")
	alice := h.student(t, 1)

	first, err := h.quiz.Attempt(ctx, alice, "q2", "기화")
	require.NoError(t, err)
	require.NotNil(t, first.Point)
	assert.Equal(t, "형성평가 정답 (1차)", first.Point.Reason)

	again, err := h.quiz.Attempt(ctx, alice, "q2", "기화")
	require.NoError(t, err)
	assert.False(t, again.Accepted)
	assert.True(t, again.Progress.Solved)
}

func TestQuizExhaustedAfterTwoWrong(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.start(t, "3-1")
	alice := h.student(t, 1)

	for _, answer := range []string{"액화", "응고"} {
		res, err := h.quiz.Attempt(ctx, alice, "q2", answer)
		require.NoError(t, err)
		assert.True(t, res.Accepted)
	}
	progress, err := h.quiz.Progress(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, progress, 2)
	assert.True(t, progress[1].Exhausted)
	assert.False(t, progress[0].Exhausted)
}

func TestQuizBlockedStudentKeepsResponse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.start(t, "3-1")
	alice := h.student(t, 1)
	for i := 0; i < 2; i++ {
		_, err := h.warnings.Warn(ctx, session.ID, alice.ID)
		require.NoError(t, err)
	}

	res, err := h.quiz.Attempt(ctx, alice, "q1", "이산화탄소")
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.True(t, res.PointsBlocked)
	assert.Nil(t, res.Point)
	assert.Equal(t, 1, res.Response.EarnedPoints)
	assert.Equal(t, 0, h.summary(t, alice.ID).Hold)
}

func TestQuizAttemptValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.student(t, 1)

	_, err := h.quiz.Attempt(ctx, alice, "q1", "산소")
	requireCode(t, err, appErrors.ErrNoActiveSession)

	h.start(t, "3-1")
	_, err = h.quiz.Attempt(ctx, alice, "q9", "산소")
	requireCode(t, err, appErrors.ErrNotFound)
	_, err = h.quiz.Attempt(ctx, alice, "q1", " ")
	requireCode(t, err, appErrors.ErrValidation)
}

type failingEarner struct{}

func (failingEarner) RecordEarn(context.Context, EarnRequest) (*models.PointRecord, error) {
	return nil, errors.New("ledger unavailable")
}

func TestQuizLedgerFailureIsLoggedWithIDs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	core, logs := observer.New(zap.ErrorLevel)
	h.quiz.ledger = failingEarner{}
	h.quiz.logger = zap.New(core)
	h.start(t, "3-1")
	alice := h.student(t, 1)

	_, err := h.quiz.Attempt(ctx, alice, "q1", "이산화탄소")
	require.Error(t, err)

	responses, err := h.repos.QuizResponses.ListByStudent(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)

	entries := logs.FilterMessage("points not recorded after save").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, alice.ID, fields["student_id"])
	assert.Equal(t, "q1", fields["quiz_item_id"])
	assert.Equal(t, responses[0].ID, fields["response_id"])
}
