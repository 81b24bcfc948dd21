package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
	"github.com/noah-isme/sciclass-api/pkg/jobs"
)

type recordingDispatcher struct {
	jobs []jobs.Job
	err  error
}

func (d *recordingDispatcher) Enqueue(job jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

func TestMissionPassConvertsHeldPoints(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.start(t, "3-1")
	alice := h.student(t, 1)

	_, err := h.board.Ask(ctx, alice, "질문")
	require.NoError(t, err)
	_, err = h.quiz.Attempt(ctx, alice, "q1", "이산화탄소")
	require.NoError(t, err)
	require.Equal(t, 2, h.summary(t, alice.ID).Hold)

	view, err := h.missions.Record(ctx, session.ID, alice.ID, models.MissionPass)
	require.NoError(t, err)
	assert.True(t, view.ConversionQueued)

	summary := h.summary(t, alice.ID)
	assert.Equal(t, 0, summary.Hold)
	assert.Equal(t, 2, summary.Confirmed)

	_, err = h.missions.Record(ctx, session.ID, alice.ID, models.MissionFail)
	require.NoError(t, err)
	again, err := h.missions.Record(ctx, session.ID, alice.ID, models.MissionPass)
	require.NoError(t, err)
	assert.True(t, again.ConversionQueued)
	assert.Equal(t, 2, h.summary(t, alice.ID).Confirmed)

	results, err := h.missions.ListBySession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.MissionPass, results[0].Status)
}

func TestMissionSessionModeConvertsOnlyThatSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.missions.dispatcher = jobs.Inline{Handler: ConversionHandler(h.ledger, models.ConversionSession, nil)}
	alice := h.student(t, 1)

	first := h.start(t, "3-1")
	_, err := h.board.Ask(ctx, alice, "1교시")
	require.NoError(t, err)
	h.end(t, first.ID)

	second := h.start(t, "3-1")
	_, err = h.board.Ask(ctx, alice, "2교시")
	require.NoError(t, err)
	_, err = h.quiz.Attempt(ctx, alice, "q2", "기화")
	require.NoError(t, err)

	_, err = h.missions.Record(ctx, second.ID, alice.ID, models.MissionPass)
	require.NoError(t, err)
	summary := h.summary(t, alice.ID)
	assert.Equal(t, 1, summary.Hold)
	assert.Equal(t, 2, summary.Confirmed)
}

func TestMissionPassQueuesOnEveryPass(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	dispatcher := &recordingDispatcher{}
	h.missions.dispatcher = dispatcher
	session := h.start(t, "3-1")
	alice := h.student(t, 1)

	pending, err := h.missions.Record(ctx, session.ID, alice.ID, models.MissionPending)
	require.NoError(t, err)
	assert.False(t, pending.ConversionQueued)
	_, err = h.missions.Record(ctx, session.ID, alice.ID, models.MissionPass)
	require.NoError(t, err)
	view, err := h.missions.Record(ctx, session.ID, alice.ID, models.MissionPass)
	require.NoError(t, err)
	assert.True(t, view.ConversionQueued)

	require.Len(t, dispatcher.jobs, 2)
	assert.Equal(t, "convert:"+session.ID+":"+alice.ID, dispatcher.jobs[0].ID)
	assert.Equal(t, dispatcher.jobs[0].ID, dispatcher.jobs[1].ID)
	assert.Equal(t, JobTypeMissionConversion, dispatcher.jobs[0].Type)
}

type flakyDispatcher struct {
	calls    int
	failures int
	next     jobs.Dispatcher
}

func (d *flakyDispatcher) Enqueue(job jobs.Job) error {
	d.calls++
	if d.calls <= d.failures {
		return errors.New("queue stopped")
	}
	return d.next.Enqueue(job)
}

func TestMissionPassRetryAfterQueueFailureConverts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	dispatcher := &flakyDispatcher{
		failures: 1,
		next:     jobs.Inline{Handler: ConversionHandler(h.ledger, models.ConversionAll, nil)},
	}
	h.missions.dispatcher = dispatcher
	session := h.start(t, "3-1")
	alice := h.student(t, 1)

	_, err := h.board.Ask(ctx, alice, "질문")
	require.NoError(t, err)
	require.Equal(t, 1, h.summary(t, alice.ID).Hold)

	_, err = h.missions.Record(ctx, session.ID, alice.ID, models.MissionPass)
	requireCode(t, err, appErrors.ErrInternal)
	assert.Equal(t, 1, h.summary(t, alice.ID).Hold)

	view, err := h.missions.Record(ctx, session.ID, alice.ID, models.MissionPass)
	require.NoError(t, err)
	assert.True(t, view.ConversionQueued)
	assert.Equal(t, 2, dispatcher.calls)

	summary := h.summary(t, alice.ID)
	assert.Equal(t, 0, summary.Hold)
	assert.Equal(t, 1, summary.Confirmed)

	_, err = h.missions.Record(ctx, session.ID, alice.ID, models.MissionPass)
	require.NoError(t, err)
	assert.Equal(t, 1, h.summary(t, alice.ID).Confirmed)
}

func TestMissionRecordValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.start(t, "3-1")
	alice := h.student(t, 1)

	_, err := h.missions.Record(ctx, session.ID, alice.ID, "DONE")
	requireCode(t, err, appErrors.ErrValidation)

	h.missions.dispatcher = &recordingDispatcher{err: errors.New("queue stopped")}
	_, err = h.missions.Record(ctx, session.ID, alice.ID, models.MissionPass)
	requireCode(t, err, appErrors.ErrInternal)

	h.end(t, session.ID)
	_, err = h.missions.Record(ctx, session.ID, alice.ID, models.MissionFail)
	requireCode(t, err, appErrors.ErrSessionClosed)
}

func TestConversionHandlerRejectsForeignPayload(t *testing.T) {
	h := newHarness(t)
	handler := ConversionHandler(h.ledger, models.ConversionAll, nil)
	err := handler(context.Background(), jobs.Job{ID: "x", Payload: "nope"})
	assert.Error(t, err)
}
