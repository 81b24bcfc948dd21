package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sciclass-api/internal/models"
)

func TestStudentSnapshotWaitingForClass(t *testing.T) {
	h := newHarness(t)
	alice := h.student(t, 1)

	snapshot, err := h.snapshots.StudentSnapshot(context.Background(), alice, "ko")
	require.NoError(t, err)
	assert.Equal(t, models.SessionInactive, snapshot.Session.Status)
	require.Len(t, snapshot.Notices, 1)
	assert.Equal(t, "수업 시작을 기다리고 있어요.", snapshot.Notices[0])
	assert.Len(t, snapshot.Quiz, 2)
}

func TestStudentSnapshotBlockedNotices(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.start(t, "3-1")
	alice := h.student(t, 1)

	_, _, err := h.preRoutines.Complete(ctx, alice, CompletePreRoutineRequest{HasMaterials: true, IsReady: true})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := h.warnings.Warn(ctx, session.ID, alice.ID)
		require.NoError(t, err)
	}

	snapshot, err := h.snapshots.StudentSnapshot(ctx, alice, "en-US,en;q=0.9")
	require.NoError(t, err)
	assert.True(t, snapshot.PreRoutine.Completed)
	assert.True(t, snapshot.PointsBlocked)
	assert.Equal(t, 2, snapshot.Warnings)
	require.Len(t, snapshot.Notices, 3)
	assert.Contains(t, snapshot.Notices[0], "2/2")
}

func TestClassSnapshotRows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	idle, err := h.snapshots.ClassSnapshot(ctx, "3-1")
	require.NoError(t, err)
	assert.Nil(t, idle.Session)
	assert.Equal(t, 25, idle.Total)
	assert.Equal(t, 0, idle.Present)

	session := h.start(t, "3-1")
	alice := h.student(t, 1)
	_, _, err = h.attendance.RecordLogin(ctx, alice)
	require.NoError(t, err)
	_, _, err = h.preRoutines.Complete(ctx, alice, CompletePreRoutineRequest{HasMaterials: true})
	require.NoError(t, err)
	_, err = h.warnings.Warn(ctx, session.ID, alice.ID)
	require.NoError(t, err)
	_, err = h.board.Ask(ctx, alice, "질문")
	require.NoError(t, err)

	live, err := h.snapshots.ClassSnapshot(ctx, "3-1")
	require.NoError(t, err)
	require.NotNil(t, live.Session)
	assert.Equal(t, 1, live.Present)

	row := live.Rows[0]
	assert.Equal(t, alice.ID, row.Student.ID)
	assert.True(t, row.Present)
	assert.True(t, row.PreRoutine)
	assert.True(t, row.HasMaterials)
	assert.False(t, row.IsReady)
	assert.Equal(t, 1, row.Warnings)
	assert.False(t, row.PointsBlocked)
	assert.Equal(t, 1, row.EarnedPoints)
}
