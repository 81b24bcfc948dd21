package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

func TestStudentFirstLoginRequiresPINChange(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.start(t, "3-1")
	id := h.student(t, 1).ID

	resp, err := h.auth.StudentLogin(ctx, models.StudentLoginRequest{StudentID: id, PIN: "0000"})
	require.NoError(t, err)
	assert.True(t, resp.PINChangeRequired)
	assert.Empty(t, resp.AccessToken)
	assert.Nil(t, resp.Attendance)

	_, err = h.auth.ChangePIN(ctx, models.ChangePINRequest{StudentID: id, CurrentPIN: "0000", NewPIN: "0000"})
	requireCode(t, err, appErrors.ErrPINFormat)
	_, err = h.auth.ChangePIN(ctx, models.ChangePINRequest{StudentID: id, CurrentPIN: "0000", NewPIN: "12a4"})
	requireCode(t, err, appErrors.ErrPINFormat)
	_, err = h.auth.ChangePIN(ctx, models.ChangePINRequest{StudentID: id, CurrentPIN: "9999", NewPIN: "4321"})
	requireCode(t, err, appErrors.ErrInvalidPIN)

	changed, err := h.auth.ChangePIN(ctx, models.ChangePINRequest{StudentID: id, CurrentPIN: "0000", NewPIN: "4321"})
	require.NoError(t, err)
	assert.NotEmpty(t, changed.AccessToken)
	require.NotNil(t, changed.Attendance)
	assert.Equal(t, models.AttendancePresent, changed.Attendance.Status)

	claims, err := h.auth.ValidateToken(changed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "3-1", claims.ClassID)

	again, err := h.auth.StudentLogin(ctx, models.StudentLoginRequest{StudentID: id, PIN: "4321"})
	require.NoError(t, err)
	assert.False(t, again.PINChangeRequired)
	assert.Equal(t, changed.Attendance.ID, again.Attendance.ID)
}

func TestStudentLoginFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.auth.StudentLogin(ctx, models.StudentLoginRequest{StudentID: "S-9-9-9", PIN: "0000"})
	requireCode(t, err, appErrors.ErrInvalidCredentials)
	_, err = h.auth.StudentLogin(ctx, models.StudentLoginRequest{StudentID: h.student(t, 1).ID, PIN: "1111"})
	requireCode(t, err, appErrors.ErrInvalidPIN)
}

func TestLoginWithoutSessionRecordsNoAttendance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.student(t, 2).ID
	_, err := h.roster.ResetPIN(ctx, id, "2468")
	require.NoError(t, err)

	resp, err := h.auth.StudentLogin(ctx, models.StudentLoginRequest{StudentID: id, PIN: "2468"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Nil(t, resp.Attendance)
}

func TestTeacherLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.auth.TeacherLogin(ctx, models.TeacherLoginRequest{Passcode: "0000"})
	requireCode(t, err, appErrors.ErrInvalidCredentials)

	resp, err := h.auth.TeacherLogin(ctx, models.TeacherLoginRequest{Passcode: "1234"})
	require.NoError(t, err)
	claims, err := h.auth.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.Equal(t, "T-1", claims.UserID)

	_, err = h.auth.ValidateToken(resp.AccessToken + "x")
	assert.Error(t, err)
}
