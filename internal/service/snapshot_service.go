package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/dto"
	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/pkg/i18n"
)

type sessionStateReader interface {
	State(ctx context.Context, classID string) (dto.SessionState, error)
}

type preRoutineReader interface {
	Status(ctx context.Context, student models.Student) (dto.PreRoutineStatus, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.PreRoutine, error)
}

type warningReader interface {
	Count(ctx context.Context, sessionID, studentID string) (int, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Warning, error)
}

type ledgerReader interface {
	Summary(ctx context.Context, studentID string) (models.PointSummary, error)
	Ledger(ctx context.Context) ([]models.PointRecord, error)
}

type quizProgressReader interface {
	Progress(ctx context.Context, studentID string) ([]models.QuizProgress, error)
}

type boardFeedReader interface {
	Feed(ctx context.Context, classID string) (*dto.BoardFeed, error)
}

type rosterReader interface {
	Students(ctx context.Context, classID string) ([]models.Student, error)
}

type attendanceReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Attendance, error)
}

type missionReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.MissionResult, error)
}

// SnapshotSources lists the read models a snapshot is assembled from.
type SnapshotSources struct {
	Sessions    sessionStateReader
	PreRoutines preRoutineReader
	Warnings    warningReader
	Ledger      ledgerReader
	Quiz        quizProgressReader
	Board       boardFeedReader
	Roster      rosterReader
	Attendance  attendanceReader
	Missions    missionReader
}

// SnapshotService aggregates polling views for students and teachers.
type SnapshotService struct {
	src        SnapshotSources
	translator *i18n.Translator
	logger     *zap.Logger
}

// NewSnapshotService constructs a SnapshotService.
func NewSnapshotService(src SnapshotSources, translator *i18n.Translator, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{src: src, translator: translator, logger: logger}
}

// StudentSnapshot assembles the student app state. lang is an Accept-Language value.
func (s *SnapshotService) StudentSnapshot(ctx context.Context, student models.Student, lang string) (*dto.StudentSnapshot, error) {
	state, err := s.src.Sessions.State(ctx, student.ClassID)
	if err != nil {
		return nil, err
	}
	snapshot := &dto.StudentSnapshot{Student: student.Info(), Session: state, Notices: []string{}}

	if snapshot.PreRoutine, err = s.src.PreRoutines.Status(ctx, student); err != nil {
		return nil, err
	}
	if state.Session != nil {
		if snapshot.Warnings, err = s.src.Warnings.Count(ctx, state.Session.ID, student.ID); err != nil {
			return nil, err
		}
		snapshot.PointsBlocked = models.PointsBlocked(snapshot.Warnings)
	}
	if snapshot.Points, err = s.src.Ledger.Summary(ctx, student.ID); err != nil {
		return nil, err
	}
	if snapshot.Quiz, err = s.src.Quiz.Progress(ctx, student.ID); err != nil {
		return nil, err
	}
	if snapshot.Board, err = s.src.Board.Feed(ctx, student.ClassID); err != nil {
		return nil, err
	}

	switch {
	case state.Session == nil:
		snapshot.Notices = append(snapshot.Notices, s.translator.T(lang, i18n.MsgWaitingForClass, nil))
	case !snapshot.PreRoutine.Completed:
		snapshot.Notices = append(snapshot.Notices, s.translator.T(lang, i18n.MsgPreRoutinePending, nil))
	}
	if snapshot.Warnings > 0 {
		snapshot.Notices = append(snapshot.Notices, s.translator.T(lang, i18n.MsgWarningCount, map[string]interface{}{
			"Count": snapshot.Warnings,
			"Max":   models.MaxWarnings,
		}))
	}
	if snapshot.PointsBlocked {
		snapshot.Notices = append(snapshot.Notices,
			s.translator.T(lang, i18n.MsgPointsBlocked, nil),
			s.translator.T(lang, i18n.MsgHeldPointsPromise, nil),
		)
	}
	return snapshot, nil
}

// ClassSnapshot builds the teacher dashboard for classID. Without an active
// session the rows carry only roster and point balances.
func (s *SnapshotService) ClassSnapshot(ctx context.Context, classID string) (*dto.ClassSnapshot, error) {
	state, err := s.src.Sessions.State(ctx, classID)
	if err != nil {
		return nil, err
	}
	students, err := s.src.Roster.Students(ctx, classID)
	if err != nil {
		return nil, err
	}
	var rows []dto.ClassRosterRow
	if state.Session != nil {
		rows, err = s.sessionRows(ctx, *state.Session, students)
	} else {
		rows, err = s.rosterRows(ctx, students)
	}
	if err != nil {
		return nil, err
	}

	snapshot := &dto.ClassSnapshot{ClassID: classID, Session: state.Session, Rows: rows, Total: len(rows)}
	for _, row := range rows {
		if row.Present {
			snapshot.Present++
		}
	}
	return snapshot, nil
}

// SessionRows returns one row per student of the session's class.
func (s *SnapshotService) SessionRows(ctx context.Context, session models.Session) ([]dto.ClassRosterRow, error) {
	students, err := s.src.Roster.Students(ctx, session.ClassID)
	if err != nil {
		return nil, err
	}
	return s.sessionRows(ctx, session, students)
}

func (s *SnapshotService) rosterRows(ctx context.Context, students []models.Student) ([]dto.ClassRosterRow, error) {
	ledger, err := s.src.Ledger.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.ClassRosterRow, 0, len(students))
	for _, st := range students {
		rows = append(rows, dto.ClassRosterRow{Student: st.View(), Points: models.Summarize(ledger, st.ID)})
	}
	return rows, nil
}

func (s *SnapshotService) sessionRows(ctx context.Context, session models.Session, students []models.Student) ([]dto.ClassRosterRow, error) {
	attendance, err := s.src.Attendance.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	routines, err := s.src.PreRoutines.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	warnings, err := s.src.Warnings.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	missions, err := s.src.Missions.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.src.Ledger.Ledger(ctx)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(attendance))
	for _, a := range attendance {
		present[a.StudentID] = a.Status == models.AttendancePresent
	}
	routineBy := make(map[string]models.PreRoutine, len(routines))
	for _, r := range routines {
		routineBy[r.StudentID] = r
	}
	missionBy := make(map[string]models.MissionStatus, len(missions))
	for _, m := range missions {
		missionBy[m.StudentID] = m.Status
	}

	rows := make([]dto.ClassRosterRow, 0, len(students))
	for _, st := range students {
		row := dto.ClassRosterRow{
			Student:      st.View(),
			Present:      present[st.ID],
			Mission:      missionBy[st.ID],
			EarnedPoints: models.EarnedInSession(ledger, st.ID, session.ID),
			Points:       models.Summarize(ledger, st.ID),
		}
		if r, ok := routineBy[st.ID]; ok {
			row.PreRoutine = true
			row.HasMaterials = r.HasMaterials
			row.IsReady = r.IsReady
		}
		if w := models.FindWarning(warnings, session.ID, st.ID); w != nil {
			row.Warnings = w.Count
			row.PointsBlocked = models.PointsBlocked(w.Count)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
