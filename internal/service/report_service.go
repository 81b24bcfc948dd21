package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/dto"
	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
	"github.com/noah-isme/sciclass-api/pkg/export"
)

// Report formats.
const (
	ReportCSV = "csv"
	ReportPDF = "pdf"
)

var sessionReportHeaders = []string{"number", "name", "present", "materials", "ready", "warnings", "points_earned"}

type sessionLookup interface {
	Get(ctx context.Context, sessionID string) (*models.Session, error)
}

type sessionRowSource interface {
	SessionRows(ctx context.Context, session models.Session) ([]dto.ClassRosterRow, error)
}

// ReportFile is a rendered export.
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService renders per-session participation reports.
type ReportService struct {
	sessions sessionLookup
	rows     sessionRowSource
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(sessions sessionLookup, rows sessionRowSource, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		sessions: sessions,
		rows:     rows,
		csv:      export.NewCSVExporter(true),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// SessionReport renders one row per student of the session's class.
func (s *ReportService) SessionReport(ctx context.Context, sessionID, format string) (*ReportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ReportCSV
	}
	if format != ReportCSV && format != ReportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows.SessionRows(ctx, *session)
	if err != nil {
		return nil, err
	}
	dataset := sessionDataset(rows)

	file := &ReportFile{Filename: fmt.Sprintf("session-%s.%s", session.ID, format)}
	switch format {
	case ReportPDF:
		title := fmt.Sprintf("Session %s (%s, period %d)", session.ID, session.Date, session.Period)
		file.Data, err = s.pdf.Render(dataset, title)
		file.ContentType = s.pdf.ContentType()
	default:
		file.Data, err = s.csv.Render(dataset)
		file.ContentType = s.csv.ContentType()
	}
	if err != nil {
		s.logger.Error("failed to render session report", zap.String("session_id", sessionID), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return file, nil
}

func sessionDataset(rows []dto.ClassRosterRow) export.Dataset {
	data := export.Dataset{Headers: sessionReportHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"number":        strconv.Itoa(row.Student.Number),
			"name":          row.Student.Name,
			"present":       yesNo(row.Present),
			"materials":     yesNo(row.HasMaterials),
			"ready":         yesNo(row.IsReady),
			"warnings":      strconv.Itoa(row.Warnings),
			"points_earned": strconv.Itoa(row.EarnedPoints),
		})
	}
	return data
}

func yesNo(v bool) string {
	if v {
		return "Y"
	}
	return "N"
}
