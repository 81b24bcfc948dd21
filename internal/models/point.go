package models

import (
	"fmt"
	"time"
)

// PointType classifies a ledger entry.
type PointType string

const (
	PointEarn    PointType = "EARN"
	PointSpend   PointType = "SPEND"
	PointConvert PointType = "CONVERT"
)

// PointBucket separates contingent points from spendable ones.
type PointBucket string

const (
	BucketHold      PointBucket = "HOLD"
	BucketConfirmed PointBucket = "CONFIRMED"
)

// Ledger reasons shown to students.
const (
	ReasonQuestionCreate    = "질문 작성"
	ReasonAnswerCreate      = "답변 작성"
	ReasonBestAnswer        = "최고의 답변 선정"
	ReasonMissionConversion = "학급 미션 성공"
)

// QuizReason labels a correct quiz answer by attempt number.
func QuizReason(attemptNo int) string {
	return fmt.Sprintf("형성평가 정답 (%d차)", attemptNo)
}

// PurchaseReason labels a store purchase.
func PurchaseReason(itemName string) string {
	return "상점 구매: " + itemName
}

// PointRecord is an immutable ledger entry.
type PointRecord struct {
	ID        string      `json:"id"`
	StudentID string      `json:"student_id"`
	SessionID *string     `json:"session_id,omitempty"`
	Type      PointType   `json:"type"`
	Bucket    PointBucket `json:"bucket"`
	Points    int         `json:"points"`
	Reason    string      `json:"reason"`
	CreatedAt time.Time   `json:"created_at"`
}

// InSession reports whether the record is linked to sessionID.
func (r PointRecord) InSession(sessionID string) bool {
	return r.SessionID != nil && *r.SessionID == sessionID
}

// Signed returns the entry's contribution to its bucket.
func (r PointRecord) Signed() int {
	switch r.Type {
	case PointEarn:
		return r.Points
	case PointSpend:
		return -r.Points
	case PointConvert:
		if r.Bucket == BucketHold {
			return -r.Points
		}
		return r.Points
	default:
		return 0
	}
}

// Balance replays records for studentID in bucket. An empty studentID
// aggregates every student.
func Balance(records []PointRecord, studentID string, bucket PointBucket) int {
	total := 0
	for _, r := range records {
		if r.Bucket != bucket {
			continue
		}
		if studentID != "" && r.StudentID != studentID {
			continue
		}
		total += r.Signed()
	}
	return total
}

// SessionBalance is Balance restricted to entries linked to sessionID.
func SessionBalance(records []PointRecord, studentID, sessionID string, bucket PointBucket) int {
	total := 0
	for _, r := range records {
		if r.Bucket != bucket || r.StudentID != studentID || !r.InSession(sessionID) {
			continue
		}
		total += r.Signed()
	}
	return total
}

// EarnedInSession sums EARN entries of both buckets linked to sessionID.
func EarnedInSession(records []PointRecord, studentID, sessionID string) int {
	total := 0
	for _, r := range records {
		if r.Type == PointEarn && r.StudentID == studentID && r.InSession(sessionID) {
			total += r.Points
		}
	}
	return total
}

// PointSummary aggregates both buckets for a student.
type PointSummary struct {
	StudentID string `json:"student_id"`
	Hold      int    `json:"hold"`
	Confirmed int    `json:"confirmed"`
}

// Summarize computes a PointSummary from the ledger.
func Summarize(records []PointRecord, studentID string) PointSummary {
	return PointSummary{
		StudentID: studentID,
		Hold:      Balance(records, studentID, BucketHold),
		Confirmed: Balance(records, studentID, BucketConfirmed),
	}
}

// ConversionRecorded reports whether a mission conversion already exists for (student, session).
func ConversionRecorded(records []PointRecord, studentID, sessionID string) bool {
	for _, r := range records {
		if r.Type == PointConvert && r.StudentID == studentID && r.InSession(sessionID) && r.Reason == ReasonMissionConversion {
			return true
		}
	}
	return false
}
