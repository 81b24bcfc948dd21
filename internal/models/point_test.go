package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sessionRef(id string) *string { return &id }

func TestBalanceReplaysLedger(t *testing.T) {
	records := []PointRecord{
		{StudentID: "s1", Type: PointEarn, Bucket: BucketHold, Points: 2, SessionID: sessionRef("SES-1")},
		{StudentID: "s1", Type: PointEarn, Bucket: BucketHold, Points: 1, SessionID: sessionRef("SES-2")},
		{StudentID: "s1", Type: PointEarn, Bucket: BucketConfirmed, Points: 3},
		{StudentID: "s1", Type: PointSpend, Bucket: BucketConfirmed, Points: 2},
		{StudentID: "s1", Type: PointConvert, Bucket: BucketHold, Points: 2, SessionID: sessionRef("SES-1")},
		{StudentID: "s1", Type: PointConvert, Bucket: BucketConfirmed, Points: 2, SessionID: sessionRef("SES-1")},
		{StudentID: "s2", Type: PointEarn, Bucket: BucketHold, Points: 5},
	}

	assert.Equal(t, 1, Balance(records, "s1", BucketHold))
	assert.Equal(t, 3, Balance(records, "s1", BucketConfirmed))
	assert.Equal(t, 6, Balance(records, "", BucketHold))
	assert.Equal(t, 0, SessionBalance(records, "s1", "SES-1", BucketHold))
	assert.Equal(t, 1, SessionBalance(records, "s1", "SES-2", BucketHold))
	assert.Equal(t, 2, EarnedInSession(records, "s1", "SES-1"))

	summary := Summarize(records, "s1")
	assert.Equal(t, PointSummary{StudentID: "s1", Hold: 1, Confirmed: 3}, summary)
}

func TestBalanceEqualsSignedSum(t *testing.T) {
	var records []PointRecord
	expected := 0
	for i := 1; i <= 10; i++ {
		typ := PointEarn
		if i%3 == 0 {
			typ = PointSpend
		}
		records = append(records, PointRecord{StudentID: "s1", Type: typ, Bucket: BucketConfirmed, Points: i})
		if typ == PointEarn {
			expected += i
		} else {
			expected -= i
		}
		assert.Equal(t, expected, Balance(records, "s1", BucketConfirmed))
	}
}

func TestConversionRecorded(t *testing.T) {
	records := []PointRecord{
		{StudentID: "s1", Type: PointConvert, Bucket: BucketHold, Points: 1, SessionID: sessionRef("SES-1"), Reason: ReasonMissionConversion},
	}
	assert.True(t, ConversionRecorded(records, "s1", "SES-1"))
	assert.False(t, ConversionRecorded(records, "s1", "SES-2"))
	assert.False(t, ConversionRecorded(records, "s2", "SES-1"))
}

func TestReasons(t *testing.T) {
	assert.Equal(t, "형성평가 정답 (2차)", QuizReason(2))
	assert.Equal(t, "상점 구매: 마이쮸", PurchaseReason("마이쮸"))
}
