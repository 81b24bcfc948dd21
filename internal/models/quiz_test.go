package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuizGradeTrimsAnswer(t *testing.T) {
	item := QuizCatalog()[1]
	assert.True(t, item.Grade("  기화 "))
	assert.False(t, item.Grade("액화"))
}

func TestQuizRewardsPayout(t *testing.T) {
	rewards := QuizRewards{FirstTry: 2, SecondTry: 1}
	assert.Equal(t, 2, rewards.Payout(1, true))
	assert.Equal(t, 1, rewards.Payout(2, true))
	assert.Equal(t, 0, rewards.Payout(1, false))
}

func TestProgressOf(t *testing.T) {
	p := ProgressOf("q1", nil)
	assert.True(t, p.CanAttempt())

	p = ProgressOf("q1", []QuizResponse{{AttemptNo: 1, IsCorrect: true, EarnedPoints: 2}})
	assert.True(t, p.Solved)
	assert.False(t, p.CanAttempt())
	assert.Equal(t, 2, p.Earned)

	p = ProgressOf("q1", []QuizResponse{{AttemptNo: 1}, {AttemptNo: 2}})
	assert.True(t, p.Exhausted)
	assert.False(t, p.CanAttempt())
}

func TestResponsesFor(t *testing.T) {
	all := []QuizResponse{
		{QuizItemID: "q1", StudentID: "s1", AttemptNo: 1},
		{QuizItemID: "q2", StudentID: "s1", AttemptNo: 1},
		{QuizItemID: "q1", StudentID: "s2", AttemptNo: 1},
	}
	assert.Len(t, ResponsesFor(all, "q1", "s1"), 1)
}
