package models

import "fmt"

// SeedClasses returns the default class list.
func SeedClasses() []Class {
	return []Class{
		{ID: "3-1", Name: "3학년 1반"},
		{ID: "3-2", Name: "3학년 2반"},
		{ID: "4-1", Name: "4학년 1반"},
	}
}

// SeedStudentNames returns the demo roster for class 3-1 keyed by number.
func SeedStudentNames() map[int]string {
	names := make(map[int]string, 25)
	for i := 1; i <= 25; i++ {
		names[i] = fmt.Sprintf("학생 %d", i)
	}
	return names
}

// SeedStudentID builds the id of a seeded student.
func SeedStudentID(classID string, number int) string {
	return fmt.Sprintf("S-%s-%d", classID, number)
}

// QuizCatalog returns the static formative assessment items.
func QuizCatalog() []QuizItem {
	return []QuizItem{
		{ID: "q1", Type: QuizMCQ, Prompt: "광합성에 필요한 기체는?", Choices: []string{"산소", "이산화탄소", "질소", "수소"}, CorrectAnswer: "이산화탄소"},
		{ID: "q2", Type: QuizShort, Prompt: "액체에서 기체로 변하는 현상은?", CorrectAnswer: "기화"},
	}
}

// StoreCatalog returns the static store items.
func StoreCatalog() []StoreItem {
	return []StoreItem{
		{ID: "item-1", Name: "마이쮸", Price: 2, IsActive: true},
		{ID: "item-2", Name: "비타민C", Price: 1, IsActive: true},
		{ID: "item-3", Name: "멘토스", Price: 3, IsActive: true},
		{ID: "item-4", Name: "실험 키트(대형)", Price: 15, IsActive: true},
	}
}
