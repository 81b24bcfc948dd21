package models

import "strings"

// Class is a homeroom such as "3-1" (grade 3, class 1).
type Class struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GradePrefix returns the portion of a class id before the separator.
func GradePrefix(classID string) string {
	if idx := strings.Index(classID, "-"); idx >= 0 {
		return classID[:idx]
	}
	return classID
}

// SameGrade reports whether two classes share a grade level.
func SameGrade(a, b string) bool {
	return a != "" && b != "" && GradePrefix(a) == GradePrefix(b)
}
