package models

import "time"

// DefaultPIN is assigned to new students and always forces a PIN change.
const DefaultPIN = "0000"

// Student is a roster entry that logs in with a 4-digit PIN.
type Student struct {
	ID           string    `json:"id"`
	ClassID      string    `json:"class_id"`
	Number       int       `json:"number"`
	Name         string    `json:"name"`
	PINHash      string    `json:"pin_hash"`
	IsFirstLogin bool      `json:"is_first_login"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Info strips credentials for API responses.
func (s Student) Info() UserInfo {
	return UserInfo{ID: s.ID, Name: s.Name, Role: RoleStudent, ClassID: s.ClassID, Number: s.Number}
}

// StudentView is the roster row shown to the teacher.
type StudentView struct {
	ID           string `json:"id"`
	ClassID      string `json:"class_id"`
	Number       int    `json:"number"`
	Name         string `json:"name"`
	IsFirstLogin bool   `json:"is_first_login"`
}

// View converts a student into its public roster row.
func (s Student) View() StudentView {
	return StudentView{ID: s.ID, ClassID: s.ClassID, Number: s.Number, Name: s.Name, IsFirstLogin: s.IsFirstLogin}
}

// ValidPIN reports whether pin is exactly four ASCII digits.
func ValidPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
