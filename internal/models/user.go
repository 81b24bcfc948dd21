package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID  string   `json:"user_id"`
	Role    UserRole `json:"role"`
	Name    string   `json:"name"`
	ClassID string   `json:"class_id,omitempty"`
	jwt.RegisteredClaims
}

// Paginate slices items for the requested page and reports the metadata.
func Paginate[T any](items []T, page, size int) ([]T, *Pagination) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	total := len(items)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return items[start:end], &Pagination{Page: page, PageSize: size, TotalCount: total}
}
