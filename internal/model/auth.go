package model

import "github.com/golang-jwt/jwt/v5"

// StaffClaims are JWT claims for clinicians and admins
type StaffClaims struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// PatientClaims are JWT claims for session-scoped patient tokens
type PatientClaims struct {
	TenantID  string `json:"tenantId"`
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for staff login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	Role     Role   `json:"role"`
}
