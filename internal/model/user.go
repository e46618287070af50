package model

import "time"

// Role decides which staff routes a user may call
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleClinician Role = "clinician"
)

// Tenant is a clinic or practice; all data is scoped to one
type Tenant struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// User is a staff member who logs in with email and password
type User struct {
	ID           string    `json:"id" bson:"_id"`
	TenantID     string    `json:"tenantId" bson:"tenantId"`
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	Role         Role      `json:"role" bson:"role"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
