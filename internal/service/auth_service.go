package service

import (
	"anamnese/internal/model"
	"anamnese/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const (
	audienceStaff   = "staff"
	audiencePatient = "patient"
)

// dummyHash keeps the failed-lookup path as slow as a real comparison
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// AuthService handles staff login and session-scoped patient tokens
type AuthService struct {
	users      repository.UserRepo
	jwtSecret  []byte
	staffTTL   time.Duration
	patientTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserRepo, secret string) *AuthService {
	return &AuthService{
		users:      users,
		jwtSecret:  []byte(secret),
		staffTTL:   12 * time.Hour,
		patientTTL: 72 * time.Hour,
		now:        time.Now,
	}
}

// HashPassword hashes a staff password for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login validates credentials and returns a staff token
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := &model.StaffClaims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{audienceStaff},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.staffTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:    tokenString,
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
	}, nil
}

// ValidateStaffToken validates a staff JWT and returns claims
func (s *AuthService) ValidateStaffToken(tokenString string) (*model.StaffClaims, error) {
	claims := &model.StaffClaims{}
	if err := s.parse(tokenString, claims, audienceStaff); err != nil {
		return nil, err
	}
	if claims.UserID == "" || claims.TenantID == "" {
		return nil, ErrInvalidToken
	}
	if claims.Role != model.RoleAdmin && claims.Role != model.RoleClinician {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GeneratePatientToken creates a token that only grants access to one session
func (s *AuthService) GeneratePatientToken(tenantID, sessionID string) (string, error) {
	now := s.now()
	claims := &model.PatientClaims{
		TenantID:  tenantID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Audience:  jwt.ClaimStrings{audiencePatient},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.patientTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidatePatientToken validates a patient JWT and returns claims
func (s *AuthService) ValidatePatientToken(tokenString string) (*model.PatientClaims, error) {
	claims := &model.PatientClaims{}
	if err := s.parse(tokenString, claims, audiencePatient); err != nil {
		return nil, err
	}
	if claims.TenantID == "" || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
