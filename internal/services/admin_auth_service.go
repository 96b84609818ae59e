package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"unishopper/internal/models"
	"unishopper/internal/repositories"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	sessionDuration  = 8 * time.Hour
)

// AdminAuthService handles back-office authentication: bcrypt credentials
// with lockout counters, a server-side session row per login, a JWT cookie
// referencing that session, and audit logging of every auth action.
type AdminAuthService struct {
	adminRepo repositories.AdminRepository
	jwtSecret []byte
}

// NewAdminAuthService creates a new AdminAuthService.
func NewAdminAuthService(adminRepo repositories.AdminRepository, jwtSecret string) *AdminAuthService {
	return &AdminAuthService{
		adminRepo: adminRepo,
		jwtSecret: []byte(jwtSecret),
	}
}

// Login authenticates an admin. Each failed attempt increments the lockout
// counter; reaching the limit locks the account for lockoutDuration.
func (s *AdminAuthService) Login(email, password, ip, userAgent string) (string, *models.Admin, error) {
	admin, err := s.adminRepo.GetByEmail(email)
	if err != nil {
		// Do not reveal whether the admin exists.
		return "", nil, ErrInvalidCredentials
	}

	if admin.LockedUntil != nil && admin.LockedUntil.After(time.Now()) {
		return "", nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		attempts := admin.LoginAttempts + 1
		var lockedUntil *time.Time
		if attempts >= maxLoginAttempts {
			t := time.Now().Add(lockoutDuration)
			lockedUntil = &t
			attempts = 0
		}
		if updateErr := s.adminRepo.UpdateLoginState(admin.ID, attempts, lockedUntil); updateErr != nil {
			log.Printf("Failed to record failed login for admin %s: %v", admin.ID, updateErr)
		}
		s.audit(admin.ID, "admin.login_failed", ip, userAgent, map[string]interface{}{"attempts": attempts})
		if lockedUntil != nil {
			return "", nil, ErrAccountLocked
		}
		return "", nil, ErrInvalidCredentials
	}

	if err := s.adminRepo.UpdateLoginState(admin.ID, 0, nil); err != nil {
		log.Printf("Failed to reset login attempts for admin %s: %v", admin.ID, err)
	}

	session := &models.AdminSession{
		AdminID:   admin.ID,
		IP:        ip,
		UserAgent: userAgent,
		ExpiresAt: time.Now().Add(sessionDuration),
		CreatedAt: time.Now(),
	}
	if err := s.adminRepo.CreateSession(session); err != nil {
		return "", nil, fmt.Errorf("failed to create admin session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": session.ID,
		"admin_id":   admin.ID,
		"role":       admin.Role,
		"exp":        session.ExpiresAt.Unix(),
		"iat":        time.Now().Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate admin token: %w", err)
	}

	s.audit(admin.ID, "admin.login", ip, userAgent, nil)
	return tokenString, admin, nil
}

// ValidateSession checks the JWT, loads the session row it references,
// verifies it has not expired, and returns the admin.
func (s *AdminAuthService) ValidateSession(tokenString string) (*models.Admin, *models.AdminSession, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, nil, fmt.Errorf("invalid admin token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil, fmt.Errorf("invalid admin token claims")
	}
	sessionID, _ := claims["session_id"].(string)
	if sessionID == "" {
		return nil, nil, fmt.Errorf("admin token carries no session")
	}

	session, err := s.adminRepo.GetSession(sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("admin session not found: %w", err)
	}
	if session.ExpiresAt.Before(time.Now()) {
		return nil, nil, fmt.Errorf("admin session expired")
	}

	admin, err := s.adminRepo.GetByID(session.AdminID)
	if err != nil {
		return nil, nil, fmt.Errorf("admin for session not found: %w", err)
	}
	return admin, session, nil
}

// Logout removes the session row so the cookie can no longer be used.
func (s *AdminAuthService) Logout(tokenString, ip, userAgent string) error {
	admin, session, err := s.ValidateSession(tokenString)
	if err != nil {
		return err
	}
	if err := s.adminRepo.DeleteSession(session.ID); err != nil {
		return err
	}
	s.audit(admin.ID, "admin.logout", ip, userAgent, nil)
	return nil
}

// RecordAction appends an audit log entry for an admin action.
func (s *AdminAuthService) RecordAction(adminID, action, ip, userAgent string, detail map[string]interface{}) {
	s.audit(adminID, action, ip, userAgent, detail)
}

func (s *AdminAuthService) audit(adminID, action, ip, userAgent string, detail map[string]interface{}) {
	entry := &models.AdminAuditLog{
		AdminID:   adminID,
		Action:    action,
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	}
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			entry.Detail = string(b)
		}
	}
	if err := s.adminRepo.CreateAuditLog(entry); err != nil {
		log.Printf("Failed to write audit log entry %s for admin %s: %v", action, adminID, err)
	}
}
