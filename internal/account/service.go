// Package account implements the role login flows (dean, faculty, student,
// IT) with bcrypt password checks and JWT issuance.
package account

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"campuserp/internal/apperr"
	"campuserp/internal/auth"
)

// Roles as embedded in token claims.
const (
	RoleDean    = "dean"
	RoleFaculty = "faculty"
	RoleStudent = "student"
	RoleIT      = "it"
)

// Identity is the authenticated principal returned alongside tokens.
type Identity struct {
	ID           int    `json:"id"`
	Role         string `json:"role"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	SectionID    int    `json:"section_id,omitempty"`
	DepartmentID int    `json:"department_id,omitempty"`
}

// Credentials is a stored login record; PasswordHash is bcrypt.
type Credentials struct {
	ID           int
	UserID       string
	Name         string
	Email        string
	SectionID    int
	DepartmentID int
	PasswordHash string
}

// Store looks up stored credentials per role table.
type Store interface {
	DeanByUserID(ctx context.Context, userID string) (*Credentials, error)
	FacultyByUserID(ctx context.Context, userID string) (*Credentials, error)
	StudentByEmail(ctx context.Context, email string) (*Credentials, error)
	ITAdminByUsername(ctx context.Context, username string) (*Credentials, error)
}

// TokenIssuer mints token pairs; satisfied by a thin wrapper over auth.Issue.
type TokenIssuer func(subject, role, name string) (auth.TokenPair, error)

// Service authenticates principals.
type Service struct {
	store         Store
	issue         TokenIssuer
	studentDomain string
}

// NewService creates an account service. studentDomain restricts student
// logins to institutional addresses ("" disables the check).
func NewService(store Store, issue TokenIssuer, studentDomain string) *Service {
	return &Service{store: store, issue: issue, studentDomain: studentDomain}
}

// LoginDean authenticates a dean by user id.
func (s *Service) LoginDean(ctx context.Context, userID, password string) (Identity, auth.TokenPair, error) {
	if userID == "" || password == "" {
		return Identity{}, auth.TokenPair{}, apperr.New(apperr.InvalidInput, "User ID and Password are required")
	}
	creds, err := s.store.DeanByUserID(ctx, userID)
	if err != nil {
		return Identity{}, auth.TokenPair{}, apperr.Store(err)
	}
	if err := s.verify(creds, password); err != nil {
		return Identity{}, auth.TokenPair{}, err
	}
	return s.finish(creds, RoleDean)
}

// LoginFaculty authenticates a faculty member by user id.
func (s *Service) LoginFaculty(ctx context.Context, userID, password string) (Identity, auth.TokenPair, error) {
	if userID == "" || password == "" {
		return Identity{}, auth.TokenPair{}, apperr.New(apperr.InvalidInput, "Missing user_id or password")
	}
	creds, err := s.store.FacultyByUserID(ctx, userID)
	if err != nil {
		return Identity{}, auth.TokenPair{}, apperr.Store(err)
	}
	if err := s.verify(creds, password); err != nil {
		return Identity{}, auth.TokenPair{}, err
	}
	return s.finish(creds, RoleFaculty)
}

// LoginStudent authenticates a student by institutional email.
func (s *Service) LoginStudent(ctx context.Context, email, password string) (Identity, auth.TokenPair, error) {
	if email == "" || password == "" {
		return Identity{}, auth.TokenPair{}, apperr.New(apperr.InvalidInput, "Missing email or password")
	}
	if s.studentDomain != "" && !strings.HasSuffix(email, s.studentDomain) {
		return Identity{}, auth.TokenPair{}, apperr.New(apperr.InvalidInput, "Only institutional emails are allowed")
	}
	creds, err := s.store.StudentByEmail(ctx, email)
	if err != nil {
		return Identity{}, auth.TokenPair{}, apperr.Store(err)
	}
	if creds == nil {
		return Identity{}, auth.TokenPair{}, apperr.New(apperr.InvalidInput, "No student found with this email")
	}
	if err := s.verify(creds, password); err != nil {
		return Identity{}, auth.TokenPair{}, err
	}
	return s.finish(creds, RoleStudent)
}

// LoginIT authenticates an IT admin by username.
func (s *Service) LoginIT(ctx context.Context, username, password string) (Identity, auth.TokenPair, error) {
	if username == "" || password == "" {
		return Identity{}, auth.TokenPair{}, apperr.New(apperr.InvalidInput, "Username and password required")
	}
	creds, err := s.store.ITAdminByUsername(ctx, username)
	if err != nil {
		return Identity{}, auth.TokenPair{}, apperr.Store(err)
	}
	if err := s.verify(creds, password); err != nil {
		return Identity{}, auth.TokenPair{}, err
	}
	return s.finish(creds, RoleIT)
}

// finish builds the identity and mints tokens for verified credentials.
func (s *Service) finish(creds *Credentials, role string) (Identity, auth.TokenPair, error) {
	id := Identity{
		ID:           creds.ID,
		Role:         role,
		Name:         creds.Name,
		Email:        creds.Email,
		UserID:       creds.UserID,
		SectionID:    creds.SectionID,
		DepartmentID: creds.DepartmentID,
	}
	pair, err := s.issue(creds.UserID, role, creds.Name)
	if err != nil {
		return Identity{}, auth.TokenPair{}, apperr.Wrap(apperr.StoreFailure, "token issue failed", err)
	}
	return id, pair, nil
}

func (s *Service) verify(creds *Credentials, password string) error {
	if creds == nil {
		return apperr.New(apperr.Unauthorized, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return apperr.New(apperr.Unauthorized, "Invalid credentials")
	}
	return nil
}
