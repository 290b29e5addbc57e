package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"milk-delivery-api/models"
)

// PasswordCost is the bcrypt cost used for new password hashes.
const PasswordCost = 12

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// TokenIssuer signs bearer tokens for a user.
type TokenIssuer interface {
	GenerateToken(user *models.User) (string, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
	Phone    string
	Address  string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type AuthService struct {
	db     *gorm.DB
	tokens TokenIssuer
	cost   int
}

func NewAuthService(db *gorm.DB, tokens TokenIssuer) *AuthService {
	return &AuthService{db: db, tokens: tokens, cost: PasswordCost}
}

// WithCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) WithCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// Register creates a new account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, validationError("name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, validationError("invalid email %q", in.Email)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, validationError("password must be at least %d characters", MinPasswordLength)
	}
	if !in.Role.Valid() {
		return nil, validationError("invalid role %q, must be customer, worker or admin", in.Role)
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateEmail
	}

	user, err := s.createUser(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Phone:        in.Phone,
		Address:      in.Address,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks credentials. Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(&user)
}

// Me returns the user behind an authenticated identity. A token whose user is gone is unauthorized.
func (s *AuthService) Me(ctx context.Context, id models.Identity) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("account no longer exists: %w", ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

// Verify checks that a token's user still exists with the role the token claims.
func (s *AuthService) Verify(ctx context.Context, id models.Identity) error {
	user, err := s.Me(ctx, id)
	if err != nil {
		return err
	}
	if user.Role != id.Role {
		return fmt.Errorf("role changed since token was issued: %w", ErrUnauthorized)
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
