// internal/domain/user/service.go
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/freshloaf/storefront-backend/internal/config"
	"github.com/freshloaf/storefront-backend/internal/pkg/apperr"
	"github.com/freshloaf/storefront-backend/internal/pkg/auth"
)

const (
	verifyTokenTTL = 24 * time.Hour
	resetTokenTTL  = time.Hour
)

// Mailer sends the identity emails. Satisfied by email.Service.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}

// Service handles user identity: registration, login, email
// verification, and password reset
type Service struct {
	db              *gorm.DB
	redisClient     *redis.Client
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	mailer          Mailer
	logger          *logrus.Logger
}

// NewService creates a new user service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, mailer Mailer, logger *logrus.Logger) *Service {
	return &Service{
		db:              db,
		redisClient:     redisClient,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
		mailer:          mailer,
		logger:          logger,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Phone       string `json:"phone"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response. Advisory carries
// the "verify your email" notice: login succeeds for unverified users,
// the access gate is what keeps them out of protected pages.
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Advisory     string `json:"advisory,omitempty"`
}

// Register creates a new user account and sends the verification email
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	// Check if user already exists
	var existingUser User
	result := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		return nil, apperr.New(apperr.KindConflict, "user with this email already exists")
	}

	// Hash password
	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid password", err)
	}

	// Create new user
	user := User{
		Email:       req.Email,
		Password:    hashedPassword,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to create user", err)
	}

	// Send verification email. Failure is logged, not fatal: the user
	// can request a resend.
	if err := s.sendVerification(ctx, &user); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to send verification email")
	}

	response, err := s.issueTokens(ctx, &user)
	if err != nil {
		return nil, err
	}
	response.Advisory = "Please verify your email before shopping"
	return response, nil
}

// Login authenticates a user
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	var user User
	result := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		return nil, apperr.New(apperr.KindAuth, "invalid email or password")
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, apperr.New(apperr.KindAuth, "invalid email or password")
	}

	// Update last login
	now := time.Now().UTC()
	user.LastLoginAt = &now
	s.db.WithContext(ctx).Model(&user).Update("last_login_at", now)

	response, err := s.issueTokens(ctx, &user)
	if err != nil {
		return nil, err
	}
	if !user.EmailVerified {
		response.Advisory = "Please verify your email before shopping"
	}
	return response, nil
}

// RefreshToken generates new tokens using a refresh token. Fresh
// claims pick up verification or admin changes made since login.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAuth, "invalid refresh token", err)
	}

	var user User
	result := s.db.WithContext(ctx).First(&user, claims.UserID)
	if result.Error != nil {
		return nil, apperr.New(apperr.KindAuth, "user not found")
	}

	return s.issueTokens(ctx, &user)
}

// VerifyEmail marks the account verified if the token matches
func (s *Service) VerifyEmail(ctx context.Context, token string) (*User, error) {
	key := fmt.Sprintf("verify:token:%s", token)
	val, err := s.redisClient.Get(ctx, key).Uint64()
	if err == redis.Nil {
		return nil, apperr.New(apperr.KindAuth, "verification link is invalid or expired")
	} else if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to look up verification token", err)
	}

	var user User
	if err := s.db.WithContext(ctx).First(&user, uint(val)).Error; err != nil {
		return nil, apperr.New(apperr.KindAuth, "verification link is invalid or expired")
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"email_verified":    true,
		"email_verified_at": now,
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to mark email verified", err)
	}
	user.EmailVerified = true
	user.EmailVerifiedAt = &now

	s.redisClient.Del(ctx, key)

	user.Password = ""
	return &user, nil
}

// ResendVerification sends a fresh verification email to an
// unverified account
func (s *Service) ResendVerification(ctx context.Context, userID uint) error {
	var user User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	if user.EmailVerified {
		return apperr.New(apperr.KindConflict, "email is already verified")
	}
	if err := s.sendVerification(ctx, &user); err != nil {
		return apperr.Wrap(apperr.KindAuth, "could not send verification email", err)
	}
	return nil
}

// RequestPasswordReset issues a reset token and mails it. The response
// is identical whether or not the address exists.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	var user User
	result := s.db.WithContext(ctx).Where("email = ?", emailAddr).First(&user)
	if result.Error != nil {
		// Do not reveal whether the address is registered.
		return nil
	}

	token := uuid.NewString()
	key := fmt.Sprintf("reset:token:%s", token)
	if err := s.redisClient.Set(ctx, key, user.ID, resetTokenTTL).Err(); err != nil {
		return apperr.Wrap(apperr.KindStore, "failed to store reset token", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.GetDisplayName(), token); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to send password reset email")
	}
	return nil
}

// ResetPassword sets a new password if the reset token matches
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	key := fmt.Sprintf("reset:token:%s", token)
	val, err := s.redisClient.Get(ctx, key).Uint64()
	if err == redis.Nil {
		return apperr.New(apperr.KindAuth, "reset link is invalid or expired")
	} else if err != nil {
		return apperr.Wrap(apperr.KindStore, "failed to look up reset token", err)
	}

	hashedPassword, err := s.passwordManager.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid password", err)
	}

	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", uint(val)).Update("password", hashedPassword).Error; err != nil {
		return apperr.Wrap(apperr.KindStore, "failed to update password", err)
	}

	s.redisClient.Del(ctx, key)
	return nil
}

// GetProfile gets user profile by ID
func (s *Service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).First(&user, userID)
	if result.Error != nil {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}

	user.Password = ""
	return &user, nil
}

// UpdateProfile updates the mutable profile fields
func (s *Service) UpdateProfile(ctx context.Context, userID uint, displayName, phone string) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).First(&user, userID)
	if result.Error != nil {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}

	updates := map[string]interface{}{}
	if displayName != "" {
		updates["display_name"] = displayName
	}
	if phone != "" {
		updates["phone"] = phone
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, apperr.Wrap(apperr.KindStore, "failed to update profile", err)
		}
	}

	return s.GetProfile(ctx, userID)
}

// IsAdmin reports whether the user currently has the admin flag set.
// Used by the access gate's store-tier lookup.
func (s *Service) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	var user User
	result := s.db.WithContext(ctx).Select("is_admin").First(&user, userID)
	if result.Error == gorm.ErrRecordNotFound {
		return false, nil
	} else if result.Error != nil {
		return false, apperr.Wrap(apperr.KindStore, "failed to look up admin flag", result.Error)
	}
	return user.IsAdmin, nil
}

func (s *Service) sendVerification(ctx context.Context, user *User) error {
	token := uuid.NewString()
	key := fmt.Sprintf("verify:token:%s", token)
	if err := s.redisClient.Set(ctx, key, user.ID, verifyTokenTTL).Err(); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}
	return s.mailer.SendVerificationEmail(ctx, user.Email, user.GetDisplayName(), token)
}

func (s *Service) issueTokens(ctx context.Context, user *User) (*AuthResponse, error) {
	principal := auth.Principal{
		UserID:        user.ID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		EmailVerified: user.EmailVerified,
		IsAdmin:       user.IsAdmin,
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(principal)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Clear password from response
	sanitized := *user
	sanitized.Password = ""

	return &AuthResponse{
		User:         &sanitized,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}
