package services

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/epson121/budget/internal/dto"
	"github.com/epson121/budget/internal/models"
	"github.com/epson121/budget/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUserLocked          = errors.New("user is locked due to too many failed attempts")
	ErrUserAlreadyExists   = errors.New("username is already taken")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrWeakPassword        = errors.New("password does not meet requirements")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// AuthService handles registration and the token lifecycle
type AuthService struct {
	userRepo             repositories.UserRepositoryInterface
	refreshTokenRepo     repositories.RefreshTokenRepositoryInterface
	auditRepo            repositories.AuditLogRepositoryInterface
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface
	passwordService      PasswordServiceInterface
	tokenService         TokenServiceInterface
	maxFailedAttempts    int
	logger               *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	refreshTokenRepo repositories.RefreshTokenRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface,
	passwordService PasswordServiceInterface,
	tokenService TokenServiceInterface,
	maxFailedAttempts int,
	logger *slog.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:             userRepo,
		refreshTokenRepo:     refreshTokenRepo,
		auditRepo:            auditRepo,
		blacklistedTokenRepo: blacklistedTokenRepo,
		passwordService:      passwordService,
		tokenService:         tokenService,
		maxFailedAttempts:    maxFailedAttempts,
		logger:               logger,
	}
}

// Register creates a user with a zero balance and the starter categories
func (s *AuthService) Register(req *dto.RegisterRequest, ipAddress, userAgent string) (*models.User, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if err := s.passwordService.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWeakPassword, err)
	}

	existingUser, err := s.userRepo.GetByUsername(req.Username)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if existingUser != nil {
		s.auditFailedRegistration(req.Username, ipAddress, userAgent, "username_taken")
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := s.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.CreateWithCategories(user, models.DefaultCategoryNames); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.createAuditLog(&user.ID, models.AuditActionRegister, user.ID.String(), ipAddress, userAgent, map[string]interface{}{
		"default_categories": len(models.DefaultCategoryNames),
	})

	return user, nil
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.auditFailedLogin(req.Username, ipAddress, userAgent, "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsLocked() {
		s.auditFailedLogin(req.Username, ipAddress, userAgent, "user_locked")
		return nil, ErrUserLocked
	}

	if !s.passwordService.ComparePassword(req.Password, user.PasswordHash) {
		user.RegisterFailedLogin(s.maxFailedAttempts)
		if err := s.userRepo.UpdateFailedLoginAttempts(user); err != nil {
			s.logger.Error("failed to update login attempts",
				"error", err,
				"user_id", user.ID)
		}

		if user.IsLocked() {
			s.createAuditLog(&user.ID, models.AuditActionUserLocked, user.ID.String(), ipAddress, userAgent, nil)
		}

		s.auditFailedLogin(req.Username, ipAddress, userAgent, "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 {
		if err := s.userRepo.ResetFailedLoginAttempts(user.ID); err != nil {
			s.logger.Warn("failed to reset login attempts",
				"error", err,
				"user_id", user.ID)
		}
	}

	if err := s.userRepo.UpdateLastLogin(user.ID, time.Now()); err != nil {
		s.logger.Warn("failed to record last login",
			"error", err,
			"user_id", user.ID)
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.createAuditLog(&user.ID, models.AuditActionLogin, user.ID.String(), ipAddress, userAgent, nil)

	return tokens, nil
}

// RefreshTokens rotates a refresh token into a new token pair
func (s *AuthService) RefreshTokens(refreshToken, ipAddress, userAgent string) (*dto.TokenResponse, error) {
	claims, err := s.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.auditFailedTokenRefresh(nil, ipAddress, userAgent, "invalid_token")
		return nil, ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(hashToken(refreshToken))
	if err != nil {
		s.auditFailedTokenRefresh(&userID, ipAddress, userAgent, "token_not_found")
		return nil, ErrInvalidRefreshToken
	}

	if storedToken.UserID != userID || !storedToken.Usable(time.Now()) {
		s.auditFailedTokenRefresh(&userID, ipAddress, userAgent, "token_expired_or_revoked")
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsLocked() {
		return nil, ErrUserLocked
	}

	// a concurrent refresh with the same token loses here
	if err := s.refreshTokenRepo.Revoke(storedToken.ID); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new tokens: %w", err)
	}

	s.createAuditLog(&user.ID, models.AuditActionTokenRefresh, user.ID.String(), ipAddress, userAgent, nil)

	return tokens, nil
}

// Logout blacklists the access token and revokes every refresh token of its owner.
// Tokens that no longer validate are already unusable and are ignored.
func (s *AuthService) Logout(accessToken, ipAddress, userAgent string) error {
	claims, err := s.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		s.logger.Debug("logout with unusable token", "error", err)
		return nil
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil
	}

	expiry, err := s.tokenService.GetTokenExpiry(accessToken)
	if err != nil {
		expiry = time.Now().Add(24 * time.Hour)
	}

	if err := s.blacklistedTokenRepo.Create(models.NewBlacklistedToken(claims.ID, userID, expiry)); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	if err := s.refreshTokenRepo.RevokeAllForUser(userID); err != nil {
		s.logger.Warn("failed to revoke refresh tokens",
			"error", err,
			"user_id", userID)
	}

	s.createAuditLog(&userID, models.AuditActionLogout, userID.String(), ipAddress, userAgent, nil)

	return nil
}

func (s *AuthService) generateTokens(user *models.User) (*dto.TokenResponse, error) {
	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshExpiresAt, err := s.tokenService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.refreshTokenRepo.Create(&models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: refreshExpiresAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}

func hashToken(token string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(token)))
}

func (s *AuthService) auditFailedRegistration(username, ipAddress, userAgent, reason string) {
	s.createAuditLog(nil, models.AuditActionRegister, "", ipAddress, userAgent, map[string]interface{}{
		"username": username,
		"reason":   reason,
	})
}

func (s *AuthService) auditFailedLogin(username, ipAddress, userAgent, reason string) {
	s.createAuditLog(nil, models.AuditActionFailedLogin, "", ipAddress, userAgent, map[string]interface{}{
		"username": username,
		"reason":   reason,
	})
}

func (s *AuthService) auditFailedTokenRefresh(userID *uuid.UUID, ipAddress, userAgent, reason string) {
	s.createAuditLog(userID, models.AuditActionTokenRefresh, "", ipAddress, userAgent, map[string]interface{}{
		"reason": reason,
	})
}

func (s *AuthService) createAuditLog(userID *uuid.UUID, action, resourceID, ipAddress, userAgent string, metadata map[string]interface{}) {
	log := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   models.AuditResourceUser,
		ResourceID: resourceID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Metadata:   metadata,
	}

	if err := s.auditRepo.Create(log); err != nil {
		// audit failures never block authentication
		s.logger.Error("failed to create audit log",
			"error", err,
			"action", action,
			"resource_id", resourceID)
	}
}
