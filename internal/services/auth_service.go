package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kareemadel/istithmar-backend/internal/clock"
	"github.com/kareemadel/istithmar-backend/internal/config"
	"github.com/kareemadel/istithmar-backend/internal/dto"
	"github.com/kareemadel/istithmar-backend/internal/ledger"
	"github.com/kareemadel/istithmar-backend/internal/models"
	"github.com/kareemadel/istithmar-backend/internal/twofactor"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCode        = errors.New("verification code is not valid")
	ErrTwoFactorNotSetup  = errors.New("two-factor authentication is not set up")
	ErrInvalidEmail       = errors.New("email address is not valid")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService is the session manager: registration, login, the pseudo-2FA
// handshake and token lifecycle. Ledger effects (welcome bonus, referral
// team recording, login-time income accrual) are delegated to the engine.
type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	engine *ledger.Engine
	clock  clock.Clock
}

func NewAuthService(db *gorm.DB, cfg *config.Config, engine *ledger.Engine, clk clock.Clock) *AuthService {
	return &AuthService{db: db, cfg: cfg, engine: engine, clock: clk}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if len(req.Phone) < 8 || len(req.Password) < 6 {
		return nil, errors.New("phone required and password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.engine.Register(ctx, req.Phone, string(hash), req.InviteCode)
	if err != nil {
		return nil, err
	}

	return s.generateTokenPair(user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.engine.User(ctx, req.Phone)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		pending, err := s.generatePendingToken(user)
		if err != nil {
			return nil, err
		}
		return &dto.AuthResponse{TwoFactorRequired: true, PendingToken: pending}, nil
	}

	if _, err := s.engine.AccrueIncome(ctx, user.Phone); err != nil {
		return nil, fmt.Errorf("login accrual failed: %w", err)
	}
	return s.generateTokenPair(user)
}

// VerifyTwoFactorLogin completes a login that stalled on the 2FA gate.
func (s *AuthService) VerifyTwoFactorLogin(ctx context.Context, req *dto.VerifyTwoFactorRequest) (*dto.AuthResponse, error) {
	phone, err := s.parsePendingToken(req.PendingToken)
	if err != nil {
		return nil, err
	}
	user, err := s.engine.User(ctx, phone)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !user.TwoFactorEnabled || user.TwoFactorSecret == "" {
		return nil, ErrTwoFactorNotSetup
	}
	if !twofactor.Verify(user.TwoFactorSecret, req.Code, s.clock.Now()) {
		return nil, ErrInvalidCode
	}

	if _, err := s.engine.AccrueIncome(ctx, user.Phone); err != nil {
		return nil, fmt.Errorf("login accrual failed: %w", err)
	}
	return s.generateTokenPair(user)
}

func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ? AND revoked = false", tokenHash).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if s.clock.Now().After(stored.ExpiresAt) {
		s.db.Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}

	s.db.Model(&stored).Update("revoked", true)

	user, err := s.engine.User(ctx, stored.UserPhone)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	return s.generateTokenPair(user)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

func (s *AuthService) ChangePassword(ctx context.Context, phone string, req *dto.ChangePasswordRequest) error {
	user, err := s.engine.User(ctx, phone)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if len(req.NewPassword) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("phone = ?", phone).
		Update("password", string(hash)).Error
}

func (s *AuthService) UpdateEmail(ctx context.Context, phone, email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("phone = ?", phone).
		Update("email", email).Error
}

// GenerateTwoFactorSecret stores a fresh shared secret; 2FA stays disabled
// until the user confirms a code derived from it.
func (s *AuthService) GenerateTwoFactorSecret(ctx context.Context, phone string) (string, error) {
	if _, err := s.engine.User(ctx, phone); err != nil {
		return "", err
	}
	secret := twofactor.GenerateSecret()
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("phone = ?", phone).
		Update("two_factor_secret", secret).Error
	if err != nil {
		return "", err
	}
	return secret, nil
}

func (s *AuthService) ConfirmTwoFactor(ctx context.Context, phone, code string) error {
	user, err := s.engine.User(ctx, phone)
	if err != nil {
		return err
	}
	if user.TwoFactorSecret == "" {
		return ErrTwoFactorNotSetup
	}
	if !twofactor.Verify(user.TwoFactorSecret, code, s.clock.Now()) {
		return ErrInvalidCode
	}
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("phone = ?", phone).
		Update("two_factor_enabled", true).Error
}

func (s *AuthService) DisableTwoFactor(ctx context.Context, phone, code string) error {
	user, err := s.engine.User(ctx, phone)
	if err != nil {
		return err
	}
	if user.TwoFactorSecret == "" {
		return ErrTwoFactorNotSetup
	}
	if !twofactor.Verify(user.TwoFactorSecret, code, s.clock.Now()) {
		return ErrInvalidCode
	}
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("phone = ?", phone).
		Updates(map[string]interface{}{
			"two_factor_enabled": false,
			"two_factor_secret":  "",
		}).Error
}

// ResetWithdrawalPassword is the recovery flow: the login password stands in
// for the forgotten withdrawal password before the hash is overwritten.
func (s *AuthService) ResetWithdrawalPassword(ctx context.Context, phone string, req *dto.ResetWithdrawalPasswordRequest) error {
	user, err := s.engine.User(ctx, phone)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.LoginPassword)); err != nil {
		return ErrInvalidCredentials
	}
	return s.engine.ResetWithdrawalPassword(ctx, phone, req.NewPassword)
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			Phone:      user.Phone,
			InviteCode: user.InviteCode,
			Email:      user.Email,
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":  user.Phone,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// generatePendingToken mints the short-lived token that carries a
// password-verified login across the 2FA gate. Its "stage" claim keeps it
// from passing for an access token on protected routes.
func (s *AuthService) generatePendingToken(user *models.User) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":   user.Phone,
		"stage": "2fa",
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.Pending2FAExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) parsePendingToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if stage, _ := claims["stage"].(string); stage != "2fa" {
		return "", ErrInvalidToken
	}
	phone, _ := claims["sub"].(string)
	if phone == "" {
		return "", ErrInvalidToken
	}
	return phone, nil
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	tokenHash := hashToken(rawToken)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserPhone: user.Phone,
		TokenHash: tokenHash,
		ExpiresAt: s.clock.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

