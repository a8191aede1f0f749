package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"flowblog/internal/config"
	"flowblog/internal/domain"
	"flowblog/internal/pkg/logger"
	"flowblog/internal/repository"
	"flowblog/internal/service/email"
)

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrEmailExists              = errors.New("email already registered")
	ErrUsernameExists           = errors.New("username already taken")
	ErrInvalidToken             = errors.New("invalid or expired token")
	ErrTokenExpired             = errors.New("password reset token has expired")
	ErrEmailNotVerified         = errors.New("email not verified")
	ErrAccountDisabled          = errors.New("account is disabled")
	ErrVerificationTokenExpired = errors.New("email verification token has expired")
)

const (
	resetTokenTTL        = time.Hour
	verificationTokenTTL = 24 * time.Hour
)

type Service interface {
	Register(ctx context.Context, input domain.CreateUserInput) (*domain.User, error)
	Login(ctx context.Context, input domain.LoginInput, meta SessionMeta) (*domain.User, *domain.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string, meta SessionMeta) (*domain.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateAccessToken(token string) (*Claims, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerificationEmail(ctx context.Context, email string) error
	CleanupSessions(ctx context.Context) (int64, error)
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// SessionMeta is stored alongside a refresh token.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

type service struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	emailService email.Service
	cfg          *config.Config
	logger       *zap.Logger
}

func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	emailService email.Service,
	cfg *config.Config,
	log *zap.Logger,
) Service {
	return &service{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		emailService: emailService,
		cfg:          cfg,
		logger:       logger.OrNop(log),
	}
}

func (s *service) Register(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:              uuid.New(),
		Email:           input.Email,
		PasswordHash:    string(hashedPassword),
		Username:        input.Username,
		FullName:        input.FullName,
		Role:            string(domain.RoleReader),
		IsActive:        true,
		IsEmailVerified: false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sendVerification(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *service) Login(ctx context.Context, input domain.LoginInput, meta SessionMeta) (*domain.User, *domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}
	if !user.IsEmailVerified {
		return nil, nil, ErrEmailNotVerified
	}

	tokens, err := s.generateTokenPair(ctx, user, meta)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string, meta SessionMeta) (*domain.TokenPair, error) {
	session, err := s.sessionRepo.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := s.sessionRepo.Revoke(ctx, session.ID); err != nil {
		return nil, err
	}

	return s.generateTokenPair(ctx, user, meta)
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.sessionRepo.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	return s.sessionRepo.Revoke(ctx, session.ID)
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *service) generateTokenPair(ctx context.Context, user *domain.User, meta SessionMeta) (*domain.TokenPair, error) {
	now := time.Now()
	accessClaims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTAccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID.String(),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	refreshTokenRaw, err := randomToken()
	if err != nil {
		return nil, err
	}

	session := &repository.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshTokenRaw),
		UserAgent: optional(meta.UserAgent),
		IPAddress: optional(meta.IPAddress),
		ExpiresAt: now.Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenRaw,
		ExpiresIn:    int64(s.cfg.JWTAccessExpiry.Seconds()),
	}, nil
}

// RequestPasswordReset never reveals whether the address is registered.
func (s *service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(emailAddr)))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	resetToken, err := randomToken()
	if err != nil {
		return err
	}

	if err := s.userRepo.SetPasswordResetToken(ctx, user.ID, resetToken, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	go func() {
		if err := s.emailService.SendPasswordResetEmail(context.Background(), user.Email, user.FullName, resetToken); err != nil {
			s.logger.Warn("failed to send password reset email", zap.Stringer("user_id", user.ID), zap.Error(err))
		}
	}()

	return nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.userRepo.GetUserByResetToken(ctx, token)
	if errors.Is(err, domain.ErrUserNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}

	if user.PasswordResetExpiresAt != nil && time.Now().After(*user.PasswordResetExpiresAt) {
		return ErrTokenExpired
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := s.userRepo.ClearPasswordResetToken(ctx, user.ID); err != nil {
		return err
	}

	return s.sessionRepo.RevokeAllForUser(ctx, user.ID)
}

func (s *service) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.userRepo.GetUserByEmailVerificationToken(ctx, token)
	if errors.Is(err, domain.ErrUserNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}

	if user.EmailVerificationSentAt != nil && time.Now().After(user.EmailVerificationSentAt.Add(verificationTokenTTL)) {
		return ErrVerificationTokenExpired
	}

	return s.userRepo.VerifyEmail(ctx, user.ID)
}

func (s *service) ResendVerificationEmail(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(emailAddr)))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if user.IsEmailVerified {
		return nil
	}

	return s.sendVerification(ctx, user)
}

func (s *service) CleanupSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx)
}

func (s *service) sendVerification(ctx context.Context, user *domain.User) error {
	verificationToken, err := randomToken()
	if err != nil {
		return err
	}

	if err := s.userRepo.SetEmailVerificationToken(ctx, user.ID, verificationToken, time.Now()); err != nil {
		return err
	}

	go func() {
		if err := s.emailService.SendEmailVerification(context.Background(), user.Email, user.FullName, verificationToken); err != nil {
			s.logger.Warn("failed to send verification email", zap.Stringer("user_id", user.ID), zap.Error(err))
		}
	}()

	return nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
