package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"flowblog/internal/domain"
	"flowblog/internal/pkg/logger"
	"flowblog/internal/repository"
	"flowblog/internal/service/audit"
)

var ErrCannotModifySelf = errors.New("cannot modify your own role")

type Service interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetPublicProfile(ctx context.Context, username string) (*domain.PublicProfile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateUserInput) (*domain.User, error)
	AssignRole(ctx context.Context, currentUser *domain.User, input domain.AssignRoleInput) error
}

type service struct {
	userRepo repository.UserRepository
	audit    audit.Service
	logger   *zap.Logger
}

// NewService builds the user service. auditSvc may be nil.
func NewService(userRepo repository.UserRepository, auditSvc audit.Service, log *zap.Logger) Service {
	return &service{userRepo: userRepo, audit: auditSvc, logger: logger.OrNop(log)}
}

func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *service) GetPublicProfile(ctx context.Context, username string) (*domain.PublicProfile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserNotFound
	}
	profile := user.Public()
	return &profile, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateUserInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Password != nil && *input.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashedPassword)
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *service) AssignRole(ctx context.Context, currentUser *domain.User, input domain.AssignRoleInput) error {
	if !currentUser.IsAdmin() {
		return domain.ErrForbidden
	}

	if currentUser.ID == input.UserID {
		return ErrCannotModifySelf
	}

	if !domain.UserRole(input.Role).IsValid() {
		return domain.ErrForbidden
	}

	target, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}

	if err := s.userRepo.AssignRole(ctx, input.UserID, input.Role); err != nil {
		return err
	}

	if s.audit != nil {
		s.audit.Record(ctx, domain.CreateAuditLogInput{
			ActorID:    currentUser.ID,
			Action:     domain.AuditRoleAssigned,
			EntityType: domain.AuditEntityUser,
			EntityID:   input.UserID,
			OldValue:   map[string]string{"role": target.Role},
			NewValue:   map[string]string{"role": input.Role},
		})
	}

	s.logger.Info("role assigned",
		zap.Stringer("actor_id", currentUser.ID),
		zap.Stringer("user_id", input.UserID),
		zap.String("role", input.Role),
	)
	return nil
}
