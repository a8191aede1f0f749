package user_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"flowblog/internal/domain"
	"flowblog/internal/mocks"
	"flowblog/internal/service/user"
)

func TestUserService_GetPublicProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Active", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := user.NewService(repo, nil, nil)
		u := &domain.User{ID: uuid.New(), Username: "ana", Email: "ana@flowblog.test", IsActive: true}

		repo.On("GetByUsername", ctx, "ana").Return(u, nil).Once()

		profile, err := svc.GetPublicProfile(ctx, "ana")

		require.NoError(t, err)
		assert.Equal(t, u.ID, profile.ID)
		assert.Equal(t, "ana", profile.Username)
	})

	t.Run("Disabled account is hidden", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := user.NewService(repo, nil, nil)

		repo.On("GetByUsername", ctx, "gone").Return(&domain.User{Username: "gone"}, nil).Once()

		_, err := svc.GetPublicProfile(ctx, "gone")

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.UserRepository)
	svc := user.NewService(repo, nil, nil)
	id := uuid.New()
	name := "Ana Maria"
	password := "another-password"
	bio := "writes about Go"
	bioPtr := &bio

	repo.On("GetByID", ctx, id).Return(&domain.User{ID: id, FullName: "Ana"}, nil).Once()
	repo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()

	updated, err := svc.UpdateProfile(ctx, id, domain.UpdateUserInput{FullName: &name, Password: &password, Bio: &bioPtr})

	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.FullName)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, bio, *updated.Bio)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)))
}

func TestUserService_AssignRole(t *testing.T) {
	ctx := context.Background()
	admin := &domain.User{ID: uuid.New(), Role: "admin"}
	target := uuid.New()

	t.Run("Admin promotes reader", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		auditSvc := new(mocks.AuditService)
		svc := user.NewService(repo, auditSvc, nil)

		repo.On("GetByID", ctx, target).Return(&domain.User{ID: target, Role: "reader"}, nil).Once()
		repo.On("AssignRole", ctx, target, "author").Return(nil).Once()
		auditSvc.On("Record", ctx, mock.MatchedBy(func(in domain.CreateAuditLogInput) bool {
			return in.Action == domain.AuditRoleAssigned && in.ActorID == admin.ID && in.EntityID == target
		})).Once()

		err := svc.AssignRole(ctx, admin, domain.AssignRoleInput{UserID: target, Role: "author"})

		require.NoError(t, err)
		repo.AssertExpectations(t)
		auditSvc.AssertExpectations(t)
	})

	t.Run("Non admin", func(t *testing.T) {
		svc := user.NewService(new(mocks.UserRepository), nil, nil)
		author := &domain.User{ID: uuid.New(), Role: "author"}

		err := svc.AssignRole(ctx, author, domain.AssignRoleInput{UserID: target, Role: "admin"})

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Own role", func(t *testing.T) {
		svc := user.NewService(new(mocks.UserRepository), nil, nil)

		err := svc.AssignRole(ctx, admin, domain.AssignRoleInput{UserID: admin.ID, Role: "reader"})

		assert.ErrorIs(t, err, user.ErrCannotModifySelf)
	})

	t.Run("Unknown user", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := user.NewService(repo, nil, nil)

		repo.On("GetByID", ctx, target).Return(nil, domain.ErrUserNotFound).Once()

		err := svc.AssignRole(ctx, admin, domain.AssignRoleInput{UserID: target, Role: "author"})

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
