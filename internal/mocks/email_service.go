package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendEmailVerification(ctx context.Context, toEmail string, fullName string, verificationToken string) error {
	args := m.Called(ctx, toEmail, fullName, verificationToken)
	return args.Error(0)
}

func (m *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail string, fullName string, resetToken string) error {
	args := m.Called(ctx, toEmail, fullName, resetToken)
	return args.Error(0)
}

func (m *EmailService) SendNewCommentEmail(ctx context.Context, toEmail string, recipientName string, actorName string, postTitle string, postSlug string, excerpt string) error {
	args := m.Called(ctx, toEmail, recipientName, actorName, postTitle, postSlug, excerpt)
	return args.Error(0)
}

func (m *EmailService) SendCommentReplyEmail(ctx context.Context, toEmail string, recipientName string, actorName string, postTitle string, postSlug string, excerpt string) error {
	args := m.Called(ctx, toEmail, recipientName, actorName, postTitle, postSlug, excerpt)
	return args.Error(0)
}
