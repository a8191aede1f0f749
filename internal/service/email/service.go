package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"flowblog/internal/config"
	"flowblog/internal/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

type Service interface {
	SendEmailVerification(ctx context.Context, toEmail, fullName, verificationToken string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error
	SendNewCommentEmail(ctx context.Context, toEmail, recipientName, actorName, postTitle, postSlug, excerpt string) error
	SendCommentReplyEmail(ctx context.Context, toEmail, recipientName, actorName, postTitle, postSlug, excerpt string) error
}

type service struct {
	client *resend.Client
	config *config.Config
	logger *zap.Logger
}

// NewService returns a Resend-backed mailer. Without an API key mails are
// logged and dropped.
func NewService(cfg *config.Config, log *zap.Logger) Service {
	var client *resend.Client
	if cfg.ResendAPIKey != "" {
		client = resend.NewClient(cfg.ResendAPIKey)
	}
	return &service{
		client: client,
		config: cfg,
		logger: logger.OrNop(log),
	}
}

func render(templateName string, data any) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		return "", fmt.Errorf("failed to parse email templates: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

func (s *service) sendEmail(toEmail, subject, templateName string, data any) error {
	body, err := render(templateName, data)
	if err != nil {
		return err
	}

	if s.client == nil {
		s.logger.Debug("email delivery disabled", zap.String("to", toEmail), zap.String("subject", subject))
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("FlowBlog <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body,
		Subject: subject,
	}

	if _, err := s.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type linkData struct {
	Title string
	Name  string
	Link  string
}

type commentData struct {
	Title     string
	Name      string
	ActorName string
	PostTitle string
	Excerpt   string
	Link      string
}

func (s *service) SendEmailVerification(ctx context.Context, toEmail, fullName, verificationToken string) error {
	data := linkData{
		Title: "Verify your email",
		Name:  fullName,
		Link:  fmt.Sprintf("https://%s/verify-email?token=%s", s.config.Domain, verificationToken),
	}
	return s.sendEmail(toEmail, "Verify your email - FlowBlog", "verification.html", data)
}

func (s *service) SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error {
	data := linkData{
		Title: "Reset your password",
		Name:  fullName,
		Link:  fmt.Sprintf("https://%s/reset-password?token=%s", s.config.Domain, resetToken),
	}
	return s.sendEmail(toEmail, "Password reset request - FlowBlog", "reset_password.html", data)
}

func (s *service) SendNewCommentEmail(ctx context.Context, toEmail, recipientName, actorName, postTitle, postSlug, excerpt string) error {
	data := commentData{
		Title:     "New comment",
		Name:      recipientName,
		ActorName: actorName,
		PostTitle: postTitle,
		Excerpt:   excerpt,
		Link:      fmt.Sprintf("https://%s/posts/%s", s.config.Domain, postSlug),
	}
	return s.sendEmail(toEmail, fmt.Sprintf("New comment on %s", postTitle), "new_comment.html", data)
}

func (s *service) SendCommentReplyEmail(ctx context.Context, toEmail, recipientName, actorName, postTitle, postSlug, excerpt string) error {
	data := commentData{
		Title:     "New reply",
		Name:      recipientName,
		ActorName: actorName,
		PostTitle: postTitle,
		Excerpt:   excerpt,
		Link:      fmt.Sprintf("https://%s/posts/%s", s.config.Domain, postSlug),
	}
	return s.sendEmail(toEmail, fmt.Sprintf("%s replied to your comment", actorName), "comment_reply.html", data)
}
