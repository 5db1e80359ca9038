package services

import (
	"bytes"
	"context"
	"html/template"
	"strconv"

	"expense-tracker-backend/i18n"
	"expense-tracker-backend/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// EmailSender is satisfied by *sendgrid.Client.
type EmailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// PushSender is satisfied by *messaging.Client.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type UserLookup interface {
	FindUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)
}

// NotificationService tells split participants about new expenses by email
// and push. Channels without a sender are skipped.
type NotificationService struct {
	users      UserLookup
	translator *i18n.Translator
	logger     *zap.Logger

	email     EmailSender
	fromEmail string
	fromName  string
	push      PushSender
}

type NotificationOption func(*NotificationService)

func WithEmail(sender EmailSender, fromEmail, fromName string) NotificationOption {
	return func(ns *NotificationService) {
		ns.email = sender
		ns.fromEmail = fromEmail
		ns.fromName = fromName
	}
}

func WithPush(sender PushSender) NotificationOption {
	return func(ns *NotificationService) {
		ns.push = sender
	}
}

func NewNotificationService(users UserLookup, translator *i18n.Translator, logger *zap.Logger, opts ...NotificationOption) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ns := &NotificationService{
		users:      users,
		translator: translator,
		logger:     logger.Named("notifications"),
	}
	for _, opt := range opts {
		opt(ns)
	}
	return ns
}

// Enabled reports whether any delivery channel is configured.
func (ns *NotificationService) Enabled() bool {
	return ns.email != nil || ns.push != nil
}

// NotifyExpenseAdded sends each participant other than the payer their share.
// Delivery failures are logged and never returned.
func (ns *NotificationService) NotifyExpenseAdded(ctx context.Context, expense models.Expense) {
	if !ns.Enabled() || len(expense.SplitWithIDs) == 0 {
		return
	}

	ids := append([]uint{expense.PaidByID}, expense.SplitWithIDs...)
	users, err := ns.users.FindUsersByIDs(ctx, ids)
	if err != nil {
		ns.logger.Error("Failed to load participants", zap.Uint("expense_id", expense.ID), zap.Error(err))
		return
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	payerName := byID[expense.PaidByID].Name
	lang := ns.translator.Fallback()

	for i, id := range expense.SplitWithIDs {
		if id == expense.PaidByID || i >= len(expense.SplitAmount) {
			continue
		}
		user, ok := byID[id]
		if !ok {
			continue
		}

		params := map[string]string{
			"payer":    payerName,
			"title":    expense.Title,
			"currency": string(expense.Currency),
			"share":    expense.SplitAmount[i].StringFixed(2),
		}
		title := ns.translator.T(lang, "NOTIFY.EXPENSE_ADDED_TITLE", params)
		body := ns.translator.T(lang, "NOTIFY.EXPENSE_ADDED_BODY", params)

		ns.sendPush(ctx, user, expense, title, body)
		ns.sendEmail(ctx, user, ns.translator.T(lang, "NOTIFY.EXPENSE_ADDED_SUBJECT", params), expenseEmail{
			UserName:  user.Name,
			PayerName: payerName,
			Title:     expense.Title,
			Currency:  string(expense.Currency),
			Total:     expense.Amount.StringFixed(2),
			Share:     params["share"],
			Headline:  title,
		})
	}
}

func (ns *NotificationService) sendPush(ctx context.Context, user models.User, expense models.Expense, title, body string) {
	if ns.push == nil || user.FCMToken == "" {
		return
	}

	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"type":       "expense_added",
			"expense_id": strconv.FormatUint(uint64(expense.ID), 10),
		},
	}
	if _, err := ns.push.Send(ctx, msg); err != nil {
		ns.logger.Warn("Push notification failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	ns.logger.Debug("Push notification sent", zap.Uint("user_id", user.ID))
}

func (ns *NotificationService) sendEmail(ctx context.Context, user models.User, subject string, data expenseEmail) {
	if ns.email == nil || user.Email == "" {
		return
	}

	var html bytes.Buffer
	if err := expenseEmailTemplate.Execute(&html, data); err != nil {
		ns.logger.Error("Email template failed", zap.Error(err))
		return
	}

	from := mail.NewEmail(ns.fromName, ns.fromEmail)
	to := mail.NewEmail(user.Name, user.Email)
	message := mail.NewSingleEmail(from, subject, to, data.Headline, html.String())

	resp, err := ns.email.SendWithContext(ctx, message)
	if err != nil {
		ns.logger.Warn("Email send failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	if resp.StatusCode >= 300 {
		ns.logger.Warn("SendGrid rejected email", zap.Uint("user_id", user.ID), zap.Int("status", resp.StatusCode))
		return
	}
	ns.logger.Debug("Email sent", zap.Uint("user_id", user.ID))
}

type expenseEmail struct {
	UserName  string
	PayerName string
	Title     string
	Currency  string
	Total     string
	Share     string
	Headline  string
}

var expenseEmailTemplate = template.Must(template.New("expense").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px;">
		<h2 style="color: #1DB954; margin-top: 0;">{{.Headline}}</h2>
		<p>Hi <strong>{{.UserName}}</strong>,</p>
		<div style="background: #f8f9fa; border-radius: 8px; padding: 16px; margin: 16px 0;">
			<p style="margin: 4px 0; font-size: 18px;"><strong>{{.Title}}</strong></p>
			<p style="margin: 4px 0; color: #666;">Total: {{.Currency}} {{.Total}} (paid by {{.PayerName}})</p>
			<p style="margin: 4px 0; color: #e53e3e; font-size: 18px;"><strong>Your share: {{.Currency}} {{.Share}}</strong></p>
		</div>
	</div>
</body>
</html>`))
