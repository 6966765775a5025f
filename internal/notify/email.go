package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/models"
	"github.com/loadlane/loadlane/pkg/mail"
)

// EmailAdapter delivers notifications to the user's email address via SMTP.
type EmailAdapter struct {
	db     *gorm.DB
	mailer mail.Mailer
}

// NewEmailAdapter constructs an email channel adapter.
func NewEmailAdapter(db *gorm.DB, mailer mail.Mailer) *EmailAdapter {
	return &EmailAdapter{db: db, mailer: mailer}
}

// Channel identifies the adapter's medium.
func (a *EmailAdapter) Channel() Channel {
	return ChannelEmail
}

// Deliver renders the email and hands it to the mailer. A missing address
// or disabled SMTP is a routing dead-end, not a failure.
func (a *EmailAdapter) Deliver(ctx context.Context, userID string, t Type, data Data) Delivery {
	if a.mailer == nil {
		return skipped("mailer not configured")
	}

	var user models.User
	if err := a.db.WithContext(ctx).Take(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return skipped("user not found")
		}
		return failed(fmt.Sprintf("user lookup failed: %v", err))
	}
	if strings.TrimSpace(user.Email) == "" {
		return skipped("no email address on file")
	}

	content := FormatEmail(t, data)
	err := a.mailer.Send(ctx, mail.Message{
		To:       []string{user.Email},
		Subject:  content.Subject,
		HTMLBody: content.HTML,
	})
	if errors.Is(err, mail.ErrSMTPDisabled) {
		return skipped("smtp delivery disabled")
	}
	if err != nil {
		return failed(err.Error())
	}
	return delivered()
}
