package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/models"
)

// SMSSender submits one text message to the SMS gateway.
type SMSSender interface {
	Send(ctx context.Context, phone, text string) error
}

// SMSGatewayConfig holds connection settings for the HTTP SMS gateway.
type SMSGatewayConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	From    string
	Timeout time.Duration
}

type httpSMSGateway struct {
	cfg    SMSGatewayConfig
	client *http.Client
}

// NewHTTPSMSGateway constructs an SMS sender over a JSON HTTP gateway.
func NewHTTPSMSGateway(cfg SMSGatewayConfig) (SMSSender, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, errors.New("sms: gateway base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &httpSMSGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (g *httpSMSGateway) Send(ctx context.Context, phone, text string) error {
	body, err := json.Marshal(map[string]string{
		"from": g.cfg.From,
		"to":   phone,
		"text": text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sms: gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// SMSAdapter delivers notifications as text messages to the user's phone.
type SMSAdapter struct {
	db     *gorm.DB
	sender SMSSender
}

// NewSMSAdapter constructs an SMS channel adapter.
func NewSMSAdapter(db *gorm.DB, sender SMSSender) *SMSAdapter {
	return &SMSAdapter{db: db, sender: sender}
}

// Channel identifies the adapter's medium.
func (a *SMSAdapter) Channel() Channel {
	return ChannelSMS
}

// Deliver renders the SMS text and submits it to the gateway. A missing
// phone number or disabled gateway is a routing dead-end, not a failure.
func (a *SMSAdapter) Deliver(ctx context.Context, userID string, t Type, data Data) Delivery {
	if a.sender == nil {
		return skipped("sms gateway not configured")
	}

	var user models.User
	if err := a.db.WithContext(ctx).Take(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return skipped("user not found")
		}
		return failed(fmt.Sprintf("user lookup failed: %v", err))
	}
	if strings.TrimSpace(user.Phone) == "" {
		return skipped("no phone number on file")
	}

	content := FormatSMS(t, data)
	if err := a.sender.Send(ctx, user.Phone, content.Text); err != nil {
		return failed(err.Error())
	}
	return delivered()
}
