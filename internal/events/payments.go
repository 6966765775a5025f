package events

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/models"
	"github.com/loadlane/loadlane/internal/notify"
)

// PaymentIssued notifies the payee that their payment went out and tells
// the carrier's staff that a driver payment was issued.
func (h *Handlers) PaymentIssued(ctx context.Context, loadID, payeeID, amount string) error {
	load, err := h.loadByID(ctx, loadID)
	if err != nil {
		return err
	}

	data := baseLoadData(load)
	if amount != "" {
		data["amount"] = amount
	}

	h.dispatchTo(ctx, []Stakeholder{{UserID: payeeID, Role: models.RoleDriver}}, notify.TypePaymentIssued, data)

	if load.CarrierID == nil || *load.CarrierID == "" {
		return nil
	}

	carrierData := data.Clone()
	if name := h.usernameFor(ctx, payeeID); name != "" {
		carrierData["payee_name"] = name
	}

	admins := h.companyStaff(ctx, models.RoleCarrierAdmin, *load.CarrierID)
	h.dispatchTo(ctx, admins, notify.TypePaymentIssuedDriver, carrierData)
	return nil
}

func (h *Handlers) usernameFor(ctx context.Context, userID string) string {
	var user models.User
	err := h.db.WithContext(ctx).Take(&user, "id = ?", userID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return ""
	}
	return user.Username
}
