package events

import (
	"context"

	"github.com/loadlane/loadlane/internal/models"
	"github.com/loadlane/loadlane/internal/notify"
)

// LoadAssigned notifies the newly assigned driver and the carrier's staff
// that a load has a driver.
func (h *Handlers) LoadAssigned(ctx context.Context, loadID string) error {
	load, err := h.loadByID(ctx, loadID)
	if err != nil {
		return err
	}

	data := baseLoadData(load)

	recipients := filterByRole(h.resolveStakeholders(ctx, load), map[string]bool{
		models.RoleDriver:       true,
		models.RoleCarrierAdmin: true,
	})
	h.dispatchTo(ctx, recipients, notify.TypeLoadAssigned, data)
	return nil
}

// LoadStatusChanged notifies every stakeholder of a status transition. A
// transition to delivered is announced as a delivery rather than a generic
// status change.
func (h *Handlers) LoadStatusChanged(ctx context.Context, loadID, newStatus string) error {
	load, err := h.loadByID(ctx, loadID)
	if err != nil {
		return err
	}

	data := baseLoadData(load)
	data["status"] = newStatus

	notificationType := notify.TypeLoadStatusChange
	if newStatus == "delivered" {
		notificationType = notify.TypeDeliveryComplete
	}

	h.dispatchTo(ctx, h.resolveStakeholders(ctx, load), notificationType, data)
	return nil
}

// DelayAlert notifies every stakeholder that a load is running late.
func (h *Handlers) DelayAlert(ctx context.Context, loadID, reason string) error {
	load, err := h.loadByID(ctx, loadID)
	if err != nil {
		return err
	}

	data := baseLoadData(load)
	if reason != "" {
		data["delay_reason"] = reason
	}

	h.dispatchTo(ctx, h.resolveStakeholders(ctx, load), notify.TypeDelayAlert, data)
	return nil
}

// ETAUpdated notifies shipper staff and admins of a fresh arrival estimate.
func (h *Handlers) ETAUpdated(ctx context.Context, loadID, eta string) error {
	load, err := h.loadByID(ctx, loadID)
	if err != nil {
		return err
	}

	data := baseLoadData(load)
	data["eta"] = eta

	recipients := filterByRole(h.resolveStakeholders(ctx, load), map[string]bool{
		models.RoleShipperAdmin: true,
		models.RoleAdmin:        true,
	})
	h.dispatchTo(ctx, recipients, notify.TypeETAUpdate, data)
	return nil
}
