package events

import (
	"context"
	"fmt"

	"github.com/loadlane/loadlane/internal/models"
	"github.com/loadlane/loadlane/internal/notify"
)

// Geofence kinds used to decide follow-up actions on entry.
const (
	GeofencePickup   = "pickup"
	GeofenceDelivery = "delivery"
)

// approachCutoffMeters is the distance beyond which approaching-geofence
// events are ignored entirely (roughly 10 miles).
const approachCutoffMeters = 16093.0

const metersPerMile = 1609.34

// GeofenceEntered notifies stakeholders that the load crossed into a
// tracked boundary. Entering a delivery geofence additionally prompts the
// driver for the proof-of-delivery paperwork.
func (h *Handlers) GeofenceEntered(ctx context.Context, loadID, geofenceName, geofenceType string) error {
	load, err := h.loadByID(ctx, loadID)
	if err != nil {
		return err
	}

	data := baseLoadData(load)
	data["geofence_name"] = geofenceName
	data["geofence_type"] = geofenceType

	h.dispatchTo(ctx, h.resolveStakeholders(ctx, load), notify.TypeGeofenceEntry, data)

	if geofenceType == GeofenceDelivery && load.DriverID != nil && *load.DriverID != "" {
		docData := baseLoadData(load)
		docData["document_type"] = "Bill of Lading (BOL)"
		docData["geofence_name"] = geofenceName
		h.dispatchTo(ctx,
			[]Stakeholder{{UserID: *load.DriverID, Role: models.RoleDriver}},
			notify.TypeDocumentRequired, docData)
	}
	return nil
}

// GeofenceExited notifies stakeholders that the load left a tracked boundary.
func (h *Handlers) GeofenceExited(ctx context.Context, loadID, geofenceName string) error {
	load, err := h.loadByID(ctx, loadID)
	if err != nil {
		return err
	}

	data := baseLoadData(load)
	data["geofence_name"] = geofenceName

	h.dispatchTo(ctx, h.resolveStakeholders(ctx, load), notify.TypeGeofenceExit, data)
	return nil
}

// ApproachingGeofence notifies stakeholders that the load is closing in on a
// tracked boundary. Events farther out than the cutoff are dropped without
// any dispatch.
func (h *Handlers) ApproachingGeofence(ctx context.Context, loadID, geofenceName string, distanceMeters float64) error {
	if distanceMeters > approachCutoffMeters {
		return nil
	}

	load, err := h.loadByID(ctx, loadID)
	if err != nil {
		return err
	}

	data := baseLoadData(load)
	data["geofence_name"] = geofenceName
	data["distance_miles"] = fmt.Sprintf("%.1f", distanceMeters/metersPerMile)

	h.dispatchTo(ctx, h.resolveStakeholders(ctx, load), notify.TypeApproachingGeofence, data)
	return nil
}

// DwellTimeAlert warns carrier staff and admins that the load has been
// sitting inside a geofence too long.
func (h *Handlers) DwellTimeAlert(ctx context.Context, loadID, geofenceName string, dwellMinutes int) error {
	load, err := h.loadByID(ctx, loadID)
	if err != nil {
		return err
	}

	data := baseLoadData(load)
	data["geofence_name"] = geofenceName
	data["dwell_minutes"] = fmt.Sprintf("%d", dwellMinutes)

	recipients := filterByRole(h.resolveStakeholders(ctx, load), map[string]bool{
		models.RoleCarrierAdmin: true,
		models.RoleAdmin:        true,
	})
	h.dispatchTo(ctx, recipients, notify.TypeDwellTimeAlert, data)
	return nil
}
