package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/loadlane/loadlane/internal/models"
)

// Stakeholder is one user with a role-based interest in a load.
type Stakeholder struct {
	UserID string
	Role   string
}

// resolveStakeholders returns the full interested-party set for a load: the
// assigned driver, active carrier and shipper admins, and platform admins.
// Lookup failures for one group are tolerated; the remaining groups still
// receive their notifications.
func (h *Handlers) resolveStakeholders(ctx context.Context, load *models.Load) []Stakeholder {
	var out []Stakeholder

	if load.DriverID != nil && *load.DriverID != "" {
		out = append(out, Stakeholder{UserID: *load.DriverID, Role: models.RoleDriver})
	}
	if load.CarrierID != nil && *load.CarrierID != "" {
		out = append(out, h.companyStaff(ctx, models.RoleCarrierAdmin, *load.CarrierID)...)
	}
	if load.ShipperID != nil && *load.ShipperID != "" {
		out = append(out, h.companyStaff(ctx, models.RoleShipperAdmin, *load.ShipperID)...)
	}
	out = append(out, h.platformAdmins(ctx)...)

	return dedupeStakeholders(out)
}

func (h *Handlers) companyStaff(ctx context.Context, role, companyID string) []Stakeholder {
	var users []models.User
	err := h.db.WithContext(ctx).
		Where("role = ? AND company_id = ? AND is_active = ?", role, companyID, true).
		Find(&users).Error
	if err != nil {
		h.log.Warn("stakeholder lookup failed",
			zap.String("role", role),
			zap.String("company_id", companyID),
			zap.Error(err))
		return nil
	}

	out := make([]Stakeholder, 0, len(users))
	for _, user := range users {
		out = append(out, Stakeholder{UserID: user.ID, Role: role})
	}
	return out
}

func (h *Handlers) platformAdmins(ctx context.Context) []Stakeholder {
	var users []models.User
	err := h.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", models.RoleAdmin, true).
		Find(&users).Error
	if err != nil {
		h.log.Warn("admin lookup failed", zap.Error(err))
		return nil
	}

	out := make([]Stakeholder, 0, len(users))
	for _, user := range users {
		out = append(out, Stakeholder{UserID: user.ID, Role: models.RoleAdmin})
	}
	return out
}

// filterByRole keeps only stakeholders whose role appears in the set.
func filterByRole(stakeholders []Stakeholder, roles map[string]bool) []Stakeholder {
	out := make([]Stakeholder, 0, len(stakeholders))
	for _, s := range stakeholders {
		if roles[s.Role] {
			out = append(out, s)
		}
	}
	return out
}

func dedupeStakeholders(stakeholders []Stakeholder) []Stakeholder {
	seen := make(map[string]bool, len(stakeholders))
	out := make([]Stakeholder, 0, len(stakeholders))
	for _, s := range stakeholders {
		if seen[s.UserID] {
			continue
		}
		seen[s.UserID] = true
		out = append(out, s)
	}
	return out
}
