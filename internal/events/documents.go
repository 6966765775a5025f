package events

import (
	"context"
	"strings"

	"github.com/loadlane/loadlane/internal/models"
	"github.com/loadlane/loadlane/internal/notify"
)

// rolesForDocument maps a document type to the stakeholder roles that care
// about it. Unrecognised document types reach platform admins only.
func rolesForDocument(documentType string) map[string]bool {
	normalized := strings.ToLower(documentType)
	switch {
	case strings.Contains(normalized, "bol"), strings.Contains(normalized, "bill of lading"):
		return map[string]bool{
			models.RoleDriver:       true,
			models.RoleCarrierAdmin: true,
			models.RoleAdmin:        true,
		}
	case strings.Contains(normalized, "pod"), strings.Contains(normalized, "proof of delivery"):
		return map[string]bool{
			models.RoleShipperAdmin: true,
			models.RoleCarrierAdmin: true,
			models.RoleAdmin:        true,
		}
	case strings.Contains(normalized, "invoice"), strings.Contains(normalized, "rate confirmation"):
		return map[string]bool{
			models.RoleShipperAdmin: true,
			models.RoleAdmin:        true,
		}
	default:
		return map[string]bool{models.RoleAdmin: true}
	}
}

// DocumentUploaded notifies the roles interested in the uploaded document
// type. The uploader is excluded from the recipient set.
func (h *Handlers) DocumentUploaded(ctx context.Context, loadID, documentType, uploadedBy string) error {
	load, err := h.loadByID(ctx, loadID)
	if err != nil {
		return err
	}

	data := baseLoadData(load)
	data["document_type"] = documentType

	recipients := filterByRole(h.resolveStakeholders(ctx, load), rolesForDocument(documentType))
	filtered := recipients[:0]
	for _, recipient := range recipients {
		if recipient.UserID != uploadedBy {
			filtered = append(filtered, recipient)
		}
	}

	h.dispatchTo(ctx, filtered, notify.TypeDocumentUploaded, data)
	return nil
}
