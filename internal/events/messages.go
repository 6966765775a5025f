package events

import (
	"context"

	"github.com/loadlane/loadlane/internal/notify"
)

// MessageSent notifies the recipient of a new direct message. Message
// storage lives upstream; this handler only carries the display fields.
func (h *Handlers) MessageSent(ctx context.Context, recipientID, senderName, preview string) {
	data := notify.Data{}
	if senderName != "" {
		data["sender_name"] = senderName
	}
	if preview != "" {
		data["message_preview"] = preview
	}

	h.dispatchTo(ctx, []Stakeholder{{UserID: recipientID}}, notify.TypeNewMessage, data)
}
