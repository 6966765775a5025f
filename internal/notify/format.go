package notify

import "fmt"

// PushContent is the rendered payload for a web-push delivery.
type PushContent struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Extra map[string]string `json:"extra,omitempty"`
}

// SMSContent is the rendered payload for an SMS delivery.
type SMSContent struct {
	Text string
}

// EmailContent is the rendered payload for an email delivery.
type EmailContent struct {
	Subject string
	HTML    string
}

// InAppContent is the rendered payload for the in-app record.
type InAppContent struct {
	Title string
	Body  string
}

// FormatPush renders push content for a type/payload pair.
func FormatPush(t Type, data Data) PushContent {
	title, body := renderTitleBody(t, data)
	extra := map[string]string{"type": string(t)}
	if loadID := data.String("load_id"); loadID != "" {
		extra["load_id"] = loadID
	}
	return PushContent{Title: title, Body: body, Extra: extra}
}

// FormatSMS renders SMS content for a type/payload pair.
func FormatSMS(t Type, data Data) SMSContent {
	title, body := renderTitleBody(t, data)
	return SMSContent{Text: title + ": " + body}
}

// FormatEmail renders email content for a type/payload pair.
func FormatEmail(t Type, data Data) EmailContent {
	title, body := renderTitleBody(t, data)
	html := fmt.Sprintf("<html><body><h2>%s</h2><p>%s</p></body></html>", title, body)
	return EmailContent{Subject: title, HTML: html}
}

// FormatInApp renders the in-app record content for a type/payload pair.
func FormatInApp(t Type, data Data) InAppContent {
	title, body := renderTitleBody(t, data)
	return InAppContent{Title: title, Body: body}
}

// renderTitleBody maps a (type, payload) pair to display strings. It is pure
// and deterministic; identical inputs always produce identical output.
// Unknown types fall back to a generic rendering instead of failing.
func renderTitleBody(t Type, data Data) (string, string) {
	load := data.String("load_number")
	if load == "" {
		load = data.String("load_id")
	}

	switch t {
	case TypeNewMessage:
		sender := orDefault(data.String("sender_name"), "Someone")
		preview := data.String("message_preview")
		if preview == "" {
			return "New Message", sender + " sent you a message"
		}
		return "New Message", sender + ": " + preview

	case TypeLoadAssigned:
		return "Load Assigned", fmt.Sprintf("You have been assigned load %s", orDefault(load, "a new load"))

	case TypeLoadStatusChange:
		status := orDefault(data.String("status"), "updated")
		return "Load Status Update", fmt.Sprintf("Load %s is now %s", orDefault(load, "in progress"), status)

	case TypeDocumentUploaded:
		doc := orDefault(data.String("document_type"), "A document")
		return "Document Uploaded", fmt.Sprintf("%s was uploaded for load %s", doc, orDefault(load, "your load"))

	case TypeDocumentRequired:
		doc := orDefault(data.String("document_type"), "A document")
		return "Document Required", fmt.Sprintf("%s is required for load %s", doc, orDefault(load, "your load"))

	case TypePaymentIssued:
		amount := data.String("amount")
		if amount == "" {
			return "Payment Issued", "A payment has been issued to you"
		}
		return "Payment Issued", fmt.Sprintf("A payment of %s has been issued to you", amount)

	case TypePaymentIssuedDriver:
		payee := orDefault(data.String("payee_name"), "a driver")
		amount := data.String("amount")
		if amount == "" {
			return "Driver Payment Issued", fmt.Sprintf("A payment has been issued to %s", payee)
		}
		return "Driver Payment Issued", fmt.Sprintf("A payment of %s has been issued to %s", amount, payee)

	case TypeGeofenceEntry:
		place := orDefault(data.String("geofence_name"), "a tracked location")
		return "Arrival", fmt.Sprintf("Load %s has arrived at %s", orDefault(load, "in transit"), place)

	case TypeGeofenceExit:
		place := orDefault(data.String("geofence_name"), "a tracked location")
		return "Departure", fmt.Sprintf("Load %s has departed from %s", orDefault(load, "in transit"), place)

	case TypeApproachingGeofence:
		place := orDefault(data.String("geofence_name"), "its destination")
		distance := data.String("distance_miles")
		if distance == "" {
			return "Approaching", fmt.Sprintf("Load %s is approaching %s", orDefault(load, "in transit"), place)
		}
		return "Approaching", fmt.Sprintf("Load %s is %s miles from %s", orDefault(load, "in transit"), distance, place)

	case TypeDwellTimeAlert:
		place := orDefault(data.String("geofence_name"), "a stop")
		dwell := data.String("dwell_minutes")
		if dwell == "" {
			return "Dwell Time Alert", fmt.Sprintf("Load %s has been waiting at %s", orDefault(load, "in transit"), place)
		}
		return "Dwell Time Alert", fmt.Sprintf("Load %s has been at %s for %s minutes", orDefault(load, "in transit"), place, dwell)

	case TypeETAUpdate:
		eta := orDefault(data.String("eta"), "updated")
		return "ETA Update", fmt.Sprintf("Load %s ETA: %s", orDefault(load, "in transit"), eta)

	case TypeDelayAlert:
		reason := data.String("delay_reason")
		if reason == "" {
			return "Delay Alert", fmt.Sprintf("Load %s is running behind schedule", orDefault(load, "in transit"))
		}
		return "Delay Alert", fmt.Sprintf("Load %s is delayed: %s", orDefault(load, "in transit"), reason)

	case TypeDeliveryComplete:
		return "Delivery Complete", fmt.Sprintf("Load %s has been delivered", orDefault(load, "your load"))

	case TypeWeatherAlert:
		condition := orDefault(data.String("condition"), "Severe weather")
		return "Weather Alert", fmt.Sprintf("%s reported on the route of load %s", condition, orDefault(load, "in transit"))

	default:
		return "Notification", "New notification"
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
