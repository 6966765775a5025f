package notify

import "fmt"

// Type identifies one kind of business event a user can be notified about.
type Type string

const (
	TypeNewMessage          Type = "new_message"
	TypeLoadAssigned        Type = "load_assigned"
	TypeLoadStatusChange    Type = "load_status_change"
	TypeDocumentUploaded    Type = "document_uploaded"
	TypeDocumentRequired    Type = "document_required"
	TypePaymentIssued       Type = "payment_issued"
	TypePaymentIssuedDriver Type = "payment_issued_to_driver"
	TypeGeofenceEntry       Type = "geofence_entry"
	TypeGeofenceExit        Type = "geofence_exit"
	TypeApproachingGeofence Type = "approaching_geofence"
	TypeDwellTimeAlert      Type = "dwell_time_alert"
	TypeETAUpdate           Type = "eta_update"
	TypeDelayAlert          Type = "delay_alert"
	TypeDeliveryComplete    Type = "delivery_complete"
	TypeWeatherAlert        Type = "weather_alert"
)

// AllTypes returns every known notification type, in declaration order.
func AllTypes() []Type {
	return []Type{
		TypeNewMessage,
		TypeLoadAssigned,
		TypeLoadStatusChange,
		TypeDocumentUploaded,
		TypeDocumentRequired,
		TypePaymentIssued,
		TypePaymentIssuedDriver,
		TypeGeofenceEntry,
		TypeGeofenceExit,
		TypeApproachingGeofence,
		TypeDwellTimeAlert,
		TypeETAUpdate,
		TypeDelayAlert,
		TypeDeliveryComplete,
		TypeWeatherAlert,
	}
}

// Channel is a delivery medium.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
	ChannelInApp Channel = "in_app"
)

// Status is the lifecycle state of one channel delivery attempt.
// pending -> sending -> {delivered | failed | throttled | skipped};
// the four right-hand states are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSending   Status = "sending"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusThrottled Status = "throttled"
	StatusSkipped   Status = "skipped"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusFailed, StatusThrottled, StatusSkipped:
		return true
	default:
		return false
	}
}

// Data is the open key/value payload attached to one dispatch. It is built
// once by the event handler and read-only downstream; the dispatcher injects
// the user id for context and nothing else mutates it.
type Data map[string]any

// String returns the payload value for key rendered as a string, or "" when absent.
func (d Data) String(key string) string {
	if d == nil {
		return ""
	}
	value, ok := d[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// Clone returns a shallow copy so callers can hold the original immutable.
func (d Data) Clone() Data {
	if d == nil {
		return Data{}
	}
	out := make(Data, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	return out
}
