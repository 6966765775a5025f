package notify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderTitleBodyKnownTypes(t *testing.T) {
	cases := []struct {
		name      string
		t         Type
		data      Data
		wantTitle string
		wantBody  string
	}{
		{
			name:      "load assigned",
			t:         TypeLoadAssigned,
			data:      Data{"load_number": "L-100"},
			wantTitle: "Load Assigned",
			wantBody:  "You have been assigned load L-100",
		},
		{
			name:      "status change",
			t:         TypeLoadStatusChange,
			data:      Data{"load_number": "L-100", "status": "in_transit"},
			wantTitle: "Load Status Update",
			wantBody:  "Load L-100 is now in_transit",
		},
		{
			name:      "document required",
			t:         TypeDocumentRequired,
			data:      Data{"load_number": "L-100", "document_type": "Bill of Lading (BOL)"},
			wantTitle: "Document Required",
			wantBody:  "Bill of Lading (BOL) is required for load L-100",
		},
		{
			name:      "geofence entry",
			t:         TypeGeofenceEntry,
			data:      Data{"load_number": "L-100", "geofence_name": "Atlanta DC"},
			wantTitle: "Arrival",
			wantBody:  "Load L-100 has arrived at Atlanta DC",
		},
		{
			name:      "payment issued with amount",
			t:         TypePaymentIssued,
			data:      Data{"amount": "$1,250.00"},
			wantTitle: "Payment Issued",
			wantBody:  "A payment of $1,250.00 has been issued to you",
		},
		{
			name:      "new message preview",
			t:         TypeNewMessage,
			data:      Data{"sender_name": "Dispatch", "message_preview": "Call me"},
			wantTitle: "New Message",
			wantBody:  "Dispatch: Call me",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			title, body := renderTitleBody(tc.t, tc.data)
			require.Equal(t, tc.wantTitle, title)
			require.Equal(t, tc.wantBody, body)
		})
	}
}

func TestFormatUnknownTypeFallsBack(t *testing.T) {
	title, body := renderTitleBody(Type("mystery"), Data{"anything": "x"})
	require.Equal(t, "Notification", title)
	require.Equal(t, "New notification", body)
}

func TestFormatIsDeterministic(t *testing.T) {
	data := Data{"load_number": "L-42", "geofence_name": "Pickup Yard", "distance_miles": "3.2"}

	for _, typ := range AllTypes() {
		first := FormatPush(typ, data)
		second := FormatPush(typ, data)
		require.Equal(t, first, second, "push content for %s", typ)

		require.Equal(t, FormatSMS(typ, data), FormatSMS(typ, data), "sms content for %s", typ)
		require.Equal(t, FormatEmail(typ, data), FormatEmail(typ, data), "email content for %s", typ)
		require.Equal(t, FormatInApp(typ, data), FormatInApp(typ, data), "in-app content for %s", typ)
	}
}

func TestFormatChannelShapes(t *testing.T) {
	data := Data{"load_id": "abc", "load_number": "L-7"}

	push := FormatPush(TypeDeliveryComplete, data)
	require.Equal(t, "Delivery Complete", push.Title)
	require.Equal(t, "delivery_complete", push.Extra["type"])
	require.Equal(t, "abc", push.Extra["load_id"])

	sms := FormatSMS(TypeDeliveryComplete, data)
	require.Equal(t, "Delivery Complete: Load L-7 has been delivered", sms.Text)

	email := FormatEmail(TypeDeliveryComplete, data)
	require.Equal(t, "Delivery Complete", email.Subject)
	require.Contains(t, email.HTML, "<h2>Delivery Complete</h2>")
	require.Contains(t, email.HTML, "Load L-7 has been delivered")
}

func TestDataHelpers(t *testing.T) {
	data := Data{"s": "text", "n": 42, "nil": nil}

	require.Equal(t, "text", data.String("s"))
	require.Equal(t, "42", data.String("n"))
	require.Empty(t, data.String("nil"))
	require.Empty(t, data.String("absent"))
	require.Empty(t, Data(nil).String("s"))

	clone := data.Clone()
	clone["s"] = "mutated"
	require.Equal(t, "text", data.String("s"))

	require.NotNil(t, Data(nil).Clone())
}
