package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/database/testutil"
	"github.com/loadlane/loadlane/internal/models"
	"github.com/loadlane/loadlane/internal/notify"
)

type dispatchCall struct {
	UserID string
	Type   notify.Type
	Data   notify.Data
}

type fakeDispatcher struct {
	calls []dispatchCall
}

func (f *fakeDispatcher) Dispatch(_ context.Context, userID string, t notify.Type, data notify.Data) notify.Result {
	f.calls = append(f.calls, dispatchCall{UserID: userID, Type: t, Data: data})
	return notify.Result{Delivered: true}
}

func (f *fakeDispatcher) callsOfType(t notify.Type) []dispatchCall {
	var out []dispatchCall
	for _, call := range f.calls {
		if call.Type == t {
			out = append(out, call)
		}
	}
	return out
}

type fixture struct {
	db         *gorm.DB
	dispatcher *fakeDispatcher
	handlers   *Handlers

	driver       models.User
	carrierAdmin models.User
	shipperAdmin models.User
	load         models.Load
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	dispatcher := &fakeDispatcher{}

	carrierCo := "11111111-1111-1111-1111-111111111111"
	shipperCo := "22222222-2222-2222-2222-222222222222"

	f := &fixture{db: db, dispatcher: dispatcher, handlers: New(db, dispatcher)}
	f.driver = createUser(t, db, models.User{Username: "driver-1", Role: models.RoleDriver, IsActive: true})
	f.carrierAdmin = createUser(t, db, models.User{Username: "carrier-1", Role: models.RoleCarrierAdmin, CompanyID: &carrierCo, IsActive: true})
	f.shipperAdmin = createUser(t, db, models.User{Username: "shipper-1", Role: models.RoleShipperAdmin, CompanyID: &shipperCo, IsActive: true})

	f.load = models.Load{
		LoadNumber:       "L-100",
		Status:           "in_transit",
		DriverID:         &f.driver.ID,
		CarrierID:        &carrierCo,
		ShipperID:        &shipperCo,
		PickupLocation:   "Atlanta, GA",
		DeliveryLocation: "Dallas, TX",
	}
	require.NoError(t, db.Create(&f.load).Error)
	return f
}

func createUser(t *testing.T, db *gorm.DB, user models.User) models.User {
	t.Helper()
	require.NoError(t, db.Create(&user).Error)
	return user
}

func recipientIDs(calls []dispatchCall) []string {
	out := make([]string, 0, len(calls))
	for _, call := range calls {
		out = append(out, call.UserID)
	}
	return out
}

func TestGeofenceEnteredAtDeliveryPromptsForBOL(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.handlers.GeofenceEntered(context.Background(), f.load.ID, "Dallas DC", GeofenceDelivery))

	entries := f.dispatcher.callsOfType(notify.TypeGeofenceEntry)
	require.GreaterOrEqual(t, len(entries), 2)
	require.Contains(t, recipientIDs(entries), f.driver.ID)
	require.Contains(t, recipientIDs(entries), f.shipperAdmin.ID)
	require.Equal(t, "L-100", entries[0].Data.String("load_number"))
	require.Equal(t, "Dallas DC", entries[0].Data.String("geofence_name"))

	docs := f.dispatcher.callsOfType(notify.TypeDocumentRequired)
	require.Len(t, docs, 1)
	require.Equal(t, f.driver.ID, docs[0].UserID)
	require.Equal(t, "Bill of Lading (BOL)", docs[0].Data.String("document_type"))
}

func TestGeofenceEnteredAtPickupSkipsBOLPrompt(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.handlers.GeofenceEntered(context.Background(), f.load.ID, "Atlanta Yard", GeofencePickup))

	require.NotEmpty(t, f.dispatcher.callsOfType(notify.TypeGeofenceEntry))
	require.Empty(t, f.dispatcher.callsOfType(notify.TypeDocumentRequired))
}

func TestApproachingGeofenceDistanceCutoff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 12 miles out: beyond the 10-mile cutoff, nothing dispatches.
	require.NoError(t, f.handlers.ApproachingGeofence(ctx, f.load.ID, "Dallas DC", 12*1609.34))
	require.Empty(t, f.dispatcher.calls)

	// 5 miles out: inside the cutoff, stakeholders are notified.
	require.NoError(t, f.handlers.ApproachingGeofence(ctx, f.load.ID, "Dallas DC", 5*1609.34))
	calls := f.dispatcher.callsOfType(notify.TypeApproachingGeofence)
	require.NotEmpty(t, calls)
	require.Equal(t, "5.0", calls[0].Data.String("distance_miles"))
}

func TestPaymentIssuedNotifiesPayeeAndCarrierStaff(t *testing.T) {
	f := newFixture(t)
	secondAdmin := createUser(t, f.db, models.User{
		Username:  "carrier-2",
		Role:      models.RoleCarrierAdmin,
		CompanyID: f.load.CarrierID,
		IsActive:  true,
	})

	require.NoError(t, f.handlers.PaymentIssued(context.Background(), f.load.ID, f.driver.ID, "$1,250.00"))

	payee := f.dispatcher.callsOfType(notify.TypePaymentIssued)
	require.Len(t, payee, 1)
	require.Equal(t, f.driver.ID, payee[0].UserID)
	require.Equal(t, "$1,250.00", payee[0].Data.String("amount"))

	staff := f.dispatcher.callsOfType(notify.TypePaymentIssuedDriver)
	require.Len(t, staff, 2)
	require.ElementsMatch(t, []string{f.carrierAdmin.ID, secondAdmin.ID}, recipientIDs(staff))
	require.Equal(t, "driver-1", staff[0].Data.String("payee_name"))
}

func TestDocumentUploadedRoutesByDocumentType(t *testing.T) {
	f := newFixture(t)
	admin := createUser(t, f.db, models.User{Username: "ops", Role: models.RoleAdmin, IsActive: true})
	ctx := context.Background()

	require.NoError(t, f.handlers.DocumentUploaded(ctx, f.load.ID, "Bill of Lading (BOL)", ""))
	bolCalls := f.dispatcher.callsOfType(notify.TypeDocumentUploaded)
	require.ElementsMatch(t,
		[]string{f.driver.ID, f.carrierAdmin.ID, admin.ID},
		recipientIDs(bolCalls))

	f.dispatcher.calls = nil
	require.NoError(t, f.handlers.DocumentUploaded(ctx, f.load.ID, "Invoice", ""))
	invoiceCalls := f.dispatcher.callsOfType(notify.TypeDocumentUploaded)
	require.ElementsMatch(t,
		[]string{f.shipperAdmin.ID, admin.ID},
		recipientIDs(invoiceCalls))

	f.dispatcher.calls = nil
	require.NoError(t, f.handlers.DocumentUploaded(ctx, f.load.ID, "Customs Form", ""))
	require.ElementsMatch(t, []string{admin.ID}, recipientIDs(f.dispatcher.calls))
}

func TestDocumentUploadedExcludesUploader(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.handlers.DocumentUploaded(context.Background(), f.load.ID, "BOL", f.driver.ID))

	require.NotContains(t, recipientIDs(f.dispatcher.calls), f.driver.ID)
	require.Contains(t, recipientIDs(f.dispatcher.calls), f.carrierAdmin.ID)
}

func TestLoadAssignedNotifiesDriverAndCarrier(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.handlers.LoadAssigned(context.Background(), f.load.ID))

	calls := f.dispatcher.callsOfType(notify.TypeLoadAssigned)
	require.ElementsMatch(t, []string{f.driver.ID, f.carrierAdmin.ID}, recipientIDs(calls))
	require.Equal(t, "L-100", calls[0].Data.String("load_number"))
}

func TestLoadStatusChangedDeliveredBecomesDeliveryComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.handlers.LoadStatusChanged(ctx, f.load.ID, "in_transit"))
	require.NotEmpty(t, f.dispatcher.callsOfType(notify.TypeLoadStatusChange))
	require.Empty(t, f.dispatcher.callsOfType(notify.TypeDeliveryComplete))

	f.dispatcher.calls = nil
	require.NoError(t, f.handlers.LoadStatusChanged(ctx, f.load.ID, "delivered"))
	require.Empty(t, f.dispatcher.callsOfType(notify.TypeLoadStatusChange))
	require.NotEmpty(t, f.dispatcher.callsOfType(notify.TypeDeliveryComplete))
}

func TestHandlersReturnErrorForUnknownLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.Error(t, f.handlers.LoadAssigned(ctx, "missing"))
	require.Error(t, f.handlers.GeofenceEntered(ctx, "missing", "X", GeofenceDelivery))
	require.Error(t, f.handlers.PaymentIssued(ctx, "missing", f.driver.ID, "$1"))
	require.Empty(t, f.dispatcher.calls)
}

func TestMessageSentDispatchesToRecipient(t *testing.T) {
	f := newFixture(t)

	f.handlers.MessageSent(context.Background(), f.driver.ID, "Dispatch Desk", "Call when you arrive")

	calls := f.dispatcher.callsOfType(notify.TypeNewMessage)
	require.Len(t, calls, 1)
	require.Equal(t, f.driver.ID, calls[0].UserID)
	require.Equal(t, "Dispatch Desk", calls[0].Data.String("sender_name"))
}

func TestDwellTimeAlertTargetsCarrierAndAdmins(t *testing.T) {
	f := newFixture(t)
	admin := createUser(t, f.db, models.User{Username: "ops", Role: models.RoleAdmin, IsActive: true})

	require.NoError(t, f.handlers.DwellTimeAlert(context.Background(), f.load.ID, "Dallas DC", 95))

	calls := f.dispatcher.callsOfType(notify.TypeDwellTimeAlert)
	require.ElementsMatch(t, []string{f.carrierAdmin.ID, admin.ID}, recipientIDs(calls))
	require.Equal(t, "95", calls[0].Data.String("dwell_minutes"))
}
