package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revelohq/revelo/core"
	"github.com/revelohq/revelo/core/event"
	"github.com/revelohq/revelo/core/institute"
	"github.com/revelohq/revelo/core/payment"
	dummygw "github.com/revelohq/revelo/services/payment/dummy"
	inmemdb "github.com/revelohq/revelo/storage/database/inmem"
)

type eventFixture struct {
	svc         *event.Service
	gateway     *dummygw.Gateway
	paymentSvc  *payment.Service
	instituteID string
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)

	conf := &core.Config{PlatformFee: 500}
	gw := dummygw.NewGateway()
	paymentSvc := payment.NewService(inmemdb.NewPaymentRepository(db), gw, conf)

	instRepo := inmemdb.NewInstituteRepository(db)
	inst, err := instRepo.CreateInstitute(context.Background(), institute.Institute{
		Name:        "MIT Pune",
		OfficeEmail: "office@mitpune.test",
		Status:      institute.StatusApproved,
	})
	require.NoError(t, err)

	return &eventFixture{
		svc:         event.NewService(inmemdb.NewEventRepository(db), instRepo, paymentSvc),
		gateway:     gw,
		paymentSvc:  paymentSvc,
		instituteID: inst.ID,
	}
}

func validNewEvent(instituteID, signature string) event.NewEvent {
	from := time.Date(2026, 10, 10, 9, 0, 0, 0, time.UTC)
	return event.NewEvent{
		InstituteID:        instituteID,
		Title:              "TechFest",
		Description:        "Annual tech fest",
		Category:           "technical",
		Thumbnail:          "https://cdn.local/thumb.png",
		Venue:              "Main Auditorium",
		City:               "Pune",
		State:              "MH",
		Country:            "India",
		PinCode:            "411001",
		From:               from,
		To:                 from.Add(48 * time.Hour),
		RegistrationStarts: from.Add(-10 * 24 * time.Hour),
		RegistrationEnds:   from.Add(-24 * time.Hour),
		PaymentData: &event.PaymentData{
			OrderID:   "order_1",
			PaymentID: "pay_1",
			Signature: signature,
		},
	}
}

func validNewSubEvent(eventID string) event.NewSubEvent {
	return event.NewSubEvent{
		EventID:        eventID,
		Title:          "Code Golf",
		ScheduledAt:    time.Date(2026, 10, 10, 14, 0, 0, 0, time.UTC),
		Venue:          "Lab 3",
		Price:          event.FlexFloat{Value: 100, Set: true},
		Category:       "coding",
		Banner:         "https://cdn.local/banner.png",
		ContactDetails: "golf@techfest.local",
		Rules:          []string{"solo only"},
	}
}

func Test_EventService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		fix := newEventFixture(t)
		ev, err := fix.svc.Create(ctx, validNewEvent(fix.instituteID, fix.gateway.ValidSignature))
		require.NoError(t, err)

		assert.NotEmpty(t, ev.ID)
		assert.Equal(t, fix.instituteID, ev.InstituteID)
		assert.True(t, ev.PlatformPaymentDone)
		assert.False(t, ev.Published)
		assert.Empty(t, ev.SubEventIDs)

		// payment persisted and referenced
		require.NotEmpty(t, ev.PaymentID)
		p, err := fix.paymentSvc.Get(ctx, ev.PaymentID)
		require.NoError(t, err)
		assert.True(t, p.Verified)
		assert.Equal(t, payment.PurposeEventCreation, p.Purpose)
		assert.Equal(t, fix.instituteID, p.InstituteID)
	})
	t.Run("bad signature stores nothing", func(t *testing.T) {
		fix := newEventFixture(t)
		_, err := fix.svc.Create(ctx, validNewEvent(fix.instituteID, "forged"))
		assert.ErrorIs(t, err, event.ErrPaymentNotVerified)
	})
	t.Run("missing payment data", func(t *testing.T) {
		fix := newEventFixture(t)
		ne := validNewEvent(fix.instituteID, "")
		ne.PaymentData = nil
		_, err := fix.svc.Create(ctx, ne)
		assert.ErrorIs(t, err, event.ErrPaymentNotVerified)
	})
	t.Run("unknown institute", func(t *testing.T) {
		fix := newEventFixture(t)
		_, err := fix.svc.Create(ctx, validNewEvent("nope", fix.gateway.ValidSignature))
		assert.Error(t, err)
	})
}

func Test_EventService_Publish(t *testing.T) {
	ctx := context.Background()
	fix := newEventFixture(t)

	ev, err := fix.svc.Create(ctx, validNewEvent(fix.instituteID, fix.gateway.ValidSignature))
	require.NoError(t, err)

	// no sub-events yet
	_, err = fix.svc.Publish(ctx, ev.ID)
	assert.ErrorIs(t, err, event.ErrNoSubEvents)

	_, err = fix.svc.CreateSubEvent(ctx, validNewSubEvent(ev.ID))
	require.NoError(t, err)

	got, err := fix.svc.Publish(ctx, ev.ID)
	require.NoError(t, err)
	assert.True(t, got.Published)

	// idempotent
	again, err := fix.svc.Publish(ctx, ev.ID)
	require.NoError(t, err)
	assert.True(t, again.Published)

	_, err = fix.svc.Publish(ctx, "nope")
	assert.ErrorIs(t, err, event.ErrNotFound)
}

func Test_EventService_SubEvents(t *testing.T) {
	ctx := context.Background()
	fix := newEventFixture(t)

	ev, err := fix.svc.Create(ctx, validNewEvent(fix.instituteID, fix.gateway.ValidSignature))
	require.NoError(t, err)

	first, err := fix.svc.CreateSubEvent(ctx, validNewSubEvent(ev.ID))
	require.NoError(t, err)
	second, err := fix.svc.CreateSubEvent(ctx, validNewSubEvent(ev.ID))
	require.NoError(t, err)

	detail, err := fix.svc.Get(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, detail.SubEvents, 2)
	assert.Equal(t, first.ID, detail.SubEvents[0].ID)
	assert.Equal(t, second.ID, detail.SubEvents[1].ID)

	t.Run("parent must exist", func(t *testing.T) {
		_, err := fix.svc.CreateSubEvent(ctx, validNewSubEvent("nope"))
		assert.ErrorIs(t, err, event.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		newVenue := "Lab 7"
		got, err := fix.svc.UpdateSubEvent(ctx, first.ID, event.UpdateSubEvent{Venue: newVenue})
		require.NoError(t, err)
		assert.Equal(t, newVenue, got.Venue)
		assert.Equal(t, first.Title, got.Title) // immutable
	})

	t.Run("delete removes ref and doc", func(t *testing.T) {
		require.NoError(t, fix.svc.DeleteSubEvent(ctx, ev.ID, first.ID))

		detail, err := fix.svc.Get(ctx, ev.ID)
		require.NoError(t, err)
		require.Len(t, detail.SubEvents, 1)
		assert.Equal(t, second.ID, detail.SubEvents[0].ID)

		_, err = fix.svc.UpdateSubEvent(ctx, first.ID, event.UpdateSubEvent{})
		assert.ErrorIs(t, err, event.ErrSubEventNotFound)
	})
}

func Test_EventService_Flyers(t *testing.T) {
	ctx := context.Background()
	fix := newEventFixture(t)

	ev, err := fix.svc.Create(ctx, validNewEvent(fix.instituteID, fix.gateway.ValidSignature))
	require.NoError(t, err)

	w, h := 1080, 1920
	nf := event.NewFlyer{
		EventID:     ev.ID,
		FlyerURL:    "https://cdn.local/flyer.png",
		Description: "main flyer",
		Orientation: "portrait",
		Width:       &w,
		Height:      &h,
		DisplayType: "feed",
	}
	f, err := fix.svc.AddFlyer(ctx, nf)
	require.NoError(t, err)
	assert.NotEmpty(t, f.ID)

	// the image URL is unique across flyers
	_, err = fix.svc.AddFlyer(ctx, nf)
	assert.ErrorIs(t, err, event.ErrFlyerExists)

	detail, err := fix.svc.Get(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, detail.Flyers, 1)
	assert.Equal(t, f.ID, detail.Flyers[0].ID)
}

func Test_EventService_Videos(t *testing.T) {
	ctx := context.Background()
	fix := newEventFixture(t)

	ev, err := fix.svc.Create(ctx, validNewEvent(fix.instituteID, fix.gateway.ValidSignature))
	require.NoError(t, err)

	v, err := fix.svc.AddVideo(ctx, event.NewVideo{
		EventID:      ev.ID,
		VideoURL:     "https://cdn.local/teaser.mp4",
		ThumbnailURL: "https://cdn.local/teaser.png",
		Description:  "teaser",
	})
	require.NoError(t, err)

	detail, err := fix.svc.Get(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, detail.Videos, 1)
	assert.Equal(t, v.ID, detail.Videos[0].ID)
}

func Test_EventService_ListByIDs_omitsDangling(t *testing.T) {
	ctx := context.Background()
	fix := newEventFixture(t)

	ev, err := fix.svc.Create(ctx, validNewEvent(fix.instituteID, fix.gateway.ValidSignature))
	require.NoError(t, err)

	got, err := fix.svc.ListByIDs(ctx, []string{"gone-1", ev.ID, "gone-2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ev.ID, got[0].ID)
}

func Test_EventService_Update(t *testing.T) {
	ctx := context.Background()
	fix := newEventFixture(t)

	ev, err := fix.svc.Create(ctx, validNewEvent(fix.instituteID, fix.gateway.ValidSignature))
	require.NoError(t, err)

	got, err := fix.svc.Update(ctx, ev.ID, event.UpdateEvent{Description: "updated blurb"})
	require.NoError(t, err)
	assert.Equal(t, "updated blurb", got.Description)
	assert.Equal(t, ev.Title, got.Title)

	_, err = fix.svc.Update(ctx, "nope", event.UpdateEvent{})
	assert.ErrorIs(t, err, event.ErrNotFound)
}
