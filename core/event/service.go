package event

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/revelohq/revelo/core/institute"
	"github.com/revelohq/revelo/core/payment"
)

var (
	// errors
	ErrNotFound           = errors.New("event not found")
	ErrSubEventNotFound   = errors.New("sub-event not found")
	ErrFlyerExists        = errors.New("flyer with this image URL already exists")
	ErrPaymentNotVerified = errors.New("platform payment could not be verified")
	ErrNoSubEvents        = errors.New("an event needs at least one sub-event before publishing")
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, ev Event) (Event, error)
		GetEventByID(ctx context.Context, id string) (Event, error)
		// QueryEventsByID resolves ids in order; dangling references are
		// omitted from the result, never an error.
		QueryEventsByID(ctx context.Context, ids []string) ([]Event, error)
		UpdateEvent(ctx context.Context, ev Event) (Event, error)

		CreateSubEvent(ctx context.Context, se SubEvent) (SubEvent, error)
		GetSubEventByID(ctx context.Context, id string) (SubEvent, error)
		QuerySubEventsByID(ctx context.Context, ids []string) ([]SubEvent, error)
		UpdateSubEvent(ctx context.Context, se SubEvent) (SubEvent, error)
		DeleteSubEvent(ctx context.Context, id string) error
		AttachSubEvent(ctx context.Context, eventID, subEventID string) error
		DetachSubEvent(ctx context.Context, eventID, subEventID string) error

		CreateFlyer(ctx context.Context, f Flyer) (Flyer, error)
		QueryFlyersByID(ctx context.Context, ids []string) ([]Flyer, error)
		AttachFlyer(ctx context.Context, eventID, flyerID string) error
		CreateVideo(ctx context.Context, v Video) (Video, error)
		QueryVideosByID(ctx context.Context, ids []string) ([]Video, error)
		AttachVideo(ctx context.Context, eventID, videoID string) error
	}

	// InstituteRepository is the slice of the institute store this
	// service needs; the concrete repository satisfies both.
	InstituteRepository interface {
		GetInstituteByID(ctx context.Context, id string) (institute.Institute, error)
		AttachEvent(ctx context.Context, instituteID, eventID string) error
	}

	// PlatformPayments verifies and records the event-creation fee.
	PlatformPayments interface {
		RecordEventCreation(ctx context.Context, instituteID, orderID, paymentID, signature string) (ref string, err error)
	}

	Service struct {
		repo       Repository
		institutes InstituteRepository
		payments   PlatformPayments
	}

	// Detail is an event with its owned documents resolved.
	Detail struct {
		Event
		SubEvents []SubEvent `json:"subEventDocs"`
		Flyers    []Flyer    `json:"flyerDocs"`
		Videos    []Video    `json:"videoDocs"`
	}
)

func NewService(repo Repository, institutes InstituteRepository, payments PlatformPayments) *Service {
	return &Service{repo: repo, institutes: institutes, payments: payments}
}

// Create records the platform-fee payment, then the event, then pushes
// the event ref onto the owning institute. The last two writes are not
// transactional; reads tolerate a dangling event ref.
func (svc *Service) Create(ctx context.Context, ne NewEvent) (Event, error) {
	if err := ne.Validate(); err != nil {
		return Event{}, err
	}

	inst, err := svc.institutes.GetInstituteByID(ctx, ne.InstituteID)
	if err != nil {
		return Event{}, err
	}

	var pd PaymentData
	if ne.PaymentData != nil {
		pd = *ne.PaymentData
	}
	paymentRef, err := svc.payments.RecordEventCreation(ctx, inst.ID, pd.OrderID, pd.PaymentID, pd.Signature)
	if err != nil {
		if errors.Is(err, payment.ErrVerificationFailed) {
			return Event{}, ErrPaymentNotVerified
		}
		return Event{}, err
	}

	now := time.Now().UTC()
	ev := Event{
		InstituteID:  inst.ID,
		Title:        ne.Title,
		Description:  ne.Description,
		Category:     ne.Category,
		ThumbnailURL: ne.Thumbnail,
		Location: Location{
			Venue:   ne.Venue,
			City:    ne.City,
			State:   ne.State,
			Country: ne.Country,
			PinCode: ne.PinCode,
		},
		Duration:            [2]time.Time{ne.From, ne.To},
		RegistrationStarts:  ne.RegistrationStarts,
		RegistrationEnds:    ne.RegistrationEnds,
		Mode:                ne.Mode(),
		PlatformPaymentDone: true,
		PaymentID:           paymentRef,
		SubEventIDs:         []string{},
		FlyerIDs:            []string{},
		VideoIDs:            []string{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	ev, err = svc.repo.CreateEvent(ctx, ev)
	if err != nil {
		return Event{}, err
	}
	if err = svc.institutes.AttachEvent(ctx, inst.ID, ev.ID); err != nil {
		return Event{}, pkgerrors.Wrap(err, "attaching event to institute")
	}
	return ev, nil
}

// Get resolves an event with its sub-events, flyers and videos.
// Dangling references are omitted, not errors.
func (svc *Service) Get(ctx context.Context, id string) (Detail, error) {
	ev, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	subs, err := svc.repo.QuerySubEventsByID(ctx, ev.SubEventIDs)
	if err != nil {
		return Detail{}, err
	}
	flyers, err := svc.repo.QueryFlyersByID(ctx, ev.FlyerIDs)
	if err != nil {
		return Detail{}, err
	}
	videos, err := svc.repo.QueryVideosByID(ctx, ev.VideoIDs)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Event: ev, SubEvents: subs, Flyers: flyers, Videos: videos}, nil
}

// ListByIDs resolves an institute's event refs, omitting dangling ones.
func (svc *Service) ListByIDs(ctx context.Context, ids []string) ([]Event, error) {
	return svc.repo.QueryEventsByID(ctx, ids)
}

// Update patches the allow-listed fields. Concurrent updates follow
// last-write-wins; there is no version check.
func (svc *Service) Update(ctx context.Context, id string, ue UpdateEvent) (Event, error) {
	ev, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	ev, err = ue.apply(ev)
	if err != nil {
		return Event{}, err
	}
	return svc.repo.UpdateEvent(ctx, ev)
}

// Publish flips the published flag once the event has content to show.
func (svc *Service) Publish(ctx context.Context, id string) (Event, error) {
	ev, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if len(ev.SubEventIDs) == 0 {
		return Event{}, ErrNoSubEvents
	}
	if ev.Published {
		return ev, nil
	}
	ev.Published = true
	ev.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, ev)
}

func (svc *Service) CreateSubEvent(ctx context.Context, ns NewSubEvent) (SubEvent, error) {
	if err := ns.Validate(); err != nil {
		return SubEvent{}, err
	}
	if _, err := svc.repo.GetEventByID(ctx, ns.EventID); err != nil {
		return SubEvent{}, err
	}

	now := time.Now().UTC()
	ts := TeamSize{Min: 1, Max: 1}
	if ns.TeamRequired && ns.TeamSize != nil {
		ts = *ns.TeamSize
	}
	se := SubEvent{
		EventID:         ns.EventID,
		Title:           ns.Title,
		ScheduledAt:     ns.ScheduledAt,
		Venue:           ns.Venue,
		Price:           ns.Price.Value,
		TeamRequired:    ns.TeamRequired,
		TeamSize:        ts,
		Category:        ns.Category,
		BannerURL:       ns.Banner,
		ContactDetails:  ns.ContactDetails,
		Rules:           ns.Rules,
		RegistrationIDs: []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	se, err := svc.repo.CreateSubEvent(ctx, se)
	if err != nil {
		return SubEvent{}, err
	}
	if err = svc.repo.AttachSubEvent(ctx, ns.EventID, se.ID); err != nil {
		return SubEvent{}, pkgerrors.Wrap(err, "attaching sub-event to event")
	}
	return se, nil
}

func (svc *Service) UpdateSubEvent(ctx context.Context, id string, us UpdateSubEvent) (SubEvent, error) {
	se, err := svc.repo.GetSubEventByID(ctx, id)
	if err != nil {
		return SubEvent{}, err
	}
	se, err = us.apply(se)
	if err != nil {
		return SubEvent{}, err
	}
	return svc.repo.UpdateSubEvent(ctx, se)
}

// DeleteSubEvent detaches the ref from the parent, then deletes the
// document. The two writes are sequential, not atomic; a crash in
// between leaves a dangling ref which the read path omits.
func (svc *Service) DeleteSubEvent(ctx context.Context, eventID, subEventID string) error {
	if err := svc.repo.DetachSubEvent(ctx, eventID, subEventID); err != nil {
		return err
	}
	return svc.repo.DeleteSubEvent(ctx, subEventID)
}

func (svc *Service) AddFlyer(ctx context.Context, nf NewFlyer) (Flyer, error) {
	if err := nf.Validate(); err != nil {
		return Flyer{}, err
	}
	if _, err := svc.repo.GetEventByID(ctx, nf.EventID); err != nil {
		return Flyer{}, err
	}
	f := Flyer{
		EventID:     nf.EventID,
		ImgURL:      nf.FlyerURL,
		Description: nf.Description,
		Orientation: nf.Orientation,
		Width:       *nf.Width,
		Height:      *nf.Height,
		DisplayType: nf.DisplayType,
		Tags:        nf.Tags,
		Categories:  nf.Categories,
		CreatedAt:   time.Now().UTC(),
	}
	f, err := svc.repo.CreateFlyer(ctx, f)
	if err != nil {
		return Flyer{}, err
	}
	if err = svc.repo.AttachFlyer(ctx, nf.EventID, f.ID); err != nil {
		return Flyer{}, pkgerrors.Wrap(err, "attaching flyer to event")
	}
	return f, nil
}

func (svc *Service) AddVideo(ctx context.Context, nv NewVideo) (Video, error) {
	if err := nv.Validate(); err != nil {
		return Video{}, err
	}
	if _, err := svc.repo.GetEventByID(ctx, nv.EventID); err != nil {
		return Video{}, err
	}
	now := time.Now().UTC()
	v := Video{
		EventID:      nv.EventID,
		VideoURL:     nv.VideoURL,
		ThumbnailURL: nv.ThumbnailURL,
		Description:  nv.Description,
		Tags:         nv.Tags,
		Categories:   nv.Categories,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	v, err := svc.repo.CreateVideo(ctx, v)
	if err != nil {
		return Video{}, err
	}
	if err = svc.repo.AttachVideo(ctx, nv.EventID, v.ID); err != nil {
		return Video{}, pkgerrors.Wrap(err, "attaching video to event")
	}
	return v, nil
}
