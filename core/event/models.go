package event

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/revelohq/revelo/core"
)

// ModeKind tags an event's registration mode. Direct registration and
// ticketing are mutually exclusive by construction.
type ModeKind string

const (
	ModeNone     ModeKind = "none"
	ModeDirect   ModeKind = "direct"
	ModeTicketed ModeKind = "ticketed"
)

type (
	TeamSize struct {
		Min int `json:"min" bson:"min"`
		Max int `json:"max" bson:"max"`
	}

	// RegistrationMode is the tagged replacement for the old pair of
	// independent allowDirectRegistration/isTicketed booleans.
	RegistrationMode struct {
		Kind         ModeKind `json:"kind" bson:"kind"`
		Fee          float64  `json:"fee,omitempty" bson:"fee,omitempty"`                   // direct only
		Rules        []string `json:"rules,omitempty" bson:"rules,omitempty"`               // direct only
		TeamRequired bool     `json:"teamRequired,omitempty" bson:"teamRequired,omitempty"` // direct only
		TeamSize     TeamSize `json:"teamSize" bson:"teamSize"`
		TicketPrice  float64  `json:"ticketPrice,omitempty" bson:"ticketPrice,omitempty"` // ticketed only
	}

	Location struct {
		Venue   string `json:"venue" bson:"venue"`
		City    string `json:"city" bson:"city"`
		State   string `json:"state" bson:"state"`
		Country string `json:"country" bson:"country"`
		PinCode string `json:"pinCode" bson:"pinCode"`
	}

	Stats struct {
		TotalRegistrations int `json:"totalRegistrations" bson:"totalRegistrations"`
		Views              int `json:"views" bson:"views"`
	}

	Event struct {
		ID                  string           `json:"id" bson:"_id,omitempty"`
		InstituteID         string           `json:"instituteID" bson:"instituteID"`
		Title               string           `json:"title" bson:"title"`
		Description         string           `json:"description" bson:"description"`
		Category            string           `json:"category" bson:"category"`
		ThumbnailURL        string           `json:"thumbnail" bson:"thumbnail"`
		Location            Location         `json:"location" bson:"location"`
		Duration            [2]time.Time     `json:"duration" bson:"duration"` // start <= end
		RegistrationStarts  time.Time        `json:"registrationStarts" bson:"registrationStarts"`
		RegistrationEnds    time.Time        `json:"registrationEnds" bson:"registrationEnds"`
		Mode                RegistrationMode `json:"registrationMode" bson:"registrationMode"`
		PlatformPaymentDone bool             `json:"isPlatformPaymentDone" bson:"isPlatformPaymentDone"`
		PaymentID           string           `json:"paymentRef,omitempty" bson:"paymentRef,omitempty"`
		SubEventIDs         []string         `json:"subEvents" bson:"subEvents"`
		FlyerIDs            []string         `json:"flyers" bson:"flyers"`
		VideoIDs            []string         `json:"videos" bson:"videos"`
		Stats               Stats            `json:"stats" bson:"stats"`
		Published           bool             `json:"isPublished" bson:"isPublished"`
		CreatedAt           time.Time        `json:"created_at" bson:"createdAt"` // UTC
		UpdatedAt           time.Time        `json:"updated_at" bson:"updatedAt"` // UTC
	}
)

func (e *Event) AllowsDirectRegistration() bool { return e.Mode.Kind == ModeDirect }
func (e *Event) IsTicketed() bool               { return e.Mode.Kind == ModeTicketed }

// FlexFloat unmarshals from a JSON number or a numeric string; forms
// post prices as strings. Empty/null leave it unset, garbage marks it
// invalid so validation can name the field instead of a bind failure.
type FlexFloat struct {
	Value   float64
	Set     bool
	Invalid bool
}

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			f.Invalid = true
			return nil
		}
		s = strings.TrimSpace(unquoted)
		if s == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.Invalid = true
		return nil
	}
	f.Value = v
	f.Set = true
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// NewEvent is the creation payload. It keeps the original wire shape
// (two flags plus conditional fields); Validate folds the flags into a
// RegistrationMode and rejects payloads no mode can represent.
type NewEvent struct {
	InstituteID             string       `json:"instituteID"`
	Title                   string       `json:"title"`
	Description             string       `json:"description"`
	Category                string       `json:"category"`
	Thumbnail               string       `json:"thumbnail"`
	Venue                   string       `json:"venue"`
	City                    string       `json:"city"`
	State                   string       `json:"state"`
	Country                 string       `json:"country"`
	PinCode                 string       `json:"pinCode"`
	From                    time.Time    `json:"from"`
	To                      time.Time    `json:"to"`
	RegistrationStarts      time.Time    `json:"registrationStarts"`
	RegistrationEnds        time.Time    `json:"registrationEnds"`
	AllowDirectRegistration bool         `json:"allowDirectRegistration"`
	IsTicketed              bool         `json:"isTicketed"`
	RegistrationFee         FlexFloat    `json:"registrationFee"`
	TicketPrice             FlexFloat    `json:"ticketPrice"`
	TeamRequired            bool         `json:"teamRequired"`
	TeamSize                *TeamSize    `json:"teamSize"`
	Rules                   []string     `json:"rules"`
	PaymentData             *PaymentData `json:"paymentData"`

	mode RegistrationMode // built by Validate
}

// PaymentData is the gateway confirmation the client obtained before
// submitting the event.
type PaymentData struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// Mode returns the registration mode folded out of the payload flags.
// Only meaningful after a successful Validate.
func (ne *NewEvent) Mode() RegistrationMode { return ne.mode }

// Validate applies, in order: base field presence, date ordering, then
// the mode-conditional rules. The first failing rule short-circuits
// with an error naming the offending field. On success the payload is
// normalized in place: strings cleaned, rules trimmed, team size
// defaulted to {1,1} when no team is required.
func (ne *NewEvent) Validate() error {
	ne.InstituteID = core.CleanString(ne.InstituteID)
	ne.Title = core.CleanString(ne.Title)
	ne.Description = strings.TrimSpace(ne.Description)
	ne.Category = core.CleanString(ne.Category)
	ne.Thumbnail = core.CleanString(ne.Thumbnail)
	ne.Venue = core.CleanString(ne.Venue)
	ne.City = core.CleanString(ne.City)
	ne.State = core.CleanString(ne.State)
	ne.Country = core.CleanString(ne.Country)
	ne.PinCode = core.CleanString(ne.PinCode)

	// base field presence
	for _, fld := range []struct{ name, val string }{
		{"instituteID", ne.InstituteID},
		{"title", ne.Title},
		{"description", ne.Description},
		{"category", ne.Category},
		{"thumbnail", ne.Thumbnail},
		{"venue", ne.Venue},
		{"city", ne.City},
		{"state", ne.State},
		{"country", ne.Country},
		{"pinCode", ne.PinCode},
	} {
		if fld.val == "" {
			return core.NewFieldError(fld.name, "this field is required")
		}
	}
	for _, fld := range []struct {
		name string
		val  time.Time
	}{
		{"from", ne.From},
		{"to", ne.To},
		{"registrationStarts", ne.RegistrationStarts},
		{"registrationEnds", ne.RegistrationEnds},
	} {
		if fld.val.IsZero() {
			return core.NewFieldError(fld.name, "this field is required")
		}
	}

	// date ordering
	if err := validateDates(ne.From, ne.To, ne.RegistrationStarts, ne.RegistrationEnds); err != nil {
		return err
	}

	// registration mode
	mode, err := buildMode(ne.AllowDirectRegistration, ne.IsTicketed,
		ne.RegistrationFee, ne.TicketPrice, ne.TeamRequired, ne.TeamSize, ne.Rules)
	if err != nil {
		return err
	}
	ne.mode = mode
	ne.Rules = mode.Rules
	return nil
}

func validateDates(from, to, regStarts, regEnds time.Time) error {
	if to.Before(from) {
		return core.NewFieldError("to", "event end must not be before its start")
	}
	if regEnds.Before(regStarts) {
		return core.NewFieldError("registrationEnds", "registration window must not end before it starts")
	}
	if regEnds.After(from) {
		return core.NewFieldError("registrationEnds", "registration must close at or before the event starts")
	}
	return nil
}

func buildMode(direct, ticketed bool, fee, price FlexFloat, teamRequired bool, teamSize *TeamSize, rules []string) (RegistrationMode, error) {
	if direct && ticketed {
		return RegistrationMode{}, core.NewFieldError("isTicketed",
			"choose either direct registration or ticketing, not both")
	}

	switch {
	case direct:
		if !fee.Set || fee.Invalid || fee.Value < 0 {
			return RegistrationMode{}, core.NewFieldError("registrationFee",
				"a non-negative registration fee is required")
		}
		trimmed := make([]string, 0, len(rules))
		for _, r := range rules {
			if r = strings.TrimSpace(r); r != "" {
				trimmed = append(trimmed, r)
			}
		}
		if len(trimmed) == 0 {
			return RegistrationMode{}, core.NewFieldError("rules",
				"at least one non-empty rule is required for direct registration")
		}
		ts := TeamSize{Min: 1, Max: 1}
		if teamRequired {
			if teamSize == nil {
				return RegistrationMode{}, core.NewFieldError("teamSize", "invalid team size structure")
			}
			if err := validateTeamSize(*teamSize); err != nil {
				return RegistrationMode{}, err
			}
			ts = *teamSize
		}
		return RegistrationMode{
			Kind:         ModeDirect,
			Fee:          fee.Value,
			Rules:        trimmed,
			TeamRequired: teamRequired,
			TeamSize:     ts,
		}, nil

	case ticketed:
		if !price.Set || price.Invalid || price.Value < 0 {
			return RegistrationMode{}, core.NewFieldError("ticketPrice",
				"a non-negative ticket price is required")
		}
		return RegistrationMode{Kind: ModeTicketed, TicketPrice: price.Value, TeamSize: TeamSize{Min: 1, Max: 1}}, nil

	default:
		return RegistrationMode{Kind: ModeNone, TeamSize: TeamSize{Min: 1, Max: 1}}, nil
	}
}

func validateTeamSize(ts TeamSize) error {
	if ts.Min < 1 {
		return core.NewFieldError("teamSize.min", "minimum team size must be at least 1")
	}
	if ts.Max < ts.Min {
		return core.NewFieldError("teamSize.max", "maximum team size cannot be less than minimum")
	}
	return nil
}

// UpdateEvent defines what may be modified post-creation. Title,
// category, location and ownership are immutable; anything not on this
// allow-list is simply not bindable.
type UpdateEvent struct {
	Description        string     `json:"description"`
	Thumbnail          string     `json:"thumbnail"`
	From               *time.Time `json:"from"`
	To                 *time.Time `json:"to"`
	RegistrationStarts *time.Time `json:"registrationStarts"`
	RegistrationEnds   *time.Time `json:"registrationEnds"`
	RegistrationFee    FlexFloat  `json:"registrationFee"`
	TicketPrice        FlexFloat  `json:"ticketPrice"`
	TeamRequired       *bool      `json:"teamRequired"`
	TeamSize           *TeamSize  `json:"teamSize"`
	Rules              []string   `json:"rules"`
	Published          *bool      `json:"isPublished"`
}

// apply merges the patch into ev and re-validates the merged document's
// date and mode invariants.
func (ue *UpdateEvent) apply(ev Event) (Event, error) {
	if d := strings.TrimSpace(ue.Description); d != "" {
		ev.Description = d
	}
	if t := core.CleanString(ue.Thumbnail); t != "" {
		ev.ThumbnailURL = t
	}
	if ue.From != nil {
		ev.Duration[0] = *ue.From
	}
	if ue.To != nil {
		ev.Duration[1] = *ue.To
	}
	if ue.RegistrationStarts != nil {
		ev.RegistrationStarts = *ue.RegistrationStarts
	}
	if ue.RegistrationEnds != nil {
		ev.RegistrationEnds = *ue.RegistrationEnds
	}
	if err := validateDates(ev.Duration[0], ev.Duration[1], ev.RegistrationStarts, ev.RegistrationEnds); err != nil {
		return Event{}, err
	}

	switch ev.Mode.Kind {
	case ModeDirect:
		if ue.RegistrationFee.Invalid || (ue.RegistrationFee.Set && ue.RegistrationFee.Value < 0) {
			return Event{}, core.NewFieldError("registrationFee", "a non-negative registration fee is required")
		}
		if ue.RegistrationFee.Set {
			ev.Mode.Fee = ue.RegistrationFee.Value
		}
		if ue.Rules != nil {
			trimmed := make([]string, 0, len(ue.Rules))
			for _, r := range ue.Rules {
				if r = strings.TrimSpace(r); r != "" {
					trimmed = append(trimmed, r)
				}
			}
			if len(trimmed) == 0 {
				return Event{}, core.NewFieldError("rules", "at least one non-empty rule is required for direct registration")
			}
			ev.Mode.Rules = trimmed
		}
		if ue.TeamRequired != nil {
			ev.Mode.TeamRequired = *ue.TeamRequired
		}
		if ue.TeamSize != nil {
			ev.Mode.TeamSize = *ue.TeamSize
		}
		if ev.Mode.TeamRequired {
			if err := validateTeamSize(ev.Mode.TeamSize); err != nil {
				return Event{}, err
			}
		}
	case ModeTicketed:
		if ue.TicketPrice.Invalid || (ue.TicketPrice.Set && ue.TicketPrice.Value < 0) {
			return Event{}, core.NewFieldError("ticketPrice", "a non-negative ticket price is required")
		}
		if ue.TicketPrice.Set {
			ev.Mode.TicketPrice = ue.TicketPrice.Value
		}
	}

	if ue.Published != nil {
		ev.Published = *ue.Published
	}
	ev.UpdatedAt = time.Now().UTC()
	return ev, nil
}
