package event

import (
	"strings"
	"time"

	"github.com/revelohq/revelo/core"
)

type (
	SubEvent struct {
		ID              string    `json:"id" bson:"_id,omitempty"`
		EventID         string    `json:"eventId" bson:"eventId"`
		Title           string    `json:"title" bson:"title"`
		ScheduledAt     time.Time `json:"scheduledAt" bson:"scheduledAt"`
		Venue           string    `json:"venue" bson:"venue"`
		Price           float64   `json:"price" bson:"price"`
		TeamRequired    bool      `json:"teamRequired" bson:"teamRequired"`
		TeamSize        TeamSize  `json:"teamSize" bson:"teamSize"`
		Category        string    `json:"category" bson:"category"`
		BannerURL       string    `json:"banner" bson:"banner"`
		ContactDetails  string    `json:"contactDetails" bson:"contactDetails"`
		Rules           []string  `json:"rules" bson:"rules"`
		RegistrationIDs []string  `json:"registrations" bson:"registrations"`
		CreatedAt       time.Time `json:"created_at" bson:"createdAt"` // UTC
		UpdatedAt       time.Time `json:"updated_at" bson:"updatedAt"` // UTC
	}

	Flyer struct {
		ID          string    `json:"id" bson:"_id,omitempty"`
		EventID     string    `json:"eventId" bson:"eventId"`
		ImgURL      string    `json:"imgUrl" bson:"imgUrl"` // unique
		Description string    `json:"description" bson:"description"`
		Orientation string    `json:"orientation" bson:"orientation"`
		Width       int       `json:"width" bson:"width"`
		Height      int       `json:"height" bson:"height"`
		DisplayType string    `json:"displayType" bson:"displayType"`
		Tags        []string  `json:"tags" bson:"tags"`
		Categories  []string  `json:"categories" bson:"categories"`
		CreatedAt   time.Time `json:"created_at" bson:"createdAt"` // UTC
	}

	Video struct {
		ID           string    `json:"id" bson:"_id,omitempty"`
		EventID      string    `json:"eventId" bson:"eventId"`
		VideoURL     string    `json:"videoUrl" bson:"videoUrl"`
		ThumbnailURL string    `json:"thumbnailUrl" bson:"thumbnailUrl"`
		Description  string    `json:"description" bson:"description"`
		Tags         []string  `json:"tags" bson:"tags"`
		Categories   []string  `json:"categories" bson:"categories"`
		CreatedAt    time.Time `json:"created_at" bson:"createdAt"` // UTC
		UpdatedAt    time.Time `json:"updated_at" bson:"updatedAt"` // UTC
	}
)

// NewSubEvent contains information needed to create a sub-event under a
// parent event.
type NewSubEvent struct {
	EventID        string    `json:"eventId"`
	Title          string    `json:"title"`
	ScheduledAt    time.Time `json:"scheduledAt"`
	Venue          string    `json:"venue"`
	Price          FlexFloat `json:"price"`
	TeamRequired   bool      `json:"teamRequired"`
	TeamSize       *TeamSize `json:"teamSize"`
	Category       string    `json:"category"`
	Banner         string    `json:"banner"`
	ContactDetails string    `json:"contactDetails"`
	Rules          []string  `json:"rules"`
}

func (ns *NewSubEvent) Validate() error {
	ns.EventID = core.CleanString(ns.EventID)
	ns.Title = core.CleanString(ns.Title)
	ns.Venue = core.CleanString(ns.Venue)
	ns.Category = core.CleanString(ns.Category)
	ns.Banner = core.CleanString(ns.Banner)
	ns.ContactDetails = core.CleanString(ns.ContactDetails)

	for _, fld := range []struct{ name, val string }{
		{"eventId", ns.EventID},
		{"title", ns.Title},
		{"venue", ns.Venue},
		{"category", ns.Category},
		{"banner", ns.Banner},
		{"contactDetails", ns.ContactDetails},
	} {
		if fld.val == "" {
			return core.NewFieldError(fld.name, "this field is required")
		}
	}
	if ns.ScheduledAt.IsZero() {
		return core.NewFieldError("scheduledAt", "this field is required")
	}
	if ns.Price.Invalid || (ns.Price.Set && ns.Price.Value < 0) {
		return core.NewFieldError("price", "price must be a non-negative number")
	}

	trimmed := make([]string, 0, len(ns.Rules))
	for _, r := range ns.Rules {
		if r = strings.TrimSpace(r); r != "" {
			trimmed = append(trimmed, r)
		}
	}
	if len(trimmed) == 0 {
		return core.NewFieldError("rules", "at least one non-empty rule is required")
	}
	ns.Rules = trimmed

	if ns.TeamRequired {
		if ns.TeamSize == nil {
			return core.NewFieldError("teamSize", "invalid team size structure")
		}
		if err := validateTeamSize(*ns.TeamSize); err != nil {
			return err
		}
	}
	return nil
}

// UpdateSubEvent is the generic allow-listed patch; core identity
// fields (title, category, parent) stay immutable.
type UpdateSubEvent struct {
	ScheduledAt    *time.Time `json:"scheduledAt"`
	Venue          string     `json:"venue"`
	Price          FlexFloat  `json:"price"`
	TeamRequired   *bool      `json:"teamRequired"`
	TeamSize       *TeamSize  `json:"teamSize"`
	Banner         string     `json:"banner"`
	ContactDetails string     `json:"contactDetails"`
	Rules          []string   `json:"rules"`
}

func (us *UpdateSubEvent) apply(se SubEvent) (SubEvent, error) {
	if us.ScheduledAt != nil {
		se.ScheduledAt = *us.ScheduledAt
	}
	if v := core.CleanString(us.Venue); v != "" {
		se.Venue = v
	}
	if us.Price.Invalid || (us.Price.Set && us.Price.Value < 0) {
		return SubEvent{}, core.NewFieldError("price", "price must be a non-negative number")
	}
	if us.Price.Set {
		se.Price = us.Price.Value
	}
	if b := core.CleanString(us.Banner); b != "" {
		se.BannerURL = b
	}
	if c := core.CleanString(us.ContactDetails); c != "" {
		se.ContactDetails = c
	}
	if us.Rules != nil {
		trimmed := make([]string, 0, len(us.Rules))
		for _, r := range us.Rules {
			if r = strings.TrimSpace(r); r != "" {
				trimmed = append(trimmed, r)
			}
		}
		if len(trimmed) == 0 {
			return SubEvent{}, core.NewFieldError("rules", "at least one non-empty rule is required")
		}
		se.Rules = trimmed
	}
	if us.TeamRequired != nil {
		se.TeamRequired = *us.TeamRequired
	}
	if us.TeamSize != nil {
		se.TeamSize = *us.TeamSize
	}
	if se.TeamRequired {
		if err := validateTeamSize(se.TeamSize); err != nil {
			return SubEvent{}, err
		}
	}
	se.UpdatedAt = time.Now().UTC()
	return se, nil
}

// NewFlyer is the add-flyer payload. Orientation/displayType are
// derived client-side from pixel dimensions and stored as-is.
type NewFlyer struct {
	EventID     string   `json:"eventId"`
	FlyerURL    string   `json:"flyerUrl"`
	Description string   `json:"description"`
	Orientation string   `json:"orientation"`
	Width       *int     `json:"width"`
	Height      *int     `json:"height"`
	DisplayType string   `json:"displayType"`
	Tags        []string `json:"tags"`
	Categories  []string `json:"categories"`
}

func (nf *NewFlyer) Validate() error {
	nf.EventID = core.CleanString(nf.EventID)
	nf.FlyerURL = core.CleanString(nf.FlyerURL)
	nf.Description = strings.TrimSpace(nf.Description)
	nf.Orientation = core.CleanString(nf.Orientation, true)
	nf.DisplayType = core.CleanString(nf.DisplayType, true)

	for _, fld := range []struct{ name, val string }{
		{"eventId", nf.EventID},
		{"flyerUrl", nf.FlyerURL},
		{"description", nf.Description},
		{"orientation", nf.Orientation},
		{"displayType", nf.DisplayType},
	} {
		if fld.val == "" {
			return core.NewFieldError(fld.name, "this field is required")
		}
	}
	if nf.Width == nil || nf.Height == nil {
		return core.NewFieldError("width", "image dimensions are required")
	}
	nf.Tags = core.CleanStringSet(nf.Tags)
	nf.Categories = core.CleanStringSet(nf.Categories)
	return nil
}

// NewVideo is the add-video payload.
type NewVideo struct {
	EventID      string   `json:"eventId"`
	VideoURL     string   `json:"videoUrl"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	Categories   []string `json:"categories"`
}

func (nv *NewVideo) Validate() error {
	nv.EventID = core.CleanString(nv.EventID)
	nv.VideoURL = core.CleanString(nv.VideoURL)
	nv.ThumbnailURL = core.CleanString(nv.ThumbnailURL)
	nv.Description = strings.TrimSpace(nv.Description)

	for _, fld := range []struct{ name, val string }{
		{"eventId", nv.EventID},
		{"videoUrl", nv.VideoURL},
		{"thumbnailUrl", nv.ThumbnailURL},
		{"description", nv.Description},
	} {
		if fld.val == "" {
			return core.NewFieldError(fld.name, "this field is required")
		}
	}
	nv.Tags = core.CleanStringSet(nv.Tags)
	nv.Categories = core.CleanStringSet(nv.Categories)
	return nil
}
