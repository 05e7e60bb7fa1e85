package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/revelohq/revelo/core/event"
)

type eventRepository struct {
	db *eventTable
}

var _ event.Repository = (*eventRepository)(nil)

func NewEventRepository(db *DB) *eventRepository {
	return &eventRepository{db: db.event}
}

// Events

func (repo *eventRepository) CreateEvent(_ context.Context, ev event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ev.ID = uuid.NewString()
	repo.db.events[ev.ID] = &ev
	return ev, nil
}

func (repo *eventRepository) GetEventByID(_ context.Context, id string) (event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ev, ok := repo.db.events[id]; ok {
		return *ev, nil
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) QueryEventsByID(_ context.Context, ids []string) ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	events := make([]event.Event, 0, len(ids))
	for _, id := range ids {
		if ev, ok := repo.db.events[id]; ok {
			events = append(events, *ev)
		}
	}
	return events, nil
}

func (repo *eventRepository) UpdateEvent(_ context.Context, ev event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.events[ev.ID]; !ok {
		return event.Event{}, event.ErrNotFound
	}
	repo.db.events[ev.ID] = &ev
	return ev, nil
}

// Sub-events

func (repo *eventRepository) CreateSubEvent(_ context.Context, se event.SubEvent) (event.SubEvent, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	se.ID = uuid.NewString()
	repo.db.subEvents[se.ID] = &se
	return se, nil
}

func (repo *eventRepository) GetSubEventByID(_ context.Context, id string) (event.SubEvent, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if se, ok := repo.db.subEvents[id]; ok {
		return *se, nil
	}
	return event.SubEvent{}, event.ErrSubEventNotFound
}

func (repo *eventRepository) QuerySubEventsByID(_ context.Context, ids []string) ([]event.SubEvent, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subEvents := make([]event.SubEvent, 0, len(ids))
	for _, id := range ids {
		if se, ok := repo.db.subEvents[id]; ok {
			subEvents = append(subEvents, *se)
		}
	}
	return subEvents, nil
}

func (repo *eventRepository) UpdateSubEvent(_ context.Context, se event.SubEvent) (event.SubEvent, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.subEvents[se.ID]; !ok {
		return event.SubEvent{}, event.ErrSubEventNotFound
	}
	repo.db.subEvents[se.ID] = &se
	return se, nil
}

func (repo *eventRepository) DeleteSubEvent(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.subEvents[id]; !ok {
		return event.ErrSubEventNotFound
	}
	delete(repo.db.subEvents, id)
	return nil
}

func (repo *eventRepository) AttachSubEvent(_ context.Context, eventID, subEventID string) error {
	return repo.pushRef(eventID, func(ev *event.Event) {
		ev.SubEventIDs = append(ev.SubEventIDs, subEventID)
	})
}

func (repo *eventRepository) DetachSubEvent(_ context.Context, eventID, subEventID string) error {
	return repo.pushRef(eventID, func(ev *event.Event) {
		kept := ev.SubEventIDs[:0]
		for _, id := range ev.SubEventIDs {
			if id != subEventID {
				kept = append(kept, id)
			}
		}
		ev.SubEventIDs = kept
	})
}

// Media

func (repo *eventRepository) CreateFlyer(_ context.Context, f event.Flyer) (event.Flyer, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.flyers {
		if existing.ImgURL == f.ImgURL {
			return event.Flyer{}, event.ErrFlyerExists
		}
	}
	f.ID = uuid.NewString()
	repo.db.flyers[f.ID] = &f
	return f, nil
}

func (repo *eventRepository) QueryFlyersByID(_ context.Context, ids []string) ([]event.Flyer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	flyers := make([]event.Flyer, 0, len(ids))
	for _, id := range ids {
		if f, ok := repo.db.flyers[id]; ok {
			flyers = append(flyers, *f)
		}
	}
	return flyers, nil
}

func (repo *eventRepository) AttachFlyer(_ context.Context, eventID, flyerID string) error {
	return repo.pushRef(eventID, func(ev *event.Event) {
		ev.FlyerIDs = append(ev.FlyerIDs, flyerID)
	})
}

func (repo *eventRepository) CreateVideo(_ context.Context, v event.Video) (event.Video, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	v.ID = uuid.NewString()
	repo.db.videos[v.ID] = &v
	return v, nil
}

func (repo *eventRepository) QueryVideosByID(_ context.Context, ids []string) ([]event.Video, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	videos := make([]event.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := repo.db.videos[id]; ok {
			videos = append(videos, *v)
		}
	}
	return videos, nil
}

func (repo *eventRepository) AttachVideo(_ context.Context, eventID, videoID string) error {
	return repo.pushRef(eventID, func(ev *event.Event) {
		ev.VideoIDs = append(ev.VideoIDs, videoID)
	})
}

func (repo *eventRepository) pushRef(eventID string, mutate func(*event.Event)) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	ev, ok := repo.db.events[eventID]
	if !ok {
		return event.ErrNotFound
	}
	mutate(ev)
	ev.UpdatedAt = time.Now().UTC()
	return nil
}
