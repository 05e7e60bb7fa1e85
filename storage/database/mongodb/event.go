package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/revelohq/revelo/core/event"
)

type eventRepository struct {
	events    *mongo.Collection
	subEvents *mongo.Collection
	flyers    *mongo.Collection
	videos    *mongo.Collection
}

var _ event.Repository = (*eventRepository)(nil)

func NewEventRepository(db *mongo.Database) *eventRepository {
	return &eventRepository{
		events:    db.Collection(eventsCollection),
		subEvents: db.Collection(subEventsCollection),
		flyers:    db.Collection(flyersCollection),
		videos:    db.Collection(videosCollection),
	}
}

// Events

func (repo *eventRepository) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	ev.ID = uuid.NewString()
	if _, err := repo.events.InsertOne(ctx, ev); err != nil {
		return event.Event{}, err
	}
	return ev, nil
}

func (repo *eventRepository) GetEventByID(ctx context.Context, id string) (event.Event, error) {
	var ev event.Event
	if err := repo.events.FindOne(ctx, bson.M{"_id": id}).Decode(&ev); err != nil {
		if err == mongo.ErrNoDocuments {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}
	return ev, nil
}

func (repo *eventRepository) QueryEventsByID(ctx context.Context, ids []string) ([]event.Event, error) {
	if len(ids) == 0 {
		return []event.Event{}, nil
	}
	cursor, err := repo.events.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var found []event.Event
	if err = cursor.All(ctx, &found); err != nil {
		return nil, err
	}

	// $in does not preserve order; dangling ids are simply absent
	byID := make(map[string]event.Event, len(found))
	for _, ev := range found {
		byID[ev.ID] = ev
	}
	events := make([]event.Event, 0, len(found))
	for _, id := range ids {
		if ev, ok := byID[id]; ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	res, err := repo.events.ReplaceOne(ctx, bson.M{"_id": ev.ID}, ev)
	if err != nil {
		return event.Event{}, err
	}
	if res.MatchedCount == 0 {
		return event.Event{}, event.ErrNotFound
	}
	return ev, nil
}

// Sub-events

func (repo *eventRepository) CreateSubEvent(ctx context.Context, se event.SubEvent) (event.SubEvent, error) {
	se.ID = uuid.NewString()
	if _, err := repo.subEvents.InsertOne(ctx, se); err != nil {
		return event.SubEvent{}, err
	}
	return se, nil
}

func (repo *eventRepository) GetSubEventByID(ctx context.Context, id string) (event.SubEvent, error) {
	var se event.SubEvent
	if err := repo.subEvents.FindOne(ctx, bson.M{"_id": id}).Decode(&se); err != nil {
		if err == mongo.ErrNoDocuments {
			return event.SubEvent{}, event.ErrSubEventNotFound
		}
		return event.SubEvent{}, err
	}
	return se, nil
}

func (repo *eventRepository) QuerySubEventsByID(ctx context.Context, ids []string) ([]event.SubEvent, error) {
	if len(ids) == 0 {
		return []event.SubEvent{}, nil
	}
	cursor, err := repo.subEvents.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var found []event.SubEvent
	if err = cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	byID := make(map[string]event.SubEvent, len(found))
	for _, se := range found {
		byID[se.ID] = se
	}
	subEvents := make([]event.SubEvent, 0, len(found))
	for _, id := range ids {
		if se, ok := byID[id]; ok {
			subEvents = append(subEvents, se)
		}
	}
	return subEvents, nil
}

func (repo *eventRepository) UpdateSubEvent(ctx context.Context, se event.SubEvent) (event.SubEvent, error) {
	res, err := repo.subEvents.ReplaceOne(ctx, bson.M{"_id": se.ID}, se)
	if err != nil {
		return event.SubEvent{}, err
	}
	if res.MatchedCount == 0 {
		return event.SubEvent{}, event.ErrSubEventNotFound
	}
	return se, nil
}

func (repo *eventRepository) DeleteSubEvent(ctx context.Context, id string) error {
	res, err := repo.subEvents.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return event.ErrSubEventNotFound
	}
	return nil
}

func (repo *eventRepository) AttachSubEvent(ctx context.Context, eventID, subEventID string) error {
	return repo.pushRef(ctx, eventID, "subEvents", subEventID)
}

func (repo *eventRepository) DetachSubEvent(ctx context.Context, eventID, subEventID string) error {
	res, err := repo.events.UpdateOne(ctx, bson.M{"_id": eventID}, bson.M{
		"$pull": bson.M{"subEvents": subEventID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return event.ErrNotFound
	}
	return nil
}

// Media

func (repo *eventRepository) CreateFlyer(ctx context.Context, f event.Flyer) (event.Flyer, error) {
	f.ID = uuid.NewString()
	if _, err := repo.flyers.InsertOne(ctx, f); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return event.Flyer{}, event.ErrFlyerExists
		}
		return event.Flyer{}, err
	}
	return f, nil
}

func (repo *eventRepository) QueryFlyersByID(ctx context.Context, ids []string) ([]event.Flyer, error) {
	if len(ids) == 0 {
		return []event.Flyer{}, nil
	}
	cursor, err := repo.flyers.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	flyers := make([]event.Flyer, 0, len(ids))
	if err = cursor.All(ctx, &flyers); err != nil {
		return nil, err
	}
	return flyers, nil
}

func (repo *eventRepository) AttachFlyer(ctx context.Context, eventID, flyerID string) error {
	return repo.pushRef(ctx, eventID, "flyers", flyerID)
}

func (repo *eventRepository) CreateVideo(ctx context.Context, v event.Video) (event.Video, error) {
	v.ID = uuid.NewString()
	if _, err := repo.videos.InsertOne(ctx, v); err != nil {
		return event.Video{}, err
	}
	return v, nil
}

func (repo *eventRepository) QueryVideosByID(ctx context.Context, ids []string) ([]event.Video, error) {
	if len(ids) == 0 {
		return []event.Video{}, nil
	}
	cursor, err := repo.videos.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	videos := make([]event.Video, 0, len(ids))
	if err = cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (repo *eventRepository) AttachVideo(ctx context.Context, eventID, videoID string) error {
	return repo.pushRef(ctx, eventID, "videos", videoID)
}

func (repo *eventRepository) pushRef(ctx context.Context, eventID, field, refID string) error {
	res, err := repo.events.UpdateOne(ctx, bson.M{"_id": eventID}, bson.M{
		"$push": bson.M{field: refID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return event.ErrNotFound
	}
	return nil
}
