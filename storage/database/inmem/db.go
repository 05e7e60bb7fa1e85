package inmemdb

import (
	"sync"

	"github.com/revelohq/revelo/core/event"
	"github.com/revelohq/revelo/core/institute"
	"github.com/revelohq/revelo/core/payment"
	"github.com/revelohq/revelo/core/user"
)

type (
	// DB is a map-backed store for tests and local hacking. It mirrors
	// the document layout of the mongo repositories: one table per
	// collection, refs held as id slices on the owning document.
	DB struct {
		institute *instituteTable
		event     *eventTable
		user      *userTable
		payment   *paymentTable
	}

	instituteTable struct {
		sync.RWMutex
		table map[string]*institute.Institute
	}

	eventTable struct {
		sync.RWMutex
		events    map[string]*event.Event
		subEvents map[string]*event.SubEvent
		flyers    map[string]*event.Flyer
		videos    map[string]*event.Video
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	paymentTable struct {
		sync.RWMutex
		table map[string]*payment.Payment
	}
)

func Open() (*DB, error) {
	db := &DB{
		institute: &instituteTable{table: make(map[string]*institute.Institute)},
		event: &eventTable{
			events:    make(map[string]*event.Event),
			subEvents: make(map[string]*event.SubEvent),
			flyers:    make(map[string]*event.Flyer),
			videos:    make(map[string]*event.Video),
		},
		user:    &userTable{table: make(map[string]*user.User)},
		payment: &paymentTable{table: make(map[string]*payment.Payment)},
	}
	return db, nil
}
