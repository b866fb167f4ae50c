package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetflow/fleetflow/internal/clock"
	"github.com/fleetflow/fleetflow/internal/event/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Domain event types. New types need no change to the bus.
const (
	TripDispatched        = "trip.dispatched"
	TripCompleted         = "trip.completed"
	MaintenanceCreated    = "maintenance.created"
	FuelLogged            = "fuel.logged"
	DriverLicenseExpiring = "driver.license_expiring"
	ExpenseLogged         = "expense.logged"
)

// Payload carries the structured data of one domain event.
type Payload map[string]any

// HandlerFunc is a side-effecting subscriber. Its error is logged by the
// bus and never reaches the publisher.
type HandlerFunc func(ctx context.Context, p Payload) error

type handler struct {
	name string
	fn   HandlerFunc
}

type envelope struct {
	eventType   string
	payload     Payload
	triggeredBy string
}

// Bus is the in-process publish/subscribe dispatcher. Registration
// happens once during startup; after Start the handler table is read
// without locking. Publish hands the event to a background worker and
// returns: the triggering request never waits on handlers.
type Bus struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	handlers map[string][]handler
	queue    chan envelope
	done     chan struct{}
	stopped  chan struct{}
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

func New(p Params) *Bus {
	return &Bus{
		db:       p.DB,
		log:      p.Log.Named("event.bus"),
		genID:    p.GenID,
		clock:    p.Clock,
		handlers: make(map[string][]handler),
		queue:    make(chan envelope, 256),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Register appends a handler to the event type's ordered list.
// Invocation order is registration order. Must only be called before
// Start.
func (b *Bus) Register(eventType, name string, fn HandlerFunc) {
	b.handlers[eventType] = append(b.handlers[eventType], handler{name: name, fn: fn})
}

// Publish enqueues the event for the bus worker and returns. Nothing is
// reported back: persistence failures and handler failures are logged by
// the worker.
func (b *Bus) Publish(ctx context.Context, eventType string, payload Payload, triggeredBy string) {
	env := envelope{eventType: eventType, payload: payload, triggeredBy: triggeredBy}
	select {
	case b.queue <- env:
	case <-b.done:
		b.log.Warn("event dropped, bus stopped", zap.String("event_type", eventType))
	case <-ctx.Done():
		b.log.Warn("event dropped, publisher cancelled", zap.String("event_type", eventType))
	}
}

// Start launches the worker goroutine.
func (b *Bus) Start() {
	go b.run()
}

// Stop prevents new publishes from being accepted and waits for the
// worker to drain what was already queued.
func (b *Bus) Stop() {
	close(b.done)
	<-b.stopped
}

func (b *Bus) run() {
	defer close(b.stopped)
	for {
		select {
		case env := <-b.queue:
			b.dispatch(context.Background(), env)
		case <-b.done:
			for {
				select {
				case env := <-b.queue:
					b.dispatch(context.Background(), env)
				default:
					return
				}
			}
		}
	}
}

// dispatch persists the event row best effort, then runs every handler
// registered for the type in order. One handler failing never stops the
// rest.
func (b *Bus) dispatch(ctx context.Context, env envelope) {
	b.log.Info("dispatching event", zap.String("event_type", env.eventType))

	if err := b.persist(ctx, env); err != nil {
		b.log.Warn("failed to persist event",
			zap.String("event_type", env.eventType),
			zap.Error(err),
		)
	}

	for _, h := range b.handlers[env.eventType] {
		if err := b.invoke(ctx, h, env); err != nil {
			b.log.Error("event handler failed",
				zap.String("handler", h.name),
				zap.String("event_type", env.eventType),
				zap.Error(err),
			)
		}
	}
}

func (b *Bus) persist(ctx context.Context, env envelope) error {
	raw, err := json.Marshal(env.payload)
	if err != nil {
		return err
	}
	row := domain.DomainEvent{
		ID:        b.genID.Generate().String(),
		EventType: env.eventType,
		Payload:   raw,
		CreatedAt: b.clock.Now(),
	}
	if env.triggeredBy != "" {
		row.TriggeredBy = &env.triggeredBy
	}
	return b.db.WithContext(ctx).Create(&row).Error
}

func (b *Bus) invoke(ctx context.Context, h handler, env envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.fn(ctx, env.payload)
}
