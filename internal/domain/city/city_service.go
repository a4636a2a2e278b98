package city

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/worldwise-api/internal/types"
	"github.com/FACorreiaa/worldwise-api/pkg/observability"
)

// Service is the surface views use to read and mutate city state.
type Service interface {
	LoadAll(ctx context.Context)
	GetCity(ctx context.Context, id types.CityID)
	CreateCity(ctx context.Context, params types.CreateCityParams)
	DeleteCity(ctx context.Context, id types.CityID)
	Snapshot() State
	Subscribe(fn func(State)) (unsubscribe func())
}

var _ Service = (*Container)(nil)

// Option configures a Container.
type Option func(*Container)

// WithMetrics records every dispatch in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Container) {
		c.metrics = m
	}
}

// WithStaleReadGuard drops the result of a LoadAll or GetCity that was superseded by a
// newer call of the same kind before its response arrived. Without it the last response
// to arrive wins, even when it belongs to an older request.
func WithStaleReadGuard() Option {
	return func(c *Container) {
		c.discardStaleReads = true
	}
}

type subscriber struct {
	id uint64
	fn func(State)
}

// Container holds the city state of one mounted application.
// Operations never return errors: a failed request ends in a Rejected dispatch and the
// message is read from State.Error.
type Container struct {
	logger            *slog.Logger
	repo              Repository
	metrics           *observability.Metrics
	discardStaleReads bool

	// notifyMu serialises dispatches so subscribers observe states in order.
	notifyMu    sync.Mutex
	mu          sync.RWMutex
	state       State
	subscribers []subscriber
	nextSubID   uint64
	closed      bool

	mountOnce  sync.Once
	loadAllSeq atomic.Uint64
	getCitySeq atomic.Uint64
}

// NewContainer builds an unmounted Container over repo, starting from InitialState.
func NewContainer(repo Repository, logger *slog.Logger, opts ...Option) *Container {
	c := &Container{
		logger: logger,
		repo:   repo,
		state:  InitialState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount fires the initial LoadAll. Only the first call has any effect.
func (c *Container) Mount(ctx context.Context) {
	c.mountOnce.Do(func() {
		c.logger.InfoContext(ctx, "Mounting city container")
		c.LoadAll(ctx)
	})
}

// Close unmounts the container. Subscribers are dropped and responses still in flight
// are discarded when they arrive.
func (c *Container) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.subscribers = nil
	c.logger.Info("City container closed")
}

// Snapshot returns a copy of the current state.
func (c *Container) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// Subscribe registers fn to receive every new state. fn runs on the goroutine that
// performed the dispatch and must not call container operations synchronously.
func (c *Container) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSubID++
	id := c.nextSubID
	c.subscribers = append(c.subscribers, subscriber{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subscribers {
			if s.id == id {
				c.subscribers = append(c.subscribers[:i:i], c.subscribers[i+1:]...)
				return
			}
		}
	}
}

// LoadAll replaces the city list with the store's.
func (c *Container) LoadAll(ctx context.Context) {
	ctx, span := otel.Tracer("CityContainer").Start(ctx, "LoadAll")
	defer span.End()

	l := c.logger.With(slog.String("method", "LoadAll"))

	seq := c.loadAllSeq.Add(1)
	c.dispatch(ctx, Loading{}, nil, 0)

	cities, err := c.repo.GetAllCities(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load cities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Load cities failed")
		c.dispatch(ctx, Rejected{Message: ErrMsgLoadCities}, &c.loadAllSeq, seq)
		return
	}

	l.InfoContext(ctx, "Cities loaded", slog.Int("count", len(cities)))
	span.SetAttributes(attribute.Int("cities.count", len(cities)))
	span.SetStatus(codes.Ok, "Cities loaded")
	c.dispatch(ctx, CitiesLoaded{Cities: cities}, &c.loadAllSeq, seq)
}

// GetCity selects the city with the given id. Asking for the city that is already
// selected is a no-op: no request, no dispatch.
func (c *Container) GetCity(ctx context.Context, id types.CityID) {
	c.mu.RLock()
	current := c.state.CurrentCity
	alreadyLoaded := current != nil && current.ID == id
	c.mu.RUnlock()
	if alreadyLoaded {
		return
	}

	ctx, span := otel.Tracer("CityContainer").Start(ctx, "GetCity", trace.WithAttributes(
		attribute.String("city.id", id.String()),
	))
	defer span.End()

	l := c.logger.With(slog.String("method", "GetCity"), slog.String("city_id", id.String()))

	seq := c.getCitySeq.Add(1)
	c.dispatch(ctx, Loading{}, nil, 0)

	city, err := c.repo.GetCity(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Load city failed")
		c.dispatch(ctx, Rejected{Message: ErrMsgLoadCity}, &c.getCitySeq, seq)
		return
	}

	l.DebugContext(ctx, "City loaded")
	span.SetStatus(codes.Ok, "City loaded")
	c.dispatch(ctx, CurrentCityLoaded{City: *city}, &c.getCitySeq, seq)
}

// CreateCity stores a new city, appends it to the list and selects it.
func (c *Container) CreateCity(ctx context.Context, params types.CreateCityParams) {
	c.createCity(ctx, params)
}

// createCity reports whether this call ended in CityCreated. State.Error cannot tell,
// since it keeps the message of any earlier failure.
func (c *Container) createCity(ctx context.Context, params types.CreateCityParams) bool {
	ctx, span := otel.Tracer("CityContainer").Start(ctx, "CreateCity", trace.WithAttributes(
		attribute.String("city.name", params.CityName),
	))
	defer span.End()

	l := c.logger.With(slog.String("method", "CreateCity"), slog.String("city_name", params.CityName))

	c.dispatch(ctx, Loading{}, nil, 0)

	city, err := c.repo.CreateCity(ctx, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Create city failed")
		c.dispatch(ctx, Rejected{Message: ErrMsgCreateCity}, nil, 0)
		return false
	}

	l.InfoContext(ctx, "City created", slog.String("city_id", city.ID.String()))
	span.SetAttributes(attribute.String("city.id", city.ID.String()))
	span.SetStatus(codes.Ok, "City created")
	c.dispatch(ctx, CityCreated{City: *city}, nil, 0)
	return true
}

// DeleteCity removes the city from the store and from the local list, and clears the
// selection.
func (c *Container) DeleteCity(ctx context.Context, id types.CityID) {
	ctx, span := otel.Tracer("CityContainer").Start(ctx, "DeleteCity", trace.WithAttributes(
		attribute.String("city.id", id.String()),
	))
	defer span.End()

	l := c.logger.With(slog.String("method", "DeleteCity"), slog.String("city_id", id.String()))

	c.dispatch(ctx, Loading{}, nil, 0)

	if err := c.repo.DeleteCity(ctx, id); err != nil {
		l.ErrorContext(ctx, "Failed to delete city", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Delete city failed")
		c.dispatch(ctx, Rejected{Message: ErrMsgDeleteCity}, nil, 0)
		return
	}

	l.InfoContext(ctx, "City deleted")
	span.SetStatus(codes.Ok, "City deleted")
	c.dispatch(ctx, CityDeleted{ID: id}, nil, 0)
}

// dispatch applies action and notifies subscribers. When seqCounter is set and the stale
// read guard is on, the action is dropped unless seq is still the latest issued token.
func (c *Container) dispatch(ctx context.Context, action Action, seqCounter *atomic.Uint64, seq uint64) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "Dropping dispatch on closed container",
			slog.String("action", action.actionType()))
		return
	}
	if c.discardStaleReads && seqCounter != nil && seqCounter.Load() != seq {
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "Dropping stale response",
			slog.String("action", action.actionType()),
			slog.Uint64("seq", seq))
		return
	}

	c.state = Reduce(c.state, action)
	snapshot := c.state.clone()
	subs := make([]subscriber, len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	c.metrics.ObserveDispatch(action.actionType(), snapshot.IsLoading)

	for _, s := range subs {
		s.fn(snapshot.clone())
	}
}
