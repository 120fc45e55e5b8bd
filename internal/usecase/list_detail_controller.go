package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"flightdesk-service/internal/domain/entity"
	"flightdesk-service/internal/domain/repository"
	"flightdesk-service/pkg/logger"
	"flightdesk-service/pkg/metrics"

	"github.com/google/uuid"
)

// State is the life cycle state of a ListDetailController
type State string

const (
	StateIdle             State = "IDLE"
	StateLoading          State = "LOADING"
	StateLoaded           State = "LOADED"
	StateFiltering        State = "FILTERING"
	StateConfirmingDelete State = "CONFIRMING_DELETE"
	StateDeleting         State = "DELETING"
	StateCreating         State = "CREATING"
	StateError            State = "ERROR"
)

// ErrControllerStopped is returned by operations issued after Run returned
var ErrControllerStopped = errors.New("controller stopped")

// Snapshot is a consistent copy of the controller state
type Snapshot struct {
	State         State
	Collection    entity.Collection
	FilteredView  entity.Collection
	Predicate     entity.FilterPredicate
	ViewStale     bool
	Draft         entity.FormDraft
	PendingDelete []entity.KeyField
	LastFault     *entity.Fault
}

type action func(ctx context.Context)

// ListDetailController manages a filterable, mutable list backed by a
// remote collection. All state is owned by the goroutine running Run;
// operations are queued to it and gateway calls report back through it.
type ListDetailController struct {
	view     entity.ViewDefinition
	gateway  repository.CollectionGateway
	listener Listener
	logger   logger.Logger
	metrics  *metrics.Metrics

	actions chan action
	done    chan struct{}

	// owned by the Run goroutine
	state          State
	collection     entity.Collection
	loaded         bool
	predicate      entity.FilterPredicate
	filtered       entity.Collection
	filteredIdx    []int
	viewStale      bool
	draft          entity.FormDraft
	pendingDelete  []entity.KeyField
	loadsInFlight  int
	deleteInFlight bool
	createInFlight bool
	lastFault      *entity.Fault
}

// NewListDetailController creates a controller for view. metrics may be nil.
func NewListDetailController(
	view entity.ViewDefinition,
	gateway repository.CollectionGateway,
	listener Listener,
	log logger.Logger,
	m *metrics.Metrics,
) *ListDetailController {
	if listener == nil {
		listener = ListenerFuncs{}
	}
	return &ListDetailController{
		view:     view,
		gateway:  gateway,
		listener: listener,
		logger:   log.With("controllerId", uuid.NewString(), "view", view.Name),
		metrics:  m,
		actions:  make(chan action, 64),
		done:     make(chan struct{}),
		state:    StateIdle,
		draft:    entity.FormDraft{},
	}
}

// Run processes queued operations until ctx is cancelled
func (c *ListDetailController) Run(ctx context.Context) error {
	defer close(c.done)
	c.logger.Debug("Controller started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Controller stopped")
			return ctx.Err()
		case fn := <-c.actions:
			fn(ctx)
		}
	}
}

func (c *ListDetailController) dispatch(fn action) error {
	select {
	case <-c.done:
		return ErrControllerStopped
	default:
	}

	select {
	case c.actions <- fn:
		return nil
	case <-c.done:
		return ErrControllerStopped
	}
}

// Load requests the full collection from the gateway
func (c *ListDetailController) Load() error {
	return c.dispatch(c.load)
}

// ApplyFilter recomputes the filtered view from the current collection
func (c *ListDetailController) ApplyFilter(p entity.FilterPredicate) error {
	return c.dispatch(func(context.Context) { c.applyFilter(p) })
}

// RequestDelete asks for confirmation to delete record
func (c *ListDetailController) RequestDelete(record entity.Record) error {
	return c.dispatch(func(context.Context) { c.requestDelete(record) })
}

// ConfirmDelete deletes the record awaiting confirmation
func (c *ListDetailController) ConfirmDelete(record entity.Record) error {
	return c.dispatch(func(ctx context.Context) { c.confirmDelete(ctx, record) })
}

// CancelDelete drops a pending delete request
func (c *ListDetailController) CancelDelete() error {
	return c.dispatch(func(context.Context) {
		if c.pendingDelete != nil {
			c.logger.Debug("Delete cancelled", "key", c.pendingDelete)
		}
		c.pendingDelete = nil
		c.settle()
	})
}

// SetDraftField updates one field of the create form
func (c *ListDetailController) SetDraftField(name, value string) error {
	return c.dispatch(func(context.Context) { c.draft[name] = value })
}

// SubmitCreate validates draft and creates a record from it
func (c *ListDetailController) SubmitCreate(draft entity.FormDraft) error {
	return c.dispatch(func(ctx context.Context) { c.submitCreate(ctx, draft) })
}

// SubmitDraft submits the controller-held draft
func (c *ListDetailController) SubmitDraft() error {
	return c.dispatch(func(ctx context.Context) { c.submitCreate(ctx, c.draft) })
}

// RequestCreateView asks the caller to open the create form
func (c *ListDetailController) RequestCreateView() error {
	return c.dispatch(func(context.Context) {
		c.navigate(c.view.CreateDestination, nil)
	})
}

// ReturnToList asks the caller to route back to the list
func (c *ListDetailController) ReturnToList() error {
	return c.dispatch(func(context.Context) {
		c.navigate(c.view.ListDestination, nil)
	})
}

// SelectRecord asks the caller to open the detail of the record at index
// in the filtered view. The navigation carries the record's position in
// the collection.
func (c *ListDetailController) SelectRecord(index int) error {
	return c.dispatch(func(context.Context) {
		if index < 0 || index >= len(c.filtered) {
			c.fail(entity.NewFault(entity.ValidationFault, "select",
				fmt.Errorf("index %d outside filtered view of %d records: %w", index, len(c.filtered), entity.ErrInvalidKey)))
			return
		}
		c.navigate(c.view.DetailDestination, map[string]string{
			"index": strconv.Itoa(c.filteredIdx[index]),
		})
	})
}

// Snapshot returns a copy of the current state
func (c *ListDetailController) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := c.dispatch(func(context.Context) { reply <- c.snapshot() }); err != nil {
		return Snapshot{}, err
	}

	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-c.done:
		return Snapshot{}, ErrControllerStopped
	}
}

// Detail returns the collection record at index
func (c *ListDetailController) Detail(ctx context.Context, index int) (entity.Record, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return entity.Record{}, err
	}
	if index < 0 || index >= len(s.Collection) {
		return entity.Record{}, entity.NewFault(entity.ValidationFault, "detail",
			fmt.Errorf("index %d outside collection of %d records: %w", index, len(s.Collection), entity.ErrInvalidKey))
	}
	return s.Collection[index], nil
}

func (c *ListDetailController) snapshot() Snapshot {
	s := Snapshot{
		State:        c.state,
		Collection:   c.collection.Clone(),
		FilteredView: c.filtered.Clone(),
		Predicate:    append(entity.FilterPredicate(nil), c.predicate...),
		ViewStale:    c.viewStale,
		Draft:        c.draft.Clone(),
		LastFault:    c.lastFault,
	}
	if c.pendingDelete != nil {
		s.PendingDelete = append([]entity.KeyField(nil), c.pendingDelete...)
	}
	return s
}

func (c *ListDetailController) load(ctx context.Context) {
	c.loadsInFlight++
	c.transition(StateLoading)

	go func() {
		start := time.Now()
		col, err := c.gateway.FetchAll(ctx)
		c.metrics.ObserveCall(c.view.Name, "fetchAll", start)
		// Completions apply in arrival order; the last one to arrive wins.
		c.dispatch(func(context.Context) { c.loadSettled(col, err) })
	}()
}

func (c *ListDetailController) loadSettled(col entity.Collection, err error) {
	c.loadsInFlight--
	c.metrics.LoadSettled(c.view.Name, err == nil)
	if err != nil {
		c.fail(entity.ClassifyFault("load", err))
		return
	}

	c.collection = col.Clone()
	if c.collection == nil {
		c.collection = entity.Collection{}
	}
	c.loaded = true
	c.viewStale = false
	c.predicate = nil
	c.filtered, c.filteredIdx = applyFilterIndexed(c.collection, nil)
	c.logger.Info("Collection loaded", "count", len(c.collection))

	c.listener.CollectionChanged(c.collection.Clone())
	c.listener.FilteredViewChanged(c.filtered.Clone())
	c.settle()
}

func (c *ListDetailController) applyFilter(p entity.FilterPredicate) {
	if len(c.collection) == 0 {
		c.logger.Debug("Filter ignored on empty collection")
		return
	}

	c.transition(StateFiltering)
	c.predicate = append(entity.FilterPredicate(nil), p...)
	c.filtered, c.filteredIdx = applyFilterIndexed(c.collection, c.predicate)
	c.logger.Debug("Filter applied", "conditions", len(c.predicate), "matches", len(c.filtered))

	c.listener.FilteredViewChanged(c.filtered.Clone())
	c.settle()
}

func (c *ListDetailController) requestDelete(record entity.Record) {
	key, err := c.view.BuildKey(record)
	if err != nil {
		c.fail(entity.NewFault(entity.ValidationFault, "delete", err))
		return
	}

	c.pendingDelete = key
	c.logger.Debug("Delete awaiting confirmation", "key", key)
	c.settle()
}

func (c *ListDetailController) confirmDelete(ctx context.Context, record entity.Record) {
	if c.deleteInFlight {
		c.logger.Warn("Delete already in flight, ignoring confirmation")
		c.metrics.Rejected(c.view.Name, "delete")
		// the rejected confirmation consumes its request
		if key, err := c.view.BuildKey(record); err == nil && sameKey(c.pendingDelete, key) {
			c.pendingDelete = nil
			c.settle()
		}
		return
	}

	key, err := c.view.BuildKey(record)
	if err != nil {
		c.fail(entity.NewFault(entity.ValidationFault, "delete", err))
		return
	}
	if c.pendingDelete == nil || !sameKey(c.pendingDelete, key) {
		c.fail(entity.NewFault(entity.ValidationFault, "delete",
			fmt.Errorf("no delete awaiting confirmation for %v: %w", key, entity.ErrInvalidKey)))
		return
	}

	c.pendingDelete = nil
	c.deleteInFlight = true
	c.transition(StateDeleting)

	go func() {
		start := time.Now()
		err := c.gateway.DeleteByKey(ctx, key)
		c.metrics.ObserveCall(c.view.Name, "deleteByKey", start)
		c.dispatch(func(ctx context.Context) { c.deleteSettled(ctx, key, err) })
	}()
}

func (c *ListDetailController) deleteSettled(ctx context.Context, key []entity.KeyField, err error) {
	c.deleteInFlight = false
	if err != nil {
		c.fail(entity.ClassifyFault("delete", err))
		return
	}

	c.logger.Info("Record deleted", "key", key)
	if sameKey(c.pendingDelete, key) {
		c.pendingDelete = nil
	}
	c.viewStale = true
	c.load(ctx)
}

func (c *ListDetailController) submitCreate(ctx context.Context, draft entity.FormDraft) {
	if c.createInFlight {
		c.logger.Warn("Create already in flight, ignoring submission")
		c.metrics.Rejected(c.view.Name, "create")
		return
	}

	c.draft = draft.Clone()
	record, err := BuildCreateRecord(c.view, c.draft)
	if err != nil {
		c.fail(entity.NewFault(entity.ValidationFault, "create", err))
		return
	}

	c.createInFlight = true
	c.transition(StateCreating)

	go func() {
		start := time.Now()
		err := c.gateway.Create(ctx, record)
		c.metrics.ObserveCall(c.view.Name, "create", start)
		c.dispatch(func(context.Context) { c.createSettled(record, err) })
	}()
}

func (c *ListDetailController) createSettled(record entity.Record, err error) {
	c.createInFlight = false
	if err != nil {
		c.fail(entity.ClassifyFault("create", err))
		return
	}

	c.logger.Info("Record created", "record", record.String())
	c.draft = entity.FormDraft{}
	c.viewStale = true
	c.listener.FormCleared()
	c.navigate(c.view.ListDestination, nil)
	c.settle()
}

func (c *ListDetailController) navigate(destination string, params map[string]string) {
	c.logger.Debug("Navigation requested", "destination", destination, "params", params)
	c.listener.NavigationRequested(entity.Navigation{Destination: destination, Params: params})
}

// fail reports f and returns to a stable state
func (c *ListDetailController) fail(f *entity.Fault) {
	c.lastFault = f
	c.transition(StateError)
	c.logger.Error("Operation failed", "operation", f.Op, "kind", f.Kind, "error", f.Err)
	c.metrics.Fault(c.view.Name, string(f.Kind), f.Op)
	c.listener.FaultOccurred(f)
	c.settle()
}

// settle moves to the resting state implied by outstanding work
func (c *ListDetailController) settle() {
	switch {
	case c.loadsInFlight > 0:
		c.transition(StateLoading)
	case c.deleteInFlight:
		c.transition(StateDeleting)
	case c.createInFlight:
		c.transition(StateCreating)
	case c.pendingDelete != nil:
		c.transition(StateConfirmingDelete)
	case c.loaded:
		c.transition(StateLoaded)
	default:
		c.transition(StateIdle)
	}
}

func (c *ListDetailController) transition(to State) {
	if c.state == to {
		return
	}
	c.logger.Debug("State transition", "from", c.state, "to", to)
	c.state = to
}
