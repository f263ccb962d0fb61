package order

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"go.uber.org/zap"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateReordering
	StateDeleting
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateReordering:
		return "reordering"
	case StateDeleting:
		return "deleting"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Source fetches and deletes the entities of one list view.
type Source[E Entity] interface {
	Fetch(ctx context.Context) ([]E, error)
	Delete(ctx context.Context, id int) error
}

// Syncer persists the full identifier order of a list.
type Syncer interface {
	Persist(ctx context.Context, ids []int) error
}

// AuthObserver is told about every failure that wraps
// domain.ErrUnauthorized.
type AuthObserver interface {
	HandleUnauthorized(err error)
}

// Gesture is the surface a drag-and-drop front end talks to.
type Gesture interface {
	OnMoveRequested(ctx context.Context, sourceID, targetID int) error
}

type ViewOptions struct {
	Name   string // used in log fields, e.g. "categories"
	Auth   AuthObserver
	Logger *zap.Logger
}

// View is the per-view state machine around a List. Reorders are
// optimistic, deletes are pessimistic.
type View[E Entity] struct {
	name   string
	source Source[E]
	syncer Syncer
	auth   AuthObserver
	log    *zap.Logger

	mu       sync.Mutex
	state    State
	list     *List[E]
	fetchErr *Error
	banner   *Error
	inflight int
	wg       sync.WaitGroup
}

// Snapshot is a consistent read of a View for rendering.
type Snapshot[E Entity] struct {
	State  State
	Items  []E
	Banner *Error
	Err    *Error
}

func NewView[E Entity](source Source[E], syncer Syncer, opts ViewOptions) *View[E] {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Name != "" {
		log = log.With(zap.String("view", opts.Name))
	}
	return &View[E]{
		name:   opts.Name,
		source: source,
		syncer: syncer,
		auth:   opts.Auth,
		log:    log,
		state:  StateIdle,
		list:   NewList[E](),
	}
}

// Load fetches the list and sorts it by position. A failed fetch moves the
// view to StateError and nothing is rendered.
func (v *View[E]) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.state == StateLoading || v.state == StateDeleting {
		v.mu.Unlock()
		return ErrNotReady
	}
	v.state = StateLoading
	v.banner = nil
	v.fetchErr = nil
	v.mu.Unlock()

	items, err := v.source.Fetch(ctx)

	v.mu.Lock()
	if err != nil {
		v.state = StateError
		v.list = NewList[E]()
		v.fetchErr = &Error{Kind: FetchError, Err: err}
		fetchErr := v.fetchErr
		v.mu.Unlock()

		v.log.Warn("fetch failed", zap.Error(err))
		v.notifyAuth(err)
		return fetchErr
	}
	v.list.Load(items)
	v.state = StateReady
	v.mu.Unlock()

	v.log.Debug("list loaded", zap.Int("count", len(items)))
	return nil
}

// OnMoveRequested implements Gesture.
func (v *View[E]) OnMoveRequested(ctx context.Context, sourceID, targetID int) error {
	_, err := v.Move(ctx, sourceID, targetID)
	return err
}

// Move reorders the local list right away and then dispatches a persist
// of the new id order without waiting for it. It reports whether the list
// changed. A failed persist leaves the new order in place and sets a
// banner.
//
// Overlapping persists are not serialized. Two quick moves send two
// independent requests, and the backend keeps whichever lands last, which
// may not match what is displayed.
func (v *View[E]) Move(ctx context.Context, sourceID, targetID int) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateReady {
		return false, ErrNotReady
	}
	v.banner = nil
	if sourceID == targetID || !v.list.Contains(sourceID) || !v.list.Contains(targetID) {
		return false, nil
	}

	v.list.Reorder(sourceID, targetID)
	v.log.Debug("moved",
		zap.Int("source", sourceID),
		zap.Int("target", targetID),
	)
	v.dispatchLocked(ctx, v.list.IDs())
	return true, nil
}

// Delete waits for the backend to confirm before touching the local list.
// On success the remaining ids are persisted so the backend order has no
// gaps. On failure the list is left as it was and a banner is set.
func (v *View[E]) Delete(ctx context.Context, id int) error {
	v.mu.Lock()
	if v.state != StateReady {
		v.mu.Unlock()
		return ErrNotReady
	}
	if !v.list.Contains(id) {
		v.mu.Unlock()
		return fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	v.state = StateDeleting
	v.banner = nil
	v.mu.Unlock()

	err := v.source.Delete(ctx, id)

	v.mu.Lock()
	v.state = StateReady
	if err != nil {
		v.banner = &Error{Kind: DeleteError, ID: id, Err: err}
		banner := v.banner
		v.mu.Unlock()

		v.log.Warn("delete failed", zap.Int("id", id), zap.Error(err))
		v.notifyAuth(err)
		return banner
	}
	v.list.Remove(id)
	v.dispatchLocked(ctx, v.list.IDs())
	v.mu.Unlock()

	v.log.Debug("deleted", zap.Int("id", id))
	return nil
}

// dispatchLocked starts a persist. Callers hold v.mu.
func (v *View[E]) dispatchLocked(ctx context.Context, ids []int) {
	v.inflight++
	v.wg.Add(1)
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer v.wg.Done()
		err := v.syncer.Persist(ctx, ids)

		v.mu.Lock()
		v.inflight--
		if err != nil {
			v.banner = &Error{Kind: PersistError, Err: err}
		}
		v.mu.Unlock()

		if err != nil {
			v.log.Warn("persist failed", zap.Ints("ids", ids), zap.Error(err))
			v.notifyAuth(err)
			return
		}
		v.log.Debug("order persisted", zap.Ints("ids", ids))
	}()
}

func (v *View[E]) notifyAuth(err error) {
	if v.auth != nil && errors.Is(err, domain.ErrUnauthorized) {
		v.auth.HandleUnauthorized(err)
	}
}

// Wait blocks until every dispatched persist has resolved.
func (v *View[E]) Wait() {
	v.wg.Wait()
}

func (v *View[E]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

func (v *View[E]) stateLocked() State {
	if v.state == StateReady && v.inflight > 0 {
		return StateReordering
	}
	return v.state
}

// Items returns the displayed sequence, or nil when the fetch failed.
func (v *View[E]) Items() []E {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == StateError {
		return nil
	}
	return v.list.Current()
}

// Banner returns the last non-blocking error, if any.
func (v *View[E]) Banner() *Error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.banner
}

func (v *View[E]) DismissBanner() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.banner = nil
}

// Err returns the blocking fetch error while the view is in StateError.
func (v *View[E]) Err() *Error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetchErr
}

func (v *View[E]) Snapshot() Snapshot[E] {
	v.mu.Lock()
	defer v.mu.Unlock()
	snap := Snapshot[E]{
		State:  v.stateLocked(),
		Banner: v.banner,
		Err:    v.fetchErr,
	}
	if v.state != StateError {
		snap.Items = v.list.Current()
	}
	return snap
}

func (v *View[E]) Name() string {
	return v.name
}
