// Package syncstore implements the optimistic-update and realtime-
// reconciliation pattern shared by every scoped list screen: an in-memory
// ordered collection mirroring one remote table scope, local mutations applied
// immediately, server truth reconciled on acknowledgment or on any realtime
// notification for the scope.
package syncstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Placement controls where optimistic inserts land in the collection.
type Placement int

const (
	// PlaceHead prepends new rows (newest-first lists).
	PlaceHead Placement = iota
	// PlaceTail appends new rows (chat-style oldest-first lists).
	PlaceTail
)

const (
	opStoreNew = "syncstore.new"
	opBind     = "syncstore.bind"
	opLoad     = "syncstore.load"
	opCreate   = "syncstore.create"
	opUpdate   = "syncstore.update"
	opDelete   = "syncstore.delete"
)

var (
	// ErrNotBound indicates a mutation before Bind established a scope.
	ErrNotBound = errors.New("syncstore: store is not bound to a scope")
	// ErrRowNotFound indicates the target row is not in the local collection.
	ErrRowNotFound = errors.New("syncstore: row not found")

	errMissingRemote = errors.New("all remote functions are required")
	errMissingRowID  = errors.New("row id extractor is required")
	noOpLogger       = zap.NewNop()
)

// StoreError carries an operation-scoped failure code alongside its cause.
type StoreError struct {
	code string
	err  error
}

func (e *StoreError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *StoreError) Unwrap() error {
	return e.err
}

func (e *StoreError) Code() string {
	return e.code
}

func newStoreError(operation, reason string, cause error) error {
	return &StoreError{code: fmt.Sprintf("%s.%s", operation, reason), err: cause}
}

// IDProvider issues tokens for pending rows.
type IDProvider interface {
	NewID() (string, error)
}

// Remote binds the store to its backing table scope. Load must return rows in
// display order; Create and Update must return the authoritative server row.
// Subscribe must deliver one notification per remote change to the scope until
// the context ends.
type Remote[T any] struct {
	Load      func(ctx context.Context, scope string) ([]T, error)
	Create    func(ctx context.Context, scope string, draft T) (T, error)
	Update    func(ctx context.Context, id string, row T) (T, error)
	Delete    func(ctx context.Context, id string) error
	Subscribe func(ctx context.Context, scope string) (<-chan struct{}, func(), error)
}

// Config describes a Store's dependencies.
type Config[T any] struct {
	Remote     Remote[T]
	RowID      func(T) string
	Placement  Placement
	IDProvider IDProvider
	Logger     *zap.Logger
	// OnError is the user-facing error surface: it runs for every remote
	// failure, after the optimistic state has been repaired.
	OnError func(operation string, err error)
}

// Store is one optimistic sync controller instance. The collection never holds
// two rows for the same logical entity: a pending row is replaced, never
// duplicated, once its confirmed counterpart arrives, and every reload swaps
// in server truth wholesale.
type Store[T any] struct {
	remote    Remote[T]
	rowID     func(T) string
	placement Placement
	ids       IDProvider
	logger    *zap.Logger
	onError   func(string, error)

	mu          sync.Mutex
	scope       string
	bound       bool
	entries     []Entry[T]
	cancelWatch context.CancelFunc
	unsubscribe func()
	loadSeq     int64
	appliedSeq  int64
}

// NewStore constructs a Store.
func NewStore[T any](cfg Config[T]) (*Store[T], error) {
	remote := cfg.Remote
	if remote.Load == nil || remote.Create == nil || remote.Update == nil ||
		remote.Delete == nil || remote.Subscribe == nil {
		return nil, newStoreError(opStoreNew, "missing_remote", errMissingRemote)
	}
	if cfg.RowID == nil {
		return nil, newStoreError(opStoreNew, "missing_row_id", errMissingRowID)
	}
	ids := cfg.IDProvider
	if ids == nil {
		ids = defaultIDProvider{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Store[T]{
		remote:    remote,
		rowID:     cfg.RowID,
		placement: cfg.Placement,
		ids:       ids,
		logger:    logger,
		onError:   cfg.OnError,
	}, nil
}

// Bind points the store at a parent scope: it opens the scope's realtime
// channel, then loads the collection. Rebinding to a different scope closes
// the previous channel first; exactly one channel is open per store.
func (s *Store[T]) Bind(ctx context.Context, scope string) error {
	if scope == "" {
		return newStoreError(opBind, "missing_scope", errors.New("scope is required"))
	}

	s.mu.Lock()
	if s.bound && s.scope == scope {
		s.mu.Unlock()
		return nil
	}
	s.teardownLocked()
	s.scope = scope
	s.bound = true
	s.entries = nil
	s.mu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	stream, unsubscribe, err := s.remote.Subscribe(watchCtx, scope)
	if err != nil {
		cancel()
		s.mu.Lock()
		s.bound = false
		s.mu.Unlock()
		return newStoreError(opBind, "subscribe_failed", err)
	}

	s.mu.Lock()
	s.cancelWatch = cancel
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	go s.watch(watchCtx, scope, stream)

	if err := s.reload(ctx, scope); err != nil {
		return newStoreError(opBind, "initial_load_failed", err)
	}
	return nil
}

// Close tears down the subscription. The collection is left in place.
func (s *Store[T]) Close() {
	s.mu.Lock()
	s.teardownLocked()
	s.bound = false
	s.mu.Unlock()
}

// Rows returns a snapshot of the visible rows in display order, pending rows
// included.
func (s *Store[T]) Rows() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]T, len(s.entries))
	for i, entry := range s.entries {
		rows[i] = entry.Row
	}
	return rows
}

// Entries returns a snapshot of the collection with identity state.
func (s *Store[T]) Entries() []Entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry[T](nil), s.entries...)
}

// Create inserts an optimistic pending row immediately, then sends the create.
// On acknowledgment the pending row is replaced in place by the server row; on
// failure it is removed and the error surfaced. The collection never shows the
// same entity twice, even when a reload races the acknowledgment.
func (s *Store[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T

	s.mu.Lock()
	if !s.bound {
		s.mu.Unlock()
		return zero, ErrNotBound
	}
	scope := s.scope
	token, err := s.ids.NewID()
	if err != nil {
		s.mu.Unlock()
		return zero, newStoreError(opCreate, "token_failed", err)
	}
	s.insertLocked(Entry[T]{Identity: PendingIdentity(token), Row: draft})
	s.mu.Unlock()

	row, err := s.remote.Create(ctx, scope, draft)
	if err != nil {
		s.mu.Lock()
		s.removePendingLocked(token)
		s.mu.Unlock()
		s.surface(opCreate, err)
		return zero, newStoreError(opCreate, "remote_create_failed", err)
	}

	id := s.rowID(row)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scope != scope {
		// The store rebound while the create was in flight. The row was
		// persisted under the old scope; it has no place in the current
		// collection, and Bind already dropped the pending entry.
		return row, nil
	}
	if idx := s.indexOfConfirmedLocked(id); idx >= 0 {
		// A reload delivered the confirmed row first; drop the leftover
		// pending row instead of inserting a duplicate.
		s.removePendingLocked(token)
		s.entries[idx].Row = row
		return row, nil
	}
	if idx := s.indexOfPendingLocked(token); idx >= 0 {
		s.entries[idx] = Entry[T]{Identity: ConfirmedIdentity(id), Row: row}
	} else {
		// A reload that ran before the server committed dropped the pending
		// row; reinstate the confirmed row until the next notification.
		s.insertLocked(Entry[T]{Identity: ConfirmedIdentity(id), Row: row})
	}
	return row, nil
}

// Update merges the mutation into the local row immediately, then sends the
// update. On failure the pre-mutation snapshot is restored before the error is
// surfaced.
func (s *Store[T]) Update(ctx context.Context, id string, mutate func(T) T) (T, error) {
	var zero T

	s.mu.Lock()
	idx := s.indexOfConfirmedLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return zero, ErrRowNotFound
	}
	snapshot := s.entries[idx].Row
	merged := mutate(snapshot)
	s.entries[idx].Row = merged
	s.mu.Unlock()

	row, err := s.remote.Update(ctx, id, merged)
	if err != nil {
		s.mu.Lock()
		if idx := s.indexOfConfirmedLocked(id); idx >= 0 {
			s.entries[idx].Row = snapshot
		}
		s.mu.Unlock()
		s.surface(opUpdate, err)
		return zero, newStoreError(opUpdate, "remote_update_failed", err)
	}

	s.mu.Lock()
	if idx := s.indexOfConfirmedLocked(id); idx >= 0 {
		s.entries[idx].Row = row
	}
	s.mu.Unlock()
	return row, nil
}

// Delete removes the row immediately, then sends the delete. On failure the
// row is restored at its original position before the error is surfaced.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOfConfirmedLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrRowNotFound
	}
	snapshot := s.entries[idx]
	scope := s.scope
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	s.mu.Unlock()

	if err := s.remote.Delete(ctx, id); err != nil {
		s.mu.Lock()
		if s.scope == scope && s.indexOfConfirmedLocked(id) < 0 {
			position := idx
			if position > len(s.entries) {
				position = len(s.entries)
			}
			s.entries = append(s.entries[:position],
				append([]Entry[T]{snapshot}, s.entries[position:]...)...)
		}
		s.mu.Unlock()
		s.surface(opDelete, err)
		return newStoreError(opDelete, "remote_delete_failed", err)
	}
	return nil
}

// Reload forces a full refresh from the remote, the same path a realtime
// notification takes.
func (s *Store[T]) Reload(ctx context.Context) error {
	s.mu.Lock()
	if !s.bound {
		s.mu.Unlock()
		return ErrNotBound
	}
	scope := s.scope
	s.mu.Unlock()
	return s.reload(ctx, scope)
}

func (s *Store[T]) watch(ctx context.Context, scope string, stream <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-stream:
			if !ok {
				return
			}
			if err := s.reload(ctx, scope); err != nil {
				s.logger.Warn("realtime reload failed",
					zap.String("scope", scope), zap.Error(err))
			}
		}
	}
}

// reload replaces the collection with server truth. Pending rows are dropped:
// the server's view supersedes optimistic state. Stale loads (an older fetch
// finishing after a newer one, or a scope change mid-flight) are discarded.
func (s *Store[T]) reload(ctx context.Context, scope string) error {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	rows, err := s.remote.Load(ctx, scope)
	if err != nil {
		s.surface(opLoad, err)
		return newStoreError(opLoad, "remote_load_failed", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if scope != s.scope || seq <= s.appliedSeq {
		return nil
	}
	s.appliedSeq = seq
	entries := make([]Entry[T], 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry[T]{Identity: ConfirmedIdentity(s.rowID(row)), Row: row})
	}
	s.entries = entries
	return nil
}

func (s *Store[T]) insertLocked(entry Entry[T]) {
	if s.placement == PlaceTail {
		s.entries = append(s.entries, entry)
		return
	}
	s.entries = append([]Entry[T]{entry}, s.entries...)
}

func (s *Store[T]) indexOfConfirmedLocked(id string) int {
	for i, entry := range s.entries {
		if !entry.Identity.IsPending() && entry.Identity.Value() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) indexOfPendingLocked(token string) int {
	for i, entry := range s.entries {
		if entry.Identity.IsPending() && entry.Identity.Value() == token {
			return i
		}
	}
	return -1
}

func (s *Store[T]) removePendingLocked(token string) {
	if idx := s.indexOfPendingLocked(token); idx >= 0 {
		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	}
}

// teardownLocked must be called with the mutex held.
func (s *Store[T]) teardownLocked() {
	if s.cancelWatch != nil {
		s.cancelWatch()
		s.cancelWatch = nil
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Store[T]) surface(operation string, err error) {
	s.logger.Warn("remote operation failed",
		zap.String("operation", operation), zap.Error(err))
	if s.onError != nil {
		s.onError(operation, err)
	}
}
