// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package reconciler keeps the live snapshot of a running chain and serves
// filtered views of its balances.
package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/events"
	"github.com/luxfi/lc1c/pkg/scratch"
	luxlog "github.com/luxfi/log"
	"go.uber.org/zap"
)

var (
	ErrAlreadyMonitoring = errors.New("chain is already being monitored")
	ErrNotMonitoring     = errors.New("chain is not being monitored")
)

// Snapshot is the latest full state reported by the chain.
type Snapshot struct {
	Number    uint64                     `json:"number"`
	Hash      string                     `json:"hash"`
	Amounts   map[string]string          `json:"amounts"`
	Contracts map[string]events.Contract `json:"contracts"`
}

func (s Snapshot) clone() Snapshot {
	s.Amounts = maps.Clone(s.Amounts)
	if s.Amounts == nil {
		s.Amounts = map[string]string{}
	}
	s.Contracts = maps.Clone(s.Contracts)
	if s.Contracts == nil {
		s.Contracts = map[string]events.Contract{}
	}
	return s
}

func emptySnapshot() Snapshot {
	return Snapshot{Amounts: map[string]string{}, Contracts: map[string]events.Contract{}}
}

// FilterView maps the addresses matching the active predicate to balances.
type FilterView map[string]string

type Option func(*Reconciler)

func WithLogger(log luxlog.Logger) Option {
	return func(r *Reconciler) {
		r.log = log
	}
}

// WithOnChange registers fn to run after every applied event, outside the lock.
func WithOnChange(fn func(Snapshot)) Option {
	return func(r *Reconciler) {
		r.onChange = append(r.onChange, fn)
	}
}

type Reconciler struct {
	mu        sync.Mutex
	log       luxlog.Logger
	store     *scratch.Store
	snapshot  Snapshot
	predicate string
	view      FilterView
	gen       uint64
	active    bool
	onChange  []func(Snapshot)
}

// New creates a reconciler filtering through store. A nil store filters in
// memory.
func New(store *scratch.Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		log:      luxlog.NewNoOpLogger(),
		store:    store,
		snapshot: emptySnapshot(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle is the scoped monitoring session returned by Monitor.
type Handle struct {
	r      *Reconciler
	sub    *events.Subscription
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Monitor resets the snapshot and starts applying new-block events from
// feed until the handle is released or ctx ends.
func (r *Reconciler) Monitor(ctx context.Context, feed *events.Feed) (*Handle, error) {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return nil, ErrAlreadyMonitoring
	}
	r.active = true
	r.gen++
	gen := r.gen
	r.snapshot = emptySnapshot()
	r.view = nil
	r.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		r:      r,
		sub:    feed.Subscribe(constants.NewBlockTopic),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go h.run(ctx, gen)
	return h, nil
}

func (h *Handle) run(ctx context.Context, gen uint64) {
	defer close(h.done)
	for {
		select {
		case ev := <-h.sub.C():
			h.r.apply(gen, ev.Block)
		case <-h.sub.Done():
			return
		case <-ctx.Done():
			return
		}
	}
}

// Release stops monitoring, discards the snapshot and clears the scratch
// buffer. It is safe to call more than once and from any exit path.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.sub.Unsubscribe()
		h.cancel()
		<-h.done
		h.r.stop()
	})
}

// Done is closed once the event loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (r *Reconciler) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
	r.gen++
	r.snapshot = emptySnapshot()
	r.view = nil
	r.predicate = ""
	if r.store != nil {
		if err := r.store.Clear(); err != nil {
			r.log.Warn("failed clearing scratch store", zap.Error(err))
		}
	}
}

// Monitoring reports whether a handle is live.
func (r *Reconciler) Monitoring() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Apply replaces the snapshot with b. The last delivered event wins, even
// when its number is lower than the current one.
func (r *Reconciler) Apply(b events.NewBlock) error {
	r.mu.Lock()
	gen, active := r.gen, r.active
	r.mu.Unlock()
	if !active {
		return ErrNotMonitoring
	}
	r.apply(gen, b)
	return nil
}

func (r *Reconciler) apply(gen uint64, b events.NewBlock) {
	r.mu.Lock()
	if !r.active || gen != r.gen {
		r.mu.Unlock()
		return
	}
	r.snapshot = Snapshot{Number: b.Number, Hash: b.Hash, Amounts: b.Amounts, Contracts: b.Contracts}.clone()
	if r.predicate != "" {
		if err := r.recompute(); err != nil {
			r.log.Warn("failed refreshing filtered view", zap.Error(err))
			r.view = filter(r.snapshot.Amounts, r.predicate)
		}
	}
	snap := r.snapshot.clone()
	hooks := r.onChange
	r.mu.Unlock()

	for _, fn := range hooks {
		fn(snap)
	}
}

// SetFilter sets the address predicate and recomputes the view. An empty
// predicate shows the full snapshot.
func (r *Reconciler) SetFilter(predicate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predicate = predicate
	if predicate == "" {
		r.view = nil
		return nil
	}
	return r.recompute()
}

// recompute round-trips the balances through the scratch buffer and drops
// every address not containing the predicate. The caller holds the lock.
func (r *Reconciler) recompute() error {
	if r.store == nil {
		r.view = filter(r.snapshot.Amounts, r.predicate)
		return nil
	}
	bs, err := json.Marshal(r.snapshot.Amounts)
	if err != nil {
		return err
	}
	if err := r.store.Put(constants.ScratchKey, bs); err != nil {
		return fmt.Errorf("failed writing scratch snapshot: %w", err)
	}
	stored, err := r.store.Get(constants.ScratchKey)
	if err != nil {
		return fmt.Errorf("failed reading scratch snapshot: %w", err)
	}
	dictionary := map[string]string{}
	if err := json.Unmarshal(stored, &dictionary); err != nil {
		return err
	}
	r.view = filter(dictionary, r.predicate)
	return nil
}

func filter(amounts map[string]string, predicate string) FilterView {
	view := FilterView{}
	for address, balance := range amounts {
		if strings.Contains(address, predicate) {
			view[address] = balance
		}
	}
	return view
}

// Predicate is the active filter, empty when none.
func (r *Reconciler) Predicate() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.predicate
}

// View is the filtered view when a predicate is active, the full balances
// otherwise.
func (r *Reconciler) View() FilterView {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.predicate == "" || r.view == nil {
		return FilterView(maps.Clone(r.snapshot.Amounts))
	}
	return maps.Clone(r.view)
}

// Snapshot returns a copy of the authoritative snapshot.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot.clone()
}
