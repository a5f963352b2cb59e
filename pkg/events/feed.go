// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package events is a small topic broker for chain notifications. Publishing
// never blocks; a slow subscriber only ever sees the latest event.
package events

import (
	"sync"

	"github.com/luxfi/lc1c/pkg/constants"
)

// NewBlock is a full replacement snapshot of the running chain.
type NewBlock struct {
	Number    uint64              `json:"number"`
	Hash      string              `json:"hash"`
	Amounts   map[string]string   `json:"amounts"`
	Contracts map[string]Contract `json:"contracts"`
}

// Contract is a smart contract instance keyed by its index in NewBlock.
type Contract struct {
	Owner        string   `json:"owner"`
	Amount       string   `json:"amount"`
	Name         string   `json:"name"`
	SourceModule string   `json:"sourceModule"`
	Methods      []string `json:"methods"`
}

// Transactions lists the block items of one finalized block.
type Transactions struct {
	Height uint64               `json:"height"`
	Items  []TransactionSummary `json:"transactions"`
}

type TransactionSummary struct {
	Index      uint64 `json:"index"`
	Hash       string `json:"hash"`
	EnergyCost uint64 `json:"energyCost"`
	Kind       string `json:"kind"`
}

// Event is what subscribers receive. Only the field matching Topic is set.
type Event struct {
	Topic        string
	Block        NewBlock
	Transactions Transactions
}

// NewBlockEvent wraps b for the new-block topic.
func NewBlockEvent(b NewBlock) Event {
	return Event{Topic: constants.NewBlockTopic, Block: b}
}

// TransactionsEvent wraps txs for the transactions topic.
func TransactionsEvent(txs Transactions) Event {
	return Event{Topic: constants.TransactionsTopic, Transactions: txs}
}

type Feed struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

func NewFeed() *Feed {
	return &Feed{subs: map[string]map[*Subscription]struct{}{}}
}

// Subscription delivers the events of one topic. Its channel has a single
// slot: an unread event is replaced by a newer one.
type Subscription struct {
	feed  *Feed
	topic string
	ch    chan Event
	once  sync.Once
	done  chan struct{}
}

// Subscribe registers for topic. On a closed feed the returned subscription
// is already cancelled.
func (f *Feed) Subscribe(topic string) *Subscription {
	s := &Subscription{
		feed:  f,
		topic: topic,
		ch:    make(chan Event, 1),
		done:  make(chan struct{}),
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		s.once.Do(s.cancel)
		return s
	}
	if f.subs[topic] == nil {
		f.subs[topic] = map[*Subscription]struct{}{}
	}
	f.subs[topic][s] = struct{}{}
	return s
}

// Publish hands ev to every subscriber of its topic and returns the number
// of subscribers reached.
func (f *Feed) Publish(ev Event) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for s := range f.subs[ev.Topic] {
		s.offer(ev)
		n++
	}
	return n
}

// Subscribers counts live subscriptions on topic.
func (f *Feed) Subscribers(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[topic])
}

// Close cancels every subscription. Later subscriptions start cancelled.
func (f *Feed) Close() {
	f.mu.Lock()
	f.closed = true
	all := []*Subscription{}
	for _, subs := range f.subs {
		for s := range subs {
			all = append(all, s)
		}
	}
	f.subs = map[string]map[*Subscription]struct{}{}
	f.mu.Unlock()

	for _, s := range all {
		s.once.Do(s.cancel)
	}
}

// offer runs under the feed lock, which serializes producers.
func (s *Subscription) offer(ev Event) {
	select {
	case s.ch <- ev:
		return
	default:
	}
	// drop the stale event, keep the new one
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- ev:
	default:
	}
}

// C returns the delivery channel.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Done is closed once the subscription is cancelled.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe is safe to call any number of times.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		if subs := s.feed.subs[s.topic]; subs != nil {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.feed.subs, s.topic)
			}
		}
		s.feed.mu.Unlock()
		s.cancel()
	})
}

func (s *Subscription) cancel() {
	close(s.done)
}
