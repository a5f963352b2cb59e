// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package blockwatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/events"
)

type fakeSource struct {
	mu       sync.Mutex
	calls    int
	failures int
	block    events.NewBlock
}

func (s *fakeSource) Latest(context.Context) (events.NewBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return events.NewBlock{}, errors.New("connection refused")
	}
	return s.block, nil
}

func (s *fakeSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type txSource struct {
	fakeSource
	heights []uint64
}

func (s *txSource) Transactions(_ context.Context, height uint64) (events.Transactions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heights = append(s.heights, height)
	return events.Transactions{Height: height, Items: []events.TransactionSummary{}}, nil
}

func (s *txSource) setBlock(b events.NewBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.block = b
}

func (s *txSource) Heights() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint64(nil), s.heights...)
}

func TestFirstBlockRetries(t *testing.T) {
	src := &fakeSource{failures: 2, block: events.NewBlock{Number: 1, Hash: "h1"}}
	w := New(src, events.NewFeed(), WithRetryDelay(time.Millisecond))

	block, err := w.FirstBlock(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1), block.Number)
	require.Equal(t, 3, src.Calls())
}

func TestFirstBlockStopsWithContext(t *testing.T) {
	src := &fakeSource{failures: 1 << 30}
	w := New(src, events.NewFeed(), WithRetryDelay(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := w.FirstBlock(ctx)
	require.Error(t, err)
}

func TestWatchPublishesPerLine(t *testing.T) {
	feed := events.NewFeed()
	sub := feed.Subscribe(constants.NewBlockTopic)
	defer sub.Unsubscribe()

	src := &fakeSource{block: events.NewBlock{Number: 4, Hash: "h4", Amounts: map[string]string{"3aa": "1"}}}
	w := New(src, feed, WithRetryDelay(time.Millisecond))

	err := w.Watch(context.Background(), strings.NewReader("starting\nfinalized block\n"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, src.Calls(), 2)

	select {
	case ev := <-sub.C():
		require.Equal(t, constants.NewBlockTopic, ev.Topic)
		require.Equal(t, uint64(4), ev.Block.Number)
	default:
		t.Fatal("no block published")
	}
	// identical blocks are sent once
	select {
	case <-sub.C():
		t.Fatal("duplicate block published")
	default:
	}
}

func TestWatchSkipsFailedFetches(t *testing.T) {
	feed := events.NewFeed()
	src := &fakeSource{failures: 100}
	w := New(src, feed, WithRetryDelay(time.Hour))

	err := w.Watch(context.Background(), strings.NewReader("a\nb\nc\n"))
	require.NoError(t, err)
}

func TestWatchPublishesTransactionsPerHeight(t *testing.T) {
	feed := events.NewFeed()
	sub := feed.Subscribe(constants.TransactionsTopic)
	defer sub.Unsubscribe()

	src := &txSource{fakeSource: fakeSource{block: events.NewBlock{Number: 2, Hash: "h2"}}}
	w := New(src, feed, WithRetryDelay(time.Millisecond))

	w.publish(context.Background(), src.block)
	require.Equal(t, []uint64{0, 1, 2}, src.Heights())

	// the same block again fetches nothing
	w.publish(context.Background(), src.block)
	require.Equal(t, []uint64{0, 1, 2}, src.Heights())

	src.setBlock(events.NewBlock{Number: 4, Hash: "h4"})
	w.publish(context.Background(), events.NewBlock{Number: 4, Hash: "h4"})
	require.Equal(t, []uint64{0, 1, 2, 3, 4}, src.Heights())

	ev := <-sub.C()
	require.Equal(t, constants.TransactionsTopic, ev.Topic)
	require.Equal(t, uint64(4), ev.Transactions.Height)
}

func TestWatchBoundsTransactionBackfill(t *testing.T) {
	src := &txSource{}
	w := New(src, events.NewFeed())

	top := uint64(constants.MaxTransactionBackfill + 10)
	w.publish(context.Background(), events.NewBlock{Number: top, Hash: "top"})

	heights := src.Heights()
	require.Len(t, heights, constants.MaxTransactionBackfill)
	require.Equal(t, top+1-constants.MaxTransactionBackfill, heights[0])
	require.Equal(t, top, heights[len(heights)-1])
}
