// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package blockwatch turns node log activity into new-block events.
package blockwatch

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	luxlog "github.com/luxfi/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/events"
)

var errStreamClosed = errors.New("node output closed")

type Watcher struct {
	source     Source
	feed       *events.Feed
	log        luxlog.Logger
	retryDelay time.Duration

	mu         sync.Mutex
	lastHash   string
	lastHeight uint64
	seenHeight bool
}

type Option func(*Watcher)

func WithLogger(log luxlog.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// WithRetryDelay sets the pause between attempts of the first fetch.
func WithRetryDelay(d time.Duration) Option {
	return func(w *Watcher) { w.retryDelay = d }
}

func New(source Source, feed *events.Feed, opts ...Option) *Watcher {
	w := &Watcher{
		source:     source,
		feed:       feed,
		log:        luxlog.NewNoOpLogger(),
		retryDelay: constants.BlockInfoRetryDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// FirstBlock polls the source until it answers or ctx ends. The node takes a
// while to open its gateway after spawn.
func (w *Watcher) FirstBlock(ctx context.Context) (events.NewBlock, error) {
	var block events.NewBlock
	err := retry.Do(
		func() error {
			b, err := w.source.Latest(ctx)
			if err != nil {
				return err
			}
			block = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(w.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			w.log.Debug("block info not available yet", zap.Uint("attempt", n), zap.Error(err))
		}),
	)
	return block, err
}

// Watch publishes the first block once the node answers, then one block per
// line the node writes to out. It returns nil when out reaches EOF. Reads on
// out are not interruptible: the caller closes out (or kills the writer) to
// stop the watch.
func (w *Watcher) Watch(ctx context.Context, out io.Reader) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		block, err := w.FirstBlock(gctx)
		if err != nil {
			if errors.Is(gctx.Err(), context.Canceled) && ctx.Err() == nil {
				return nil
			}
			return err
		}
		w.publish(gctx, block)
		return nil
	})
	g.Go(func() error {
		scanner := bufio.NewScanner(out)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			w.log.Debug("node", zap.String("line", scanner.Text()))
			if gctx.Err() != nil {
				return gctx.Err()
			}
			block, err := w.source.Latest(gctx)
			if err != nil {
				w.log.Debug("failed fetching block info", zap.Error(err))
				continue
			}
			w.publish(gctx, block)
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		return errStreamClosed
	})
	err := g.Wait()
	if errors.Is(err, errStreamClosed) {
		return nil
	}
	if err == nil {
		return ctx.Err()
	}
	return err
}

// publish skips a block identical to the last one sent. Sources that list
// transactions also get them published for every height not covered yet.
func (w *Watcher) publish(ctx context.Context, block events.NewBlock) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if block.Hash != "" && block.Hash == w.lastHash {
		return
	}
	w.lastHash = block.Hash
	n := w.feed.Publish(events.NewBlockEvent(block))
	w.log.Debug("published block", zap.Uint64("number", block.Number), zap.Int("subscribers", n))

	if txs, ok := w.source.(TransactionSource); ok {
		w.publishTransactions(ctx, txs, block.Number)
	}
}

// publishTransactions runs under w.mu. A failed height is retried with the
// next block.
func (w *Watcher) publishTransactions(ctx context.Context, txs TransactionSource, height uint64) {
	var from uint64
	if w.seenHeight {
		from = w.lastHeight + 1
	}
	if height >= constants.MaxTransactionBackfill && from < height+1-constants.MaxTransactionBackfill {
		from = height + 1 - constants.MaxTransactionBackfill
	}
	for h := from; h <= height; h++ {
		block, err := txs.Transactions(ctx, h)
		if err != nil {
			w.log.Debug("failed fetching transactions", zap.Uint64("height", h), zap.Error(err))
			return
		}
		w.feed.Publish(events.TransactionsEvent(block))
		w.lastHeight = h
		w.seenHeight = true
	}
}
