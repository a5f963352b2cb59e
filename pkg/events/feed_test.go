// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package events

import (
	"testing"

	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/stretchr/testify/require"
)

func TestPublishCoalesces(t *testing.T) {
	f := NewFeed()
	sub := f.Subscribe(constants.NewBlockTopic)

	for i := uint64(1); i <= 5; i++ {
		require.Equal(t, 1, f.Publish(NewBlockEvent(NewBlock{Number: i})))
	}

	ev := <-sub.C()
	require.Equal(t, uint64(5), ev.Block.Number)
	select {
	case <-sub.C():
		t.Fatal("stale events must be dropped")
	default:
	}
}

func TestPublishOtherTopic(t *testing.T) {
	f := NewFeed()
	sub := f.Subscribe(constants.NewBlockTopic)
	require.Equal(t, 0, f.Publish(Event{Topic: "other"}))
	require.Empty(t, sub.C())
}

func TestUnsubscribeOnce(t *testing.T) {
	f := NewFeed()
	sub := f.Subscribe(constants.NewBlockTopic)
	require.Equal(t, 1, f.Subscribers(constants.NewBlockTopic))

	sub.Unsubscribe()
	sub.Unsubscribe()
	require.Equal(t, 0, f.Subscribers(constants.NewBlockTopic))
	require.Equal(t, 0, f.Publish(NewBlockEvent(NewBlock{Number: 1})))

	select {
	case <-sub.Done():
	default:
		t.Fatal("done must be closed")
	}
}

func TestClose(t *testing.T) {
	f := NewFeed()
	a := f.Subscribe(constants.NewBlockTopic)
	b := f.Subscribe("other")
	f.Close()

	<-a.Done()
	<-b.Done()
	a.Unsubscribe()

	late := f.Subscribe(constants.NewBlockTopic)
	<-late.Done()
	require.Equal(t, 0, f.Subscribers(constants.NewBlockTopic))
}
