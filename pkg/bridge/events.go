// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/events"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// EventMessage is one frame on /v1/events. Payload is an events.NewBlock for
// new-block and an events.Transactions for transactions.
type EventMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func newEventMessage(ev events.Event) (EventMessage, error) {
	var payload interface{} = ev.Block
	if ev.Topic == constants.TransactionsTopic {
		payload = ev.Transactions
	}
	bs, err := json.Marshal(payload)
	if err != nil {
		return EventMessage{}, err
	}
	return EventMessage{Event: ev.Topic, Payload: bs}, nil
}

// handleEvents streams new-block and transactions events to a websocket
// client until either side goes away. The feed subscriptions end with the
// connection.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	blocks := s.sess.Feed().Subscribe(constants.NewBlockTopic)
	defer blocks.Unsubscribe()
	txs := s.sess.Feed().Subscribe(constants.TransactionsTopic)
	defer txs.Unsubscribe()

	// the reader only watches for close and pong frames
	closed := make(chan struct{})
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.log.Debug("websocket read ended", zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev := <-blocks.C():
			if !s.writeEvent(conn, ev) {
				return
			}
		case ev := <-txs.C():
			if !s.writeEvent(conn, ev) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-blocks.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "feed closed"),
				time.Now().Add(writeWait))
			return
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) writeEvent(conn *websocket.Conn, ev events.Event) bool {
	msg, err := newEventMessage(ev)
	if err != nil {
		s.log.Warn("failed encoding event", zap.String("event", ev.Topic), zap.Error(err))
		return true
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Debug("websocket write failed", zap.Error(err))
		return false
	}
	return true
}
