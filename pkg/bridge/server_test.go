// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	luxlog "github.com/luxfi/log"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lc1c/pkg/application"
	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/events"
	"github.com/luxfi/lc1c/pkg/genesis"
	"github.com/luxfi/lc1c/pkg/orchestrator/mocks"
	"github.com/luxfi/lc1c/pkg/session"
	"github.com/luxfi/lc1c/pkg/statemachine"
)

type testBridge struct {
	pm   *mocks.ProcessManager
	feed *events.Feed
	sess *session.Session
	srv  *httptest.Server
}

func newTestBridge(t *testing.T, initial statemachine.StateType) *testBridge {
	t.Helper()
	app := application.New()
	app.Setup(t.TempDir(), luxlog.NewNoOpLogger(), nil, nil)
	pm := &mocks.ProcessManager{}
	feed := events.NewFeed()
	sess, err := session.New(app, pm, feed, session.WithInitialState(initial))
	require.NoError(t, err)
	srv := httptest.NewServer(NewServer(sess, nil, nil).Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = sess.Close()
	})
	return &testBridge{pm: pm, feed: feed, sess: sess, srv: srv}
}

func (b *testBridge) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(bs)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, b.srv.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func decode[T any](t *testing.T, bs []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(bs, &v))
	return v
}

func TestStateAndInstall(t *testing.T) {
	b := newTestBridge(t, statemachine.StateUninstalled)
	b.pm.On("Install", mock.Anything).Return(nil).Once()

	resp, body := b.do(t, http.MethodGet, "/v1/state", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Uninstalled", decode[StateResponse](t, body).State)

	resp, _ = b.do(t, http.MethodGet, "/v1/install", nil)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, body = b.do(t, http.MethodPost, "/v1/install", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Installed", decode[StateResponse](t, body).State)
	b.pm.AssertExpectations(t)
}

func TestVerifyFailure(t *testing.T) {
	b := newTestBridge(t, statemachine.StateInstalled)
	b.pm.On("VerifyInstallation", mock.Anything).Return("", errors.New("concordium node is not installed")).Once()

	resp, body := b.do(t, http.MethodPost, "/v1/verify", nil)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Contains(t, decode[errorResponse](t, body).Error, "not installed")
	require.Equal(t, statemachine.StateInstalled, b.sess.Orchestrator().State())
}

func TestLaunchRejectsInvalidForm(t *testing.T) {
	b := newTestBridge(t, statemachine.StateInstalled)
	b.pm.On("VerifyInstallation", mock.Anything).Return("concordium-node 6.0.4", nil)
	resp, _ := b.do(t, http.MethodPost, "/v1/verify", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	spec := genesis.DefaultSpec()
	spec.ProtocolVersion = "9"
	resp, body := b.do(t, http.MethodPost, "/v1/launch", ConfigRequest{Source: SourceForm, Spec: &spec})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	er := decode[errorResponse](t, body)
	require.Equal(t, "protocolVersion", er.Field)
	require.NotEmpty(t, er.Violations)
	require.Equal(t, statemachine.StateVerified, b.sess.Orchestrator().State())

	resp, _ = b.do(t, http.MethodPost, "/v1/launch", ConfigRequest{Source: "nonsense"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	b.pm.AssertNotCalled(t, "LaunchTemplate", mock.Anything, mock.Anything)
}

func TestConfigRejectsUnlistedFolder(t *testing.T) {
	b := newTestBridge(t, statemachine.StateInstalled)
	b.pm.On("VerifyInstallation", mock.Anything).Return("concordium-node 6.0.4", nil)
	b.pm.On("ListChainFolders", mock.Anything).Return([]string{"chain-1"}, nil)
	resp, _ := b.do(t, http.MethodPost, "/v1/verify", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, folder := range []string{"../../etc", "chain-9", ""} {
		resp, body := b.do(t, http.MethodPost, "/v1/config", ConfigRequest{Source: SourceExisting, Folder: folder})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, folder)
		require.Contains(t, decode[errorResponse](t, body).Error, "unknown chain folder")
		require.Equal(t, statemachine.StateVerified, b.sess.Orchestrator().State())
	}
	resp, _ = b.do(t, http.MethodPost, "/v1/launch", ConfigRequest{Source: SourceExisting, Folder: "../../etc"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	b.pm.AssertNotCalled(t, "LaunchTemplate", mock.Anything, mock.Anything)

	resp, body := b.do(t, http.MethodPost, "/v1/config", ConfigRequest{Source: SourceExisting, Folder: "chain-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, genesis.ModeFromExisting, decode[StateResponse](t, body).Mode)
	require.Equal(t, genesis.FromExistingPayload{Folder: "chain-1"}, b.sess.Orchestrator().Payload())
}

func TestConfigRejectsUnreadableBody(t *testing.T) {
	b := newTestBridge(t, statemachine.StateInstalled)

	resp, err := http.Post(b.srv.URL+"/v1/config", "application/json", strings.NewReader(`{"source": `))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var er errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&er))
	require.Contains(t, er.Error, "bad request")
	require.NotContains(t, er.Error, "malformed genesis document")
	require.Equal(t, statemachine.StateInstalled, b.sess.Orchestrator().State())
}

func TestLaunchTemplateAndSnapshot(t *testing.T) {
	b := newTestBridge(t, statemachine.StateInstalled)
	b.pm.On("VerifyInstallation", mock.Anything).Return("concordium-node 6.0.4", nil)
	b.pm.On("LaunchTemplate", mock.Anything, genesis.EasyPayload{}).Return(nil).Once()
	b.pm.On("KillChain", mock.Anything).Return(nil).Once()

	b.do(t, http.MethodPost, "/v1/verify", nil)
	resp, body := b.do(t, http.MethodPost, "/v1/launch", ConfigRequest{Source: SourceTemplate})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[StateResponse](t, body)
	require.Equal(t, "Running", st.State)
	require.Equal(t, genesis.ModeEasy, st.Mode)

	resp, _ = b.do(t, http.MethodPost, "/v1/launch", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	b.feed.Publish(events.NewBlockEvent(events.NewBlock{
		Number:    3,
		Hash:      "h3",
		Amounts:   map[string]string{"3aa": "1", "4zb": "2"},
		Contracts: map[string]events.Contract{"0": {Owner: "3aa", Amount: "0", Name: "init_counter"}},
	}))
	require.Eventually(t, func() bool {
		return b.sess.Reconciler().Snapshot().Number == 3
	}, time.Second, 5*time.Millisecond)

	resp, body = b.do(t, http.MethodGet, "/v1/snapshot?filter=4z", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[SnapshotResponse](t, body)
	require.Equal(t, uint64(3), snap.Number)
	require.Equal(t, "4z", snap.Filter)
	require.Equal(t, map[string]string{"4zb": "2"}, snap.Balances)
	require.Equal(t, "init_counter", snap.Contracts["0"].Name)

	_, body = b.do(t, http.MethodGet, "/v1/snapshot?filter=", nil)
	require.Len(t, decode[SnapshotResponse](t, body).Balances, 2)

	resp, body = b.do(t, http.MethodPost, "/v1/kill", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Terminated", decode[StateResponse](t, body).State)
	require.Zero(t, b.feed.Subscribers(constants.NewBlockTopic))
	b.pm.AssertExpectations(t)
}

func TestChainFolders(t *testing.T) {
	b := newTestBridge(t, statemachine.StateInstalled)
	b.pm.On("ListChainFolders", mock.Anything).Return([]string{"chain-1", "chain-3"}, nil)

	resp, body := b.do(t, http.MethodGet, "/v1/chain-folders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"chain-1", "chain-3"}, decode[map[string][]string](t, body)["folders"])
}

func TestEventsWebsocket(t *testing.T) {
	b := newTestBridge(t, statemachine.StateInstalled)
	url := "ws" + strings.TrimPrefix(b.srv.URL, "http") + "/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return b.feed.Subscribers(constants.NewBlockTopic) == 1
	}, time.Second, 5*time.Millisecond)

	b.feed.Publish(events.NewBlockEvent(events.NewBlock{Number: 8, Hash: "h8", Amounts: map[string]string{}}))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg EventMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, constants.NewBlockTopic, msg.Event)
	require.Equal(t, uint64(8), decode[events.NewBlock](t, msg.Payload).Number)

	require.Equal(t, 1, b.feed.Subscribers(constants.TransactionsTopic))
	b.feed.Publish(events.TransactionsEvent(events.Transactions{
		Height: 8,
		Items:  []events.TransactionSummary{{Index: 0, Hash: "aa", EnergyCost: 501, Kind: "account-transaction"}},
	}))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, constants.TransactionsTopic, msg.Event)
	txs := decode[events.Transactions](t, msg.Payload)
	require.Equal(t, uint64(8), txs.Height)
	require.Len(t, txs.Items, 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return b.feed.Subscribers(constants.NewBlockTopic) == 0 &&
			b.feed.Subscribers(constants.TransactionsTopic) == 0
	}, time.Second, 5*time.Millisecond)
}
