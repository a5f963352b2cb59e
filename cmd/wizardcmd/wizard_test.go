// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package wizardcmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lc1c/internal/testutils"
	"github.com/luxfi/lc1c/pkg/events"
	"github.com/luxfi/lc1c/pkg/genesis"
	orchmocks "github.com/luxfi/lc1c/pkg/orchestrator/mocks"
	"github.com/luxfi/lc1c/pkg/prompts/mocks"
	"github.com/luxfi/lc1c/pkg/session"
)

const configurePrompt = "How should the genesis be configured?"

func newSession(t *testing.T, folders []string) *session.Session {
	t.Helper()
	a := testutils.SetupTestInTempDir(t, nil)
	pm := &orchmocks.ProcessManager{}
	pm.On("ListChainFolders", mock.Anything).Return(folders, nil).Maybe()
	sess, err := session.New(a, pm, events.NewFeed())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestResolveTemplate(t *testing.T) {
	p := &mocks.Prompter{}
	p.On("CaptureList", configurePrompt, mock.Anything).Return(optionTemplate, nil)

	r, err := resolve(context.Background(), p, newSession(t, nil))
	require.NoError(t, err)
	src, err := r.Resolve()
	require.NoError(t, err)
	require.Equal(t, genesis.TemplateSource{}, src)
}

func TestResolveForm(t *testing.T) {
	p := &mocks.Prompter{}
	p.On("CaptureList", configurePrompt, mock.Anything).Return(optionForm, nil)
	p.On("CaptureList", "Protocol version", mock.Anything).Return("6", nil)
	p.On("CaptureUint64", "Slot duration in milliseconds").Return(uint64(500), nil)
	p.On("CaptureUint64", "Epoch length in slots").Return(uint64(7200), nil)
	p.On("CaptureNoYes", "Change the baker account balance (3500000000000000)?").Return(true, nil).Once()
	p.On("CaptureNoYes", mock.Anything).Return(false, nil)
	p.On("CaptureValidatedString", "Balance in microCCD", mock.Anything).Return("4000000000000000", nil).Once()

	r, err := resolve(context.Background(), p, newSession(t, nil))
	require.NoError(t, err)
	src, err := r.Resolve()
	require.NoError(t, err)

	form, ok := src.(genesis.StructuredFormSource)
	require.True(t, ok)
	require.Equal(t, genesis.ProtocolVersion6, form.Draft.ProtocolVersion)
	require.Equal(t, uint64(500), form.Draft.Parameters.SlotDuration)
	require.Equal(t, uint64(7200), form.Draft.Parameters.EpochLength)
	require.Equal(t, "4000000000000000", form.Draft.Accounts[0].Balance)
	require.Equal(t, genesis.DefaultSpec().Accounts[1].Balance, form.Draft.Accounts[1].Balance)
	p.AssertExpectations(t)
}

func TestResolveFormReturnsToInvalidField(t *testing.T) {
	p := &mocks.Prompter{}
	p.On("CaptureList", configurePrompt, mock.Anything).Return(optionForm, nil).Once()
	p.On("CaptureList", "Protocol version", mock.Anything).Return("6", nil)
	p.On("CaptureUint64", "Slot duration in milliseconds").Return(uint64(250), nil)
	p.On("CaptureUint64", "Epoch length in slots").Return(uint64(3600), nil)
	// a balance under the baker's stake is rejected and asked for again
	p.On("CaptureNoYes", "Change the baker account balance (3500000000000000)?").Return(true, nil).Once()
	p.On("CaptureNoYes", "Change the baker account balance (1)?").Return(true, nil).Once()
	p.On("CaptureNoYes", mock.Anything).Return(false, nil)
	p.On("CaptureValidatedString", "Balance in microCCD", mock.Anything).Return("1", nil).Once()
	p.On("CaptureValidatedString", "Balance in microCCD", mock.Anything).Return("4000000000000000", nil).Once()

	sess := newSession(t, nil)
	r, err := resolve(context.Background(), p, sess)
	require.NoError(t, err)
	src, err := r.Resolve()
	require.NoError(t, err)

	form, ok := src.(genesis.StructuredFormSource)
	require.True(t, ok)
	require.Equal(t, "4000000000000000", form.Draft.Accounts[0].Balance)
	require.Equal(t, uint64(250), form.Draft.Parameters.SlotDuration)
	_, err = sess.Assemble(src)
	require.NoError(t, err)
	p.AssertNumberOfCalls(t, "CaptureValidatedString", 2)
	p.AssertExpectations(t)
}

func TestResolveDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.toml")
	require.NoError(t, os.WriteFile(path, []byte("protocolVersion = \"5\"\n"), 0o600))

	p := &mocks.Prompter{}
	p.On("CaptureList", configurePrompt, mock.Anything).Return(optionDocument, nil)
	p.On("CaptureExistingFilepath", mock.Anything).Return(path, nil)

	r, err := resolve(context.Background(), p, newSession(t, nil))
	require.NoError(t, err)
	src, err := r.Resolve()
	require.NoError(t, err)
	require.Equal(t, genesis.RawDocumentSource{Document: "protocolVersion = \"5\"\n"}, src)
}

func TestResolveExisting(t *testing.T) {
	p := &mocks.Prompter{}
	p.On("CaptureList", configurePrompt, mock.Anything).Return(optionExisting, nil)
	p.On("CaptureList", "Which chain?", []string{"chain-1", "chain-2"}).Return("chain-2", nil)

	r, err := resolve(context.Background(), p, newSession(t, []string{"chain-1", "chain-2"}))
	require.NoError(t, err)
	src, err := r.Resolve()
	require.NoError(t, err)
	require.Equal(t, genesis.ExistingSnapshotSource{Folder: "chain-2"}, src)
}

func TestResolveExistingWithoutChains(t *testing.T) {
	p := &mocks.Prompter{}
	p.On("CaptureList", configurePrompt, mock.Anything).Return(optionExisting, nil)

	_, err := resolve(context.Background(), p, newSession(t, []string{}))
	require.ErrorIs(t, err, errNoChains)
}
