// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package genesis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	luxlog "github.com/luxfi/log"
	"github.com/stretchr/testify/require"
)

type staticLister []string

func (l staticLister) ListChainFolders(context.Context) ([]string, error) {
	return l, nil
}

type failingLister struct{}

func (failingLister) ListChainFolders(context.Context) ([]string, error) {
	return nil, errors.New("boom")
}

func TestAssembleProducesOnePayloadShape(t *testing.T) {
	a := NewAssembler(luxlog.NewNoOpLogger())
	tests := []struct {
		src  ConfigSource
		mode string
	}{
		{TemplateSource{}, ModeEasy},
		{StructuredFormSource{Draft: DefaultSpec()}, ModeAdvanced},
		{RawDocumentSource{Document: "protocolVersion = \"6\"\n"}, ModeExpert},
		{ExistingSnapshotSource{Folder: "chain-2"}, ModeFromExisting},
	}
	for _, tt := range tests {
		payload, err := a.Assemble(tt.src)
		require.NoError(t, err)
		require.Equal(t, tt.mode, payload.Mode())

		wire, err := EncodeLaunchMode(payload)
		require.NoError(t, err)
		var obj map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(wire, &obj))
		require.Len(t, obj, 1)
		require.Contains(t, obj, tt.mode)
	}
}

func TestAssembleFormRejectsThresholdAboveKeySet(t *testing.T) {
	form := NewFormResolver()
	form.Edit(func(s *LaunchSpec) { s.Updates.Level1.Threshold = 16 })
	src, err := form.Resolve()
	require.NoError(t, err)

	payload, err := NewAssembler(nil).Assemble(src)
	require.Nil(t, payload)
	var invalid *InvalidSpecError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "updates.level1.threshold", invalid.Field)

	// the draft is left as the operator wrote it
	require.Equal(t, uint32(16), form.Draft().Updates.Level1.Threshold)
}

func TestAssembleFormRejectsUnknownIdentityProvider(t *testing.T) {
	draft := DefaultSpec()
	draft.IdentityProviders = []Authority{{Kind: KindFresh, ID: 1, Repeat: 1}}

	_, err := NewAssembler(nil).Assemble(StructuredFormSource{Draft: draft})
	var invalid *InvalidSpecError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "accounts[0].identityProvider", invalid.Field)
}

func TestAssembleFormIsByteIdentical(t *testing.T) {
	form := NewFormResolver()
	a := NewAssembler(nil)

	first, err := form.Resolve()
	require.NoError(t, err)
	p1, err := a.Assemble(first)
	require.NoError(t, err)

	second, err := form.Resolve()
	require.NoError(t, err)
	p2, err := a.Assemble(second)
	require.NoError(t, err)

	require.Equal(t, p1.(AdvancedPayload).Spec, p2.(AdvancedPayload).Spec)

	var decoded LaunchSpec
	require.NoError(t, json.Unmarshal(p1.(AdvancedPayload).Spec, &decoded))
	require.Equal(t, DefaultSpec(), decoded)
}

func TestResolvedDraftDoesNotAliasLaterEdits(t *testing.T) {
	form := NewFormResolver()
	src, err := form.Resolve()
	require.NoError(t, err)

	form.Edit(func(s *LaunchSpec) {
		s.Accounts[0].Balance = "1"
		s.Updates.Level2.Protocol.AuthorizedKeys[0] = 5
	})

	draft := src.(StructuredFormSource).Draft
	require.Equal(t, "3500000000000000", draft.Accounts[0].Balance)
	require.Equal(t, uint32(0), draft.Updates.Level2.Protocol.AuthorizedKeys[0])
}

func TestAssembleRawDocument(t *testing.T) {
	a := NewAssembler(nil)
	for _, doc := range []string{"", "  \n\t", string([]byte{0xff, 0xfe})} {
		_, err := a.Assemble(RawDocumentSource{Document: doc})
		require.ErrorIs(t, err, ErrMalformedDocument)
		require.ErrorIs(t, err, ErrAssembly)
	}

	// structurally broken toml is still handed over untouched
	payload, err := a.Assemble(RawDocumentSource{Document: "[[[not toml"})
	require.NoError(t, err)
	require.Equal(t, ExpertPayload{Document: "[[[not toml"}, payload)
}

func TestSnapshotResolver(t *testing.T) {
	r, err := NewSnapshotResolver(context.Background(), staticLister{"chain-1", "chain-2"})
	require.NoError(t, err)
	require.Equal(t, []string{"chain-1", "chain-2"}, r.Folders())

	_, err = r.Resolve()
	require.ErrorIs(t, err, ErrNoSelection)

	require.ErrorIs(t, r.Select("chain-9"), ErrNoSelection)
	require.NoError(t, r.Select("chain-2"))

	src, err := r.Resolve()
	require.NoError(t, err)
	payload, err := NewAssembler(nil).Assemble(src)
	require.NoError(t, err)
	require.Equal(t, FromExistingPayload{Folder: "chain-2"}, payload)

	_, err = NewAssembler(nil).Assemble(ExistingSnapshotSource{})
	require.ErrorIs(t, err, ErrNoSelection)

	_, err = NewSnapshotResolver(context.Background(), failingLister{})
	require.Error(t, err)
}

func TestFormResolverMerge(t *testing.T) {
	form := NewFormResolver()
	require.NoError(t, form.Merge([]byte(`
protocolVersion: "6"
parameters:
  slotDuration: 500
accounts:
  - kind: fresh
    balance: "1000"
    template: baker
    identityProvider: 1
    numKeys: 2
    threshold: 2
    repeat: 4
`)))
	draft := form.Draft()
	require.Equal(t, ProtocolVersion6, draft.ProtocolVersion)
	require.Equal(t, uint64(500), draft.Parameters.SlotDuration)
	require.Equal(t, uint64(900), draft.Parameters.EpochLength)
	require.Len(t, draft.Accounts, 1)
	require.Equal(t, uint32(4), draft.Accounts[0].Repeat)
	require.NoError(t, draft.Validate())

	require.NoError(t, form.Merge([]byte(`{"parameters": {"epochLength": 1200}}`)))
	require.Equal(t, uint64(1200), form.Draft().Parameters.EpochLength)

	require.Error(t, form.Merge([]byte("parameters: [")))
	require.Equal(t, uint64(1200), form.Draft().Parameters.EpochLength)

	require.NoError(t, form.Merge(nil))
	require.Equal(t, uint64(1200), form.Draft().Parameters.EpochLength)
}

func TestFormResolverMergeRejectsUnknownKeys(t *testing.T) {
	form := NewFormResolver()
	err := form.Merge([]byte("protocolVersoin: \"5\"\n"))
	require.ErrorContains(t, err, "protocolVersoin")
	require.Equal(t, DefaultSpec().ProtocolVersion, form.Draft().ProtocolVersion)

	err = form.Merge([]byte(`{"parameters": {"epochLenght": 10}}`))
	require.ErrorContains(t, err, "epochLenght")
	require.Equal(t, DefaultSpec().Parameters.EpochLength, form.Draft().Parameters.EpochLength)
}
