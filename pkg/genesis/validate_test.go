// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package genesis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultSpecIsValid(t *testing.T) {
	require.NoError(t, DefaultSpec().Validate())
}

func TestValidateReportsFieldPath(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*LaunchSpec)
		field string
	}{
		{
			name:  "level2 threshold above authorized keys",
			edit:  func(s *LaunchSpec) { s.Updates.Level2.Protocol.Threshold = 8 },
			field: "updates.level2.protocol.threshold",
		},
		{
			name:  "root threshold above key set",
			edit:  func(s *LaunchSpec) { s.Updates.Root.Threshold = 8 },
			field: "updates.root.threshold",
		},
		{
			name:  "level1 zero threshold",
			edit:  func(s *LaunchSpec) { s.Updates.Level1.Threshold = 0 },
			field: "updates.level1.threshold",
		},
		{
			name:  "authorized key out of range",
			edit:  func(s *LaunchSpec) { s.Updates.Level2.Emergency.AuthorizedKeys[6] = 7 },
			field: "updates.level2.emergency.authorizedKeys[6]",
		},
		{
			name:  "unknown identity provider",
			edit:  func(s *LaunchSpec) { s.Accounts[2].IdentityProvider = 3 },
			field: "accounts[2].identityProvider",
		},
		{
			name:  "account threshold above key count",
			edit:  func(s *LaunchSpec) { s.Accounts[1].Threshold = 2 },
			field: "accounts[1].threshold",
		},
		{
			name:  "stake above balance",
			edit:  func(s *LaunchSpec) { s.Accounts[0].Stake = "3500000000000001" },
			field: "accounts[0].stake",
		},
		{
			name:  "negative balance",
			edit:  func(s *LaunchSpec) { s.Accounts[2].Balance = "-1" },
			field: "accounts[2].balance",
		},
		{
			name:  "range inverted",
			edit:  func(s *LaunchSpec) { s.Parameters.Chain.PoolParameters.BakingCommissionRange = Range{Min: 0.2, Max: 0.1} },
			field: "parameters.chain.poolParameters.bakingCommissionRange",
		},
		{
			name:  "fraction above one",
			edit:  func(s *LaunchSpec) { s.Parameters.Chain.ElectionDifficulty = 1.5 },
			field: "parameters.chain.electionDifficulty",
		},
		{
			name:  "grow factor too small",
			edit:  func(s *LaunchSpec) { s.Parameters.Finalization.SkipGrowFactor = 1 },
			field: "parameters.finalization.skipGrowFactor",
		},
		{
			name:  "unsupported protocol",
			edit:  func(s *LaunchSpec) { s.ProtocolVersion = "9" },
			field: "protocolVersion",
		},
		{
			name:  "empty output path",
			edit:  func(s *LaunchSpec) { s.Out.GenesisHash = "" },
			field: "out.genesisHash",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := DefaultSpec()
			tt.edit(&spec)
			err := spec.Validate()
			require.Error(t, err)
			var invalid *InvalidSpecError
			require.True(t, errors.As(err, &invalid))
			require.Equal(t, tt.field, invalid.Field)
			require.ErrorIs(t, err, ErrAssembly)
		})
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	spec := DefaultSpec()
	spec.Updates.Root.Threshold = 0
	spec.Accounts[0].IdentityProvider = 10
	err := spec.Validate()

	var invalid *InvalidSpecError
	require.True(t, errors.As(err, &invalid))
	require.Equal(t, "accounts[0].identityProvider", invalid.Field)

	fields := []string{}
	for _, v := range invalid.Violations() {
		fields = append(fields, v.Field)
	}
	require.Equal(t, []string{"accounts[0].identityProvider", "updates.root.threshold"}, fields)
}

func TestAuthorityCovers(t *testing.T) {
	a := Authority{Kind: KindFresh, ID: 2, Repeat: 3}
	require.False(t, a.Covers(1))
	require.True(t, a.Covers(2))
	require.True(t, a.Covers(4))
	require.False(t, a.Covers(5))
}
