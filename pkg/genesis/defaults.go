// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package genesis

const (
	defaultLeadershipElectionNonce = "d1bc8d3ba4afc7e109612cb73acbdddac052c93025aa1f82942edabb7deb82a1"
	defaultGenesisString           = "Local genesis parameters."

	level2KeyCount = 7
)

// DefaultSpec returns the documented single-baker local genesis. Every value
// here passes Validate and doubles as a reference for the valid ranges.
func DefaultSpec() LaunchSpec {
	return LaunchSpec{
		ProtocolVersion: ProtocolVersion5,
		Out: OutputPaths{
			UpdateKeys:              "./update-keys",
			AccountKeys:             "./accounts",
			BakerKeys:               "./bakers",
			IdentityProviders:       "./idps",
			AnonymityRevokers:       "./ars",
			Genesis:                 "./genesis.dat",
			CryptographicParameters: "./global",
			DeleteExisting:          true,
			GenesisHash:             "./genesis_hash",
		},
		CryptographicParameters: CryptoParams{
			Kind:          CryptoParamsGenerate,
			GenesisString: defaultGenesisString,
		},
		AnonymityRevokers: []Authority{{Kind: KindFresh, ID: 1, Repeat: 3}},
		IdentityProviders: []Authority{{Kind: KindFresh, ID: 0, Repeat: 3}},
		Accounts: []Account{
			{
				Kind:             KindFresh,
				Balance:          "3500000000000000",
				Stake:            "3000000000000000",
				Template:         "baker",
				IdentityProvider: 0,
				NumKeys:          1,
				Threshold:        1,
				Repeat:           1,
			},
			{
				Kind:             KindFresh,
				Balance:          "10000000000000000",
				Template:         "foundation",
				IdentityProvider: 0,
				NumKeys:          1,
				Threshold:        1,
				Repeat:           1,
				Foundation:       true,
			},
			{
				Kind:             KindFresh,
				Balance:          "2000000000000",
				Template:         "stagenet",
				IdentityProvider: 0,
				NumKeys:          1,
				Threshold:        1,
				Repeat:           100,
			},
		},
		Updates: Updates{
			Root: KeySet{
				Threshold: 5,
				Keys:      []KeyDescriptor{{Kind: KindFresh, Repeat: 7}},
			},
			Level1: KeySet{
				Threshold: 7,
				Keys:      []KeyDescriptor{{Kind: KindFresh, Repeat: 15}},
			},
			Level2: defaultLevel2(),
		},
		Parameters: Parameters{
			SlotDuration:            250,
			LeadershipElectionNonce: defaultLeadershipElectionNonce,
			EpochLength:             900,
			MaxBlockEnergy:          3000000,
			Finalization: Finalization{
				MinimumSkip:       0,
				CommitteeMaxSize:  1000,
				WaitingTime:       100,
				SkipShrinkFactor:  0.5,
				SkipGrowFactor:    2,
				DelayShrinkFactor: 0.5,
				DelayGrowFactor:   2,
				AllowZeroDelay:    true,
			},
			Chain: ChainParams{
				Version:              "v1",
				ElectionDifficulty:   0.05,
				EuroPerEnergy:        0.000001,
				MicroCCDPerEuro:      100000000,
				AccountCreationLimit: 10,
				TimeParameters: TimeParameters{
					RewardPeriodLength: 4,
					MintPerPayday:      0.000261157877,
				},
				PoolParameters: PoolParameters{
					PassiveFinalizationCommission: 1,
					PassiveBakingCommission:       0.1,
					PassiveTransactionCommission:  0.1,
					FinalizationCommissionRange:   Range{Min: 0.5, Max: 1},
					BakingCommissionRange:         Range{Min: 0.05, Max: 0.1},
					TransactionCommissionRange:    Range{Min: 0.05, Max: 0.2},
					MinimumEquityCapital:          "100",
					CapitalBound:                  0.25,
					LeverageBound:                 Ratio{Numerator: 3, Denominator: 1},
				},
				CooldownParameters: CooldownParameters{
					PoolOwnerCooldown: 3600,
					DelegatorCooldown: 1800,
				},
				RewardParameters: RewardParameters{
					MintDistribution: MintDistribution{
						BakingReward:       0.6,
						FinalizationReward: 0.3,
					},
					TransactionFeeDistribution: TransactionFeeDistribution{
						Baker:      0.45,
						GasAccount: 0.45,
					},
					GASRewards: GASRewards{
						Baker:             0.25,
						FinalizationProof: 0.005,
						AccountCreation:   0.02,
						ChainUpdate:       0.005,
					},
				},
			},
		},
	}
}

func defaultLevel2() Level2Keys {
	all := func() Authorization {
		keys := make([]uint32, level2KeyCount)
		for i := range keys {
			keys[i] = uint32(i)
		}
		return Authorization{AuthorizedKeys: keys, Threshold: level2KeyCount}
	}
	return Level2Keys{
		Keys:                       []KeyDescriptor{{Kind: KindFresh, Repeat: level2KeyCount}},
		Emergency:                  all(),
		Protocol:                   all(),
		ElectionDifficulty:         all(),
		EuroPerEnergy:              all(),
		MicroCCDPerEuro:            all(),
		FoundationAccount:          all(),
		MintDistribution:           all(),
		TransactionFeeDistribution: all(),
		GasRewards:                 all(),
		PoolParameters:             all(),
		AddAnonymityRevoker:        all(),
		AddIdentityProvider:        all(),
		CooldownParameters:         all(),
		TimeParameters:             all(),
	}
}
