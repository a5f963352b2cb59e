// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package genesis assembles the genesis configuration handed to the chain
// launcher. It owns the LaunchSpec data model, its invariants, the four
// configuration strategies and the payloads they produce.
package genesis

// ProtocolVersion is the chain protocol the genesis targets.
type ProtocolVersion string

const (
	ProtocolVersion1 ProtocolVersion = "1"
	ProtocolVersion2 ProtocolVersion = "2"
	ProtocolVersion3 ProtocolVersion = "3"
	ProtocolVersion4 ProtocolVersion = "4"
	ProtocolVersion5 ProtocolVersion = "5"
	ProtocolVersion6 ProtocolVersion = "6"
)

// SupportedProtocolVersions lists the versions the generator accepts.
var SupportedProtocolVersions = []ProtocolVersion{
	ProtocolVersion1,
	ProtocolVersion2,
	ProtocolVersion3,
	ProtocolVersion4,
	ProtocolVersion5,
	ProtocolVersion6,
}

const (
	KindFresh    = "fresh"
	KindExisting = "existing"

	CryptoParamsGenerate = "generate"
	CryptoParamsExisting = "existing"
)

// LaunchSpec is the full structured genesis description. Field order is the
// canonical encoding order; do not introduce maps here.
type LaunchSpec struct {
	ProtocolVersion         ProtocolVersion `json:"protocolVersion" yaml:"protocolVersion"`
	Out                     OutputPaths     `json:"out" yaml:"out"`
	CryptographicParameters CryptoParams    `json:"cryptographicParameters" yaml:"cryptographicParameters"`
	AnonymityRevokers       []Authority     `json:"anonymityRevokers" yaml:"anonymityRevokers"`
	IdentityProviders       []Authority     `json:"identityProviders" yaml:"identityProviders"`
	Accounts                []Account       `json:"accounts" yaml:"accounts"`
	Updates                 Updates         `json:"updates" yaml:"updates"`
	Parameters              Parameters      `json:"parameters" yaml:"parameters"`
}

// OutputPaths are where the generator writes its artifacts. The paths are
// handed over as-is.
type OutputPaths struct {
	UpdateKeys              string `json:"updateKeys" yaml:"updateKeys"`
	AccountKeys             string `json:"accountKeys" yaml:"accountKeys"`
	BakerKeys               string `json:"bakerKeys" yaml:"bakerKeys"`
	IdentityProviders       string `json:"identityProviders" yaml:"identityProviders"`
	AnonymityRevokers       string `json:"anonymityRevokers" yaml:"anonymityRevokers"`
	Genesis                 string `json:"genesis" yaml:"genesis"`
	CryptographicParameters string `json:"cryptographicParameters" yaml:"cryptographicParameters"`
	DeleteExisting          bool   `json:"deleteExisting" yaml:"deleteExisting"`
	GenesisHash             string `json:"genesisHash" yaml:"genesisHash"`
}

type CryptoParams struct {
	Kind          string `json:"kind" yaml:"kind"`
	GenesisString string `json:"genesisString,omitempty" yaml:"genesisString,omitempty"`
	Source        string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Authority describes Repeat consecutive anonymity revokers or identity
// providers starting at ID.
type Authority struct {
	Kind   string `json:"kind" yaml:"kind"`
	ID     uint32 `json:"id" yaml:"id"`
	Repeat uint32 `json:"repeat" yaml:"repeat"`
}

// Covers reports whether the descriptor generates the given id.
func (a Authority) Covers(id uint32) bool {
	return id >= a.ID && uint64(id) < uint64(a.ID)+uint64(a.Repeat)
}

type Account struct {
	Kind             string `json:"kind" yaml:"kind"`
	Balance          string `json:"balance" yaml:"balance"`
	Stake            string `json:"stake,omitempty" yaml:"stake,omitempty"`
	Template         string `json:"template" yaml:"template"`
	IdentityProvider uint32 `json:"identityProvider" yaml:"identityProvider"`
	NumKeys          uint32 `json:"numKeys" yaml:"numKeys"`
	Threshold        uint32 `json:"threshold" yaml:"threshold"`
	Repeat           uint32 `json:"repeat" yaml:"repeat"`
	Foundation       bool   `json:"foundation,omitempty" yaml:"foundation,omitempty"`
}

type KeyDescriptor struct {
	Kind   string `json:"kind" yaml:"kind"`
	Repeat uint32 `json:"repeat" yaml:"repeat"`
}

// KeySet is a root or level 1 key set.
type KeySet struct {
	Threshold uint32          `json:"threshold" yaml:"threshold"`
	Keys      []KeyDescriptor `json:"keys" yaml:"keys"`
}

// Size is the number of keys the set generates.
func (k KeySet) Size() uint64 {
	return keyCount(k.Keys)
}

// Authorization lists the level 2 key indices allowed to change one parameter.
type Authorization struct {
	AuthorizedKeys []uint32 `json:"authorizedKeys" yaml:"authorizedKeys"`
	Threshold      uint32   `json:"threshold" yaml:"threshold"`
}

type Level2Keys struct {
	Keys                       []KeyDescriptor `json:"keys" yaml:"keys"`
	Emergency                  Authorization   `json:"emergency" yaml:"emergency"`
	Protocol                   Authorization   `json:"protocol" yaml:"protocol"`
	ElectionDifficulty         Authorization   `json:"electionDifficulty" yaml:"electionDifficulty"`
	EuroPerEnergy              Authorization   `json:"euroPerEnergy" yaml:"euroPerEnergy"`
	MicroCCDPerEuro            Authorization   `json:"microCCDPerEuro" yaml:"microCCDPerEuro"`
	FoundationAccount          Authorization   `json:"foundationAccount" yaml:"foundationAccount"`
	MintDistribution           Authorization   `json:"mintDistribution" yaml:"mintDistribution"`
	TransactionFeeDistribution Authorization   `json:"transactionFeeDistribution" yaml:"transactionFeeDistribution"`
	GasRewards                 Authorization   `json:"gasRewards" yaml:"gasRewards"`
	PoolParameters             Authorization   `json:"poolParameters" yaml:"poolParameters"`
	AddAnonymityRevoker        Authorization   `json:"addAnonymityRevoker" yaml:"addAnonymityRevoker"`
	AddIdentityProvider        Authorization   `json:"addIdentityProvider" yaml:"addIdentityProvider"`
	CooldownParameters         Authorization   `json:"cooldownParameters" yaml:"cooldownParameters"`
	TimeParameters             Authorization   `json:"timeParameters" yaml:"timeParameters"`
}

// Size is the number of level 2 keys.
func (l Level2Keys) Size() uint64 {
	return keyCount(l.Keys)
}

// namedAuthorizations returns the authorizations in canonical order together
// with their field names.
func (l Level2Keys) namedAuthorizations() []namedAuthorization {
	return []namedAuthorization{
		{"emergency", l.Emergency},
		{"protocol", l.Protocol},
		{"electionDifficulty", l.ElectionDifficulty},
		{"euroPerEnergy", l.EuroPerEnergy},
		{"microCCDPerEuro", l.MicroCCDPerEuro},
		{"foundationAccount", l.FoundationAccount},
		{"mintDistribution", l.MintDistribution},
		{"transactionFeeDistribution", l.TransactionFeeDistribution},
		{"gasRewards", l.GasRewards},
		{"poolParameters", l.PoolParameters},
		{"addAnonymityRevoker", l.AddAnonymityRevoker},
		{"addIdentityProvider", l.AddIdentityProvider},
		{"cooldownParameters", l.CooldownParameters},
		{"timeParameters", l.TimeParameters},
	}
}

type namedAuthorization struct {
	name string
	auth Authorization
}

type Updates struct {
	Root   KeySet     `json:"root" yaml:"root"`
	Level1 KeySet     `json:"level1" yaml:"level1"`
	Level2 Level2Keys `json:"level2" yaml:"level2"`
}

type Parameters struct {
	SlotDuration            uint64       `json:"slotDuration" yaml:"slotDuration"`
	LeadershipElectionNonce string       `json:"leadershipElectionNonce" yaml:"leadershipElectionNonce"`
	EpochLength             uint64       `json:"epochLength" yaml:"epochLength"`
	MaxBlockEnergy          uint64       `json:"maxBlockEnergy" yaml:"maxBlockEnergy"`
	Finalization            Finalization `json:"finalization" yaml:"finalization"`
	Chain                   ChainParams  `json:"chain" yaml:"chain"`
}

type Finalization struct {
	MinimumSkip       uint64  `json:"minimumSkip" yaml:"minimumSkip"`
	CommitteeMaxSize  uint64  `json:"committeeMaxSize" yaml:"committeeMaxSize"`
	WaitingTime       uint64  `json:"waitingTime" yaml:"waitingTime"`
	SkipShrinkFactor  float64 `json:"skipShrinkFactor" yaml:"skipShrinkFactor"`
	SkipGrowFactor    float64 `json:"skipGrowFactor" yaml:"skipGrowFactor"`
	DelayShrinkFactor float64 `json:"delayShrinkFactor" yaml:"delayShrinkFactor"`
	DelayGrowFactor   float64 `json:"delayGrowFactor" yaml:"delayGrowFactor"`
	AllowZeroDelay    bool    `json:"allowZeroDelay" yaml:"allowZeroDelay"`
}

type ChainParams struct {
	Version              string             `json:"version" yaml:"version"`
	ElectionDifficulty   float64            `json:"electionDifficulty" yaml:"electionDifficulty"`
	EuroPerEnergy        float64            `json:"euroPerEnergy" yaml:"euroPerEnergy"`
	MicroCCDPerEuro      uint64             `json:"microCCDPerEuro" yaml:"microCCDPerEuro"`
	AccountCreationLimit uint32             `json:"accountCreationLimit" yaml:"accountCreationLimit"`
	TimeParameters       TimeParameters     `json:"timeParameters" yaml:"timeParameters"`
	PoolParameters       PoolParameters     `json:"poolParameters" yaml:"poolParameters"`
	CooldownParameters   CooldownParameters `json:"cooldownParameters" yaml:"cooldownParameters"`
	RewardParameters     RewardParameters   `json:"rewardParameters" yaml:"rewardParameters"`
}

type TimeParameters struct {
	RewardPeriodLength uint64  `json:"rewardPeriodLength" yaml:"rewardPeriodLength"`
	MintPerPayday      float64 `json:"mintPerPayday" yaml:"mintPerPayday"`
}

// Range is an inclusive commission range.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

type Ratio struct {
	Numerator   uint64 `json:"numerator" yaml:"numerator"`
	Denominator uint64 `json:"denominator" yaml:"denominator"`
}

type PoolParameters struct {
	PassiveFinalizationCommission float64 `json:"passiveFinalizationCommission" yaml:"passiveFinalizationCommission"`
	PassiveBakingCommission       float64 `json:"passiveBakingCommission" yaml:"passiveBakingCommission"`
	PassiveTransactionCommission  float64 `json:"passiveTransactionCommission" yaml:"passiveTransactionCommission"`
	FinalizationCommissionRange   Range   `json:"finalizationCommissionRange" yaml:"finalizationCommissionRange"`
	BakingCommissionRange         Range   `json:"bakingCommissionRange" yaml:"bakingCommissionRange"`
	TransactionCommissionRange    Range   `json:"transactionCommissionRange" yaml:"transactionCommissionRange"`
	MinimumEquityCapital          string  `json:"minimumEquityCapital" yaml:"minimumEquityCapital"`
	CapitalBound                  float64 `json:"capitalBound" yaml:"capitalBound"`
	LeverageBound                 Ratio   `json:"leverageBound" yaml:"leverageBound"`
}

type CooldownParameters struct {
	PoolOwnerCooldown uint64 `json:"poolOwnerCooldown" yaml:"poolOwnerCooldown"`
	DelegatorCooldown uint64 `json:"delegatorCooldown" yaml:"delegatorCooldown"`
}

type RewardParameters struct {
	MintDistribution           MintDistribution           `json:"mintDistribution" yaml:"mintDistribution"`
	TransactionFeeDistribution TransactionFeeDistribution `json:"transactionFeeDistribution" yaml:"transactionFeeDistribution"`
	GASRewards                 GASRewards                 `json:"gASRewards" yaml:"gASRewards"`
}

type MintDistribution struct {
	BakingReward       float64 `json:"bakingReward" yaml:"bakingReward"`
	FinalizationReward float64 `json:"finalizationReward" yaml:"finalizationReward"`
}

type TransactionFeeDistribution struct {
	Baker      float64 `json:"baker" yaml:"baker"`
	GasAccount float64 `json:"gasAccount" yaml:"gasAccount"`
}

type GASRewards struct {
	Baker             float64 `json:"baker" yaml:"baker"`
	FinalizationProof float64 `json:"finalizationProof" yaml:"finalizationProof"`
	AccountCreation   float64 `json:"accountCreation" yaml:"accountCreation"`
	ChainUpdate       float64 `json:"chainUpdate" yaml:"chainUpdate"`
}

func keyCount(keys []KeyDescriptor) uint64 {
	var n uint64
	for _, k := range keys {
		n += uint64(k.Repeat)
	}
	return n
}

// Clone returns a deep copy so a submitted draft never aliases later edits.
func (s LaunchSpec) Clone() LaunchSpec {
	c := s
	c.AnonymityRevokers = append([]Authority(nil), s.AnonymityRevokers...)
	c.IdentityProviders = append([]Authority(nil), s.IdentityProviders...)
	c.Accounts = append([]Account(nil), s.Accounts...)
	c.Updates.Root.Keys = append([]KeyDescriptor(nil), s.Updates.Root.Keys...)
	c.Updates.Level1.Keys = append([]KeyDescriptor(nil), s.Updates.Level1.Keys...)
	c.Updates.Level2.Keys = append([]KeyDescriptor(nil), s.Updates.Level2.Keys...)
	l2 := &c.Updates.Level2
	for _, auth := range []*Authorization{
		&l2.Emergency, &l2.Protocol, &l2.ElectionDifficulty, &l2.EuroPerEnergy,
		&l2.MicroCCDPerEuro, &l2.FoundationAccount, &l2.MintDistribution,
		&l2.TransactionFeeDistribution, &l2.GasRewards, &l2.PoolParameters,
		&l2.AddAnonymityRevoker, &l2.AddIdentityProvider, &l2.CooldownParameters,
		&l2.TimeParameters,
	} {
		auth.AuthorizedKeys = append([]uint32(nil), auth.AuthorizedKeys...)
	}
	return c
}
