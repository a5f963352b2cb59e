// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package genesis

import (
	"fmt"
	"math/big"
	"slices"
)

// Validate checks every structural invariant of the spec. It returns nil or
// an *InvalidSpecError for the first violation found, with the full list
// available through Violations.
func (s LaunchSpec) Validate() error {
	v := &validator{}
	v.protocol(s.ProtocolVersion)
	v.outputs(s.Out)
	v.crypto(s.CryptographicParameters)
	v.authorities("anonymityRevokers", s.AnonymityRevokers)
	v.authorities("identityProviders", s.IdentityProviders)
	v.accounts(s.Accounts, s.IdentityProviders)
	v.updates(s.Updates)
	v.parameters(s.Parameters)
	return v.err()
}

type validator struct {
	violations []*InvalidSpecError
}

func (v *validator) fail(field, format string, args ...interface{}) {
	v.violations = append(v.violations, &InvalidSpecError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	})
}

func (v *validator) err() error {
	if len(v.violations) == 0 {
		return nil
	}
	first := *v.violations[0]
	first.violations = v.violations
	return &first
}

func (v *validator) protocol(version ProtocolVersion) {
	if !slices.Contains(SupportedProtocolVersions, version) {
		v.fail("protocolVersion", "unsupported protocol version %q", version)
	}
}

func (v *validator) outputs(out OutputPaths) {
	for _, p := range []struct{ field, value string }{
		{"out.updateKeys", out.UpdateKeys},
		{"out.accountKeys", out.AccountKeys},
		{"out.bakerKeys", out.BakerKeys},
		{"out.identityProviders", out.IdentityProviders},
		{"out.anonymityRevokers", out.AnonymityRevokers},
		{"out.genesis", out.Genesis},
		{"out.cryptographicParameters", out.CryptographicParameters},
		{"out.genesisHash", out.GenesisHash},
	} {
		if p.value == "" {
			v.fail(p.field, "output path must not be empty")
		}
	}
}

func (v *validator) crypto(c CryptoParams) {
	switch c.Kind {
	case CryptoParamsGenerate, CryptoParamsExisting:
	default:
		v.fail("cryptographicParameters.kind", "must be %q or %q, got %q", CryptoParamsGenerate, CryptoParamsExisting, c.Kind)
	}
}

func (v *validator) authorities(field string, list []Authority) {
	for i, a := range list {
		if a.Repeat < 1 {
			v.fail(fmt.Sprintf("%s[%d].repeat", field, i), "must be at least 1")
		}
	}
}

func (v *validator) accounts(accounts []Account, idps []Authority) {
	for i, acc := range accounts {
		path := fmt.Sprintf("accounts[%d]", i)
		if acc.Repeat < 1 {
			v.fail(path+".repeat", "must be at least 1")
		}
		v.threshold(path+".threshold", acc.Threshold, uint64(acc.NumKeys))
		if !slices.ContainsFunc(idps, func(a Authority) bool { return a.Covers(acc.IdentityProvider) }) {
			v.fail(path+".identityProvider", "no identity provider with id %d", acc.IdentityProvider)
		}
		balance, ok := v.amount(path+".balance", acc.Balance)
		if acc.Stake == "" {
			continue
		}
		stake, stakeOK := v.amount(path+".stake", acc.Stake)
		if ok && stakeOK && stake.Cmp(balance) > 0 {
			v.fail(path+".stake", "stake %s exceeds balance %s", acc.Stake, acc.Balance)
		}
	}
}

func (v *validator) updates(u Updates) {
	v.keys("updates.root.keys", u.Root.Keys)
	v.threshold("updates.root.threshold", u.Root.Threshold, u.Root.Size())
	v.keys("updates.level1.keys", u.Level1.Keys)
	v.threshold("updates.level1.threshold", u.Level1.Threshold, u.Level1.Size())
	v.keys("updates.level2.keys", u.Level2.Keys)

	size := u.Level2.Size()
	for _, na := range u.Level2.namedAuthorizations() {
		path := "updates.level2." + na.name
		v.threshold(path+".threshold", na.auth.Threshold, uint64(len(na.auth.AuthorizedKeys)))
		for j, idx := range na.auth.AuthorizedKeys {
			if uint64(idx) >= size {
				v.fail(fmt.Sprintf("%s.authorizedKeys[%d]", path, j), "key index %d out of range, level2 has %d keys", idx, size)
			}
		}
	}
}

func (v *validator) keys(field string, keys []KeyDescriptor) {
	for i, k := range keys {
		if k.Repeat < 1 {
			v.fail(fmt.Sprintf("%s[%d].repeat", field, i), "must be at least 1")
		}
	}
}

func (v *validator) threshold(field string, threshold uint32, size uint64) {
	switch {
	case threshold < 1:
		v.fail(field, "must be at least 1")
	case uint64(threshold) > size:
		v.fail(field, "threshold %d exceeds key set size %d", threshold, size)
	}
}

func (v *validator) parameters(p Parameters) {
	if p.SlotDuration == 0 {
		v.fail("parameters.slotDuration", "must be positive")
	}
	if p.EpochLength == 0 {
		v.fail("parameters.epochLength", "must be positive")
	}
	if p.MaxBlockEnergy == 0 {
		v.fail("parameters.maxBlockEnergy", "must be positive")
	}

	f := p.Finalization
	v.shrink("parameters.finalization.skipShrinkFactor", f.SkipShrinkFactor)
	v.shrink("parameters.finalization.delayShrinkFactor", f.DelayShrinkFactor)
	v.grow("parameters.finalization.skipGrowFactor", f.SkipGrowFactor)
	v.grow("parameters.finalization.delayGrowFactor", f.DelayGrowFactor)

	c := p.Chain
	v.fraction("parameters.chain.electionDifficulty", c.ElectionDifficulty)

	pool := c.PoolParameters
	v.fraction("parameters.chain.poolParameters.passiveFinalizationCommission", pool.PassiveFinalizationCommission)
	v.fraction("parameters.chain.poolParameters.passiveBakingCommission", pool.PassiveBakingCommission)
	v.fraction("parameters.chain.poolParameters.passiveTransactionCommission", pool.PassiveTransactionCommission)
	v.fractionRange("parameters.chain.poolParameters.finalizationCommissionRange", pool.FinalizationCommissionRange)
	v.fractionRange("parameters.chain.poolParameters.bakingCommissionRange", pool.BakingCommissionRange)
	v.fractionRange("parameters.chain.poolParameters.transactionCommissionRange", pool.TransactionCommissionRange)
	v.fraction("parameters.chain.poolParameters.capitalBound", pool.CapitalBound)
	v.amount("parameters.chain.poolParameters.minimumEquityCapital", pool.MinimumEquityCapital)
	if pool.LeverageBound.Denominator == 0 {
		v.fail("parameters.chain.poolParameters.leverageBound.denominator", "must be positive")
	}

	rewards := c.RewardParameters
	mint := rewards.MintDistribution
	v.fraction("parameters.chain.rewardParameters.mintDistribution.bakingReward", mint.BakingReward)
	v.fraction("parameters.chain.rewardParameters.mintDistribution.finalizationReward", mint.FinalizationReward)
	if mint.BakingReward+mint.FinalizationReward > 1 {
		v.fail("parameters.chain.rewardParameters.mintDistribution", "rewards sum to more than 1")
	}
	fees := rewards.TransactionFeeDistribution
	v.fraction("parameters.chain.rewardParameters.transactionFeeDistribution.baker", fees.Baker)
	v.fraction("parameters.chain.rewardParameters.transactionFeeDistribution.gasAccount", fees.GasAccount)
	if fees.Baker+fees.GasAccount > 1 {
		v.fail("parameters.chain.rewardParameters.transactionFeeDistribution", "shares sum to more than 1")
	}
	gas := rewards.GASRewards
	v.fraction("parameters.chain.rewardParameters.gASRewards.baker", gas.Baker)
	v.fraction("parameters.chain.rewardParameters.gASRewards.finalizationProof", gas.FinalizationProof)
	v.fraction("parameters.chain.rewardParameters.gASRewards.accountCreation", gas.AccountCreation)
	v.fraction("parameters.chain.rewardParameters.gASRewards.chainUpdate", gas.ChainUpdate)
}

func (v *validator) fraction(field string, value float64) {
	if value < 0 || value > 1 {
		v.fail(field, "%v is not in [0,1]", value)
	}
}

func (v *validator) fractionRange(field string, r Range) {
	v.fraction(field+".min", r.Min)
	v.fraction(field+".max", r.Max)
	if r.Min > r.Max {
		v.fail(field, "min %v exceeds max %v", r.Min, r.Max)
	}
}

func (v *validator) shrink(field string, value float64) {
	if value <= 0 || value >= 1 {
		v.fail(field, "%v is not in (0,1)", value)
	}
}

func (v *validator) grow(field string, value float64) {
	if value <= 1 {
		v.fail(field, "%v must be greater than 1", value)
	}
}

// amount parses a non-negative decimal integer of arbitrary size.
func (v *validator) amount(field, value string) (*big.Int, bool) {
	n, ok := new(big.Int).SetString(value, 10)
	if !ok || value[0] == '+' {
		v.fail(field, "%q is not a decimal integer", value)
		return nil, false
	}
	if n.Sign() < 0 {
		v.fail(field, "%q is negative", value)
		return nil, false
	}
	return n, true
}
