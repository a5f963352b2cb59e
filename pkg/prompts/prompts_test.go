// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package prompts

import (
	"errors"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/require"
)

func mockPrompt(t *testing.T, answers ...string) {
	orig := promptUIRunner
	t.Cleanup(func() { promptUIRunner = orig })
	promptUIRunner = func(p promptui.Prompt) (string, error) {
		if len(answers) == 0 {
			return "", errors.New("no more answers")
		}
		answer := answers[0]
		answers = answers[1:]
		if p.Validate != nil {
			if err := p.Validate(answer); err != nil {
				return "", err
			}
		}
		return answer, nil
	}
}

func mockSelect(t *testing.T, choices ...int) {
	orig := promptUISelectRunner
	t.Cleanup(func() { promptUISelectRunner = orig })
	promptUISelectRunner = func(s promptui.Select) (int, string, error) {
		idx := choices[0]
		choices = choices[1:]
		items := s.Items.([]string)
		return idx, items[idx], nil
	}
}

func TestCaptureUint64(t *testing.T) {
	p := NewPrompter()
	mockPrompt(t, "250")
	v, err := p.CaptureUint64("slot duration")
	require.NoError(t, err)
	require.Equal(t, uint64(250), v)

	mockPrompt(t, "0")
	_, err = p.CaptureUint64("slot duration")
	require.Error(t, err)
}

func TestCaptureFloat(t *testing.T) {
	p := NewPrompter()
	mockPrompt(t, "0.25")
	v, err := p.CaptureFloat("capital bound", ValidateFraction)
	require.NoError(t, err)
	require.InDelta(t, 0.25, v, 1e-12)

	mockPrompt(t, "1.5")
	_, err = p.CaptureFloat("capital bound", ValidateFraction)
	require.Error(t, err)
}

func TestCaptureYesNo(t *testing.T) {
	p := NewPrompter()
	mockSelect(t, 0)
	yes, err := p.CaptureYesNo("continue?")
	require.NoError(t, err)
	require.True(t, yes)

	mockSelect(t, 0)
	yes, err = p.CaptureNoYes("continue?")
	require.NoError(t, err)
	require.False(t, yes)
}

func TestCaptureListDecision(t *testing.T) {
	p := NewPrompter()
	// options: a, b, Done, Cancel
	mockSelect(t, 1, 0, 2)
	seen := []string{}
	cancelled, err := CaptureListDecision(p, "edit", []string{"a", "b"}, func(c string) error {
		seen = append(seen, c)
		return nil
	})
	require.NoError(t, err)
	require.False(t, cancelled)
	require.Equal(t, []string{"b", "a"}, seen)

	mockSelect(t, 3)
	cancelled, err = CaptureListDecision(p, "edit", []string{"a", "b"}, nil)
	require.NoError(t, err)
	require.True(t, cancelled)
}

func TestValidations(t *testing.T) {
	require.NoError(t, ValidateAmount("0"))
	require.NoError(t, ValidateAmount("10000000000000000000000"))
	require.Error(t, ValidateAmount("-1"))
	require.Error(t, ValidateAmount("+1"))
	require.Error(t, ValidateAmount("1.5"))
	require.Error(t, ValidateAmount(""))

	require.NoError(t, ValidateChainFolder("chain-12"))
	require.Error(t, ValidateChainFolder("chain-"))
	require.Error(t, ValidateChainFolder("folder-1"))

	require.NoError(t, ValidateFraction(0))
	require.NoError(t, ValidateFraction(1))
	require.Error(t, ValidateFraction(-0.1))
}
