// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package prompts

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/luxfi/lc1c/pkg/constants"
)

func validateExistingFilepath(input string) error {
	if fileInfo, err := os.Stat(input); err == nil && !fileInfo.IsDir() {
		return nil
	}
	return errors.New("file doesn't exist")
}

func validateBiggerThanZero(input string) error {
	val, err := strconv.ParseUint(input, 0, 64)
	if err != nil {
		return err
	}
	if val == 0 {
		return errors.New("the value must be bigger than zero")
	}
	return nil
}

func validateUint32(input string) error {
	_, err := strconv.ParseUint(input, 0, 32)
	return err
}

func validateNonEmpty(input string) error {
	if input == "" {
		return errors.New("string cannot be empty")
	}
	return nil
}

// ValidateAmount accepts non-negative decimal integers of any size, the
// format balances and stakes are written in.
func ValidateAmount(input string) error {
	n, ok := new(big.Int).SetString(input, 10)
	if !ok || strings.HasPrefix(input, "+") {
		return fmt.Errorf("%q is not a decimal integer", input)
	}
	if n.Sign() < 0 {
		return errors.New("the amount cannot be negative")
	}
	return nil
}

// ValidateFraction accepts values in [0,1].
func ValidateFraction(val float64) error {
	if val < 0 || val > 1 {
		return errors.New("the value must be between 0 and 1")
	}
	return nil
}

// ValidateChainFolder accepts chain-N folder names.
func ValidateChainFolder(input string) error {
	n, ok := strings.CutPrefix(input, constants.ChainFolderPrefix)
	if !ok {
		return fmt.Errorf("folder must start with %q", constants.ChainFolderPrefix)
	}
	if _, err := strconv.ParseUint(n, 10, 32); err != nil {
		return fmt.Errorf("invalid chain folder number %q", n)
	}
	return nil
}
