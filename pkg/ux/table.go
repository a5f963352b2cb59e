// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ux

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintBalances renders address balances sorted by address. The header line
// carries the block the balances belong to.
func PrintBalances(w io.Writer, number uint64, hash string, balances map[string]string) error {
	if _, err := fmt.Fprintf(w, "Block %d  %s\n", number, hash); err != nil {
		return err
	}
	addresses := make([]string, 0, len(balances))
	for address := range balances {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	table := tablewriter.NewWriter(w)
	table.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.Global = tw.AlignLeft
	})
	table.Header("Address", "Balance")
	for _, address := range addresses {
		if err := table.Append([]string{address, balances[address]}); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintList renders one column of values under header.
func PrintList(w io.Writer, header string, values []string) error {
	table := tablewriter.NewWriter(w)
	table.Header(header)
	for _, v := range values {
		if err := table.Append([]string{v}); err != nil {
			return err
		}
	}
	return table.Render()
}
