// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command timpalwallet is an interactive CLI for creating and managing a
// TIMPAL wallet vault and for checking balances and sending TMPL against
// a running node's HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "timpalwallet",
		Short: "Create, restore, and operate a TIMPAL wallet",
	}
	root.PersistentFlags().StringVar(&walletFile, "wallet", "wallet_v2.json", "Path to the wallet vault file")
	root.PersistentFlags().StringVar(&nodeAPI, "node", "http://localhost:9001", "Node HTTP API base URL")

	root.AddCommand(newCreateCmd())
	root.AddCommand(newRestoreCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newBalanceCmd())
	root.AddCommand(newSendCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	walletFile string
	nodeAPI    string
)
