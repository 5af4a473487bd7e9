// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command timpalvalidator manages a validator's on-chain registration
// against a running node: registering a wallet's address as a
// validator, sending liveness heartbeats, and reporting status.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	walletFile string
	nodeAPI    string
	deviceID   string
)

func main() {
	root := &cobra.Command{
		Use:   "timpalvalidator",
		Short: "Register and manage a TIMPAL validator identity",
	}
	root.PersistentFlags().StringVar(&walletFile, "wallet", "wallet_v2.json", "Path to the wallet vault file")
	root.PersistentFlags().StringVar(&nodeAPI, "node", "http://localhost:9001", "Node HTTP API base URL")
	root.PersistentFlags().StringVar(&deviceID, "device-id", "", "Device identifier this validator runs on (enforced unique)")

	root.AddCommand(newRegisterCmd())
	root.AddCommand(newHeartbeatCmd())
	root.AddCommand(newStatusCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
