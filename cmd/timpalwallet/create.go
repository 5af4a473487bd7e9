// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timpalnet/timpal-node/chaincfg"
	"github.com/timpalnet/timpal-node/internal/walletio"
	"github.com/timpalnet/timpal-node/node"
)

const derivationPath = "m/44'/4007'/0'/0/0"

func newCreateCmd() *cobra.Command {
	var password, pin string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new BIP-39 wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}
			if len(pin) < 6 {
				return fmt.Errorf("pin must be at least 6 digits")
			}
			vault, phrase, err := walletio.Create(walletFile, password, derivationPath)
			if err != nil {
				return err
			}
			if err := vault.SetPIN(pin); err != nil {
				return err
			}
			if err := walletio.Save(walletFile, vault); err != nil {
				return err
			}
			ws, err := node.UnlockWallet(vault, password, chaincfg.MainNetParams())
			if err != nil {
				return err
			}
			fmt.Println("Wallet created.")
			fmt.Println("Address:", ws.Address())
			fmt.Println("Seed phrase (write this down, it is shown only once):")
			fmt.Println(" ", phrase)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password to encrypt the wallet under (min 8 chars)")
	cmd.Flags().StringVar(&pin, "pin", "", "PIN used to authorize sends (min 6 digits)")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	var password, pin, phrase string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore a wallet from an existing seed phrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			if phrase == "" {
				phrase = prompt("Seed phrase: ")
			}
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}
			if len(pin) < 6 {
				return fmt.Errorf("pin must be at least 6 digits")
			}
			vault, err := walletio.Restore(walletFile, phrase, password, derivationPath)
			if err != nil {
				return err
			}
			if err := vault.SetPIN(pin); err != nil {
				return err
			}
			if err := walletio.Save(walletFile, vault); err != nil {
				return err
			}
			ws, err := node.UnlockWallet(vault, password, chaincfg.MainNetParams())
			if err != nil {
				return err
			}
			fmt.Println("Wallet restored.")
			fmt.Println("Address:", ws.Address())
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password to encrypt the wallet under (min 8 chars)")
	cmd.Flags().StringVar(&pin, "pin", "", "PIN used to authorize sends (min 6 digits)")
	cmd.Flags().StringVar(&phrase, "phrase", "", "Seed phrase to restore from (prompted if omitted)")
	return cmd
}

func newInfoCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print this wallet's address",
		RunE: func(cmd *cobra.Command, args []string) error {
			vault, err := walletio.Load(walletFile)
			if err != nil {
				return err
			}
			if password == "" {
				password = prompt("Password: ")
			}
			ws, err := node.UnlockWallet(vault, password, chaincfg.MainNetParams())
			if err != nil {
				return err
			}
			fmt.Println("Address:", ws.Address())
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Wallet password")
	return cmd
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
