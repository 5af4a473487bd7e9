// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/timpalnet/timpal-node/chaincfg"
	"github.com/timpalnet/timpal-node/internal/walletio"
	"github.com/timpalnet/timpal-node/node"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func newBalanceCmd() *cobra.Command {
	var address, password string
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Check an address's balance against a running node",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address == "" {
				addr, err := defaultAddress(password)
				if err != nil {
					return err
				}
				address = addr
			}
			resp, err := httpClient.Get(nodeAPI + "/api/account/" + address)
			if err != nil {
				return fmt.Errorf("contacting node at %s: %w", nodeAPI, err)
			}
			defer resp.Body.Close()

			var account map[string]interface{}
			if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			fmt.Println("Address:", address)
			fmt.Println("Balance (pals):", account["balance"])
			fmt.Println("Nonce:", account["nonce"])
			fmt.Println("Pending nonce:", account["pending_nonce"])
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "Address to query (defaults to this wallet's own address)")
	cmd.Flags().StringVar(&password, "password", "", "Wallet password, needed only when --address is omitted")
	return cmd
}

func newSendCmd() *cobra.Command {
	var password, pin, recipient string
	var amount float64
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send TMPL to another address via a running node's /send endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = prompt("Password: ")
			}
			if pin == "" {
				pin = prompt("PIN: ")
			}
			vault, err := walletio.Load(walletFile)
			if err != nil {
				return err
			}
			ws, err := node.UnlockWallet(vault, password, chaincfg.MainNetParams())
			if err != nil {
				return err
			}

			body, err := json.Marshal(map[string]interface{}{
				"sender":      ws.Address(),
				"recipient":   recipient,
				"amount_tmpl": amount,
				"pin":         pin,
			})
			if err != nil {
				return err
			}
			resp, err := httpClient.Post(nodeAPI+"/send", "application/json", bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("contacting node at %s: %w", nodeAPI, err)
			}
			defer resp.Body.Close()

			var result map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("send rejected: %s", result["error"])
			}
			fmt.Println("Sent. Transaction hash:", result["tx_hash"])
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Wallet password")
	cmd.Flags().StringVar(&pin, "pin", "", "Send-authorization PIN")
	cmd.Flags().StringVar(&recipient, "to", "", "Recipient address")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Amount to send, in TMPL")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func defaultAddress(password string) (string, error) {
	vault, err := walletio.Load(walletFile)
	if err != nil {
		return "", err
	}
	if password == "" {
		password = prompt("Password: ")
	}
	ws, err := node.UnlockWallet(vault, password, chaincfg.MainNetParams())
	if err != nil {
		return "", err
	}
	return ws.Address(), nil
}
