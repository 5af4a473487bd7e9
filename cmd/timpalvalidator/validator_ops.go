// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/timpalnet/timpal-node/chaincfg"
	"github.com/timpalnet/timpal-node/internal/walletio"
	"github.com/timpalnet/timpal-node/node"
	"github.com/timpalnet/timpal-node/transaction"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func newRegisterCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Submit a validator_registration transaction for this wallet's address",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := unlockForSigning(password)
			if err != nil {
				return err
			}
			id := deviceID
			if id == "" {
				id, err = randomDeviceID()
				if err != nil {
					return err
				}
				fmt.Println("Generated device id:", id)
			}

			tx := &transaction.Transaction{
				Type:      transaction.TypeValidatorRegistration,
				Sender:    ws.Address(),
				PublicKey: ws.PublicKeyHex(),
				DeviceID:  id,
				Timestamp: nowUnix(),
			}
			if err := ws.Sign(tx); err != nil {
				return fmt.Errorf("signing registration: %w", err)
			}
			return submitTransaction(tx)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Wallet password")
	return cmd
}

func newHeartbeatCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "heartbeat",
		Short: "Send a validator_heartbeat transaction proving this validator is live",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := unlockForSigning(password)
			if err != nil {
				return err
			}
			tx := &transaction.Transaction{
				Type:      transaction.TypeValidatorHeartbeat,
				Sender:    ws.Address(),
				PublicKey: ws.PublicKeyHex(),
				Timestamp: nowUnix(),
			}
			if err := ws.Sign(tx); err != nil {
				return fmt.Errorf("signing heartbeat: %w", err)
			}
			return submitTransaction(tx)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Wallet password")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var address, password string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report this validator's on-chain account status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address == "" {
				ws, err := unlockForSigning(password)
				if err != nil {
					return err
				}
				address = ws.Address()
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

			healthResp, err := httpClient.Get(nodeAPI + "/api/health")
			if err == nil {
				defer healthResp.Body.Close()
				var health map[string]interface{}
				if json.NewDecoder(healthResp.Body).Decode(&health) == nil {
					fmt.Println("Active validator count on chain:", health["validator_count"])
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "Address to query (defaults to this wallet's own address)")
	cmd.Flags().StringVar(&password, "password", "", "Wallet password, needed only when --address is omitted")
	return cmd
}

func unlockForSigning(password string) (*node.WalletService, error) {
	vault, err := walletio.Load(walletFile)
	if err != nil {
		return nil, fmt.Errorf("loading wallet: %w", err)
	}
	if password == "" {
		password = prompt("Password: ")
	}
	return node.UnlockWallet(vault, password, chaincfg.MainNetParams())
}

func submitTransaction(tx *transaction.Transaction) error {
	body, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	resp, err := httpClient.Post(nodeAPI+"/submit_transaction", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("contacting node at %s: %w", nodeAPI, err)
	}
	defer resp.Body.Close()
	var result map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rejected: %s", result["error"])
	}
	fmt.Println("Accepted. Transaction hash:", result["tx_hash"])
	return nil
}

func randomDeviceID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}

func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

func prompt(label string) string {
	fmt.Print(label)
	var line string
	fmt.Scanln(&line)
	return line
}
