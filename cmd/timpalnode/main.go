// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command timpalnode runs a TIMPAL validator or follower node: it wires
// the ledger, mempool, P2P authenticator, and storage packages into a
// running process, optionally proposes blocks during this validator's
// TSW window, and serves the HTTP API named by the wire contract.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timpalnet/timpal-node/internal/walletio"
	"github.com/timpalnet/timpal-node/ledger"
	"github.com/timpalnet/timpal-node/node"
	"github.com/timpalnet/timpal-node/transaction"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, params, err := loadConfig()
	if err != nil {
		return err
	}

	initLogRotator(cfg.logFilePath())
	setLogLevel(cfg.DebugLevel)
	log.Infof("starting timpalnode on %s (datadir %s)", params.Name, cfg.DataDir)
	ledger.Configure(params.BlockReward)
	transaction.Configure(params.MaxTransactionAmount, params.Fee)

	var identity *node.ProposerIdentity
	var wallet *node.WalletService
	if !cfg.NoPropose {
		password := os.Getenv(envWalletPassword)
		if password == "" {
			return fmt.Errorf("%s must be set to unlock the validator wallet (or pass --nopropose)", envWalletPassword)
		}
		vault, err := walletio.Load(cfg.WalletFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("loading validator wallet: %w", err)
			}
			vault, _, err = walletio.Create(cfg.WalletFile, password, "m/44'/4007'/0'/0/0")
			if err != nil {
				return fmt.Errorf("creating validator wallet: %w", err)
			}
			log.Infof("created new validator wallet at %s", cfg.WalletFile)
		}
		if pin := os.Getenv(envWalletPIN); pin != "" && !vault.PinSet {
			if err := vault.SetPIN(pin); err != nil {
				return fmt.Errorf("setting wallet pin: %w", err)
			}
			if err := walletio.Save(cfg.WalletFile, vault); err != nil {
				return fmt.Errorf("saving wallet pin: %w", err)
			}
		}
		ws, err := node.UnlockWallet(vault, password, params)
		if err != nil {
			return fmt.Errorf("unlocking validator wallet: %w", err)
		}
		wallet = ws
		identity = &node.ProposerIdentity{Address: ws.Address()}
		log.Infof("validator identity: %s", ws.Address())
	}

	n, err := node.New(node.Config{
		DataDir:  cfg.DataDir,
		Params:   params,
		Identity: identity,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("starting node: %w", err)
	}
	defer n.Close()

	if wallet != nil {
		n.SetWallet(wallet)
	}
	if cfg.DeviceID != "" {
		if err := n.RequireSingleDevice(cfg.DeviceID); err != nil {
			return err
		}
	}

	n.Run()
	defer n.StopProposing()

	server := &http.Server{Addr: cfg.Listen, Handler: n.Handler()}
	serveErr := make(chan error, 1)
	go func() {
		log.Infof("serving HTTP API on %s", cfg.Listen)
		serveErr <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server: %w", err)
		}
	case sig := <-sigCh:
		log.Infof("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Warnf("HTTP server shutdown: %v", err)
		}
	}
	return nil
}
