// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"

	"github.com/timpalnet/timpal-node/chaincfg"
)

const (
	defaultDataDirname  = "data"
	defaultLogFilename  = "timpalnode.log"
	defaultListenAddr   = ":9000"
	defaultLogLevel     = "info"
	envWalletPassword   = "TIMPAL_WALLET_PASSWORD"
	envWalletPIN        = "TIMPAL_WALLET_PIN"
)

// config defines the configuration options for timpalnode, populated from
// the command line via go-flags.
type config struct {
	DataDir    string `long:"datadir" description:"Directory to store data"`
	Listen     string `long:"listen" description:"Address to listen for HTTP API requests on"`
	TestNet    bool   `long:"testnet" description:"Use the test network"`
	SimNet     bool   `long:"simnet" description:"Use the simulation network (for integration tests)"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	WalletFile string `long:"walletfile" description:"Path to this validator's encrypted wallet vault"`
	DeviceID   string `long:"deviceid" description:"Device identifier enforced unique per validator identity"`
	NoPropose  bool   `long:"nopropose" description:"Run as a follower only: apply blocks but never propose"`
}

// loadConfig reads flags, applies defaults grounded in the original
// launcher's --port/--data-dir behavior, and resolves the active network
// parameters.
func loadConfig() (*config, *chaincfg.Params, error) {
	cfg := config{
		DataDir:    defaultDataDirname,
		Listen:     defaultListenAddr,
		DebugLevel: defaultLogLevel,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, nil, err
	}

	if cfg.TestNet && cfg.SimNet {
		return nil, nil, fmt.Errorf("testnet and simnet cannot both be specified")
	}

	var params *chaincfg.Params
	switch {
	case cfg.SimNet:
		params = chaincfg.SimNetParams()
	case cfg.TestNet:
		params = chaincfg.TestNetParams()
	default:
		params = chaincfg.MainNetParams()
	}

	cfg.DataDir = filepath.Join(cfg.DataDir, params.Name)
	if cfg.WalletFile == "" {
		cfg.WalletFile = filepath.Join(cfg.DataDir, "validator_wallet.json")
	}

	return &cfg, params, nil
}

func (cfg *config) logFilePath() string {
	return filepath.Join(cfg.DataDir, "logs", defaultLogFilename)
}
