// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "vaultd" serves the vault program over JSON-RPC.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/ulimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/vaultvm/config"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/logger"
	"github.com/ava-labs/vaultvm/pebble"
	"github.com/ava-labs/vaultvm/server"
	"github.com/ava-labs/vaultvm/utils"
	"github.com/ava-labs/vaultvm/version"
	"github.com/ava-labs/vaultvm/vm"
)

const (
	routeBase    = "ext"
	dbNamespace  = "db"
	loggerName   = "vaultd"
	httpMetrics  = "http"
	pebbleMetric = "pebble"
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:        "vaultd",
		Short:      "Vault program daemon",
		SuggestFor: []string{"vaultd"},
		RunE:       runFunc,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the daemon version",
		RunE: func(*cobra.Command, []string) error {
			fmt.Printf("%s@%s\n", consts.Name, version.Version)
			return nil
		},
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().StringVar(
		&configFile,
		"config-file",
		"",
		"path to a JSON config file (environment overrides apply on top)",
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vaultd failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func runFunc(cmd *cobra.Command, _ []string) error {
	if err := ulimit.Set(ulimit.DefaultFDLimit, logging.NoLog{}); err != nil {
		return fmt.Errorf("%w: failed to set fd limit correctly", err)
	}

	var configBytes []byte
	if len(configFile) > 0 {
		b, err := utils.LoadBytes(configFile, -1)
		if err != nil {
			return fmt.Errorf("unable to read config: %w", err)
		}
		configBytes = b
	}
	cfg, err := config.New(configBytes)
	if err != nil {
		return err
	}

	logConfig, err := cfg.GetLogConfig()
	if err != nil {
		return err
	}
	logFactory := logger.NewFactory(logConfig)
	defer logFactory.Close()
	log, err := logFactory.Make(loggerName)
	if err != nil {
		return err
	}

	var genesisBytes []byte
	if len(cfg.GenesisFile) > 0 {
		genesisBytes, err = utils.LoadBytes(cfg.GenesisFile, -1)
		if err != nil {
			return fmt.Errorf("unable to read genesis: %w", err)
		}
	}

	db, dbRegistry, err := pebble.Open(cfg.DataDir, dbNamespace, pebble.NewDefaultConfig())
	if err != nil {
		return fmt.Errorf("unable to open database: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	v, err := vm.New(ctx, cfg, log, db, genesisBytes)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() {
		if err := v.Shutdown(context.Background()); err != nil {
			log.Error("unable to shut down vm", zap.Error(err))
		}
	}()
	if err := v.RegisterGatherer(pebbleMetric, dbRegistry); err != nil {
		return err
	}

	httpRegistry := prometheus.NewRegistry()
	if err := v.RegisterGatherer(httpMetrics, httpRegistry); err != nil {
		return err
	}
	metricsWrapper, err := server.NewMetricsWrapper(httpMetrics, httpRegistry)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.HTTPAddress)
	if err != nil {
		return err
	}
	srv := server.New(log, listener, cfg.GetServerConfig(), metricsWrapper)
	handlers, err := v.CreateHandlers()
	if err != nil {
		return err
	}
	if err := srv.AddRoutes(routeBase, handlers); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Dispatch)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", zap.Stringer("address", srv.Addr()))
		return srv.Shutdown(context.Background())
	})
	log.Info("serving",
		zap.Stringer("address", srv.Addr()),
		zap.String("route", "/"+routeBase),
	)
	return g.Wait()
}
