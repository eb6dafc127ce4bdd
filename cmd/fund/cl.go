package main

import (
	"context"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cmtconfig "github.com/cometbft/cometbft/config"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	nm "github.com/cometbft/cometbft/node"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
	"github.com/cometbft/cometbft/proxy"
	"github.com/spf13/cobra"

	"github.com/calehh/fund-app/app"
	"github.com/calehh/fund-app/config"
	"github.com/calehh/fund-app/indexer"
)

var homeDir string

var clCmd = &cobra.Command{
	Use:   "fund",
	Short: "fund runs a milestone crowdfunding escrow chain",
	Long: `A CometBFT chain that holds campaign donations in escrow and releases
them round by round after donor and staker votes.`,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func init() {
	clCmd.Flags().StringVarP(&homeDir, "homedir", "d", "", "home directory")
}

func run(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(homeDir)
	if err != nil {
		log.Fatalf("Reading config: %v", err)
	}

	pv := privval.LoadFilePV(
		cfg.PrivValidatorKeyFile(),
		cfg.PrivValidatorStateFile(),
	)

	nodeKey, err := p2p.LoadNodeKey(cfg.NodeKeyFile())
	if err != nil {
		log.Fatalf("failed to load node's key: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	fundApp, err := app.NewFundApp(cfg.App, logger)
	if err != nil {
		log.Fatalf("new App err:%v", err)
	}

	node, err := nm.NewNode(
		cfg.Config,
		pv,
		nodeKey,
		proxy.NewLocalClientCreator(fundApp),
		nm.DefaultGenesisDocProviderFunc(cfg.Config),
		cmtconfig.DefaultDBProvider,
		nm.DefaultMetricsProvider(cfg.Instrumentation),
		logger,
	)
	if err != nil {
		log.Fatalf("Creating node: %v", err)
	}

	err = node.Start()
	if err != nil {
		log.Fatalf("start comet node err %s", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	var (
		chainIndexer *indexer.ChainIndexer
		service      *indexer.Service
	)
	if cfg.App.Indexer.Enable {
		chainIndexer, service = startIndexer(ctx, cfg, logger)
	}

	defer func() {
		log.Println("shut down...")
		cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			if service != nil {
				service.Stop()
			}
			if chainIndexer != nil {
				chainIndexer.Stop()
				chainIndexer.DB().Close()
			}
			if err := node.Stop(); err != nil {
				log.Printf("stop comet node err %s", err.Error())
			}
			node.Wait()
			fundApp.Stop()
		}()
		timer := time.NewTimer(time.Second * 10)
		select {
		case <-timer.C:
			os.Exit(1)
		case <-done:
			return
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

// startIndexer follows the local node over its rpc endpoint.
func startIndexer(ctx context.Context, cfg *config.Config, logger cmtlog.Logger) (*indexer.ChainIndexer, *indexer.Service) {
	rpcUrl, err := url.Parse(cfg.RPC.ListenAddress)
	if err != nil {
		log.Fatalf("parse rpc url err %s", err.Error())
	}
	rpcUrl.Scheme = "http"

	dbURL := cfg.App.Indexer.DatabaseURL
	if !strings.Contains(dbURL, "://") {
		dbURL = cfg.App.ResolvePath(dbURL)
	}
	db, err := indexer.OpenDB(dbURL)
	if err != nil {
		log.Fatalf("open indexer db err %s", err.Error())
	}
	chainIndexer, err := indexer.NewChainIndexer(logger, db, rpcUrl.String(), cfg.App.Indexer.SyncInterval)
	if err != nil {
		log.Fatalf("new chain indexer err %s", err.Error())
	}
	if err = chainIndexer.Start(ctx); err != nil {
		log.Fatalf("start chain indexer err %s", err.Error())
	}
	service := indexer.NewService(cfg.App.Indexer.ListenAddress, chainIndexer)
	go service.Start()
	return chainIndexer, service
}
