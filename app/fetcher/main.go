package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/hedera-audit/contract-census/api"
	"github.com/hedera-audit/contract-census/business/domain/census"
	"github.com/hedera-audit/contract-census/entities"
	"github.com/hedera-audit/contract-census/external/mirror"
	"github.com/hedera-audit/contract-census/infrastructure/store"
	"github.com/hedera-audit/contract-census/infrastructure/store/pebbledb"
	"github.com/hedera-audit/contract-census/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "CONTRACT_CENSUS"

func main() {
	if err := run(); err != nil {
		log.Fatalf("main: exited with error: %s", err.Error())
	}
}

func run() error {
	log.SetOutput(os.Stdout) // default is stderr

	config := zap.NewProductionConfig()
	// this is just for sugar, to display a readable date instead of an epoch time
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)

	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("creating logger: %v", err)
	}
	defer logger.Sync()
	sLogger := logger.Sugar()

	var cfg struct {
		Mirror struct {
			BaseUrl        string        `conf:"default:https://mainnet.mirrornode.hedera.com"`
			PageSize       int           `conf:"default:100"`
			MaxPages       int           `conf:"default:10000"` // 0 disables the ceiling
			RequestDelay   time.Duration `conf:"default:250ms"`
			RequestTimeout time.Duration `conf:"default:30s"`
		}
		Audit struct {
			ContractId         string        `conf:"default:0.0.9392720"`
			ContractEvmAddress string        `conf:"default:0x00000000000000000000000000000000008f5250"`
			WindowLabel        string        `conf:"default:oct-dec-2025"`
			WindowStart        int64         `conf:"default:1759276800"`
			WindowEnd          int64         `conf:"default:1764547200"`
			FetchTimeout       time.Duration `conf:"default:2h"`
		}
		Output struct {
			Folder string `conf:"default:data"`
		}
		Store struct {
			InternalStoreFolder string `conf:"default:store"`
		}
		Server struct {
			ListenAddr       string `conf:"default:0.0.0.0:8000"`
			MetricsAddr      string `conf:"default:0.0.0.0:9999"`
			MetricsNamespace string `conf:"default:contract_census"`
		}
	}

	if err := conf.Parse(os.Args[1:], envPrefix, &cfg); err != nil {
		switch {
		case errors.Is(err, conf.ErrHelpWanted):
			usage, err := conf.Usage(envPrefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config usage")
			}
			fmt.Println(usage)
			return nil
		case errors.Is(err, conf.ErrVersionWanted):
			version, err := conf.VersionString(envPrefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config version")
			}
			fmt.Println(version)
			return nil
		}
		return errors.Wrap(err, "parsing config")
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return errors.Wrap(err, "generating config for output")
	}
	log.Printf("main: Config :\n%v\n", out)

	fileStore, err := store.NewFileStore(cfg.Output.Folder)
	if err != nil {
		return errors.Wrap(err, "creating file store")
	}

	runStore, err := pebbledb.NewRunStore(cfg.Store.InternalStoreFolder)
	if err != nil {
		return errors.Wrap(err, "creating run store")
	}
	defer runStore.Close()

	client := mirror.NewClient(cfg.Mirror.BaseUrl, cfg.Mirror.PageSize, cfg.Mirror.MaxPages,
		cfg.Mirror.RequestDelay, cfg.Mirror.RequestTimeout)

	identity := entities.ContractIdentity{
		AccountID:  cfg.Audit.ContractId,
		EvmAddress: cfg.Audit.ContractEvmAddress,
	}
	window := entities.ReportingWindow{
		Label:          cfg.Audit.WindowLabel,
		StartTimestamp: cfg.Audit.WindowStart,
		EndTimestamp:   cfg.Audit.WindowEnd,
	}

	fetchMetrics := metrics.NewFetchMetrics(cfg.Server.MetricsNamespace)
	fetcher := census.NewFetcher(client, fileStore, runStore, identity, window,
		cfg.Audit.FetchTimeout, fetchMetrics, sLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	fetchDone := make(chan error, 1)
	go func() {
		snapshot, err := fetcher.Run(ctx)
		if err == nil {
			fmt.Printf("Snapshot written to %s\n", fileStore.SnapshotPath())
			fmt.Printf("Total Contract Results: %d\n", snapshot.Metadata.TotalContractResults)
			fmt.Printf("Total Transactions: %d\n", snapshot.Metadata.TotalTransactions)
			if snapshot.Metadata.Truncated {
				fmt.Println("WARNING: snapshot is incomplete, a page failed or the page ceiling was hit")
			}
		}
		fetchDone <- err
	}()

	// status and metrics endpoints for the duration of the run
	handler := api.NewHandler(runStore)
	apiError := make(chan error, 1)
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", handler.GetHealth)
		mux.HandleFunc("/v1/status", handler.GetStatus)
		log.Printf("main: Starting server on [%s].", cfg.Server.ListenAddr)
		apiError <- http.ListenAndServe(cfg.Server.ListenAddr, mux)
	}()

	metricsError := make(chan error, 1)
	go func() {
		log.Printf("main: Starting metrics server on [%s].", cfg.Server.MetricsAddr)
		http.Handle("/metrics", promhttp.Handler())
		metricsError <- http.ListenAndServe(cfg.Server.MetricsAddr, nil)
	}()

	for {
		select {
		case <-shutdown:
			cancel()
			return errors.New("shutting down")
		case err := <-fetchDone:
			if err != nil {
				return errors.Wrap(err, "fetching activity")
			}
			return nil
		case err := <-apiError:
			return errors.Wrap(err, "starting server")
		case err := <-metricsError:
			return errors.Wrap(err, "starting metrics server")
		}
	}
}
