package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/hedera-audit/contract-census/business/domain/census"
	"github.com/hedera-audit/contract-census/infrastructure/store"
	"github.com/pkg/errors"
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
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)

	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("creating logger: %v", err)
	}
	defer logger.Sync()
	sLogger := logger.Sugar()

	var cfg struct {
		Output struct {
			Folder string `conf:"default:data"`
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

	fileStore, err := store.NewFileStore(cfg.Output.Folder)
	if err != nil {
		return errors.Wrap(err, "creating file store")
	}

	snapshot, err := fileStore.LoadSnapshot()
	if err != nil {
		return errors.Wrapf(err, "loading snapshot from [%s]", fileStore.SnapshotPath())
	}
	sLogger.Infow("Loaded snapshot",
		"window", snapshot.Metadata.WindowLabel,
		"contractResults", snapshot.Metadata.TotalContractResults,
		"transactions", snapshot.Metadata.TotalTransactions,
		"truncated", snapshot.Metadata.Truncated)

	report, err := census.NewAnalyzer(sLogger).Analyze(snapshot)
	if err != nil {
		return errors.Wrap(err, "analyzing snapshot")
	}
	if err := fileStore.SaveReport(report); err != nil {
		return errors.Wrap(err, "saving wallet report")
	}

	fmt.Printf("Window: %s\n", report.WindowLabel)
	fmt.Printf("Contract: %s\n", report.ContractID)
	fmt.Printf("Total Contract Results: %d\n", report.TotalContractResults)
	fmt.Printf("Total Transactions: %d\n", report.TotalTransactions)
	if report.SkippedRecords > 0 {
		fmt.Printf("Skipped Records: %d\n", report.SkippedRecords)
	}
	fmt.Printf("Total Unique Wallets: %d\n", report.UniqueWalletCount)
	if report.Truncated {
		fmt.Println("WARNING: the snapshot was incomplete, counts may under-report")
	}
	fmt.Printf("Wallet list written to %s\n", fileStore.ReportPath())

	return nil
}
