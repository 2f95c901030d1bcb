package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"itchflow/config"
	"itchflow/internal/feed"
	"itchflow/internal/metrics"
	"itchflow/internal/scanner"
	"itchflow/internal/snapshot"
	"itchflow/internal/stream"
	"itchflow/internal/vwap"
	"itchflow/internal/writer"
	"itchflow/logger"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()

	log := logger.GetLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Fatal("failed to configure logger")
	}

	metrics.Init()
	if cfg.Metrics.Prometheus.Enabled {
		metrics.Serve(cfg.Metrics.Prometheus.Address)
	}
	if cfg.Metrics.CloudWatch.Enabled {
		metrics.InitCloudWatch(cfg.Metrics.CloudWatch.Region, cfg.Metrics.CloudWatch.Namespace)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleShutdown(cancel)

	log.WithFields(logger.Fields{
		"name":    cfg.Itchflow.Name,
		"version": cfg.Itchflow.Version,
		"feed":    cfg.Feed.Path,
	}).Info("ItchFlow started")

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("run failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.GetLogger().WithComponent("main")

	f, err := feed.Open(cfg.Feed.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	format := snapshot.TimeFormatter(snapshot.EpochTime)
	if date, ok := cfg.SessionDate(); ok {
		format = snapshot.SessionTime(date)
	}

	recorder, sink, cleanup, err := buildSinks(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := []scanner.Option{scanner.WithTimeFormatter(format)}
	if cfg.Scanner.StrictUnknown {
		opts = append(opts, scanner.WithStrictUnknown())
	}
	if sink != nil {
		opts = append(opts, scanner.WithSink(sink))
	}
	if cfg.Scanner.ProgressLog {
		opts = append(opts, scanner.WithProgress(func(processed, total int64) {
			log.WithFields(logger.Fields{
				"processed": processed,
				"total":     total,
			}).Debug("scan progress")
		}))
	}

	started := time.Now()
	res, err := scanner.New(opts...).Scan(ctx, f.Bytes())
	if err != nil {
		return err
	}

	log.WithFields(logger.Fields{
		"run_id":     res.RunID,
		"elapsed":    time.Since(started).String(),
		"messages":   res.Messages,
		"executions": res.Ledger.Len(),
		"orders":     res.Book.Len(),
		"tickers":    len(res.Directory),
	}).Info("scan finished")

	if err := writeOutputs(ctx, cfg, res, recorder); err != nil {
		return err
	}

	if cfg.VWAP.Enabled {
		if err := reportVWAP(cfg, res); err != nil {
			return err
		}
	}

	if cfg.Metrics.CloudWatch.Enabled {
		metrics.PublishRunSummary(ctx, res.RunID, metrics.RunSummary{
			FeedBytes:    f.Size(),
			Messages:     res.Messages,
			UnknownBytes: res.UnknownBytes,
			Executions:   uint64(res.Ledger.Len()),
			OpenOrders:   res.Book.Len(),
		})
	}

	return nil
}

// buildSinks assembles the configured snapshot sinks into one fan-out
// sink and returns the recorder (when enabled) for output writing.
func buildSinks(cfg *config.Config) (*snapshot.Recorder, snapshot.Sink, func(), error) {
	log := logger.GetLogger().WithComponent("main")

	var sinks []snapshot.Sink
	var closers []func()

	var recorder *snapshot.Recorder
	if cfg.Snapshot.Recorder {
		recorder = snapshot.NewRecorder()
		sinks = append(sinks, recorder)
	}

	if cfg.Snapshot.StoreDir != "" {
		store, err := snapshot.OpenStore(cfg.Snapshot.StoreDir)
		if err != nil {
			return nil, nil, nil, err
		}
		sinks = append(sinks, store)
		closers = append(closers, func() {
			if err := store.Close(); err != nil {
				log.WithError(err).Warn("failed to close snapshot store")
			}
		})
	}

	if cfg.Stream.Websocket.Enabled {
		broadcaster := stream.NewBroadcaster()
		server := &http.Server{Addr: cfg.Stream.Websocket.Address, Handler: broadcaster}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Warn("websocket server stopped")
			}
		}()
		var wsSink snapshot.Sink = broadcaster
		if cfg.Snapshot.Throttle > 0 {
			wsSink = snapshot.Throttle(wsSink, cfg.Snapshot.Throttle)
		}
		sinks = append(sinks, wsSink)
		closers = append(closers, func() {
			broadcaster.Close()
			_ = server.Close()
		})
	}

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	switch len(sinks) {
	case 0:
		return recorder, nil, cleanup, nil
	case 1:
		return recorder, sinks[0], cleanup, nil
	default:
		return recorder, snapshot.Multi(sinks...), cleanup, nil
	}
}

func writeOutputs(ctx context.Context, cfg *config.Config, res *scanner.Result, recorder *snapshot.Recorder) error {
	log := logger.GetLogger().WithComponent("main")

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return err
	}

	view := res.Book.View()
	records := res.Ledger.Records()

	if cfg.Output.CSV {
		if err := writer.WriteExecutionsCSV(filepath.Join(cfg.Output.Dir, "executions.csv"), records); err != nil {
			return err
		}
		if err := writer.WriteBookCSV(filepath.Join(cfg.Output.Dir, "order_book.csv"), view); err != nil {
			return err
		}
		if recorder != nil {
			if err := writer.WriteSnapshotsCSV(filepath.Join(cfg.Output.Dir, "snapshots.csv"), recorder.Rows()); err != nil {
				return err
			}
		}
	}

	if cfg.Output.Parquet {
		if err := writer.WriteExecutionsParquet(filepath.Join(cfg.Output.Dir, "executions.parquet"), records); err != nil {
			return err
		}
		if err := writer.WriteBookParquet(filepath.Join(cfg.Output.Dir, "order_book.parquet"), view); err != nil {
			return err
		}
		if recorder != nil {
			if err := writer.WriteSnapshotsParquet(filepath.Join(cfg.Output.Dir, "snapshots.parquet"), recorder.Rows()); err != nil {
				return err
			}
		}
	}

	if cfg.Storage.S3.Enabled {
		uploader, err := writer.NewUploader(ctx, cfg.Storage.S3)
		if err != nil {
			return err
		}
		data, batchID, err := writer.ExecutionsParquetBytes(records)
		if err != nil {
			return err
		}
		key := filepath.Join(res.RunID, "executions-"+batchID+".parquet")
		if err := uploader.Upload(ctx, key, data, "application/octet-stream"); err != nil {
			return err
		}
	}

	if cfg.Stream.Kafka.Enabled {
		publisher := stream.NewExecutionPublisher(cfg.Stream.Kafka.Brokers, cfg.Stream.Kafka.Topic)
		defer publisher.Close()
		if err := publisher.Publish(ctx, records); err != nil {
			return err
		}
		log.WithFields(logger.Fields{"records": len(records), "topic": cfg.Stream.Kafka.Topic}).Info("published executions")
	}

	return nil
}

func reportVWAP(cfg *config.Config, res *scanner.Result) error {
	log := logger.GetLogger().WithComponent("vwap")

	from, err := config.ParseClock(cfg.VWAP.From)
	if err != nil {
		return err
	}
	to, err := config.ParseClock(cfg.VWAP.To)
	if err != nil {
		return err
	}

	agg, err := vwap.New(from, to, cfg.VWAP.Granularity)
	if err != nil {
		return err
	}
	agg.AddLedger(res.Ledger)

	for _, symbol := range agg.Symbols() {
		for _, p := range agg.Running(symbol) {
			log.WithFields(logger.Fields{
				"symbol": symbol,
				"bucket": time.Duration(p.BucketStart).String(),
				"vwap":   p.VWAP,
			}).Info("running vwap")
		}
	}
	return nil
}

func handleShutdown(cancel context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	cancel()
}
