// Command wxclean cleans a station CSV file in batch: precipitation phase,
// undercatch and wetting-loss corrections, wind fault removal and rate
// classes. It can also aggregate a column to monthly or annual values and
// compare two columns.
//
// Column names, correction modes and publishing come from the same
// environment variables as the server, optionally loaded from -env-file.
//
// Usage:
//
//	go run ./cmd/wxclean \
//	  -in data/imnavait_2016.csv -station imnavait \
//	  -out data/imnavait_2016_clean.csv \
//	  -agg-column precip -period monthly -reducer sum -agg-out data/imnavait_monthly.csv \
//	  -compare precip,reference_precip
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/couchcryptid/wx-clean-service/internal/adapter/csvio"
	kafkaadapter "github.com/couchcryptid/wx-clean-service/internal/adapter/kafka"
	"github.com/couchcryptid/wx-clean-service/internal/analysis"
	"github.com/couchcryptid/wx-clean-service/internal/config"
	"github.com/couchcryptid/wx-clean-service/internal/domain"
	"github.com/couchcryptid/wx-clean-service/internal/observability"
	"github.com/couchcryptid/wx-clean-service/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "input station CSV (timestamp column plus numeric columns)")
	out := flag.String("out", "", "output path for the cleaned CSV (default stdout)")
	station := flag.String("station", "", "station name stamped on records")
	aggColumn := flag.String("agg-column", "", "column to aggregate after cleaning")
	period := flag.String("period", "monthly", "aggregation period: monthly or annual")
	reducer := flag.String("reducer", "mean", "aggregation reducer: mean or sum")
	aggOut := flag.String("agg-out", "", "output path for the aggregate CSV (default stdout)")
	compare := flag.String("compare", "", "two comma-separated columns to regress, x,y")
	envFile := flag.String("env-file", "", "optional .env file; variables already set take precedence")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			return fmt.Errorf("load %s: %w", *envFile, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewStderrLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	var loader pipeline.BatchLoader
	if cfg.KafkaEnabled {
		w := kafkaadapter.NewWriter(cfg, logger)
		defer w.Close()
		loader = w
	}
	cleaner := pipeline.NewCleaner(pipeline.OptionsFromConfig(cfg), loader, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ds, err := readDataset(*in, *station)
	if err != nil {
		return err
	}
	res, err := cleaner.Clean(ctx, ds)
	if err != nil {
		return fmt.Errorf("clean %s: %w", *in, err)
	}
	if err := cleaner.Publish(ctx, res); err != nil {
		return err
	}

	if err := writeTo(*out, func(w io.Writer) error { return csvio.Write(w, res.Dataset) }); err != nil {
		return fmt.Errorf("writing cleaned csv: %w", err)
	}

	if *aggColumn != "" {
		if err := aggregate(cleaner, res.Dataset, *aggColumn, *period, *reducer, *aggOut); err != nil {
			return err
		}
	}
	if *compare != "" {
		if err := printComparison(res.Dataset, *compare); err != nil {
			return err
		}
	}
	return nil
}

func readDataset(path, station string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	if station == "" {
		station = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	ds, err := csvio.Read(f, station)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func aggregate(cleaner *pipeline.Cleaner, ds *domain.Dataset, column, periodFlag, reducerFlag, path string) error {
	p, err := domain.ParsePeriod(periodFlag)
	if err != nil {
		return err
	}
	r, err := domain.ParseReducer(reducerFlag)
	if err != nil {
		return err
	}
	agg, err := cleaner.Aggregate(ds, column, p, r)
	if err != nil {
		return err
	}
	if err := writeTo(path, func(w io.Writer) error { return csvio.WriteAggregate(w, agg) }); err != nil {
		return fmt.Errorf("writing aggregate csv: %w", err)
	}
	log.Printf("%s %s %s: %d periods, %d withheld", column, p, r, len(agg.Values), agg.Invalid())
	return nil
}

func printComparison(ds *domain.Dataset, columns string) error {
	x, y, ok := strings.Cut(columns, ",")
	if !ok {
		return fmt.Errorf("-compare wants x,y, got %q", columns)
	}
	c, err := analysis.CompareColumns(ds, strings.TrimSpace(x), strings.TrimSpace(y))
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	log.Printf("%s, R²=%.2f, %s (n=%d)", c.Equation(), c.RSquared, analysis.FormatPValue(c.SlopeP), c.N)
	log.Printf("kendall tau=%.2f, %s", c.KendallTau, analysis.FormatPValue(c.KendallP))
	_, err = fmt.Fprintf(os.Stderr, "%s\n", data)
	return err
}

// writeTo runs write against the file at path, or stdout when path is empty.
func writeTo(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
