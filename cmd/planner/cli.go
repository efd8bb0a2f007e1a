package main

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/strikerbot/planner/internal/config"
	"github.com/strikerbot/planner/internal/database"
	"github.com/strikerbot/planner/internal/influx"
	"github.com/strikerbot/planner/internal/physics"
	"github.com/strikerbot/planner/internal/tuning"
	"github.com/strikerbot/planner/pkg/core"
)

// runCompare replays every ball recording in the given files and prints how
// far the simulation drifts from what was recorded. Malformed lines are
// reported and skipped. It returns the process exit code.
func runCompare(paths []string, stdout, stderr io.Writer) int {
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "usage: planner compare <recording.jsonl[.gz]>...")
		return 2
	}

	step := config.GetPlannerConfig().SimStep
	if step <= 0 {
		step = physics.DefaultStep
	}

	var points *influx.Manager
	if viper.GetBool("influx.enabled") {
		points = influx.NewManager(zerolog.New(stderr), filepath.Join(os.TempDir(), "planner_compare_backup.log.gz"))
		if err := points.Connect(); err != nil {
			fmt.Fprintln(stderr, "influx:", err)
			points = nil
		} else {
			defer points.Close()
		}
	}

	failed := false
	for _, path := range paths {
		res, err := compareFile(path, step, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}

		fmt.Fprintln(stdout, path)
		for _, c := range res.comparisons {
			fmt.Fprintf(stdout, "  %s\n", c)
			if points != nil {
				if err := points.WriteComparison(context.Background(), c); err != nil {
					fmt.Fprintln(stderr, "influx:", err)
				}
			}
		}
		for _, p := range res.predictions {
			fmt.Fprintf(stdout, "  %s\n", p)
		}
		if res.skipped > 0 {
			fmt.Fprintf(stdout, "  %d skipped\n", res.skipped)
		}
	}

	if failed {
		return 1
	}
	return 0
}

type fileResults struct {
	comparisons []tuning.Comparison
	predictions []predictionSummary
	skipped     int
}

func compareFile(path string, step time.Duration, stderr io.Writer) (fileResults, error) {
	var res fileResults

	r, closeFn, err := openRecording(path)
	if err != nil {
		return res, err
	}
	defer closeFn()

	records, errs := tuning.ReadRecordings(r)
	for _, e := range errs {
		fmt.Fprintf(stderr, "%s: %v\n", path, e)
	}
	res.skipped = len(errs)

	for _, rec := range records {
		switch rec.Kind {
		case core.TrajectoryBall:
			c, err := tuning.CompareRecord(rec, step)
			if err != nil {
				fmt.Fprintf(stderr, "%s: %v\n", path, err)
				res.skipped++
				continue
			}
			res.comparisons = append(res.comparisons, c)
		case tuning.KindPrediction:
			res.predictions = append(res.predictions, summarizePredictions(rec))
		}
	}
	return res, nil
}

// openRecording opens a recording file, decompressing it when it starts with
// the gzip magic bytes.
func openRecording(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	br := bufio.NewReader(f)
	magic, _ := br.Peek(2)
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return gz, func() { gz.Close(); f.Close() }, nil
	}
	return br, func() { f.Close() }, nil
}

type predictionSummary struct {
	label   string
	count   int
	mean    float64
	max     float64
	maxLook time.Duration
}

func (p predictionSummary) String() string {
	return fmt.Sprintf("%s: %d predictions, mean error %.2f, max %.2f at lookahead %s",
		p.label, p.count, p.mean, p.max, p.maxLook)
}

func summarizePredictions(r tuning.Record) predictionSummary {
	s := predictionSummary{label: r.Label, count: len(r.Errors)}
	if s.count == 0 {
		return s
	}
	var sum float64
	for i, e := range r.Errors {
		sum += e.Distance
		if i == 0 || e.Distance > s.max {
			s.max = e.Distance
			s.maxLook = time.Duration(math.Round((e.Moment - e.MadeAt) * float64(time.Second)))
		}
	}
	s.mean = sum / float64(s.count)
	return s
}

// setupDB connects with the same postgres-then-SQLite fallback as the
// database manager and migrates the schema.
func setupDB() error {
	m := database.NewManager(InfraLogger)
	m.SqliteFilePath = config.GetStorageConfig().SQLite.DumpPath
	if err := os.MkdirAll(filepath.Dir(m.SqliteFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := m.Connect(); err != nil {
		return err
	}
	defer m.Close()

	if err := m.Setup(); err != nil {
		return err
	}
	if m.ShouldSaveLocal {
		Logger.Info("DB setup complete on local SQLite", "path", m.SqliteFilePath)
	} else {
		Logger.Info("DB setup complete on Postgres")
	}
	return nil
}

// listDumps prints the SQLite dumps next to the configured dump path.
func listDumps(w io.Writer) error {
	dir := filepath.Dir(config.GetStorageConfig().SQLite.DumpPath)
	paths, err := database.GetBackupDBPaths(dir)
	if err != nil {
		return fmt.Errorf("failed to list dumps in %s: %w", dir, err)
	}
	for _, p := range paths {
		fmt.Fprintln(w, p)
	}
	if len(paths) == 0 {
		Logger.Info("No dumps found", "dir", dir)
	}
	return nil
}
