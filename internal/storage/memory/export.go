// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/strikerbot/planner/internal/tuning"
	"github.com/strikerbot/planner/pkg/core"
)

// exportJSON writes the session as one tuning record per line
func (b *Backend) exportJSON() error {
	records := b.buildExport()

	// Build filename
	label := strings.ReplaceAll(b.session.Label, " ", "_")
	label = strings.ReplaceAll(label, ":", "_")
	label = strings.ReplaceAll(label, string(filepath.Separator), "_")
	if label == "" {
		label = "session"
	}
	timestamp := b.session.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.jsonl.gz", label, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.jsonl", label, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, records); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, records); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	b.lastExportMeta = b.buildMetadata(len(records))
	return nil
}

func (b *Backend) buildExport() []tuning.Record {
	records := make([]tuning.Record, 0, len(b.ballPaths)+len(b.carPaths)+1)
	for _, t := range b.ballPaths {
		records = append(records, tuning.RecordFromTrajectory(t))
	}
	for _, t := range b.carPaths {
		records = append(records, tuning.RecordFromTrajectory(t))
	}
	if len(b.errors) > 0 {
		records = append(records, tuning.RecordFromErrors(b.session.Label, b.errors))
	}
	return records
}

func (b *Backend) buildMetadata(recordCount int) core.UploadMetadata {
	meta := core.UploadMetadata{
		Label:       b.session.Label,
		Recordings:  recordCount,
		PlayerIndex: b.session.PlayerIndex,
		Tag:         b.session.Team.String(),
	}
	for _, t := range append(append([]core.Trajectory(nil), b.ballPaths...), b.carPaths...) {
		if d := t.Duration().Seconds(); d > meta.Duration {
			meta.Duration = d
		}
	}
	if len(b.errors) > 0 {
		var sum float64
		for _, e := range b.errors {
			sum += e.Distance
		}
		meta.MeanError = sum / float64(len(b.errors))
	}
	return meta
}

func (b *Backend) writeJSON(path string, records []tuning.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return writeRecords(f, records)
}

func (b *Backend) writeGzipJSON(path string, records []tuning.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := writeRecords(gzWriter, records); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}

func writeRecords(w io.Writer, records []tuning.Record) error {
	for _, r := range records {
		if err := tuning.WriteRecord(w, r); err != nil {
			return err
		}
	}
	return nil
}
