// Package results materializes a finished run into downloadable artifacts:
// a plain-text transcript dump and two spreadsheet partitions.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"ytscribe/models"
)

const (
	TranscriptsFile        = "transcripts.txt"
	WithTranscriptsXLSX    = "videos_with_transcripts.xlsx"
	WithoutTranscriptsXLSX = "videos_without_transcripts.xlsx"
)

const separator = "========================================"

// Writer persists run artifacts under a fixed directory. Each Write
// replaces the previous run's files wholesale.
type Writer struct {
	dir string
	log *logrus.Entry
}

func NewWriter(dir string, log *logrus.Logger) *Writer {
	return &Writer{
		dir: dir,
		log: log.WithField("component", "results"),
	}
}

func (w *Writer) Dir() string { return w.dir }

// Write materializes both partitions. It satisfies the job service's
// materializer contract.
func (w *Writer) Write(withTranscript, withoutTranscript []models.Video) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return errors.Wrap(err, "creating results directory")
	}

	if err := w.writeTranscripts(withTranscript); err != nil {
		return err
	}
	if err := w.writeWorkbook(WithTranscriptsXLSX, withTranscript, true); err != nil {
		return err
	}
	if err := w.writeWorkbook(WithoutTranscriptsXLSX, withoutTranscript, false); err != nil {
		return err
	}

	w.log.WithFields(logrus.Fields{
		"with":    len(withTranscript),
		"without": len(withoutTranscript),
		"dir":     w.dir,
	}).Info("Artifacts written")
	return nil
}

func (w *Writer) writeTranscripts(videos []models.Video) error {
	var b strings.Builder
	for _, v := range videos {
		fmt.Fprintf(&b, "Title: %s\n", orNA(v.Title))
		fmt.Fprintf(&b, "Published At: %s\n", orNA(v.PublishedAt))
		fmt.Fprintf(&b, "Video ID: %s\n", v.ID)
		fmt.Fprintf(&b, "View Count: %s\n", orNA(v.ViewCount))
		fmt.Fprintf(&b, "Duration: %s\n", orNA(v.Duration))
		fmt.Fprintf(&b, "Video Link: %s\n", orNA(v.Link))
		b.WriteString("Transcript:\n")
		b.WriteString(v.Transcript)
		b.WriteString("\n")
		b.WriteString(separator)
		b.WriteString("\n")
	}

	path := filepath.Join(w.dir, TranscriptsFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", TranscriptsFile)
	}
	return nil
}

func (w *Writer) writeWorkbook(name string, videos []models.Video, withTranscript bool) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := []interface{}{"video_id", "title", "published_at", "link", "view_count", "duration"}
	if withTranscript {
		header = append(header, "transcript")
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrapf(err, "writing header of %s", name)
	}

	for i, v := range videos {
		row := []interface{}{v.ID, v.Title, v.PublishedAt, v.Link, v.ViewCount, v.Duration}
		if withTranscript {
			row = append(row, v.Transcript)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrapf(err, "addressing row %d of %s", i+2, name)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d of %s", i+2, name)
		}
	}

	if err := f.SaveAs(filepath.Join(w.dir, name)); err != nil {
		return errors.Wrapf(err, "saving %s", name)
	}
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
