package results

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"ytscribe/models"
)

func testWriter(t *testing.T) *Writer {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewWriter(t.TempDir(), log)
}

func sampleVideos() ([]models.Video, []models.Video) {
	with := []models.Video{
		{
			ID:          "abc123",
			Title:       "First Video",
			PublishedAt: "2022-01-01T00:00:00Z",
			Link:        "https://www.youtube.com/watch?v=abc123",
			ViewCount:   "1000",
			Duration:    "00:05:00",
			Transcript:  "hello world",
		},
		{
			ID:         "def456",
			Title:      "Second Video",
			Transcript: "another transcript",
		},
	}
	without := []models.Video{
		{ID: "ghi789", Title: "Silent Video", PublishedAt: "2022-02-01T00:00:00Z"},
	}
	return with, without
}

func TestWriteTranscriptsText(t *testing.T) {
	w := testWriter(t)
	with, without := sampleVideos()

	if err := w.Write(with, without); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(w.Dir(), TranscriptsFile))
	if err != nil {
		t.Fatalf("reading transcripts.txt: %v", err)
	}
	text := string(raw)

	for _, want := range []string{
		"Title: First Video\n",
		"Published At: 2022-01-01T00:00:00Z\n",
		"Video ID: abc123\n",
		"View Count: 1000\n",
		"Duration: 00:05:00\n",
		"Video Link: https://www.youtube.com/watch?v=abc123\n",
		"Transcript:\nhello world\n",
		// Missing metadata renders as N/A.
		"View Count: N/A\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("transcripts.txt missing %q", want)
		}
	}

	if got := strings.Count(text, separator); got != len(with) {
		t.Errorf("separator count = %d, want %d", got, len(with))
	}
	if strings.Contains(text, "ghi789") {
		t.Error("video without transcript leaked into transcripts.txt")
	}
}

func TestWriteWorkbooks(t *testing.T) {
	w := testWriter(t)
	with, without := sampleVideos()

	if err := w.Write(with, without); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenFile(filepath.Join(w.Dir(), WithTranscriptsXLSX))
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("reading rows: %v", err)
	}
	if len(rows) != len(with)+1 {
		t.Fatalf("row count = %d, want %d", len(rows), len(with)+1)
	}
	wantHeader := []string{"video_id", "title", "published_at", "link", "view_count", "duration", "transcript"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][0] != "abc123" || rows[1][6] != "hello world" {
		t.Errorf("unexpected first data row: %v", rows[1])
	}

	// The without-transcript workbook has no transcript column.
	f2, err := excelize.OpenFile(filepath.Join(w.Dir(), WithoutTranscriptsXLSX))
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f2.Close()
	rows2, err := f2.GetRows(f2.GetSheetName(0))
	if err != nil {
		t.Fatalf("reading rows: %v", err)
	}
	if len(rows2) != 2 {
		t.Fatalf("row count = %d, want 2", len(rows2))
	}
	if len(rows2[0]) != 6 {
		t.Errorf("header width = %d, want 6", len(rows2[0]))
	}
}

func TestWriteEmptyPartitions(t *testing.T) {
	w := testWriter(t)

	if err := w.Write(nil, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(w.Dir(), TranscriptsFile))
	if err != nil {
		t.Fatalf("reading transcripts.txt: %v", err)
	}
	if len(raw) != 0 {
		t.Errorf("expected empty transcripts.txt, got %d bytes", len(raw))
	}

	for _, name := range []string{WithTranscriptsXLSX, WithoutTranscriptsXLSX} {
		if _, err := os.Stat(filepath.Join(w.Dir(), name)); err != nil {
			t.Errorf("missing workbook %s: %v", name, err)
		}
	}
}

func TestArchive(t *testing.T) {
	w := testWriter(t)
	with, without := sampleVideos()
	if err := w.Write(with, without); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	buf, err := w.Archive("MyResults")
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}

	got := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		got[f.Name] = true
	}
	for _, want := range []string{
		"MyResults/transcripts.txt",
		"MyResults/videos_with_transcripts.xlsx",
		"MyResults/videos_without_transcripts.xlsx",
	} {
		if !got[want] {
			t.Errorf("archive missing %s", want)
		}
	}
}

func TestArchiveSkipsMissingFiles(t *testing.T) {
	w := testWriter(t)

	// No Write happened; the results directory is empty.
	buf, err := w.Archive("Results")
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	if len(zr.File) != 0 {
		t.Errorf("expected empty archive, got %d entries", len(zr.File))
	}
}
