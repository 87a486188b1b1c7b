package results

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
)

// artifactFiles is the fixed set of files a run can produce.
var artifactFiles = []string{
	TranscriptsFile,
	WithTranscriptsXLSX,
	WithoutTranscriptsXLSX,
}

// Archive bundles the current artifacts into an in-memory zip, nesting them
// under folderName so the extracted archive lands in its own directory.
// Files that were never produced are skipped rather than failing the
// download.
func (w *Writer) Archive(folderName string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	for _, name := range artifactFiles {
		src := filepath.Join(w.dir, name)
		f, err := os.Open(src)
		if err != nil {
			if os.IsNotExist(err) {
				w.log.WithField("file", src).Warn("Artifact missing, skipping")
				continue
			}
			zw.Close()
			return nil, errors.Wrapf(err, "opening %s", name)
		}

		entry, err := zw.Create(path.Join(folderName, name))
		if err != nil {
			f.Close()
			zw.Close()
			return nil, errors.Wrapf(err, "adding %s to archive", name)
		}
		if _, err := io.Copy(entry, f); err != nil {
			f.Close()
			zw.Close()
			return nil, errors.Wrapf(err, "compressing %s", name)
		}
		f.Close()
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "finalizing archive")
	}
	return buf, nil
}
