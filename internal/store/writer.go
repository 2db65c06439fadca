// Package store persists fetched payloads to the local filesystem.
package store

import (
	"os"
	"path/filepath"

	"github.com/danmuck/fileget/internal/fault"
	"github.com/rs/zerolog/log"
)

const (
	DirPerm  os.FileMode = 0o755
	FilePerm os.FileMode = 0o644
)

// FileWriter creates missing parent directories and replaces the file's
// contents. A write that fails midway leaves the partial file in place.
type FileWriter struct{}

func (FileWriter) WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, DirPerm); err != nil {
			return fault.E(fault.KindDirectory, "create directory "+dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FilePerm)
	if err != nil {
		return fault.E(fault.KindFile, "open "+path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fault.E(fault.KindFile, "write "+path, err)
	}
	if err := f.Close(); err != nil {
		return fault.E(fault.KindFile, "close "+path, err)
	}
	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("file written")
	return nil
}
