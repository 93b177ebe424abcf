package watcher

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// readTail returns at most the last limit bytes of the file at path.
func readTail(path string, limit int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "Failed to open process output")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", errors.Wrap(err, "Failed to stat process output")
	}
	if over := info.Size() - limit; over > 0 {
		if _, err := f.Seek(over, io.SeekStart); err != nil {
			return "", errors.Wrap(err, "Failed to seek process output")
		}
	}

	dat, err := io.ReadAll(f)
	if err != nil {
		return "", errors.Wrap(err, "Failed to read process output")
	}
	return string(dat), nil
}
