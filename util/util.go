package util

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lukjok/crashprobe/models"
	"github.com/pkg/errors"
)

func ReadTextFile(path string) (string, error) {
	if len(path) == 0 {
		return "", errors.New("Path to the file was empty")
	}

	dat, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "Failed to read specified file")
	}

	return string(dat), nil
}

func DirectoryExists(path string) bool {
	if pathAbs, err := filepath.Abs(path); err != nil {
		return false
	} else if fileInfo, err := os.Stat(pathAbs); os.IsNotExist(err) || !fileInfo.IsDir() {
		return false
	}

	return true
}

func FileExists(filepath string) bool {
	fileinfo, err := os.Stat(filepath)
	if err != nil {
		return false
	}
	// Return false if the fileinfo says the file path is a directory.
	return !fileinfo.IsDir()
}

// CopyFile copies src to dst, keeping the permission bits so a copied
// executable stays executable.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "Failed to open source file")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrap(err, "Failed to stat source file")
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return errors.Wrap(err, "Failed to create destination file")
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrap(err, "Failed to copy file contents")
	}
	return out.Close()
}

// TempFile allocates an empty temporary file and returns its path.
func TempFile(pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", errors.Wrap(err, "Failed to allocate temporary file")
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return "", err
	}
	return name, nil
}

// BaseName returns the last element of path, splitting on both slash
// flavours so Windows paths resolve the same way on every host.
func BaseName(path string) string {
	idx := strings.LastIndexAny(path, `/\`)
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

func ConvertError(err error) models.CrashProbeError {
	var exitErr *exec.ExitError
	var execErr *exec.Error

	switch {
	case err == nil:
		return models.Success
	case errors.As(err, &exitErr), errors.As(err, &execErr):
		return models.DebuggerFailure
	case os.IsNotExist(errors.Cause(err)):
		return models.MissingCore
	default:
		return models.UnknownError
	}
}
