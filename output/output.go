package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/lukjok/crashprobe/util"
	"github.com/pkg/errors"
)

const CrashDirName = "Crashes"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type OutputManager interface {
	SaveCrash(*CrashOutput) (string, error)
}

type Filesystem struct {
	OutputBaseDir string
	mu            sync.Mutex
}

func NewFilesystem(baseDir string) *Filesystem {
	return &Filesystem{
		OutputBaseDir: baseDir,
	}
}

// SaveCrash writes data to <base>/Crashes/<pid>_<binary>.json and returns
// the path written.
func (f *Filesystem) SaveCrash(data *CrashOutput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	mData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "Failed to encode crash report")
	}

	dir := filepath.Join(f.OutputBaseDir, CrashDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "Failed to create crash directory")
	}

	fFileName := fmt.Sprintf("%d_%s.json", data.Pid, util.BaseName(data.Binary))
	fullPath := filepath.Join(dir, fFileName)
	return fullPath, save(mData, fullPath)
}

func LoadCrash(path string) (*CrashOutput, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read crash report")
	}
	data := &CrashOutput{}
	if err := json.Unmarshal(dat, data); err != nil {
		return nil, errors.Wrap(err, "Failed to decode crash report")
	}
	return data, nil
}

func save(data []byte, path string) error {
	return os.WriteFile(path, data, 0644)
}
