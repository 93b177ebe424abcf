package config

import (
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const (
	DefaultCorePatternFile = "/proc/sys/kernel/core_pattern"
	DefaultLldbCoreDir     = "/cores"
	DefaultSettleDelay     = 5 * time.Second
	DefaultThinkTime       = 10 * time.Second
	DefaultDrainDelay      = 2 * time.Second
	DefaultDumpWaitTimeout = 2 * time.Minute
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Duration accepts either a Go duration string ("10s") or a number of
// seconds in the configuration file.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(err, "invalid duration %q", value)
		}
		d.Duration = parsed
	case nil:
		d.Duration = 0
	default:
		return errors.Errorf("invalid duration %v", v)
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Default returns a configuration that keeps core files named "core" in the
// current directory and uses the stock debugger timings.
func Default() Configuration {
	c := Configuration{}
	c.applyDefaults()
	return c
}

func ParseConfigurationFile(path string) (Configuration, error) {
	if len(path) == 0 {
		return Configuration{}, errors.New("Path to the configuration file was empty")
	}

	dat, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, errors.Wrap(err, "Failed to read configuration file")
	}

	// Fields absent from the file keep their defaults; explicit zero
	// durations are kept as zero.
	unmarshalledConf := Default()
	if err := json.Unmarshal(dat, &unmarshalledConf); err != nil {
		return Configuration{}, errors.Wrap(err, "Failed to parse configuration file")
	}
	if err := unmarshalledConf.Validate(); err != nil {
		return Configuration{}, err
	}
	return unmarshalledConf, nil
}

func (c Configuration) Validate() error {
	switch c.ScriptMode {
	case "", ScriptModeBatch, ScriptModePipe:
	default:
		return errors.Errorf("Unknown script mode %q", c.ScriptMode)
	}
	if c.SettleDelay.Duration < 0 || c.ThinkTime.Duration < 0 || c.DrainDelay.Duration < 0 || c.DumpWaitTimeout.Duration < 0 {
		return errors.New("Debugger timings must not be negative")
	}
	return nil
}

func (c *Configuration) applyDefaults() {
	if c.CorePatternFile == "" {
		c.CorePatternFile = DefaultCorePatternFile
	}
	if c.ScriptMode == "" {
		c.ScriptMode = ScriptModeBatch
	}
	if c.SettleDelay.Duration == 0 {
		c.SettleDelay.Duration = DefaultSettleDelay
	}
	if c.ThinkTime.Duration == 0 {
		c.ThinkTime.Duration = DefaultThinkTime
	}
	if c.DrainDelay.Duration == 0 {
		c.DrainDelay.Duration = DefaultDrainDelay
	}
	if c.DumpWaitTimeout.Duration == 0 {
		c.DumpWaitTimeout.Duration = DefaultDumpWaitTimeout
	}
	if c.LldbCoreDir == "" {
		c.LldbCoreDir = DefaultLldbCoreDir
	}
	if c.OutputPath == "" {
		c.OutputPath = "."
	}
}
