package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/lukjok/crashprobe/analyzer"
	"github.com/lukjok/crashprobe/config"
	"github.com/lukjok/crashprobe/memdump"
	"github.com/lukjok/crashprobe/models"
	"github.com/lukjok/crashprobe/util"
	"github.com/lukjok/crashprobe/watcher"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "crashprobe",
		Version:   "0.1",
		Compiled:  time.Now(),
		Usage:     "collect debugger backtraces from crashed server processes",
		UsageText: "crashprobe [global options] command [command options] [arguments...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "cfg",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file",
			},
			&cli.StringFlag{
				Name:  "core-dir",
				Usage: "Where core files are written; empty means ./core",
			},
			&cli.StringFlag{
				Name:  "script-mode",
				Usage: "How the debugger is driven: batch or pipe",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write diagnostics to this file instead of stderr",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Do not highlight crash announcements",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "analyze the core file of a process that already crashed",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "binary", Aliases: []string{"b"}, Required: true, Usage: "Path to the crashed executable"},
					&cli.IntFlag{Name: "pid", Aliases: []string{"p"}, Required: true, Usage: "Process id of the crashed process"},
					&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Value: ".", Usage: "Working directory of the crashed process"},
					&cli.StringFlag{Name: "context", Value: "manual analysis", Usage: "What was running when the process crashed"},
					&cli.StringFlag{Name: "signal", Usage: "Signal or exception code the process died with"},
				},
				Action: analyzeAction,
			},
			{
				Name:      "run",
				Usage:     "run a binary and analyze it if it crashes",
				ArgsUsage: "binary [arguments...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Value: ".", Usage: "Working directory for the process"},
					&cli.StringFlag{Name: "context", Value: "supervised run", Usage: "Label recorded with the crash"},
				},
				Action: runAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadSettings(c *cli.Context) (config.Configuration, error) {
	settings := config.Default()
	if cfgPath := c.String("cfg"); len(cfgPath) != 0 {
		var err error
		if settings, err = config.ParseConfigurationFile(cfgPath); err != nil {
			return settings, err
		}
	}
	if c.IsSet("core-dir") {
		settings.CoreDirectory = c.String("core-dir")
	}
	if c.IsSet("script-mode") {
		settings.ScriptMode = c.String("script-mode")
	}
	if c.IsSet("log-file") {
		settings.LogFile = c.String("log-file")
	}
	if c.Bool("no-color") {
		settings.NoColor = true
	}
	return settings, settings.Validate()
}

func newWatcher(c *cli.Context, rootDir string) (*watcher.Watcher, error) {
	settings, err := loadSettings(c)
	if err != nil {
		return nil, err
	}
	logger, err := util.NewLogger(settings.LogFile, settings.NoColor)
	if err != nil {
		return nil, err
	}

	a := analyzer.NewForHost(settings.CorePatternFile, logger)
	w := watcher.NewWatcher(settings, rootDir, a, logger)
	if a.Platform == models.Windows && settings.DumpExecutablePath != "" {
		w.Dumper = memdump.NewMemoryDump(rootDir, settings.DumpExecutablePath)
	}
	return w, nil
}

func analyzeAction(c *cli.Context) error {
	w, err := newWatcher(c, c.String("root"))
	if err != nil {
		return err
	}

	record := &models.ProcessRecord{
		Pid:     c.Int("pid"),
		RootDir: c.String("root"),
		Binary:  c.String("binary"),
		ExitStatus: models.ExitStatus{
			Signal: c.String("signal"),
		},
	}
	report := w.Analyze(c.Context, record.Binary, record, "", c.String("context"))
	printHint(report.DebuggerHint)
	return nil
}

func runAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no binary given")
	}
	w, err := newWatcher(c, c.String("root"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	report, err := w.Run(ctx, c.Args().First(), c.Args().Tail(), c.String("context"))
	if errors.Cause(err) == context.Canceled {
		return cli.Exit("interrupted", 130)
	}
	if err != nil {
		return err
	}
	if report == nil {
		return nil
	}
	printHint(report.DebuggerHint)
	return cli.Exit(fmt.Sprintf("%s crashed on %s", c.Args().First(), runtime.GOOS), 1)
}

func printHint(hint string) {
	if hint != "" {
		fmt.Println(hint)
	}
}
