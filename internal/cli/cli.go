// Package cli wires flags, configuration, logging and the trash manager
// into the rim command.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/babarot/rim/internal/config"
	"github.com/babarot/rim/internal/core/types"
	"github.com/babarot/rim/internal/env"
	"github.com/babarot/rim/internal/ledger"
	"github.com/babarot/rim/internal/trash"
	"github.com/babarot/rim/internal/ui"
	"github.com/babarot/rim/internal/utils/debug"
	"github.com/babarot/rim/internal/utils/log"
	"github.com/jessevdk/go-flags"
	"github.com/rs/xid"
)

type Option struct {
	Recover      bool   `short:"b" long:"recover" description:"Recover files by id or original path (opens a picker without arguments)"`
	List         int    `short:"l" long:"list" description:"Show the N most recently recycled entries" optional:"yes" optional-value:"20" value-name:"N"`
	Prune        bool   `long:"prune" description:"Permanently delete expired entries"`
	PruneOrphans bool   `long:"prune-orphans" description:"Compare the ledger with the trash directory and drop entries whose files are gone"`
	Yes          bool   `short:"y" long:"yes" description:"Do not ask for confirmation"`
	Config       string `long:"config" description:"Path to config file" default:""`

	Meta MetaOption `group:"Meta Options"`
	Rm   RmOption   `group:"Compatible (rm) Options"`
}

type MetaOption struct {
	Version bool   `short:"V" long:"version" description:"Show version"`
	Debug   string `long:"debug" description:"View debug logs (default: \"full\")" optional-value:"full" optional:"yes" choice:"full" choice:"live"`
}

// RmOption provides compatibility with rm command options
type RmOption struct {
	Interactive bool `short:"i" description:"prompt before every removal"`
	Recursive   bool `short:"r" long:"recursive" description:"recycle directories and their contents recursively"`
	Recursive2  bool `short:"R" description:"same as -r"`
	Force       bool `short:"f" long:"force" description:"ignore nonexistent files"`
	Directory   bool `short:"d" long:"dir" description:"(dummy) empty directories are always accepted"`
	Verbose     bool `short:"v" long:"verbose" description:"explain what is being done"`
}

type CLI struct {
	version Version
	option  Option
	config  config.Config
	runID   string
	manager *trash.Manager

	outStream, errStream io.Writer

	confirm func(prompt string, defaultYes bool) (bool, error)
	pick    func(entries []types.TrashEntry) ([]types.TrashEntry, error)
}

var runID = sync.OnceValue(func() string {
	return xid.New().String()
})

func newCLI(v Version, opt Option, cfg config.Config, manager *trash.Manager) *CLI {
	return &CLI{
		version:   v,
		option:    opt,
		config:    cfg,
		runID:     runID(),
		manager:   manager,
		outStream: os.Stdout,
		errStream: os.Stderr,
		confirm:   ui.Confirm,
		pick:      ui.Pick,
	}
}

// Run parses the command line and executes the requested operation
func Run(v Version) error {
	var opt Option
	parser := flags.NewParser(&opt, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = v.AppName
	parser.Usage = "[OPTIONS] [files...]"
	args, err := parser.Parse()
	if err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(os.Stdout, err)
			return nil
		}
		return err
	}

	if opt.Meta.Version {
		fmt.Fprint(os.Stdout, v.Print())
		return nil
	}

	// nothing is logged until the configuration says where to
	log.Discard()

	cfg, err := config.Parse(opt.Config)
	if err != nil {
		return err
	}
	setupLogger(cfg.Logging)

	defer slog.Debug("main function finished")
	slog.Debug("main function started", "version", v.Version, "revision", v.Revision, "buildDate", v.BuildDate)

	if opt.Meta.Debug != "" {
		mode, err := debug.ParseMode(opt.Meta.Debug)
		if err != nil {
			return err
		}
		return debug.Logs(os.Stdout, env.RIM_LOG_PATH, cfg.Logging.Enabled, mode)
	}

	trashConfig, err := trash.NewConfig(cfg)
	if err != nil {
		return err
	}
	store, err := ledger.Open(cfg.Core.DatabasePath(), trashConfig.TTL, ledger.WithRunID(runID()))
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer store.Close()

	manager, err := trash.NewManager(trashConfig, store)
	if err != nil {
		return fmt.Errorf("failed to initialize trash manager: %w", err)
	}

	if err := newCLI(v, opt, cfg, manager).Run(args); err != nil {
		slog.Error("exit", "error", fmt.Errorf("cli.run failed: %w", err))
		return err
	}
	return nil
}

func setupLogger(cfg config.LoggingConfig) {
	if !cfg.Enabled {
		log.Discard()
		return
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.New(
		log.UseRotatingOutput(env.RIM_LOG_PATH, cfg.Rotation.MaxSize, cfg.Rotation.MaxFiles),
		log.UseLevel(level),
		log.UseReportCaller(true),
		log.UseReportTimestamp(true),
		log.UseTimeFormat(time.DateTime),
		log.UseAttrs("run_id", runID()),
		log.AsDefault(),
	)
}

func (c *CLI) Run(args []string) error {
	switch {
	case c.option.List > 0:
		return c.List(c.option.List)

	case c.option.Prune || c.option.PruneOrphans:
		return c.Prune()

	case c.option.Recover:
		return c.Recover(args)

	default:
		return c.Put(args)
	}
}

// ErrTooFewArguments is returned when there is nothing to recycle
var ErrTooFewArguments = errors.New("too few arguments")
