package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/breez/hyperlattice/config"
)

const (
	defaultLogFilename   = "hyperlattice.log"
	defaultMaxLogFileMB  = 10
	defaultMaxLogFiles   = 3
	defaultGraphMLOut    = ""
	defaultGraphMLFormat = "hyperedge"
)

// ctlConfig is the full set of options hyperlatticectl recognizes: the
// network-pair and workload parameters from package config, tagged for
// go-flags exactly as the teacher tags lnd's Config, plus a handful of
// options this binary owns outright (log destination, GraphML export).
type ctlConfig struct {
	config.NetworkPairConfig
	config.WorkloadConfig

	LogDir         string `long:"logdir" default:"." description:"directory to write the log file in"`
	LogFilename    string `long:"logfilename" description:"log file name"`
	MaxLogFileSize int    `long:"maxlogfilesize" description:"maximum log file size in KiB before rotation"`
	MaxLogFiles    int    `long:"maxlogfiles" description:"maximum number of rolled log files to keep"`
	DebugLevel     string `long:"debuglevel" default:"info" description:"logging level for all subsystems"`

	GraphMLOut    string `long:"graphml-out" description:"if set, write a GraphML export of the hyper network to this path"`
	GraphMLFormat string `long:"graphml-format" default:"hyperedge" description:"GraphML export form: hyperedge or clique"`
}

// defaultCtlConfig seeds every field not covered by go-flags' own
// `default` tag (those come from package config's own defaults, since a
// struct tag default and a NetworkPairConfig zero value can't both be
// expressed at once when the two are embedded).
func defaultCtlConfig() ctlConfig {
	return ctlConfig{
		NetworkPairConfig: config.DefaultNetworkPairConfig(),
		WorkloadConfig:    config.DefaultWorkloadConfig(),
		LogDir:            ".",
		LogFilename:       defaultLogFilename,
		MaxLogFileSize:    defaultMaxLogFileMB * 1024,
		MaxLogFiles:       defaultMaxLogFiles,
		DebugLevel:        "info",
		GraphMLFormat:     defaultGraphMLFormat,
	}
}

// loadConfig parses command-line arguments into a ctlConfig seeded with
// the library defaults, mirroring lnd's LoadConfig: defaults first, then
// flags override, with flags.ErrHelp surfaced to the caller unmodified so
// main can skip printing an error for it.
func loadConfig(args []string) (*ctlConfig, error) {
	cfg := defaultCtlConfig()

	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.LogFilename == "" {
		cfg.LogFilename = defaultLogFilename
	}

	return &cfg, nil
}

func fatalConfigError(err error) {
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		os.Exit(0)
	}
	fmt.Fprintf(os.Stderr, "hyperlatticectl: %v\n", err)
	os.Exit(1)
}
