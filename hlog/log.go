// Package hlog wires the package-level subsystem loggers shared by the
// hyperlattice engine. It follows the same shape as the teacher daemon's
// log.go: a single backend, one btclog.Logger per subsystem, and a
// SetLevel/SetLevels pair for runtime control.
package hlog

import (
	"io"
	"os"

	"github.com/btcsuite/btclog"
)

// Subsystem tags, four characters as is conventional for btclog.
const (
	SubsystemHypergraph = "HGRF"
	SubsystemRouting    = "RTNG"
	SubsystemNetgen     = "NGEN"
	SubsystemWorkload   = "WKLD"
	SubsystemCtl        = "CTL "
)

var (
	backendLog = btclog.NewBackend(os.Stdout)

	// Hypergraph is the subsystem logger used by package hypergraph.
	Hypergraph = backendLog.Logger(SubsystemHypergraph)

	// Routing is the subsystem logger used by package routing.
	Routing = backendLog.Logger(SubsystemRouting)

	// Netgen is the subsystem logger used by package netgen.
	Netgen = backendLog.Logger(SubsystemNetgen)

	// Workload is the subsystem logger used by package workload.
	Workload = backendLog.Logger(SubsystemWorkload)

	// Ctl is the subsystem logger used by cmd/hyperlatticectl.
	Ctl = backendLog.Logger(SubsystemCtl)

	subsystemLoggers = map[string]btclog.Logger{
		SubsystemHypergraph: Hypergraph,
		SubsystemRouting:    Routing,
		SubsystemNetgen:     Netgen,
		SubsystemWorkload:   Workload,
		SubsystemCtl:        Ctl,
	}
)

func init() {
	SetLevels(btclog.LevelInfo)
}

// SetOutput redirects the shared backend to w. The cmd package calls this
// from its init function with a writer that goes to the terminal, and
// attaches the log-rotation pipe to that writer later; library callers
// that embed the engine in a larger process are expected to do the same
// before touching any network or generator, mirroring the teacher's
// initLogRotator-before-use contract.
func SetOutput(w io.Writer) {
	backendLog = btclog.NewBackend(w)
	for tag := range subsystemLoggers {
		subsystemLoggers[tag] = backendLog.Logger(tag)
	}
	Hypergraph = subsystemLoggers[SubsystemHypergraph]
	Routing = subsystemLoggers[SubsystemRouting]
	Netgen = subsystemLoggers[SubsystemNetgen]
	Workload = subsystemLoggers[SubsystemWorkload]
	Ctl = subsystemLoggers[SubsystemCtl]
}

// SetLevel sets the logging level for a single subsystem. Unknown
// subsystems are ignored, matching the teacher's setLogLevel.
func SetLevel(subsystem string, level btclog.Level) {
	logger, ok := subsystemLoggers[subsystem]
	if !ok {
		return
	}
	logger.SetLevel(level)
}

// SetLevels sets every subsystem logger to level.
func SetLevels(level btclog.Level) {
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}
