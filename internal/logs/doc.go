// Package logs reads the daemon log files written by daemonrun. The daemon
// keeps a stable nudge.log pointer next to its per-run log files, so the CLI
// can tail the active log without knowing the run identifier.
package logs
