// Package daemon runs the background loops: a display refresh tick that
// rebuilds the menu snapshot and a check tick that drives reminder cycles.
// Both share one guard with asymmetric acquisition, and a file lock keeps
// the daemon single-instance.
package daemon
