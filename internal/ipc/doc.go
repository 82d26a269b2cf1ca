// Package ipc provides JSON-RPC control of the daemon over a Unix domain
// socket. The CLI is the primary client; external display surfaces can use
// MenuList/MenuSelect to mirror and drive the menu.
package ipc
