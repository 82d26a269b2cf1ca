// Package notifications delivers daemon events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. The modal reminder dialogs do not go through this package; it
// exists for out-of-band alerts such as daemon lifecycle changes and errors.
package notifications
