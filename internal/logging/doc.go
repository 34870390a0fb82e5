// Package logging provides the Logger interface used across the application
// and helpers for consistent structured log attributes.
//
// The Logger interface exists so components like the credential manager can
// report best-effort cleanup failures through a channel that tests can
// observe, without conflating them with operation results.
package logging
