// Package common provides shared helpers for MCP tool packages, including
// account extraction from tool arguments and handler wrappers that record
// invocation metrics.
package common
