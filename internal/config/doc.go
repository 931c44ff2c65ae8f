// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config.yaml and TASKMGR_-prefixed environment
// variables. Components receive typed sub-structs rather than reading the
// environment themselves.
package config
