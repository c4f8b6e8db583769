// Package config loads authctl settings: defaults, an optional JSON file,
// GOPHAUTH_* environment variables and command-line flags, applied in that
// order. Arguments left after the flags name the command to run.
package config
