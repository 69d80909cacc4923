// Package config loads vlt settings.
//
// Precedence, lowest first: built-in defaults, the TOML config file, the
// process environment (which a .env file in the working directory may
// populate), and finally command-line flags, applied by the caller.
package config
