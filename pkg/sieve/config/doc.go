// Package config loads the sieve configuration from environment variables
// with envconfig. Every field has a default, so an empty environment yields
// a working configuration.
package config
