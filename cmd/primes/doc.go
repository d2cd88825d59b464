// Command primes prints every prime up to a bound using the concurrent
// pipeline sieve.
//
// Usage:
//
//	primes <n> [--capacity C] [--backend ring|chan] [--log-level L] [--dev] [--metrics]
//
// Settings not given as flags come from the environment (see package config).
package main
