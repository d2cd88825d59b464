// Package sieve holds the kinds shared by the concurrent prime sieve: the
// Result outcome type, the error kinds and small error helpers.
//
// The sieve itself lives in the sub packages:
// - queue: bounded FIFO queues with blocking Put/Get and end-of-stream
// - store: the synchronized LIFO store every worker records primes into
// - pipeline: the recursive filter tree, one goroutine per prime
// - core: plumbing shared by the above (worker options, drain loop)
package sieve
