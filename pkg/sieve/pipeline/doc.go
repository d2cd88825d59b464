// Package pipeline runs the concurrent Sieve of Eratosthenes.
//
// A root worker records 2 and feeds every odd candidate up to N into a
// bounded queue. Each filter worker takes the first value of its input
// queue as its prime p. While p ≤ ⌊√N⌋ it starts a child worker on a new
// queue and forwards every later value that is not a multiple of p. Past
// that threshold every value left in the stream is prime, so the worker
// records them all and starts no child.
//
// There is one goroutine and one queue per active filter, so the tree grows
// with the number of odd primes up to √N. Nothing caps it.
//
// A worker that cannot allocate its child queue, or cannot record a prime,
// aborts: it records the error on the run, discards the rest of its input so
// its parent is never left blocked, and returns. Primes of that subtree may
// be missing from the report. The run still completes and Wait returns.
package pipeline
