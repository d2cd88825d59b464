// Package core contains pipeline plumbing shared by the sieve workers:
// queue helpers, worker configuration via context, and the locomotive that
// pulls values out of a queue until end-of-stream. It does not know about
// primes; the pipeline package builds the sieve on top of it.
package core
