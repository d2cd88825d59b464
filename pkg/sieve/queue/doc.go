// Package queue provides the bounded FIFO queues that connect the workers of
// the sieve pipeline.
//
// Two implementations share the Queue contract:
// - Ring: a circular buffer of capacity+1 slots guarded by a mutex, with two
//   counting admission tokens (empty slots and full slots)
// - Chan: the same contract on top of a buffered Go channel
//
// Put blocks while the queue is full and Get blocks while it is empty. The
// producer ends the stream with Close; Get then reports ok == false, and keeps
// doing so without blocking. Destroy releases the storage once the single
// consumer has observed the end of the stream.
package queue
