// Package resource bounds the concurrency of benchmark trials and the
// throughput of snapshot transfers.
package resource
