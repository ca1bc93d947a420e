// Package hash provides the checksums used to protect mesh snapshots.
//
// Snapshots are sealed with CRC32-Castagnoli (CRC32C). Go's hash/crc32
// package picks the hardware instruction (SSE4.2, ARM CRC) when the CPU has
// one, so sealing a snapshot costs little next to compressing it.
//
//	sum := hash.CRC32C(body)
package hash
