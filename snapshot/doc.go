// Package snapshot persists mesh vertices as self-describing archives.
//
// An archive is a fixed header, the IO signature of the vertex records and
// the record stream itself, optionally compressed with LZ4 or Zstandard:
//
//	+--------+-----------+------------------------+
//	| header | signature | body (records, packed) |
//	+--------+-----------+------------------------+
//
// The header carries the record count, the stream mode, the raw and stored
// body sizes and a CRC32C of the stored body. Archives are written to a
// Store: the in-memory and local-directory stores live here, object stores
// in the minio and s3 subpackages.
package snapshot
