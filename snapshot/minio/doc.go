// Package minio stores mesh snapshots in MinIO and other S3-compatible
// object stores through minio-go.
package minio
