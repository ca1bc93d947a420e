package main

import (
	"context"
	"testing"

	"github.com/hupe1980/meshgo/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoreURI(t *testing.T) {
	tests := []struct {
		uri  string
		want storeLocation
	}{
		{"mem://", storeLocation{Scheme: "mem"}},
		{"/tmp/meshes", storeLocation{Scheme: "file", Path: "/tmp/meshes"}},
		{"file:///tmp/meshes", storeLocation{Scheme: "file", Path: "/tmp/meshes"}},
		{"s3://bucket", storeLocation{Scheme: "s3", Host: "bucket", Bucket: "bucket"}},
		{"s3://bucket/a/b/", storeLocation{Scheme: "s3", Host: "bucket", Bucket: "bucket", Prefix: "a/b"}},
		{"minio://localhost:9000/bucket/meshes", storeLocation{Scheme: "minio", Host: "localhost:9000", Bucket: "bucket", Prefix: "meshes"}},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := parseStoreURI(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, uri := range []string{"", "s3://", "minio://localhost:9000", "ftp://host/x"} {
		_, err := parseStoreURI(uri)
		assert.Error(t, err, uri)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	s, err := openStore(ctx, SnapshotConfig{URI: "mem://"})
	require.NoError(t, err)
	assert.IsType(t, &snapshot.MemoryStore{}, s)

	dir := t.TempDir()
	s, err = openStore(ctx, SnapshotConfig{URI: "file://" + dir, RateLimit: 1 << 20})
	require.NoError(t, err)
	assert.IsType(t, &snapshot.ThrottledStore{}, s)

	require.NoError(t, s.Put(ctx, "a.msh", []byte("x")))
	data, err := s.Get(ctx, "a.msh")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}
