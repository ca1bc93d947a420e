package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/meshgo/snapshot"
	"github.com/hupe1980/meshgo/snapshot/minio"
	"github.com/hupe1980/meshgo/snapshot/s3"
)

// storeLocation is a parsed snapshot URI.
type storeLocation struct {
	Scheme string
	// Host is the bucket for s3 and the endpoint for minio.
	Host   string
	Bucket string
	Prefix string
	Path   string
}

// parseStoreURI accepts mem://, file://dir, a plain directory,
// s3://bucket/prefix and minio://endpoint/bucket/prefix.
func parseStoreURI(uri string) (storeLocation, error) {
	if uri == "" {
		return storeLocation{}, fmt.Errorf("empty snapshot uri")
	}
	if !strings.Contains(uri, "://") {
		return storeLocation{Scheme: "file", Path: uri}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return storeLocation{}, fmt.Errorf("invalid snapshot uri %q: %w", uri, err)
	}
	rest := strings.Trim(u.Path, "/")

	switch u.Scheme {
	case "mem":
		return storeLocation{Scheme: "mem"}, nil
	case "file":
		return storeLocation{Scheme: "file", Path: u.Host + u.Path}, nil
	case "s3":
		if u.Host == "" {
			return storeLocation{}, fmt.Errorf("s3 uri %q has no bucket", uri)
		}
		return storeLocation{Scheme: "s3", Host: u.Host, Bucket: u.Host, Prefix: rest}, nil
	case "minio":
		bucket, prefix, _ := strings.Cut(rest, "/")
		if u.Host == "" || bucket == "" {
			return storeLocation{}, fmt.Errorf("minio uri %q needs an endpoint and a bucket", uri)
		}
		return storeLocation{Scheme: "minio", Host: u.Host, Bucket: bucket, Prefix: prefix}, nil
	default:
		return storeLocation{}, fmt.Errorf("unsupported snapshot scheme %q", u.Scheme)
	}
}

// openStore creates the store named by cfg.URI, throttled to cfg.RateLimit.
func openStore(ctx context.Context, cfg SnapshotConfig) (snapshot.Store, error) {
	loc, err := parseStoreURI(cfg.URI)
	if err != nil {
		return nil, err
	}

	var store snapshot.Store
	switch loc.Scheme {
	case "mem":
		store = snapshot.NewMemoryStore()
	case "file":
		store, err = snapshot.NewLocalStore(loc.Path)
	case "s3":
		store, err = openS3(ctx, loc, cfg)
	case "minio":
		store, err = openMinio(loc)
	}
	if err != nil {
		return nil, err
	}
	return snapshot.WithRateLimit(store, cfg.RateLimit), nil
}

func openS3(ctx context.Context, loc storeLocation, cfg SnapshotConfig) (snapshot.Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	store := s3.NewStore(awss3.NewFromConfig(awsCfg), loc.Bucket, loc.Prefix)
	if cfg.DynamoDBTable == "" {
		return store, nil
	}

	baseURI := "s3://" + loc.Bucket
	if loc.Prefix != "" {
		baseURI += "/" + loc.Prefix
	}
	return s3.NewCatalog(store, dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable, baseURI), nil
}

// openMinio reads credentials from MINIO_ACCESS_KEY and MINIO_SECRET_KEY.
// MINIO_SECURE=false disables TLS.
func openMinio(loc storeLocation) (snapshot.Store, error) {
	client, err := miniogo.New(loc.Host, &miniogo.Options{
		Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
		Secure: os.Getenv("MINIO_SECURE") != "false",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return minio.NewStore(client, loc.Bucket, loc.Prefix), nil
}
