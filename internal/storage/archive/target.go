package archive

import (
	"fmt"
	"path/filepath"
	"strings"
)

const s3Scheme = "s3://"

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(uri, s3Scheme) {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(uri, s3Scheme), "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", false
	}
	return bucket, key, true
}

// ForTarget resolves an output location to a storage backend and the path within it.
// s3://bucket/key targets use base for endpoint and credentials; anything else is a
// local file path whose parent directory becomes the LocalFS root.
func ForTarget(target string, base S3Config) (Storage, string, error) {
	if strings.HasPrefix(target, s3Scheme) {
		bucket, key, ok := ParseS3URI(target)
		if !ok {
			return nil, "", fmt.Errorf("invalid s3 target %q, want s3://bucket/key", target)
		}
		cfg := base
		cfg.Bucket = bucket
		cfg.Prefix = ""
		store, err := NewS3(cfg)
		if err != nil {
			return nil, "", err
		}
		return store, key, nil
	}

	if target == "" {
		return nil, "", fmt.Errorf("empty output path")
	}
	local, err := NewLocalFS(filepath.Dir(target))
	if err != nil {
		return nil, "", err
	}
	return local, filepath.Base(target), nil
}
