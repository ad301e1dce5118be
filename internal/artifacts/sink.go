// Package artifacts stores run screenshots in a gocloud.dev blob bucket.
//
// Buckets are addressed by URL: file:///var/lib/testafy for a local
// directory, mem:// for an in-memory bucket, or any other scheme registered
// with gocloud.dev/blob. Objects are keyed "<test id>/<screenshot name>".
package artifacts

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	"testafy/pkg/logging"
)

const defaultContentType = "image/png"

// Sink writes decoded screenshots to a bucket.
type Sink struct {
	bucket *blob.Bucket
	target string
}

// Open opens the bucket at bucketURL and checks that it is reachable.
func Open(ctx context.Context, bucketURL string) (*Sink, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", bucketURL, err)
	}

	ok, err := bucket.IsAccessible(ctx)
	if err != nil {
		_ = bucket.Close()
		return nil, fmt.Errorf("failed to check bucket accessibility %s: %w", bucketURL, err)
	}
	if !ok {
		_ = bucket.Close()
		return nil, fmt.Errorf("bucket %s is not accessible", bucketURL)
	}
	return &Sink{bucket: bucket, target: bucketURL}, nil
}

// OpenDir opens a local directory as a bucket, creating it if needed.
func OpenDir(dir string) (*Sink, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", abs, err)
	}

	bucket, err := fileblob.OpenBucket(abs, &fileblob.Options{NoTempDir: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open directory %s: %w", abs, err)
	}
	return &Sink{bucket: bucket, target: abs}, nil
}

// OpenTarget opens bucketURL when set, otherwise dir. It returns nil when
// neither is configured.
func OpenTarget(ctx context.Context, bucketURL, dir string) (*Sink, error) {
	switch {
	case bucketURL != "":
		return Open(ctx, bucketURL)
	case dir != "":
		return OpenDir(dir)
	default:
		return nil, nil
	}
}

// String returns the bucket URL or directory the sink writes to.
func (s *Sink) String() string {
	return s.target
}

// Save decodes each base64 screenshot and writes it under testID. It returns
// the keys written, in name order.
func (s *Sink) Save(ctx context.Context, testID string, shots map[string]string) ([]string, error) {
	names := make([]string, 0, len(shots))
	for name := range shots {
		names = append(names, name)
	}
	sort.Strings(names)

	keys := make([]string, 0, len(names))
	for _, name := range names {
		data, err := Decode(shots[name])
		if err != nil {
			return keys, fmt.Errorf("screenshot %s is not valid base64: %w", name, err)
		}

		key := Key(testID, name)
		opts := &blob.WriterOptions{ContentType: contentType(name)}
		if err := s.bucket.WriteAll(ctx, key, data, opts); err != nil {
			return keys, fmt.Errorf("failed to write %s to %s: %w", key, s.target, err)
		}
		logging.Debug("Artifacts", "Saved %s (%d bytes) to %s", key, len(data), s.target)
		keys = append(keys, key)
	}
	return keys, nil
}

// Read returns a stored object.
func (s *Sink) Read(ctx context.Context, key string) ([]byte, error) {
	return s.bucket.ReadAll(ctx, key)
}

// Close releases the bucket.
func (s *Sink) Close() error {
	return s.bucket.Close()
}

// Key builds the object key for a screenshot. Path elements in name that
// would escape the run's prefix are dropped.
func Key(testID, name string) string {
	clean := strings.TrimPrefix(path.Clean("/"+name), "/")
	if clean == "" {
		clean = "screenshot"
	}
	return path.Join(testID, clean)
}

// Decode decodes a base64 screenshot. Whitespace and a data URI prefix
// are tolerated.
func Decode(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if i := strings.Index(s, ";base64,"); i >= 0 {
		s = s[i+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(s)
}

func contentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return defaultContentType
}
