package credential

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/viant/afs"
)

const (
	// DefaultEnv is the variable the subprocess reads the credential path from.
	DefaultEnv = "GOOGLE_APPLICATION_CREDENTIALS"
	filePrefix = "mcp-bridge-credentials-"
	fileMode   = os.FileMode(0o600)
)

// ErrInvalidEncoding is returned when the blob is not valid base64.
var ErrInvalidEncoding = errors.New("credentials are not valid base64")

// File is a materialized credential file.
type File struct {
	fs      afs.Service
	path    string
	mu      sync.Mutex
	removed bool
}

// Path returns the file location.
func (f *File) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

// Remove deletes the file; subsequent calls are no-ops.
func (f *File) Remove(ctx context.Context) error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removed {
		return nil
	}
	exists, err := f.fs.Exists(ctx, f.path)
	if err != nil {
		return fmt.Errorf("failed to check credential file %v: %w", f.path, err)
	}
	if exists {
		if err = f.fs.Delete(ctx, f.path); err != nil {
			return fmt.Errorf("failed to remove credential file %v: %w", f.path, err)
		}
	}
	f.removed = true
	return nil
}

// Materialize decodes encoded and writes it to a uniquely named file in dir
// (the system temp dir when empty). An empty blob yields a nil File.
func Materialize(ctx context.Context, encoded string, dir string) (*File, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, nil
	}
	data, err := decode(encoded)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = os.TempDir()
	}
	ret := &File{
		fs:   afs.New(),
		path: path.Join(dir, filePrefix+uuid.NewString()+".json"),
	}
	if err = ret.fs.Upload(ctx, ret.path, fileMode, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to write credential file %v: %w", ret.path, err)
	}
	return ret, nil
}

func decode(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err == nil {
		return data, nil
	}
	// tolerate unpadded input
	if data, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "=")); rawErr == nil {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
}
