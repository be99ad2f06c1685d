// Package attachments persists uploaded proof files (bills, photos, location
// screenshots) and returns the URL stored on ledger lines and expense items.
package attachments

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store saves an upload and returns its public URL. Delete takes a URL
// returned by Save.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// DiskStore writes files under dir and serves them from baseURL.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachment directory: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stored := uuid.NewString() + safeExt(name)
	f, err := os.OpenFile(filepath.Join(s.dir, stored), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create attachment: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close attachment: %w", err)
	}
	return s.baseURL + "/" + stored, nil
}

// Delete removes a file saved by this store. Deleting a file that is already
// gone is not an error.
func (s *DiskStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || stored == "" || strings.ContainsAny(stored, `/\`) || stored == ".." {
		return fmt.Errorf("attachment %q is not managed by this store", url)
	}
	if err := os.Remove(filepath.Join(s.dir, stored)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

// safeExt keeps a short alphanumeric extension and drops anything else.
func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
