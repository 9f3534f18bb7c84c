// Package uploads stores check-in photos in a flat directory.
//
// Photos are addressed by a relative reference such as
// "/uploads/diem-danh-<hex>.jpg". Only the check-in service writes photos
// and only the retention sweeper deletes them.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"rollcall-hq/attendance/pkg/attendance"
)

const (
	// DefaultURLPrefix is the reference prefix of stored photos.
	DefaultURLPrefix = "/uploads"

	// FilePrefix starts every stored photo name.
	FilePrefix = "diem-danh-"
)

// ErrPathEscape is returned for references that resolve outside the root.
var ErrPathEscape = errors.New("photo reference escapes upload directory")

// Dir is an upload directory.
type Dir struct {
	root      string
	urlPrefix string
	newName   func() string
	logger    *slog.Logger
}

// NewDir creates the directory if needed and returns a handle to it.
func NewDir(root, urlPrefix string) (*Dir, error) {
	if root == "" {
		return nil, fmt.Errorf("upload directory cannot be empty")
	}
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, attendance.NewStorageError("uploads", "mkdir", err)
	}

	return &Dir{
		root:      root,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		newName:   defaultName,
		logger:    slog.Default().With("component", "attendance.uploads"),
	}, nil
}

func defaultName() string {
	return FilePrefix + strings.ReplaceAll(uuid.NewString(), "-", "") + ".jpg"
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.root
}

// URLPrefix returns the reference prefix, e.g. "/uploads".
func (d *Dir) URLPrefix() string {
	return d.urlPrefix
}

// Save writes src to a new uniquely named file and returns its reference.
func (d *Dir) Save(ctx context.Context, src io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := d.newName()
	full := filepath.Join(d.root, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", attendance.NewStorageError("uploads", "create", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(full)
		return "", attendance.NewStorageError("uploads", "write", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", attendance.NewStorageError("uploads", "close", err)
	}

	ref := path.Join(d.urlPrefix, name)
	d.logger.Debug("photo stored", "ref", ref)
	return ref, nil
}

// Delete removes the file behind ref. A missing file is not an error.
func (d *Dir) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := d.Resolve(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return attendance.NewStorageError("uploads", "delete", err)
	}
	return nil
}

// Resolve maps a reference to a file path under the root.
func (d *Dir) Resolve(ref string) (string, error) {
	rel := strings.TrimSpace(ref)
	rel = strings.TrimPrefix(rel, d.urlPrefix+"/")
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return "", ErrPathEscape
	}

	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", ErrPathEscape
	}

	return filepath.Join(d.root, cleaned), nil
}

// Writable verifies the directory accepts new files.
func (d *Dir) Writable() error {
	f, err := os.CreateTemp(d.root, ".probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
