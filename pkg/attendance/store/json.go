package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"rollcall-hq/attendance/pkg/attendance"
)

// DefaultJSONPath is the conventional location of the attendance log.
const DefaultJSONPath = "logs/diem_danh_log.json"

// JSONFile persists records as a pretty-printed JSON array.
type JSONFile struct {
	path string
}

// NewJSONFile returns a JSON file backend at path.
func NewJSONFile(path string) *JSONFile {
	if path == "" {
		path = DefaultJSONPath
	}
	return &JSONFile{path: path}
}

// Path returns the backing file path.
func (f *JSONFile) Path() string {
	return f.path
}

// Name implements Persistence.
func (f *JSONFile) Name() string {
	return "json"
}

// Load implements Persistence. An empty file is treated as an empty log.
func (f *JSONFile) Load(ctx context.Context) ([]attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, attendance.ErrStoreNotFound
		}
		return nil, attendance.NewStorageError("json", "read", err)
	}

	return decodeRecords(f.path, data)
}

// Save implements Persistence.
func (f *JSONFile) Save(ctx context.Context, records []attendance.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []attendance.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return attendance.NewStorageError("json", "encode", err)
	}

	if err := writeFileAtomic(f.path, data); err != nil {
		return attendance.NewStorageError("json", "save", err)
	}
	return nil
}

// Quarantine implements Quarantiner by renaming the file to
// <path>.corrupt-<stamp>.
func (f *JSONFile) Quarantine(ctx context.Context, stamp string) (string, error) {
	target := fmt.Sprintf("%s.corrupt-%s", f.path, stamp)
	if err := os.Rename(f.path, target); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return target, nil
}

// Repair rewrites a log damaged by a dangling trailing comma. It reports
// whether the file was changed. A file that is already valid is left alone.
func (f *JSONFile) Repair(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, attendance.ErrStoreNotFound
		}
		return false, attendance.NewStorageError("json", "read", err)
	}

	fixed, changed, err := RepairJSON(data)
	if err != nil {
		return false, attendance.NewCorruptStoreError(f.path, err)
	}
	if !changed {
		return false, nil
	}

	if err := writeFileAtomic(f.path, fixed); err != nil {
		return false, attendance.NewStorageError("json", "repair", err)
	}
	return true, nil
}

// Close implements Persistence.
func (f *JSONFile) Close() error {
	return nil
}

func decodeRecords(path string, data []byte) ([]attendance.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []attendance.Record{}, nil
	}

	var records []attendance.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, attendance.NewCorruptStoreError(path, err)
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return records, nil
}

// writeFileAtomic writes data to a temp file beside path and renames it into
// place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
