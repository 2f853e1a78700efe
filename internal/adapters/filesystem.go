package adapters

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"gemcook/internal/ports"
)

type FileSystemAdapter struct{}

func NewFileSystemAdapter() FileSystemAdapter {
	return FileSystemAdapter{}
}

func (a FileSystemAdapter) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read " + path).
			WithCause(err)
	}
	return data, nil
}

func (a FileSystemAdapter) WriteFile(path string, data []byte) error {
	if err := a.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write " + path).
			WithCause(err)
	}
	return nil
}

func (a FileSystemAdapter) MkdirAll(path string) error {
	if path == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("directory path is empty")
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create directory " + path).
			WithCause(err)
	}
	return nil
}

// CopyFile copies src to dst and carries over the permission bits and
// modification time.
func (a FileSystemAdapter) CopyFile(src string, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("source file not found: " + src).
			WithCause(err)
	}
	if err := copyContents(src, dst, info.Mode().Perm()); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to copy %s to %s", src, dst)).
			WithCause(err)
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to set mode on " + dst).
			WithCause(err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to set times on " + dst).
			WithCause(err)
	}
	return nil
}

func copyContents(src string, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// RemoveContents deletes everything inside dir. Only regular files and
// directories are removed; any other entry, a symlink in particular, is
// refused before anything is deleted.
func (a FileSystemAdapter) RemoveContents(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list " + dir).
			WithCause(err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() && !entry.IsDir() {
			return errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg(fmt.Sprintf("refusing to remove %s: not a regular file or directory, possible symlink deletion attack",
					filepath.Join(dir, entry.Name())))
		}
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to remove " + path).
				WithCause(err)
		}
	}
	return nil
}

var _ ports.FileSystemPort = FileSystemAdapter{}
