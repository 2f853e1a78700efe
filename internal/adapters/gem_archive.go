package adapters

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/gzip"

	"gemcook/internal/types"
)

const (
	gemMetadataMember = "metadata.gz"
	gemDataMember     = "data.tar.gz"
)

// readGemArchiveSpec reads the specification stored in a .gem archive.
func readGemArchiveSpec(path string) (types.GemSpec, error) {
	var spec types.GemSpec
	found := false
	err := walkGemArchive(path, func(name string, r io.Reader) error {
		if name != gemMetadataMember {
			return nil
		}
		gr, err := gzip.NewReader(r)
		if err != nil {
			return err
		}
		defer gr.Close()
		data, err := io.ReadAll(gr)
		if err != nil {
			return err
		}
		spec, err = parseGemSpec(data, path)
		if err != nil {
			return err
		}
		found = true
		return errStopWalk
	})
	if err != nil {
		return types.GemSpec{}, err
	}
	if !found {
		return types.GemSpec{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%s has no %s", path, gemMetadataMember))
	}
	return spec, nil
}

// unpackGemArchive extracts the data member of a .gem archive into dest.
func unpackGemArchive(path string, dest string) error {
	found := false
	err := walkGemArchive(path, func(name string, r io.Reader) error {
		if name != gemDataMember {
			return nil
		}
		found = true
		gr, err := gzip.NewReader(r)
		if err != nil {
			return err
		}
		defer gr.Close()
		if err := extractTar(tar.NewReader(gr), dest); err != nil {
			return err
		}
		return errStopWalk
	})
	if err != nil {
		return err
	}
	if !found {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%s has no %s", path, gemDataMember))
	}
	return nil
}

var errStopWalk = errors.New("stop")

// walkGemArchive calls fn for every member of the outer (uncompressed) tar.
func walkGemArchive(path string, fn func(name string, r io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("failed to open %s", path)).
			WithCause(err)
	}
	defer f.Close()

	tr := tar.NewReader(f)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("failed to read gem archive %s", path)).
				WithCause(err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if err := fn(header.Name, tr); err != nil {
			if errors.Is(err, errStopWalk) {
				return nil
			}
			var builder *errbuilder.ErrBuilder
			if errors.As(err, &builder) {
				return err
			}
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("failed to read %s from %s", header.Name, path)).
				WithCause(err)
		}
	}
}

func extractTar(tr *tar.Reader, dest string) error {
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		target, err := safeJoin(dest, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := writeTarFile(tr, target, header.FileInfo().Mode().Perm()); err != nil {
				return err
			}
			if err := os.Chtimes(target, header.ModTime, header.ModTime); err != nil {
				return err
			}
		default:
			// Links and devices are not part of a usable gem tree.
		}
	}
}

func writeTarFile(r io.Reader, target string, mode os.FileMode) error {
	if mode == 0 {
		mode = 0644
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// safeJoin rejects member names that would escape dest.
func safeJoin(dest string, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg(fmt.Sprintf("archive member %s escapes the install directory", name))
	}
	return target, nil
}
