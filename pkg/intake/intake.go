// Package intake turns uploads and directories into source units.
//
// A [Workspace] is a private temporary directory that receives uploaded
// Solidity files and zip archives. Archives are expanded with every entry
// checked against path traversal; only Solidity sources and .gitignore
// files are kept. [Discover] walks a tree for Solidity sources, honouring
// .gitignore files and skipping dependency directories.
//
// Callers must Close a Workspace on every exit path:
//
//	ws, err := intake.NewWorkspace(intake.Options{})
//	if err != nil {
//		return err
//	}
//	defer ws.Close()
package intake

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/extract"
)

// DefaultMaxBytes bounds the total bytes a workspace accepts, counting
// uncompressed archive contents.
const DefaultMaxBytes int64 = 50 << 20

const (
	solExt    = ".sol"
	zipExt    = ".zip"
	gitignore = ".gitignore"
)

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// Options configures a Workspace.
type Options struct {
	Root     string // parent directory, os.TempDir() when empty
	MaxBytes int64  // DefaultMaxBytes when zero
}

// Workspace is a temporary directory holding one request's sources.
type Workspace struct {
	Dir      string
	maxBytes int64
	written  int64
}

// NewWorkspace creates a fresh workspace directory.
func NewWorkspace(opts Options) (*Workspace, error) {
	root := opts.Root
	if root == "" {
		root = os.TempDir()
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	dir := filepath.Join(root, "auditgraph-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{Dir: dir, maxBytes: opts.MaxBytes}, nil
}

// Close removes the workspace and everything in it.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.Dir)
}

// AddFile stores an upload. Zip archives are expanded; Solidity files are
// written as they are; anything else is ignored. It returns the number of
// Solidity files added.
func (w *Workspace) AddFile(name string, r io.Reader) (int, error) {
	if err := errors.ValidateUploadName(name); err != nil {
		return 0, err
	}
	base := filepath.Base(filepath.ToSlash(name))
	switch strings.ToLower(filepath.Ext(base)) {
	case zipExt:
		data, err := w.readLimited(r)
		if err != nil {
			return 0, err
		}
		return w.expand(base, data)
	case solExt:
		data, err := w.readLimited(r)
		if err != nil {
			return 0, err
		}
		if err := w.write(w.uniquePath(base), data); err != nil {
			return 0, err
		}
		return 1, nil
	default:
		return 0, nil
	}
}

// expand writes the Solidity and .gitignore entries of a zip archive under
// a directory named after the archive.
func (w *Workspace) expand(archive string, data []byte) (int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidArchive, err, "open %s", archive)
	}
	dest := w.uniquePath(strings.TrimSuffix(archive, filepath.Ext(archive)))
	added := 0
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := errors.ValidatePath(f.Name); err != nil {
			return added, err
		}
		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		if !within(dest, target) {
			return added, errors.New(errors.ErrCodeInvalidPath, "archive entry %q escapes the workspace", f.Name)
		}
		base := filepath.Base(target)
		isSol := strings.EqualFold(filepath.Ext(base), solExt)
		if !isSol && base != gitignore {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return added, errors.Wrap(errors.ErrCodeInvalidArchive, err, "read %s in %s", f.Name, archive)
		}
		content, err := w.readLimited(rc)
		rc.Close()
		if err != nil {
			return added, err
		}
		if err := w.write(target, content); err != nil {
			return added, err
		}
		if isSol {
			added++
		}
	}
	return added, nil
}

// readLimited reads r while keeping the workspace under its byte budget.
func (w *Workspace) readLimited(r io.Reader) ([]byte, error) {
	remaining := w.maxBytes - w.written
	data, err := io.ReadAll(io.LimitReader(r, remaining+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > remaining {
		return nil, errors.New(errors.ErrCodeInputTooLarge, "upload exceeds %d bytes", w.maxBytes)
	}
	w.written += int64(len(data))
	return data, nil
}

func (w *Workspace) write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// uniquePath returns a path for base in the workspace root that is not yet
// taken.
func (w *Workspace) uniquePath(base string) string {
	p := filepath.Join(w.Dir, base)
	for i := 1; exists(p); i++ {
		p = filepath.Join(w.Dir, fmt.Sprintf("%d-%s", i, base))
	}
	return p
}

// Sources discovers and reads every Solidity file in the workspace.
func (w *Workspace) Sources() ([]extract.Unit, error) {
	paths, err := Discover(w.Dir)
	if err != nil {
		return nil, err
	}
	return ReadUnits(paths)
}

// Discover returns the Solidity files under root in lexical order. Files
// matched by a .gitignore in their directory or any parent up to root are
// skipped, as are node_modules and .git directories.
func Discover(root string) ([]string, error) {
	type matcher struct {
		dir string
		gi  *ignore.GitIgnore
	}
	var matchers []matcher
	ignored := func(path string) bool {
		for _, m := range matchers {
			rel, err := filepath.Rel(m.dir, path)
			if err != nil || strings.HasPrefix(rel, "..") {
				continue
			}
			if m.gi.MatchesPath(filepath.ToSlash(rel)) {
				return true
			}
		}
		return false
	}

	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || ignored(path)) {
				return filepath.SkipDir
			}
			gi, err := ignore.CompileIgnoreFile(filepath.Join(path, gitignore))
			if err == nil {
				matchers = append(matchers, matcher{dir: path, gi: gi})
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), solExt) && !ignored(path) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}
	return out, nil
}

// ReadUnits reads the given files.
func ReadUnits(paths []string) ([]extract.Unit, error) {
	units := make([]extract.Unit, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", p)
		}
		units = append(units, extract.Unit{Path: p, Text: string(data)})
	}
	return units, nil
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
