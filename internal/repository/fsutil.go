package repository

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"SignalScan/internal/domain/models"
)

// stagedFile is a fully written temp file waiting to be renamed over dst.
type stagedFile struct {
	tmp string
	dst string
}

func (f stagedFile) commit() error {
	if err := os.Rename(f.tmp, f.dst); err != nil {
		return fmt.Errorf("%w: rename %s: %v", models.ErrIO, f.dst, err)
	}
	return nil
}

func (f stagedFile) discard() { _ = os.Remove(f.tmp) }

// stageFile writes a temp file next to path. Nothing at path changes until commit.
func stageFile(path string, write func(w io.Writer) error) (_ stagedFile, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return stagedFile{}, fmt.Errorf("%w: %v", models.ErrIO, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return stagedFile{}, fmt.Errorf("%w: %v", models.ErrIO, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		if errors.Is(err, models.ErrSchema) || errors.Is(err, models.ErrIO) {
			return stagedFile{}, err
		}
		return stagedFile{}, fmt.Errorf("%w: write %s: %v", models.ErrIO, path, err)
	}
	if err := bw.Flush(); err != nil {
		return stagedFile{}, fmt.Errorf("%w: flush %s: %v", models.ErrIO, path, err)
	}
	if err := tmp.Sync(); err != nil {
		return stagedFile{}, fmt.Errorf("%w: sync %s: %v", models.ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		return stagedFile{}, fmt.Errorf("%w: close %s: %v", models.ErrIO, path, err)
	}
	return stagedFile{tmp: tmp.Name(), dst: path}, nil
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place, so readers never observe a partial file.
func writeFileAtomic(path string, write func(w io.Writer) error) error {
	f, err := stageFile(path, write)
	if err != nil {
		return err
	}
	if err := f.commit(); err != nil {
		f.discard()
		return err
	}
	return nil
}

// copyFileAtomic copies src to dst through a temp file.
func copyFileAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrIO, err)
	}
	defer in.Close()
	return writeFileAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}
