package dita

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
)

// FileSystemOperation carries files from a source directory into the
// library. Implementations create parent directories as needed. A ReadOnly
// operation must leave both source and destination untouched.
type FileSystemOperation interface {
	ReadOnly() bool
	ProcessPath(src, dst string) error
}

type Move struct {
	DryRun bool
}

func (m Move) ReadOnly() bool {
	return m.DryRun
}

func (m Move) ProcessPath(src, dst string) error {
	if src == dst {
		return nil
	}
	if m.DryRun {
		slog.Info("move", "from", src, "to", dst)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, syscall.EXDEV) {
			// src and dst live on different filesystems
			if err := copyFile(src, dst); err != nil {
				return err
			}
			return os.Remove(src)
		}
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

type Copy struct {
	DryRun bool
}

func (c Copy) ReadOnly() bool {
	return c.DryRun
}

func (c Copy) ProcessPath(src, dst string) error {
	if src == dst {
		return nil
	}
	if c.DryRun {
		slog.Info("copy", "from", src, "to", dst)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}
	return copyFile(src, dst)
}

func copyFile(src, dst string) error {
	srcF, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open src: %w", err)
	}
	defer srcF.Close()

	info, err := srcF.Stat()
	if err != nil {
		return fmt.Errorf("stat src: %w", err)
	}

	dstF, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return fmt.Errorf("open dst: %w", err)
	}
	defer dstF.Close()

	if _, err := io.Copy(dstF, srcF); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return dstF.Close()
}
