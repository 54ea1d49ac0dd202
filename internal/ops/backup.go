// Package ops holds operational helpers for the save data directory:
// tar.gz backups and restores, used by the ops CLI.
package ops

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// BackupSaves archives the save directory (the SQLite database plus
// its WAL sidecars) into a tar.gz at archivePath.
func BackupSaves(saveDir, archivePath string) error {
	saveDir = strings.TrimSpace(saveDir)
	archivePath = strings.TrimSpace(archivePath)
	if saveDir == "" || archivePath == "" {
		return errors.New("saveDir and archivePath are required")
	}
	saveDir = filepath.Clean(saveDir)
	archivePath = filepath.Clean(archivePath)
	info, err := os.Stat(saveDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("save dir is not a directory: %s", saveDir)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	tw := tar.NewWriter(gz)
	defer tw.Close()

	return filepath.WalkDir(saveDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == saveDir {
			return nil
		}
		rel, err := filepath.Rel(saveDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		// Symlinks have no place in a save directory.
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if info.IsDir() && !strings.HasSuffix(hdr.Name, "/") {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(tw, src)
		return err
	})
}

// RestoreSaves unpacks an archive produced by BackupSaves into
// destDir. The destination must not already contain a save database;
// restores never overwrite live data.
func RestoreSaves(archivePath, destDir string) error {
	archivePath = strings.TrimSpace(archivePath)
	destDir = strings.TrimSpace(destDir)
	if archivePath == "" || destDir == "" {
		return errors.New("archivePath and destDir are required")
	}
	archivePath = filepath.Clean(archivePath)
	destDir = filepath.Clean(destDir)
	if entries, err := os.ReadDir(destDir); err == nil && len(entries) > 0 {
		return fmt.Errorf("destination is not empty: %s", destDir)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := securePath(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, hdr.FileInfo().Mode().Perm())
			if err != nil {
				return err
			}
			if _, err := io.Copy(dst, tr); err != nil {
				_ = dst.Close()
				return err
			}
			if err := dst.Close(); err != nil {
				return err
			}
		default:
			// Anything exotic gets skipped rather than restored.
		}
	}
}

// securePath rejects entries that would escape the destination.
func securePath(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return filepath.Join(destDir, cleaned), nil
}
