package binary

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extractor handles archive extraction
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// IsArchive reports whether name has an extension the extractor understands
func IsArchive(name string) bool {
	return isTarGz(name) || strings.HasSuffix(strings.ToLower(name), ".zip")
}

func isTarGz(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz")
}

// openTarGz opens a .tar.gz archive. The returned closer releases both the
// gzip stream and the file.
func openTarGz(archivePath string) (*tar.Reader, func(), error) {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		archiveFile.Close()
		return nil, nil, fmt.Errorf("create gzip reader: %w", err)
	}

	closeFn := func() {
		gzipReader.Close()
		archiveFile.Close()
	}
	return tar.NewReader(gzipReader), closeFn, nil
}

// withinDir reports whether target stays inside dir once cleaned
func withinDir(dir, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// ExtractTarGz extracts a .tar.gz archive to a destination directory
func (e *Extractor) ExtractTarGz(archivePath, destDir string) error {
	tarReader, closeArchive, err := openTarGz(archivePath)
	if err != nil {
		return err
	}
	defer closeArchive()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target := filepath.Join(destDir, header.Name)

		// Security check: prevent path traversal
		if !withinDir(destDir, target) {
			return fmt.Errorf("illegal file path: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case tar.TypeReg:
			if err := writeFile(target, tarReader, os.FileMode(header.Mode)&os.ModePerm); err != nil {
				return err
			}

		case tar.TypeSymlink:
			// Links must resolve inside destDir, relative to the link's own directory
			if filepath.IsAbs(header.Linkname) ||
				!withinDir(destDir, filepath.Join(filepath.Dir(target), header.Linkname)) {
				return fmt.Errorf("illegal symlink target: %s -> %s", header.Name, header.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}

		default:
			// Skip other types (char devices, block devices, etc.)
			continue
		}
	}
}

// ExtractBinary extracts the regular file whose base name is binaryName from
// a .tar.gz or .zip archive to destPath, marking it executable.
func (e *Extractor) ExtractBinary(archivePath, destPath, binaryName string) error {
	if isTarGz(archivePath) {
		return e.extractBinaryTarGz(archivePath, destPath, binaryName)
	}
	if strings.HasSuffix(strings.ToLower(archivePath), ".zip") {
		return e.extractBinaryZip(archivePath, destPath, binaryName)
	}
	return fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
}

func (e *Extractor) extractBinaryTarGz(archivePath, destPath, binaryName string) error {
	tarReader, closeArchive, err := openTarGz(archivePath)
	if err != nil {
		return err
	}
	defer closeArchive()

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return fmt.Errorf("binary %s not found in archive", binaryName)
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		if header.Typeflag == tar.TypeReg && filepath.Base(header.Name) == binaryName {
			return writeFile(destPath, tarReader, 0755)
		}
	}
}

func (e *Extractor) extractBinaryZip(archivePath, destPath, binaryName string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip archive: %w", err)
	}
	defer zipReader.Close()

	for _, f := range zipReader.File {
		if f.FileInfo().IsDir() || filepath.Base(f.Name) != binaryName {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s in archive: %w", f.Name, err)
		}
		err = writeFile(destPath, rc, 0755)
		rc.Close()
		return err
	}

	return fmt.Errorf("binary %s not found in archive", binaryName)
}

// writeFile copies r to path, creating parent directories
func writeFile(path string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", path, err)
	}

	outFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}

	if _, err := io.Copy(outFile, r); err != nil {
		outFile.Close()
		return fmt.Errorf("write file %s: %w", path, err)
	}

	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", path, err)
	}
	return nil
}

// SetExecutable sets executable permissions on a file
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
