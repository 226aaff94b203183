package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// Member is one file to place in a bundle.
type Member struct {
	Name string
	Data []byte
}

// CreateBundle writes members to dstPath as .tar.gz or .tar.xz, chosen by
// extension. Timestamps are fixed so identical inputs give identical bundles.
func CreateBundle(dstPath string, members []Member) (err error) {
	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create bundle: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	var compressor io.WriteCloser
	switch {
	case strings.HasSuffix(dstPath, ".tar.xz"):
		compressor, err = xz.NewWriter(out)
		if err != nil {
			return fmt.Errorf("xz writer: %w", err)
		}
	case strings.HasSuffix(dstPath, ".tar.gz"), strings.HasSuffix(dstPath, ".tgz"):
		compressor = gzip.NewWriter(out)
	default:
		return fmt.Errorf("unsupported bundle format: %s", dstPath)
	}

	tw := tar.NewWriter(compressor)
	modTime := time.Unix(0, 0).UTC()
	for _, m := range members {
		header := &tar.Header{
			Name:     m.Name,
			Mode:     0644,
			Size:     int64(len(m.Data)),
			ModTime:  modTime,
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("write header %s: %w", m.Name, err)
		}
		if _, err := tw.Write(m.Data); err != nil {
			return fmt.Errorf("write %s: %w", m.Name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	return compressor.Close()
}

// CreateBundleFromDir bundles every regular file below srcDir, in sorted
// path order, with paths relative to srcDir.
func CreateBundleFromDir(srcDir, dstPath string) error {
	var members []Member
	err := filepath.WalkDir(srcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		members = append(members, Member{Name: filepath.ToSlash(rel), Data: data})
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", srcDir, err)
	}
	slices.SortFunc(members, func(a, b Member) int { return strings.Compare(a.Name, b.Name) })
	return CreateBundle(dstPath, members)
}
