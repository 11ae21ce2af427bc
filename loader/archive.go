package loader

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zip"
)

const jmodMagic = "JM\x01\x00"

type archive struct {
	path   string
	file   *os.File
	zip    *zip.Reader
	prefix string // entry prefix stripped before mapping to class names
	seed   bool   // seed archives are enumerated; platform archives are load-only
}

func openArchive(path string, seed bool) (*archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open archive")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat archive")
	}

	a := &archive{path: path, file: f, seed: seed}
	var ra io.ReaderAt = f
	size := info.Size()

	if strings.EqualFold(filepath.Ext(path), ".jmod") {
		var header [4]byte
		if _, err := f.ReadAt(header[:], 0); err != nil || string(header[:]) != jmodMagic {
			f.Close()
			return nil, errors.Newf("%s: not a jmod file", path)
		}
		ra = io.NewSectionReader(f, 4, size-4)
		size -= 4
		a.prefix = "classes/"
	}

	a.zip, err = zip.NewReader(ra, size)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "%s: read zip directory", path)
	}
	return a, nil
}

func (a *archive) Close() error {
	return a.file.Close()
}

// className maps an entry name to a fully-qualified class name. It
// returns false for directories, resources, module descriptors and
// versioned entries of multi-release jars.
func (a *archive) className(f *zip.File) (string, bool) {
	if f.FileInfo().IsDir() {
		return "", false
	}
	name := f.Name
	if a.prefix != "" {
		if !strings.HasPrefix(name, a.prefix) {
			return "", false
		}
		name = strings.TrimPrefix(name, a.prefix)
	}
	if !strings.HasSuffix(name, ".class") || strings.HasPrefix(name, "META-INF/") {
		return "", false
	}
	name = strings.TrimSuffix(name, ".class")
	if name == "module-info" || strings.HasSuffix(name, "/module-info") {
		return "", false
	}
	return strings.ReplaceAll(name, "/", "."), true
}

// FindArchives lists the .jar and .jmod files directly inside dir, sorted
// by file name.
func FindArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s for archives", dir)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jar", ".jmod":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
