package storage

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Subdirectories of the data dir.
const (
	ExportsDir = "exports"
	BackupsDir = "backups"
)

// FileSystem is the data directory seen through afero. Paths passed to its
// methods are relative to the data dir.
type FileSystem struct {
	fs      afero.Fs
	baseDir string
}

// NewFileSystem roots a FileSystem at baseDir on the OS filesystem,
// creating it if needed. An empty baseDir means "data".
func NewFileSystem(baseDir string) (*FileSystem, error) {
	if baseDir == "" {
		baseDir = "data"
	}
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FileSystem{
		fs:      afero.NewBasePathFs(osFs, baseDir),
		baseDir: baseDir,
	}, nil
}

// NewMemoryFileSystem returns a FileSystem backed by memory (useful for testing)
func NewMemoryFileSystem() *FileSystem {
	return &FileSystem{
		fs:      afero.NewMemMapFs(),
		baseDir: "data",
	}
}

// DataDir returns the directory the filesystem is rooted at.
func (f *FileSystem) DataDir() string {
	return f.baseDir
}

// WriteFile writes data to name, creating parent directories.
func (f *FileSystem) WriteFile(name string, data []byte) error {
	if err := f.fs.MkdirAll(path.Dir(name), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return afero.WriteFile(f.fs, name, data, 0644)
}

func (f *FileSystem) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(f.fs, name)
}

func (f *FileSystem) Remove(name string) error {
	return f.fs.Remove(name)
}

func (f *FileSystem) Exists(name string) (bool, error) {
	return afero.Exists(f.fs, name)
}

// FileInfo describes one stored file.
type FileInfo struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	ModTime int64  `json:"modTime"`
}

// List returns the regular files in dir with the given suffix, newest first.
// A missing dir yields an empty list.
func (f *FileSystem) List(dir, suffix string) ([]FileInfo, error) {
	infos, err := afero.ReadDir(f.fs, dir)
	if os.IsNotExist(err) {
		return []FileInfo{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := []FileInfo{}
	for _, fi := range infos {
		if fi.IsDir() || !strings.HasSuffix(fi.Name(), suffix) {
			continue
		}
		out = append(out, FileInfo{Name: fi.Name(), Size: fi.Size(), ModTime: fi.ModTime().Unix()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ModTime != out[j].ModTime {
			return out[i].ModTime > out[j].ModTime
		}
		return out[i].Name > out[j].Name
	})
	return out, nil
}

// GetFs returns the underlying afero.Fs for advanced operations
func (f *FileSystem) GetFs() afero.Fs {
	return f.fs
}
