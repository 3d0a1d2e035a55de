package storage

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Source supplies local file paths for hierarchical telemetry exports,
// in discovery order.
type Source interface {
	Files(ctx context.Context) ([]string, error)
}

// DirSource discovers telemetry exports under a local directory tree.
type DirSource struct {
	Dir string
	// KeepBatchFiles includes files whose stem contains "batch";
	// batch roll-ups are skipped by default.
	KeepBatchFiles bool
}

// Files returns every *.json export under the directory, sorted by path.
func (s DirSource) Files(_ context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		if !s.KeepBatchFiles && strings.Contains(stem(d.Name()), "batch") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
