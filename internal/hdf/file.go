package hdf

import (
	"fmt"
	"os"
)

// OpenError reports a hierarchy file that could not be opened or decoded
// (typically truncated by an interrupted upload). It carries the on-disk
// size so callers can decide between re-fetching and deleting the source.
type OpenError struct {
	Path string
	Size int64
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf(
		"failed to open hierarchy file %s (size=%d bytes): %v; the file appears corrupted or truncated, re-download or remove it before retrying",
		e.Path, e.Size, e.Err,
	)
}

func (e *OpenError) Unwrap() error { return e.Err }

// File is one parsed hierarchy document.
type File struct {
	Path  string
	Nodes []*Node
}

// Open reads and parses a hierarchy file. Any I/O or decode failure is
// wrapped in an *OpenError.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Size: fileSize(path), Err: err}
	}
	defer f.Close()

	nodes, err := Parse(f)
	if err != nil {
		return nil, &OpenError{Path: path, Size: fileSize(path), Err: err}
	}
	return &File{Path: path, Nodes: nodes}, nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}

// Entry is one discovered dataset with its full hierarchy path.
type Entry struct {
	Path    []string
	Dataset *Dataset
}

// Datasets collects the datasets under a top-level node depth-first in
// document order. A top-level node that is itself a dataset yields a
// single entry.
func Datasets(node *Node) []Entry {
	var out []Entry
	walk(node, []string{node.Name}, &out)
	return out
}

func walk(node *Node, path []string, out *[]Entry) {
	if node.IsDataset() {
		*out = append(*out, Entry{Path: append([]string(nil), path...), Dataset: node.Dataset})
		return
	}
	for _, child := range node.Children {
		walk(child, append(path, child.Name), out)
	}
}
