// Package hdf reads hierarchical telemetry exports: a JSON tree of nested
// groups whose leaves are datasets (scalars, arrays, nested arrays, or
// named-field records), mirroring the layout of the HDF5 files the
// telemetry recorder produces.
package hdf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// Node is one entry in the hierarchy: a group with children, or a dataset.
type Node struct {
	Name     string
	Children []*Node  // group children, document order
	Dataset  *Dataset // non-nil for dataset nodes
}

func (n *Node) IsDataset() bool { return n.Dataset != nil }

// Dataset is a raw dataset payload. Exactly one of Scalar, Array or
// Fields is set.
type Dataset struct {
	Scalar *float64
	Array  *Array
	Fields []Field
}

// Array is an n-dimensional numeric array in row-major order.
type Array struct {
	Dims []int
	Data []float64
}

// Field is one named column of a record dataset.
type Field struct {
	Name   string
	Values []float64
}

// Parse reads a hierarchy document. Decoding goes through the token
// stream so that group and dataset order is preserved exactly as written
// (a plain map would lose it).
func Parse(r io.Reader) ([]*Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("hierarchy root must be a JSON object")
	}
	return parseChildren(dec)
}

func parseChildren(dec *json.Decoder) ([]*Node, error) {
	var nodes []*Node
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in group", keyTok)
		}
		node, err := parseNode(dec, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		nodes = append(nodes, node)
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, err
	}
	return nodes, nil
}

func parseNode(dec *json.Decoder, name string) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("node must be a JSON object, got %v", tok)
	}

	node := &Node{Name: name}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in node", keyTok)
		}
		switch key {
		case "data":
			ds, err := parseData(dec)
			if err != nil {
				return nil, err
			}
			node.Dataset = ds
		case "fields":
			fields, err := parseFields(dec)
			if err != nil {
				return nil, err
			}
			node.Dataset = &Dataset{Fields: fields}
		default:
			child, err := parseNode(dec, key)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			node.Children = append(node.Children, child)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if node.Dataset != nil && len(node.Children) > 0 {
		return nil, errors.New("node mixes dataset payload and group children")
	}
	return node, nil
}

func parseData(dec *json.Decoder) (*Dataset, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return &Dataset{Scalar: &f}, nil
	case json.Delim:
		if v != '[' {
			return nil, fmt.Errorf("unsupported dataset payload %v", v)
		}
		data, dims, err := parseArray(dec)
		if err != nil {
			return nil, err
		}
		return &Dataset{Array: &Array{Dims: dims, Data: data}}, nil
	default:
		return nil, fmt.Errorf("unsupported dataset payload %v", tok)
	}
}

// parseArray consumes the remainder of an already-opened array and
// returns its row-major values and dimensions. Nested arrays must be
// rectangular.
func parseArray(dec *json.Decoder) ([]float64, []int, error) {
	var data []float64
	var childDims []int
	count := 0
	nested := false

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		switch v := tok.(type) {
		case json.Number:
			if nested {
				return nil, nil, errors.New("ragged array: scalar amid subarrays")
			}
			f, err := v.Float64()
			if err != nil {
				return nil, nil, err
			}
			data = append(data, f)
		case nil:
			if nested {
				return nil, nil, errors.New("ragged array: null amid subarrays")
			}
			data = append(data, math.NaN())
		case json.Delim:
			if v != '[' {
				return nil, nil, fmt.Errorf("unsupported array element %v", v)
			}
			sub, dims, err := parseArray(dec)
			if err != nil {
				return nil, nil, err
			}
			if count == 0 {
				nested = true
				childDims = dims
			} else if !nested || !equalDims(dims, childDims) {
				return nil, nil, errors.New("ragged array: inconsistent subarray shape")
			}
			data = append(data, sub...)
		default:
			return nil, nil, fmt.Errorf("unsupported array element %v", tok)
		}
		count++
	}
	if _, err := dec.Token(); err != nil { // closing bracket
		return nil, nil, err
	}
	return data, append([]int{count}, childDims...), nil
}

func parseFields(dec *json.Decoder) ([]Field, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("fields payload must be a JSON object")
	}

	var fields []Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in fields", keyTok)
		}
		openTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := openTok.(json.Delim); !ok || d != '[' {
			return nil, fmt.Errorf("field %s must be an array", name)
		}
		values, dims, err := parseArray(dec)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		if len(dims) != 1 {
			return nil, fmt.Errorf("field %s must be one-dimensional", name)
		}
		fields = append(fields, Field{Name: name, Values: values})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

func equalDims(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SanitizeParts joins path components into a filesystem-friendly
// identifier separated by double underscores.
func SanitizeParts(parts []string) string {
	clean := make([]string, len(parts))
	for i, p := range parts {
		clean[i] = strings.ReplaceAll(p, "/", "_")
	}
	return strings.Join(clean, "__")
}

// Prefix derives the column namespace for a dataset path. The leading
// group segment is dropped when deeper segments exist, so two datasets in
// one group keep distinct prefixes while single-level paths stay usable.
func Prefix(parts []string) string {
	trimmed := parts
	if len(parts) > 1 {
		trimmed = parts[1:]
	}
	nonEmpty := trimmed[:0:0]
	for _, p := range trimmed {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		nonEmpty = parts
	}
	return SanitizeParts(nonEmpty)
}
