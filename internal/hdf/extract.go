package hdf

import (
	"fmt"

	"energy-analysis/internal/frame"
)

// ToFrame converts a raw dataset into a tabular frame.
//
// Rules, in priority order: a scalar becomes a single-row "value" column;
// a record becomes one column per named field; a 1-D array becomes a
// "value" column; an n-D array is flattened to col_0..col_k with the
// leading dimension as the row count. Unsupported shapes return an error
// so the caller can skip just this dataset.
func (d *Dataset) ToFrame() (*frame.Frame, error) {
	f := frame.New()
	switch {
	case d.Scalar != nil:
		f.AddColumn("value", []float64{*d.Scalar})
		return f, nil

	case len(d.Fields) > 0:
		rows := len(d.Fields[0].Values)
		for _, field := range d.Fields {
			if len(field.Values) != rows {
				return nil, fmt.Errorf(
					"record field %s has %d rows, expected %d",
					field.Name, len(field.Values), rows,
				)
			}
			f.AddColumn(field.Name, field.Values)
		}
		return f, nil

	case d.Array != nil:
		arr := d.Array
		switch len(arr.Dims) {
		case 0:
			return nil, fmt.Errorf("array dataset without dimensions")
		case 1:
			f.AddColumn("value", arr.Data)
			return f, nil
		default:
			rows := arr.Dims[0]
			cols := 1
			for _, d := range arr.Dims[1:] {
				cols *= d
			}
			if cols == 0 || rows*cols != len(arr.Data) {
				return nil, fmt.Errorf("array shape %v does not match %d values", arr.Dims, len(arr.Data))
			}
			for c := 0; c < cols; c++ {
				column := make([]float64, rows)
				for r := 0; r < rows; r++ {
					column[r] = arr.Data[r*cols+c]
				}
				f.AddColumn(fmt.Sprintf("col_%d", c), column)
			}
			return f, nil
		}

	default:
		return nil, fmt.Errorf("dataset has no payload")
	}
}
