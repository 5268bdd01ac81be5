// Package matrix provides a dense row-major probability matrix that
// implements the decoder's Matrix interface, plus a loader for the ';'-separated
// CSV format the sample fixtures are stored in.
package matrix

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// Dense is a row-major T x C matrix of float64 values.
type Dense struct {
	rows, cols int
	data       []float64
}

// NewDense returns a zero-valued Dense matrix with the given shape.
func NewDense(rows, cols int) *Dense {
	return &Dense{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Rows returns the number of time steps.
func (d *Dense) Rows() int { return d.rows }

// Cols returns the number of label classes.
func (d *Dense) Cols() int { return d.cols }

// At returns the value at (t, c).
func (d *Dense) At(t, c int) float64 {
	return d.data[t*d.cols+c]
}

// Set stores val at (t, c).
func (d *Dense) Set(t, c int, val float64) {
	d.data[t*d.cols+c] = val
}

// LoadCSV reads a ';'-separated matrix file, one row per line. Every
// row must have the same column count.
func LoadCSV(path string) (*Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("matrix: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.Comma = ';'
	r.FieldsPerRecord = -1

	var rows [][]float64
	cols := -1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("matrix: %s: %w", path, err)
		}
		if len(record) == 0 {
			continue
		}

		row := make([]float64, len(record))
		for i, field := range record {
			v, err := parseFloat(field)
			if err != nil {
				return nil, fmt.Errorf("matrix: %s: row %d: %w", path, len(rows), err)
			}
			row[i] = v
		}

		if cols == -1 {
			cols = len(row)
		} else if len(row) != cols {
			return nil, fmt.Errorf("matrix: %s: row %d has %d columns, want %d", path, len(rows), len(row), cols)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("matrix: %s: no rows", path)
	}

	m := NewDense(len(rows), cols)
	for t, row := range rows {
		copy(m.data[t*cols:(t+1)*cols], row)
	}
	return m, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// Softmax applies row-wise softmax to m in place. It is used to turn
// pre-softmax logits stored in a CSV fixture into a row-stochastic
// probability matrix, mirroring how sample matrices are produced
// before classification.
func Softmax(m *Dense) {
	for t := 0; t < m.rows; t++ {
		var sum float64
		row := m.data[t*m.cols : (t+1)*m.cols]
		for _, v := range row {
			sum += math.Exp(v)
		}
		for c, v := range row {
			row[c] = math.Exp(v) / sum
		}
	}
}
