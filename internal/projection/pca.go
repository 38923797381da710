package projection

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"pdfrag/internal/domain"
)

const components = 3

// Valid reports whether c can take part in a projection of width dims.
func Valid(c domain.Chunk, dims int) bool {
	if c.Vector == nil || len(c.Vector) != dims {
		return false
	}
	for _, v := range c.Vector {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Project filters out invalid records and maps the rest onto their first three
// principal components. Fewer than two records, or data of rank below three,
// yield zero coordinates on the missing axes.
func Project(chunks []domain.Chunk, dims int) (Payload, error) {
	valid := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if Valid(c, dims) {
			valid = append(valid, c)
		}
	}
	n := len(valid)
	p := Payload{
		X:    make([]float64, n),
		Y:    make([]float64, n),
		Z:    make([]float64, n),
		Text: make([]string, n),
	}
	for i, c := range valid {
		p.Text[i] = c.Text
	}
	if n < 2 {
		return p, nil
	}

	data := mat.NewDense(n, dims, nil)
	for i, c := range valid {
		for j, v := range c.Vector {
			data.Set(i, j, float64(v))
		}
	}
	center(data)

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return Payload{}, errors.New("principal component decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, cols := vecs.Dims()
	k := min(components, cols)

	var proj mat.Dense
	proj.Mul(data, vecs.Slice(0, dims, 0, k))
	axes := [components][]float64{p.X, p.Y, p.Z}
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			axes[j][i] = proj.At(i, j)
		}
	}
	return p, nil
}

// center subtracts the column means in place.
func center(m *mat.Dense) {
	rows, cols := m.Dims()
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		mean := stat.Mean(col, nil)
		for i := 0; i < rows; i++ {
			m.Set(i, j, col[i]-mean)
		}
	}
}
