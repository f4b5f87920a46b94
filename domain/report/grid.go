package report

import "encoding/json"

// Grid is a row-major table of values; NaN marks an undefined cell and is
// encoded as JSON null.
type Grid [][]float64

func (g Grid) MarshalJSON() ([]byte, error) {
	out := make([][]*float64, len(g))
	for i, row := range g {
		out[i] = make([]*float64, len(row))
		for j, v := range row {
			out[i][j] = nullable(v)
		}
	}
	return json.Marshal(out)
}

// column extracts column j.
func (g Grid) column(j int) []float64 {
	col := make([]float64, len(g))
	for i, row := range g {
		col[i] = row[j]
	}
	return col
}
