package table

import (
	"github.com/mzegar/devframe/column"
	"github.com/mzegar/devframe/compute"
)

// Source is what a Table is built from: existing columns or the buffers of
// a compute result set. Use FromColumns or FromResults.
type Source interface {
	isSource()
}

type columnsSource struct {
	cols []*column.Column
}

func (columnsSource) isSource() {}

type resultsSource struct {
	results []*compute.Result
}

func (resultsSource) isSource() {}

// FromColumns builds a table over existing columns. The table references
// the columns; it does not copy them.
func FromColumns(cols ...*column.Column) Source {
	return columnsSource{cols: cols}
}

// FromResults builds a table that takes ownership of a compute result set.
// If construction fails, every result buffer is released.
func FromResults(results ...*compute.Result) Source {
	return resultsSource{results: results}
}
