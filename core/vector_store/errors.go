package vector_store

import (
	stderrors "errors"
	"fmt"
)

var errEmptyID = stderrors.New("document id must not be empty")

type dimensionError struct {
	id   string
	got  int
	want int
}

func (e *dimensionError) Error() string {
	return fmt.Sprintf("document %s has embedding dimension %d, collection expects %d", e.id, e.got, e.want)
}

type lengthError struct {
	id    string
	field string
	got   int
	max   int
}

func (e *lengthError) Error() string {
	return fmt.Sprintf("document %s has a %s of %d bytes, limit is %d", e.id, e.field, e.got, e.max)
}
