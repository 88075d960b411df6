package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrSNILSTaken indicates the SNILS is already bound to another account.
	ErrSNILSTaken = errors.New("storage: snils already bound to another account")
)

// BatchItemError describes a single rejected item of a batch insert.
type BatchItemError struct {
	Index  int
	Kind   string
	Detail string
}

// BatchError aggregates per-item failures of a batch insert.
// The whole batch is rolled back when it is returned.
type BatchError struct {
	Items []BatchItemError
}

func (e *BatchError) Error() string {
	if e == nil || len(e.Items) == 0 {
		return "storage: batch insert failed"
	}
	parts := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		parts = append(parts, fmt.Sprintf("item %d: %s", it.Index, it.Kind))
	}
	return "storage: batch insert failed: " + strings.Join(parts, "; ")
}
