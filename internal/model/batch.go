package model

import (
	"errors"
	"fmt"
	"log/slog"
)

// BatchResult is the aggregate outcome of a batch run. Results keep the
// input row order; SuccessCount+ErrorCount always equals len(Results).
type BatchResult struct {
	Results      []CircuitResult `json:"results"`
	SuccessCount int             `json:"success_count"`
	ErrorCount   int             `json:"error_count"`
}

// Total returns the number of circuits in the batch.
func (b BatchResult) Total() int { return len(b.Results) }

// RowFunc sizes one row. Both Calculator.CalculateRow and
// Calculator.CalculateCN1Row satisfy it.
type RowFunc func(CircuitRow) (CircuitResult, error)

// RunAll sizes every row, isolating failures so a bad row never aborts
// the batch: domain errors become ERROR results, panics become
// FATAL_ERROR results, and processing continues either way.
func RunAll(rows []CircuitRow, normative string, fn RowFunc) BatchResult {
	batch := BatchResult{Results: make([]CircuitResult, 0, len(rows))}
	for i, row := range rows {
		result := runRow(row, i, normative, fn)
		if result.VoltageStatus.IsFailure() {
			batch.ErrorCount++
		} else {
			batch.SuccessCount++
		}
		batch.Results = append(batch.Results, result)
	}
	slog.Debug("batch run complete",
		"total", batch.Total(), "success", batch.SuccessCount, "errors", batch.ErrorCount)
	return batch
}

func runRow(row CircuitRow, index int, normative string, fn RowFunc) (result CircuitResult) {
	id := row.ID
	if id == "" {
		id = fmt.Sprintf("ROW_%d", index)
	}
	defer func() {
		if r := recover(); r != nil {
			result = FailureResult(id, StatusFatal, fmt.Errorf("unexpected error: %v", r), normative)
		}
	}()

	result, err := fn(row)
	if err != nil {
		status := StatusError
		if !isDomainError(err) {
			status = StatusFatal
		}
		return FailureResult(id, status, err, normative)
	}
	if result.ID == "" {
		result.ID = id
	}
	return result
}

// isDomainError separates expected bad-data failures from bugs, so
// operators can tell the two apart in batch summaries.
func isDomainError(err error) bool {
	var unknownMaterial *UnknownMaterialError
	return errors.Is(err, ErrInvalidCurrent) ||
		errors.Is(err, ErrInvalidLength) ||
		errors.Is(err, ErrInvalidVoltageDropBudget) ||
		errors.Is(err, ErrInvalidSection) ||
		errors.As(err, &unknownMaterial)
}
