package ingest

import (
	"errors"
	"fmt"
)

// The pipeline error taxonomy. Any of these raised inside a pipeline aborts
// that run immediately; the lifecycle boundary records the text as the
// upload's terminal failure and never re-raises it to the submitter.
// Metadata-parsing problems are deliberately absent: a malformed or missing
// tool report yields partial metadata and processing continues.
var (
	// ErrExtraction: the archive has no usable vector payload.
	ErrExtraction = errors.New("extraction error")

	// ErrValidation: the raster failed inspection.
	ErrValidation = errors.New("validation error")

	// ErrToolInvocation: an external process could not run or exited
	// abnormally, outside the tolerated metadata paths.
	ErrToolInvocation = errors.New("tool invocation error")

	// ErrPublish: a map-server call failed for any reason other than an
	// expected not-found during an existence check.
	ErrPublish = errors.New("publish error")

	// ErrPersistence: the spatial store load or a catalog write failed.
	ErrPersistence = errors.New("persistence error")
)

// ErrNotFound reports a lookup for an upload or catalog layer that does not
// exist. Stores wrap it so callers can map it to a 404.
var ErrNotFound = errors.New("not found")

// extractionErr wraps err into the extraction class.
func extractionErr(err error) error {
	return fmt.Errorf("%w: %v", ErrExtraction, err)
}

func validationErr(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func toolErr(step string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrToolInvocation, step, err)
}

func publishErr(step string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPublish, step, err)
}

func persistenceErr(step string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, step, err)
}
