package models

import "errors"

var (
	// ErrMissingSourceFile is returned when an input snapshot does not exist.
	// Nothing has been written when a run fails with it.
	ErrMissingSourceFile = errors.New("source file not found")

	// ErrStructureNotFound means the snapshot parsed but the expected
	// container (table or cards) is absent.
	ErrStructureNotFound = errors.New("expected html structure not found")

	// ErrStorageFailure wraps any non row-level storage error. The load
	// transaction, including its initial delete, has been rolled back.
	ErrStorageFailure = errors.New("storage failure")
)
