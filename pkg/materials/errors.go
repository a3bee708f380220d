package materials

import (
	"errors"
	"fmt"
)

var (
	// ErrMaterialNotFound indicates no material exists at the requested id.
	ErrMaterialNotFound = errors.New("material not found")

	// ErrMissingFile indicates a file upload without a payload.
	ErrMissingFile = errors.New("no file provided")

	// ErrFileTooLarge indicates an upload payload over the configured cap.
	ErrFileTooLarge = errors.New("file exceeds upload size limit")

	// ErrUploadFailed indicates the blob store rejected or failed an upload.
	ErrUploadFailed = errors.New("blob upload failed")
)

// MaterialError wraps a failure of a single material operation.
type MaterialError struct {
	ID  string
	Op  string
	Err error
}

func (e *MaterialError) Error() string {
	return fmt.Sprintf("material operation %s failed for %s: %v", e.Op, e.ID, e.Err)
}

func (e *MaterialError) Unwrap() error {
	return e.Err
}
