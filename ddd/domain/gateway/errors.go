package gateway

import "fmt"

// PathTraversalError reports a storage path that would resolve outside the
// configured storage root. Always fatal to the operation, never retried.
type PathTraversalError struct {
	Path string
	Root string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("cannot create path %s outside of %s", e.Path, e.Root)
}

// SourceNotFoundError reports a transcoding request for a video with no
// uploaded source.
type SourceNotFoundError struct {
	VideoID string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("no uploaded source for video %s", e.VideoID)
}

// TranscodingFailedError carries the error payload of a failed encode job.
// It is recorded into the processing state rather than propagated past the
// polling boundary.
type TranscodingFailedError struct {
	Detail string
}

func (e *TranscodingFailedError) Error() string {
	return fmt.Sprintf("transcoding failed: %s", e.Detail)
}

// ValidationError reports a record rejected at the store boundary before any
// storage mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
