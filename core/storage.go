package core

import (
	"context"
	"io"
)

// FileStorage is any service that can store an uploaded file and hand
// back a public URL for it. Implementations own their retry/timeout
// semantics; callers treat failures as ExternalServiceError.
type FileStorage interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader) (url string, err error)
}
