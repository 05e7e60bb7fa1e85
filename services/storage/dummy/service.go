package dummystorage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/revelohq/revelo/core"
)

// service fakes file storage for tests; uploads are remembered, not
// stored.
type service struct {
	mu       sync.Mutex
	Uploaded []string
}

var _ core.FileStorage = (*service)(nil)

func NewService() *service {
	return &service{}
}

func (svc *service) Upload(_ context.Context, folder, filename string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://files.local/%s/%s", folder, filename)
	svc.mu.Lock()
	svc.Uploaded = append(svc.Uploaded, url)
	svc.mu.Unlock()
	return url, nil
}
