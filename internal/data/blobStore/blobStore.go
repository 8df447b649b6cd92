package blobStore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

const gcsScheme = "gs://"

type BlobStore interface {
	// Fetch reads the whole binary behind a location returned by Save.
	Fetch(ctx context.Context, location string) ([]byte, error)
	// Save stores r under a fresh key derived from name and returns its location.
	Save(ctx context.Context, name string, r io.Reader) (location string, size int64, err error)
}

// Router saves to one backend and fetches from whichever backend the
// location's scheme names.
type Router struct {
	local  *FileStore
	remote *GCSStore
	logger *logger_i.Logger
}

// NewRouter saves to GCS when remote is set, otherwise to local disk.
func NewRouter(local *FileStore, remote *GCSStore) *Router {
	return &Router{local: local, remote: remote, logger: logger_i.NewLogger("BlobStore")}
}

func (r *Router) Fetch(ctx context.Context, location string) ([]byte, error) {
	r.logger.Debug("Fetching document binary", "location", location)
	if strings.HasPrefix(location, gcsScheme) {
		if r.remote == nil {
			return nil, fmt.Errorf("%w: %s (no bucket configured)", commonModels.ErrUnsupportedLocation, location)
		}
		return r.remote.Fetch(ctx, location)
	}
	if r.local == nil {
		return nil, fmt.Errorf("%w: %s", commonModels.ErrUnsupportedLocation, location)
	}
	return r.local.Fetch(ctx, location)
}

func (r *Router) Save(ctx context.Context, name string, body io.Reader) (string, int64, error) {
	if r.remote != nil {
		r.logger.Debug("Saving document binary to gcs", "name", name)
		return r.remote.Save(ctx, name, body)
	}
	if r.local == nil {
		return "", 0, fmt.Errorf("%w: no blob backend configured", commonModels.ErrUnsupportedLocation)
	}
	return r.local.Save(ctx, name, body)
}
