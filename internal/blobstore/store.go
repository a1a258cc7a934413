package blobstore

import (
	"context"

	"github.com/starford/jobtrail/internal/models"
)

// Store defines the attachment operations the tracker depends on.
// Consumers should depend on this interface rather than the concrete *DB
// type so that an unavailable store can be modelled as a nil Store.
type Store interface {
	Put(ctx context.Context, att *models.Attachment) (string, error)
	GetAll(ctx context.Context) ([]models.Attachment, error)
	List(ctx context.Context) ([]models.AttachmentMeta, error)
	Get(ctx context.Context, id string) (*models.Attachment, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
