package deal

import (
	"context"
	"fmt"
	"sync"

	"propdesk-backend/internal/models"

	"github.com/google/uuid"
)

// Notifier is told when the deals of a variant changed.
type Notifier interface {
	Changed(ctx context.Context, variant models.DealVariant) error
}

// Versions counts changes per variant. List handlers turn the count into an ETag,
// so a client's cached list is invalidated by any write.
type Versions struct {
	mu       sync.Mutex
	boot     string
	versions map[models.DealVariant]uint64
}

func NewVersions() *Versions {
	return &Versions{
		boot:     uuid.NewString()[:8],
		versions: make(map[models.DealVariant]uint64),
	}
}

func (v *Versions) Changed(_ context.Context, variant models.DealVariant) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.versions[variant]++
	return nil
}

func (v *Versions) Version(variant models.DealVariant) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.versions[variant]
}

// ETag is unique per process start, variant version and list query.
func (v *Versions) ETag(variant models.DealVariant, query string) string {
	q := uuid.NewSHA1(uuid.NameSpaceURL, []byte(query)).String()[:8]
	return fmt.Sprintf(`W/"%s-%s-%d-%s"`, variant, v.boot, v.Version(variant), q)
}
