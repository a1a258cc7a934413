// Package lease hands out short-lived, revocable download tokens for
// attachment content.
//
// A lease captures the attachment bytes when it is acquired, so a later
// delete of the attachment does not break a download already in flight.
// Every lease is revoked after its TTL or on an explicit Release.
package lease

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/jobtrail/internal/models"
)

// Disposition controls how a client should present leased content.
type Disposition string

const (
	Inline     Disposition = "inline"
	Attachment Disposition = "attachment"
)

// Default TTLs for opening in a viewer and for saving to disk.
const (
	OpenTTL     = 60 * time.Second
	DownloadTTL = 5 * time.Second
)

// Lease is a granted token.
type Lease struct {
	Token       string
	Disposition Disposition
	Name        string
	MIME        string
	Content     []byte
	ExpiresAt   time.Time
}

type entry struct {
	lease Lease
	timer *time.Timer
}

// Registry tracks active leases. The zero value is not usable; use New.
type Registry struct {
	mu     sync.Mutex
	leases map[string]*entry
	now    func() time.Time
	closed bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{leases: make(map[string]*entry), now: time.Now}
}

// Acquire grants a lease over a copy of att's content. A non-positive ttl
// falls back to the default for the disposition.
func (r *Registry) Acquire(att *models.Attachment, disp Disposition, ttl time.Duration) Lease {
	if disp != Inline {
		disp = Attachment
	}
	if ttl <= 0 {
		ttl = DownloadTTL
		if disp == Inline {
			ttl = OpenTTL
		}
	}

	content := make([]byte, len(att.Content))
	copy(content, att.Content)

	l := Lease{
		Token:       uuid.NewString(),
		Disposition: disp,
		Name:        att.Name,
		MIME:        att.MIME,
		Content:     content,
		ExpiresAt:   r.now().Add(ttl),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return l
	}
	e := &entry{lease: l}
	e.timer = time.AfterFunc(ttl, func() { r.Release(l.Token) })
	r.leases[l.Token] = e
	return l
}

// Get returns an active lease.
func (r *Registry) Get(token string) (Lease, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.leases[token]
	if !ok {
		return Lease{}, false
	}
	return e.lease, true
}

// Release revokes a lease. Releasing an unknown or expired token is a no-op.
func (r *Registry) Release(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.leases[token]; ok {
		e.timer.Stop()
		delete(r.leases, token)
	}
}

// Len reports the number of active leases.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.leases)
}

// Close revokes every lease; later Acquire calls return leases that are
// never retrievable.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, e := range r.leases {
		e.timer.Stop()
		delete(r.leases, token)
	}
	r.closed = true
}
