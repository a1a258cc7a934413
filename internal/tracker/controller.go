package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/starford/jobtrail/internal/apperr"
	"github.com/starford/jobtrail/internal/blobstore"
	"github.com/starford/jobtrail/internal/lease"
	"github.com/starford/jobtrail/internal/metrics"
	"github.com/starford/jobtrail/internal/models"
	"github.com/starford/jobtrail/internal/normalize"
	"github.com/starford/jobtrail/internal/snapshot"
	"github.com/starford/jobtrail/internal/storage"
	"github.com/starford/jobtrail/internal/view"
)

// Store is the scalar persistence the controller depends on.
// *storage.Scalar satisfies it.
type Store interface {
	LoadJobs() []models.JobRecord
	SaveJobs([]models.JobRecord) error
	LoadChecklist() models.ChecklistState
	SaveChecklist(models.ChecklistState) error
	LoadProfile() models.Profile
	SaveProfile(models.Profile) error
}

var _ Store = (*storage.Scalar)(nil)

// Change describes a committed mutation.
type Change struct {
	Command  string
	Sections Sections
}

// Controller serializes every mutation of the application state.
//
// A command is applied to a copy of the state, the touched sections are
// persisted, and only then is the copy swapped in. Readers never observe
// a half-applied command, and a failed save leaves memory unchanged.
type Controller struct {
	store   Store
	blobs   blobstore.Store
	leases  *lease.Registry
	norm    *normalize.Normalizer
	now     func() time.Time
	logger  *slog.Logger
	metrics metrics.Sink

	openTTL     time.Duration
	downloadTTL time.Duration

	mu       sync.RWMutex
	state    *State
	onChange []func(Change)
}

// Option configures a Controller.
type Option func(*Controller)

// WithBlobStore enables attachments. Without it every attachment
// operation fails with apperr.ErrAttachmentsUnavailable.
func WithBlobStore(b blobstore.Store) Option {
	return func(c *Controller) { c.blobs = b }
}

// WithLeases sets the registry used to hand out attachment content.
func WithLeases(r *lease.Registry) Option {
	return func(c *Controller) { c.leases = r }
}

// WithLeaseTTL overrides the open-in-viewer and download lease lifetimes.
func WithLeaseTTL(open, download time.Duration) Option {
	return func(c *Controller) { c.openTTL, c.downloadTTL = open, download }
}

// WithClock sets the time source used for dates and timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithNormalizer sets the record normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(c *Controller) { c.norm = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.Sink) Option {
	return func(c *Controller) { c.metrics = m }
}

// New loads the persisted state from store and returns a Controller.
func New(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:       store,
		now:         time.Now,
		logger:      slog.Default(),
		metrics:     metrics.NewNoopSink(),
		openTTL:     lease.OpenTTL,
		downloadTTL: lease.DownloadTTL,
	}
	for _, o := range opts {
		o(c)
	}
	if c.norm == nil {
		c.norm = normalize.New()
	}
	if c.leases == nil {
		c.leases = lease.New()
	}
	c.state = &State{
		Jobs:      store.LoadJobs(),
		Checklist: store.LoadChecklist(),
		Profile:   store.LoadProfile(),
		Query:     models.DefaultQuery(),
	}
	c.metrics.JobsTotal(len(c.state.Jobs))
	return c
}

// OnChange registers fn to run after every committed change. fn runs
// outside the controller lock and must not block.
func (c *Controller) OnChange(fn func(Change)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Dispatch applies cmd and persists the result.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) error {
	_, err := c.dispatch(ctx, cmd)
	return err
}

func (c *Controller) dispatch(_ context.Context, cmd Command) (Sections, error) {
	start := time.Now()
	changed, err := c.commit(cmd)

	outcome := metrics.OutcomeApplied
	switch {
	case errors.Is(err, apperr.ErrInvalidInput), errors.Is(err, apperr.ErrInvalidImport), errors.Is(err, apperr.ErrAlreadyExists):
		outcome = metrics.OutcomeInvalid
	case err != nil:
		outcome = metrics.OutcomeFailed
		c.logger.Error("command failed", slog.String("command", cmd.Name()), slog.String("error", err.Error()))
	case changed == 0:
		outcome = metrics.OutcomeNoop
	}
	c.metrics.CommandCompleted(cmd.Name(), outcome, time.Since(start))

	if err != nil {
		return 0, fmt.Errorf("tracker: %s: %w", cmd.Name(), err)
	}
	if changed != 0 {
		c.notify(Change{Command: cmd.Name(), Sections: changed})
	}
	return changed, nil
}

func (c *Controller) commit(cmd Command) (Sections, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state.Clone()
	changed, err := cmd.Apply(next, c.env())
	if err != nil || changed == 0 {
		return 0, err
	}
	if err := c.persist(c.state, next, changed); err != nil {
		return 0, err
	}
	c.state = next
	if changed.Has(SectionJobs) {
		c.metrics.JobsTotal(len(next.Jobs))
	}
	return changed, nil
}

var persistOrder = []struct {
	section Sections
	key     string
}{
	{SectionJobs, storage.KeyJobs},
	{SectionChecklist, storage.KeyChecklist},
	{SectionProfile, storage.KeyProfile},
}

// persist writes the changed sections of next. When a later section fails
// the sections already written are restored from prev, so the files never
// hold a partly applied command.
func (c *Controller) persist(prev, next *State, changed Sections) error {
	var saved Sections
	for _, sec := range persistOrder {
		if !changed.Has(sec.section) {
			continue
		}
		if err := c.save(next, sec.section); err != nil {
			c.rollback(prev, saved)
			return err
		}
		saved |= sec.section
	}
	return nil
}

func (c *Controller) save(s *State, sec Sections) error {
	switch sec {
	case SectionJobs:
		return c.store.SaveJobs(s.Jobs)
	case SectionChecklist:
		return c.store.SaveChecklist(s.Checklist)
	case SectionProfile:
		return c.store.SaveProfile(s.Profile)
	}
	return nil
}

func (c *Controller) rollback(prev *State, saved Sections) {
	for _, sec := range persistOrder {
		if !saved.Has(sec.section) {
			continue
		}
		if err := c.save(prev, sec.section); err != nil {
			c.logger.Error("rollback failed", slog.String("key", sec.key), slog.String("error", err.Error()))
		}
	}
}

func (c *Controller) notify(ch Change) {
	c.mu.RLock()
	fns := slices.Clone(c.onChange)
	c.mu.RUnlock()
	for _, fn := range fns {
		fn(ch)
	}
}

func (c *Controller) env() Env {
	return Env{Now: c.now(), Norm: c.norm}
}

// Today returns the controller's current calendar date.
func (c *Controller) Today() string {
	return c.env().Today()
}

// Reload replaces one persisted section with what is currently stored.
// It is used when the data files change underneath the process.
func (c *Controller) Reload(key string) {
	var changed Sections
	c.mu.Lock()
	switch key {
	case storage.KeyJobs:
		c.state.Jobs = c.store.LoadJobs()
		changed = SectionJobs
	case storage.KeyChecklist:
		c.state.Checklist = c.store.LoadChecklist()
		changed = SectionChecklist
	case storage.KeyProfile:
		c.state.Profile = c.store.LoadProfile()
		changed = SectionProfile
	}
	c.mu.Unlock()

	if changed != 0 {
		c.logger.Info("state reloaded", slog.String("key", key))
		c.notify(Change{Command: "reload", Sections: changed})
	}
}

// Create adds a job and returns the stored record. A non-empty
// AttachmentID must name a stored attachment; its display name is taken
// from the store.
func (c *Controller) Create(ctx context.Context, f JobFields) (models.JobRecord, error) {
	cmd := CreateJob{ID: c.norm.NewID(), Fields: f}
	if id := strings.TrimSpace(f.AttachmentID); id != "" {
		att, err := c.attachment(ctx, id)
		if err != nil {
			return models.JobRecord{}, err
		}
		cmd.Fields.AttachmentID = att.ID
		cmd.AttachmentName = DisplayName(att.AttachmentMeta)
	}
	id := cmd.ID
	if err := c.Dispatch(ctx, cmd); err != nil {
		return models.JobRecord{}, err
	}
	j, _ := c.Job(id)
	return j, nil
}

// AddClipping adds a job from a loosely-typed object and returns it.
func (c *Controller) AddClipping(ctx context.Context, raw map[string]any) (models.JobRecord, error) {
	id := c.norm.NewID()
	if err := c.Dispatch(ctx, AddClipping{ID: id, Raw: raw}); err != nil {
		return models.JobRecord{}, err
	}
	j, _ := c.Job(id)
	return j, nil
}

// Jobs returns a copy of every record in stored order.
func (c *Controller) Jobs() []models.JobRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.state.Jobs)
}

// Job returns one record.
func (c *Controller) Job(id string) (models.JobRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.state.Find(id)
	if i < 0 {
		return models.JobRecord{}, false
	}
	return c.state.Jobs[i], true
}

// Checklist returns the checklist state.
func (c *Controller) Checklist() models.ChecklistState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone().Checklist
}

// Profile returns the user's profile.
func (c *Controller) Profile() models.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Profile
}

// Query returns the current view query.
func (c *Controller) Query() models.Query {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Query
}

// Visible is the derived job list for a query.
type Visible struct {
	Query models.Query       `json:"query"`
	Jobs  []models.JobRecord `json:"jobs"`
	Stats view.Stats         `json:"stats"`
}

// View derives the visible list for the current query.
func (c *Controller) View() Visible {
	return c.ViewOf(c.Query())
}

// ViewOf derives the visible list for q without changing the stored query.
func (c *Controller) ViewOf(q models.Query) Visible {
	today := c.Today()
	c.mu.RLock()
	jobs := view.Filter(c.state.Jobs, q, today)
	c.mu.RUnlock()
	return Visible{Query: q, Jobs: jobs, Stats: view.Count(jobs)}
}

// Actions computes today's actions over the full record set.
func (c *Controller) Actions() view.Actions {
	today := c.Today()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return view.TodaysActions(c.state.Jobs, c.state.Checklist, today)
}

// Export snapshots the persisted sections.
func (c *Controller) Export() models.Snapshot {
	c.mu.RLock()
	s := c.state.Clone()
	c.mu.RUnlock()
	return snapshot.Export(s.Jobs, s.Checklist, s.Profile, c.now())
}

// Import replaces state from an export file. A rejected payload leaves
// the state untouched.
func (c *Controller) Import(ctx context.Context, data []byte) error {
	p, err := snapshot.Decode(data, c.norm)
	if err != nil {
		c.metrics.CommandCompleted(ImportSnapshot{}.Name(), metrics.OutcomeInvalid, 0)
		return fmt.Errorf("tracker: import: %w", err)
	}
	return c.Dispatch(ctx, ImportSnapshot{Payload: p})
}

// Close releases outstanding leases.
func (c *Controller) Close() {
	c.leases.Close()
}
