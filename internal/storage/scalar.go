package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/jobtrail/internal/checksum"
	"github.com/starford/jobtrail/internal/models"
	"github.com/starford/jobtrail/internal/normalize"
)

// Fixed keys of the scalar store.
const (
	KeyJobs      = "jt_jobs_v1"
	KeyChecklist = "jt_checklist_v1"
	KeyProfile   = "jt_profile_v1"
)

// Keys lists every scalar key.
var Keys = []string{KeyJobs, KeyChecklist, KeyProfile}

// FileName maps a scalar key to its file under the data root.
func FileName(key string) string { return key + ".json" }

// Scalar stores whole JSON values under fixed keys.
//
// Loads never fail: a missing or corrupt value yields the documented
// default (empty job list, never-updated checklist, empty profile).
// Saves return the underlying write error unchanged.
type Scalar struct {
	provider Provider
	norm     *normalize.Normalizer
	logger   *slog.Logger

	mu      sync.Mutex
	written map[string]string // key -> checksum of the last value saved
}

// NewScalar creates a scalar store on top of provider.
func NewScalar(provider Provider, norm *normalize.Normalizer, logger *slog.Logger) *Scalar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scalar{
		provider: provider,
		norm:     norm,
		logger:   logger,
		written:  make(map[string]string),
	}
}

// LoadJobs returns the stored job list, normalizing every record.
func (s *Scalar) LoadJobs() []models.JobRecord {
	return load(s, KeyJobs, s.norm.DecodeRecords, []models.JobRecord{})
}

// SaveJobs persists the whole job list.
func (s *Scalar) SaveJobs(jobs []models.JobRecord) error {
	if jobs == nil {
		jobs = []models.JobRecord{}
	}
	return s.save(KeyJobs, jobs)
}

// LoadChecklist returns the stored checklist state.
func (s *Scalar) LoadChecklist() models.ChecklistState {
	return load(s, KeyChecklist, func(data []byte) (models.ChecklistState, error) {
		var raw any
		if err := json.Unmarshal(data, &raw); err != nil {
			return models.ChecklistState{}, err
		}
		return normalize.Checklist(raw), nil
	}, models.NewChecklistState())
}

// SaveChecklist persists the checklist state.
func (s *Scalar) SaveChecklist(state models.ChecklistState) error {
	return s.save(KeyChecklist, state)
}

// LoadProfile returns the stored profile.
func (s *Scalar) LoadProfile() models.Profile {
	return load(s, KeyProfile, func(data []byte) (models.Profile, error) {
		var raw any
		if err := json.Unmarshal(data, &raw); err != nil {
			return models.Profile{}, err
		}
		return normalize.Profile(raw), nil
	}, models.Profile{})
}

// SaveProfile persists the profile.
func (s *Scalar) SaveProfile(p models.Profile) error {
	return s.save(KeyProfile, p)
}

// Stale reports whether the file for key no longer holds the value this
// store last saved, i.e. it was changed by someone else.
func (s *Scalar) Stale(key string) bool {
	data, err := s.provider.Read(FileName(key))
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !checksum.Matches(data, s.written[key])
}

func (s *Scalar) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	if err := s.provider.Write(FileName(key), data); err != nil {
		return err
	}
	s.remember(key, data)
	return nil
}

func (s *Scalar) remember(key string, data []byte) {
	s.mu.Lock()
	s.written[key] = checksum.Sum(data)
	s.mu.Unlock()
}

func load[T any](s *Scalar, key string, decode func([]byte) (T, error), def T) T {
	data, err := s.provider.Read(FileName(key))
	if err != nil {
		return def
	}
	s.remember(key, data)
	v, err := decode(data)
	if err != nil {
		s.logger.Warn("storage: corrupt value replaced by default",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return def
	}
	return v
}
