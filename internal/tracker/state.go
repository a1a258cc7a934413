// Package tracker owns the application state and applies every mutation
// to it as a named command.
package tracker

import (
	"maps"
	"slices"
	"time"

	"github.com/starford/jobtrail/internal/calendar"
	"github.com/starford/jobtrail/internal/models"
	"github.com/starford/jobtrail/internal/normalize"
)

// State is the whole in-memory application state.
type State struct {
	Jobs      []models.JobRecord
	Checklist models.ChecklistState
	Profile   models.Profile
	Query     models.Query
}

// Clone returns a deep copy that commands may mutate freely.
func (s *State) Clone() *State {
	c := &State{
		Jobs:      slices.Clone(s.Jobs),
		Checklist: s.Checklist,
		Profile:   s.Profile,
		Query:     s.Query,
	}
	if c.Jobs == nil {
		c.Jobs = []models.JobRecord{}
	}
	c.Checklist.Checks = maps.Clone(s.Checklist.Checks)
	if c.Checklist.Checks == nil {
		c.Checklist.Checks = map[string]bool{}
	}
	if s.Checklist.LastUpdated != nil {
		d := *s.Checklist.LastUpdated
		c.Checklist.LastUpdated = &d
	}
	return c
}

// Find returns the index of the job with id, or -1.
func (s *State) Find(id string) int {
	return slices.IndexFunc(s.Jobs, func(j models.JobRecord) bool { return j.ID == id })
}

// Sections is a set of state parts touched by a command.
type Sections uint8

const (
	SectionJobs Sections = 1 << iota
	SectionChecklist
	SectionProfile
	SectionQuery
	SectionAttachments
)

// Has reports whether every section in o is set.
func (s Sections) Has(o Sections) bool { return s&o == o }

// persisted are the sections backed by the scalar store.
const persisted = SectionJobs | SectionChecklist | SectionProfile

// Env is what a command may observe besides the state.
type Env struct {
	Now  time.Time
	Norm *normalize.Normalizer
}

// Today returns the local calendar date of Now.
func (e Env) Today() string { return calendar.Today(e.Now) }
