package tracker

import (
	"context"
	"fmt"

	"github.com/starford/jobtrail/internal/apperr"
	"github.com/starford/jobtrail/internal/contact"
)

// Email marks a job as emailed and returns the compose link to launch.
// Each job can be emailed once; of two concurrent calls only the one that
// sets the flag gets a link.
func (c *Controller) Email(ctx context.Context, id string) (string, error) {
	j, ok := c.Job(id)
	if !ok {
		return "", fmt.Errorf("job %s: %w", id, apperr.ErrNotFound)
	}
	if j.Emailed {
		return "", fmt.Errorf("job %s already emailed: %w", id, apperr.ErrAlreadyExists)
	}
	uri, ok := contact.MailtoURI(&j, c.Profile())
	if !ok {
		return "", fmt.Errorf("job %s has no email address: %w", id, apperr.ErrInvalidInput)
	}
	changed, err := c.dispatch(ctx, MarkEmailed{ID: id})
	if err != nil {
		return "", err
	}
	if changed == 0 {
		return "", c.outreachRefused(id, "emailed")
	}
	return uri, nil
}

// Call marks a job as called and returns the dial link to launch.
// Each job can be called once.
func (c *Controller) Call(ctx context.Context, id string) (string, error) {
	j, ok := c.Job(id)
	if !ok {
		return "", fmt.Errorf("job %s: %w", id, apperr.ErrNotFound)
	}
	if j.Called {
		return "", fmt.Errorf("job %s already called: %w", id, apperr.ErrAlreadyExists)
	}
	uri, ok := contact.TelURI(&j)
	if !ok {
		return "", fmt.Errorf("job %s has no phone number: %w", id, apperr.ErrInvalidInput)
	}
	changed, err := c.dispatch(ctx, MarkCalled{ID: id})
	if err != nil {
		return "", err
	}
	if changed == 0 {
		return "", c.outreachRefused(id, "called")
	}
	return uri, nil
}

// outreachRefused explains why a mark command changed nothing after the
// record passed the checks above: it was removed, flagged by another
// caller, or lost its contact field in between.
func (c *Controller) outreachRefused(id, flag string) error {
	j, ok := c.Job(id)
	switch {
	case !ok:
		return fmt.Errorf("job %s: %w", id, apperr.ErrNotFound)
	case flag == "emailed" && j.Emailed, flag == "called" && j.Called:
		return fmt.Errorf("job %s already %s: %w", id, flag, apperr.ErrAlreadyExists)
	default:
		return fmt.Errorf("job %s has no contact for %s: %w", id, flag, apperr.ErrInvalidInput)
	}
}
