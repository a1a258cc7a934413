package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/jobtrail/internal/apperr"
	"github.com/starford/jobtrail/internal/lease"
	"github.com/starford/jobtrail/internal/models"
	"github.com/starford/jobtrail/internal/view"
)

// AttachmentItem is an attachment as shown in listings and pickers.
type AttachmentItem struct {
	models.AttachmentMeta
	DisplayName string `json:"displayName"`
	SizeLabel   string `json:"sizeLabel"`
}

// DisplayName is the label for an attachment: its name, else its
// filename, else "Untitled".
func DisplayName(m models.AttachmentMeta) string {
	switch {
	case strings.TrimSpace(m.Name) != "":
		return m.Name
	case strings.TrimSpace(m.Filename) != "":
		return m.Filename
	}
	return "Untitled"
}

// AttachmentsAvailable reports whether the blob store opened.
func (c *Controller) AttachmentsAvailable() bool {
	return c.blobs != nil
}

// Upload stores a new attachment. An empty name falls back to filename.
func (c *Controller) Upload(ctx context.Context, name, filename, mime string, content []byte) (AttachmentItem, error) {
	if c.blobs == nil {
		return AttachmentItem{}, apperr.ErrAttachmentsUnavailable
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(filename)
	}
	att := &models.Attachment{
		AttachmentMeta: models.AttachmentMeta{Name: name, Filename: filename, MIME: mime},
		Content:        content,
	}
	_, err := c.blobs.Put(ctx, att)
	c.metrics.AttachmentOp("put", err)
	if err != nil {
		return AttachmentItem{}, fmt.Errorf("tracker: upload: %w", err)
	}
	c.notify(Change{Command: "upload_attachment", Sections: SectionAttachments})
	return item(att.AttachmentMeta), nil
}

// Attachments lists stored attachments, newest upload first.
func (c *Controller) Attachments(ctx context.Context) ([]AttachmentItem, error) {
	if c.blobs == nil {
		return nil, apperr.ErrAttachmentsUnavailable
	}
	metas, err := c.blobs.List(ctx)
	c.metrics.AttachmentOp("list", err)
	if err != nil {
		return nil, fmt.Errorf("tracker: list attachments: %w", err)
	}
	out := make([]AttachmentItem, len(metas))
	for i, m := range metas {
		out[i] = item(m)
	}
	return out, nil
}

// Link points a job at an existing attachment. An empty attachmentID
// removes the link. An unknown job id is a no-op.
func (c *Controller) Link(ctx context.Context, jobID, attachmentID string) error {
	attachmentID = strings.TrimSpace(attachmentID)
	if attachmentID == "" {
		return c.Dispatch(ctx, LinkAttachment{ID: jobID})
	}
	att, err := c.attachment(ctx, attachmentID)
	if err != nil {
		return err
	}
	return c.Dispatch(ctx, LinkAttachment{ID: jobID, AttachmentID: att.ID, AttachmentName: DisplayName(att.AttachmentMeta)})
}

// Open grants a lease over an attachment's content.
func (c *Controller) Open(ctx context.Context, attachmentID string, disp lease.Disposition) (lease.Lease, error) {
	att, err := c.attachment(ctx, attachmentID)
	if err != nil {
		return lease.Lease{}, err
	}
	ttl := c.downloadTTL
	if disp == lease.Inline {
		ttl = c.openTTL
	}
	l := c.leases.Acquire(att, disp, ttl)
	c.metrics.LeasesActive(c.leases.Len())
	return l, nil
}

// OpenForJob grants a lease over the attachment linked to a job.
func (c *Controller) OpenForJob(ctx context.Context, jobID string, disp lease.Disposition) (lease.Lease, error) {
	j, ok := c.Job(jobID)
	if !ok {
		return lease.Lease{}, fmt.Errorf("job %s: %w", jobID, apperr.ErrNotFound)
	}
	if j.AttachmentID == "" {
		return lease.Lease{}, fmt.Errorf("job %s has no attachment: %w", jobID, apperr.ErrNotFound)
	}
	return c.Open(ctx, j.AttachmentID, disp)
}

// Lease returns an active lease.
func (c *Controller) Lease(token string) (lease.Lease, bool) {
	return c.leases.Get(token)
}

// ReleaseLease revokes a lease once its consumer has finished reading.
func (c *Controller) ReleaseLease(token string) {
	c.leases.Release(token)
	c.metrics.LeasesActive(c.leases.Len())
}

// DeleteAttachment removes an attachment and clears every job reference
// to it.
func (c *Controller) DeleteAttachment(ctx context.Context, attachmentID string) error {
	if c.blobs == nil {
		return apperr.ErrAttachmentsUnavailable
	}
	err := c.blobs.Delete(ctx, attachmentID)
	c.metrics.AttachmentOp("delete", err)
	if err != nil {
		return fmt.Errorf("tracker: delete attachment: %w", err)
	}
	c.notify(Change{Command: "delete_attachment", Sections: SectionAttachments})
	return c.Dispatch(ctx, UnlinkAttachment{AttachmentID: attachmentID})
}

func (c *Controller) attachment(ctx context.Context, id string) (*models.Attachment, error) {
	if c.blobs == nil {
		return nil, apperr.ErrAttachmentsUnavailable
	}
	att, err := c.blobs.Get(ctx, id)
	c.metrics.AttachmentOp("get", err)
	if err != nil {
		return nil, fmt.Errorf("tracker: get attachment: %w", err)
	}
	if att == nil {
		return nil, fmt.Errorf("attachment %s: %w", id, apperr.ErrAttachmentMissing)
	}
	return att, nil
}

func item(m models.AttachmentMeta) AttachmentItem {
	return AttachmentItem{AttachmentMeta: m, DisplayName: DisplayName(m), SizeLabel: view.HumanSize(m.Size)}
}
