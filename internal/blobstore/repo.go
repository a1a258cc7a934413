package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/starford/jobtrail/internal/models"
)

const (
	defaultFilename = "file"
	defaultMIME     = "application/octet-stream"
)

// Put stores an attachment and returns its id. Missing metadata is filled
// in: a fresh id, the filename as display name, a sniffed MIME type, the
// content length and the current time.
func (db *DB) Put(ctx context.Context, att *models.Attachment) (string, error) {
	if att == nil {
		return "", fmt.Errorf("blobstore: nil attachment")
	}
	if att.ID == "" {
		att.ID = db.newID()
	}
	att.Filename = strings.TrimSpace(att.Filename)
	if att.Filename == "" {
		att.Filename = defaultFilename
	}
	att.Name = strings.TrimSpace(att.Name)
	if att.Name == "" {
		att.Name = att.Filename
	}
	if att.MIME == "" {
		att.MIME = sniffMIME(att.Content)
	}
	att.Size = int64(len(att.Content))
	if att.UploadedAt == 0 {
		att.UploadedAt = db.now().UnixMilli()
	}
	content := att.Content
	if content == nil {
		content = []byte{}
	}

	unlock := db.locks.lock(att.ID)
	defer unlock()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO attachments (id, name, filename, mime, size, uploaded_at, content)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name        = excluded.name,
			filename    = excluded.filename,
			mime        = excluded.mime,
			size        = excluded.size,
			uploaded_at = excluded.uploaded_at,
			content     = excluded.content
	`, att.ID, att.Name, att.Filename, att.MIME, att.Size, att.UploadedAt, content)
	if err != nil {
		return "", fmt.Errorf("blobstore: put: %w", err)
	}
	return att.ID, nil
}

// GetAll returns every attachment including content, newest upload first.
func (db *DB) GetAll(ctx context.Context) ([]models.Attachment, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, filename, mime, size, uploaded_at, content
		FROM attachments
		ORDER BY uploaded_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("blobstore: get all: %w", err)
	}
	defer rows.Close()

	out := []models.Attachment{}
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.Name, &a.Filename, &a.MIME, &a.Size, &a.UploadedAt, &a.Content); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// List returns attachment metadata only, newest upload first.
func (db *DB) List(ctx context.Context) ([]models.AttachmentMeta, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, filename, mime, size, uploaded_at
		FROM attachments
		ORDER BY uploaded_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("blobstore: list: %w", err)
	}
	defer rows.Close()

	out := []models.AttachmentMeta{}
	for rows.Next() {
		var m models.AttachmentMeta
		if err := rows.Scan(&m.ID, &m.Name, &m.Filename, &m.MIME, &m.Size, &m.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Get returns one attachment, or nil when no attachment has that id.
func (db *DB) Get(ctx context.Context, id string) (*models.Attachment, error) {
	unlock := db.locks.lock(id)
	defer unlock()

	var a models.Attachment
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, name, filename, mime, size, uploaded_at, content
		FROM attachments WHERE id = ?
	`, id).Scan(&a.ID, &a.Name, &a.Filename, &a.MIME, &a.Size, &a.UploadedAt, &a.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blobstore: get %s: %w", id, err)
	}
	return &a, nil
}

// Delete removes an attachment. Deleting an unknown id succeeds.
func (db *DB) Delete(ctx context.Context, id string) error {
	unlock := db.locks.lock(id)
	defer unlock()

	if _, err := db.conn.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("blobstore: delete %s: %w", id, err)
	}
	return nil
}

func sniffMIME(content []byte) string {
	if len(content) == 0 {
		return defaultMIME
	}
	n := len(content)
	if n > 512 {
		n = 512
	}
	return http.DetectContentType(content[:n])
}
