package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const maxAttachmentSize = 20 << 20 // 20 MB

var (
	extToMIME = map[string]string{
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".odt":  "application/vnd.oasis.opendocument.text",
		".rtf":  "application/rtf",
		".txt":  "text/plain",
		".md":   "text/markdown",
	}

	mimeToExt = map[string]string{
		"application/pdf":    ".pdf",
		"application/msword": ".doc",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
		"application/vnd.oasis.opendocument.text":                                 ".odt",
		"application/rtf": ".rtf",
		"text/plain":      ".txt",
		"text/markdown":   ".md",
	}

	safeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

func (s *Server) uploadAttachment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !s.ctrl.AttachmentsAvailable() {
		return mcp.NewToolResultError("attachment storage is not configured"), nil
	}

	var data []byte
	var detectedExt string
	if strings.HasPrefix(rawURL, "data:") {
		data, detectedExt, err = decodeDataURI(rawURL)
	} else {
		data, detectedExt, err = fetchHTTP(ctx, rawURL)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxAttachmentSize {
		return mcp.NewToolResultError(fmt.Sprintf("file too large: %d bytes (max %d)", len(data), maxAttachmentSize)), nil
	}

	filename := optional(req, "filename")
	if filename == "" {
		filename = filenameFromURL(rawURL, detectedExt)
	}
	filename = sanitizeFilename(filename)

	ext := strings.ToLower(filepath.Ext(filename))
	mime, ok := extToMIME[ext]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported file extension: %s (allowed: pdf, doc, docx, odt, rtf, txt, md)", ext)), nil
	}
	if ext == ".pdf" && http.DetectContentType(data) != "application/pdf" {
		return mcp.NewToolResultError("content does not appear to be a PDF"), nil
	}

	it, err := s.ctrl.Upload(ctx, optional(req, "name"), filename, mime, data)
	if err != nil {
		return toolError(err), nil
	}
	if jobID := optional(req, "jobId"); jobID != "" {
		if err := s.ctrl.Link(ctx, jobID, it.ID); err != nil {
			return toolError(err), nil
		}
	}
	return jsonResult(it)
}

// decodeDataURI parses a data:[<mediatype>][;base64],<data> URI.
func decodeDataURI(uri string) ([]byte, string, error) {
	rest := strings.TrimPrefix(uri, "data:")
	commaIdx := strings.Index(rest, ",")
	if commaIdx < 0 {
		return nil, "", fmt.Errorf("invalid data URI: missing comma separator")
	}

	meta := rest[:commaIdx]
	encoded := rest[commaIdx+1:]

	if !strings.Contains(meta, ";base64") {
		return nil, "", fmt.Errorf("only base64 data URIs are supported")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 data: %w", err)
		}
	}

	mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	return data, mimeToExt[mime], nil
}

// fetchHTTP downloads a file from an HTTP/HTTPS URL with security checks.
func fetchHTTP(ctx context.Context, rawURL string) ([]byte, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported scheme: %s (only http/https)", parsed.Scheme)
	}
	if err := checkBlockedHost(parsed.Hostname()); err != nil {
		return nil, "", err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return checkBlockedHost(req.URL.Hostname())
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body failed: %w", err)
	}
	if len(data) > maxAttachmentSize {
		return nil, "", fmt.Errorf("file too large: exceeds %d bytes", maxAttachmentSize)
	}

	ct := resp.Header.Get("Content-Type")
	return data, mimeToExt[strings.TrimSpace(strings.Split(ct, ";")[0])], nil
}

// checkBlockedHost rejects loopback and cloud metadata addresses.
func checkBlockedHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, lookupErr := net.LookupIP(host)
		if lookupErr != nil || len(ips) == 0 {
			return nil //nolint:nilerr // let http.Client handle DNS failures
		}
		ip = ips[0]
	}

	if ip.IsLoopback() {
		return fmt.Errorf("blocked host: loopback address %s", host)
	}
	if ip.Equal(net.ParseIP("169.254.169.254")) {
		return fmt.Errorf("blocked host: cloud metadata address %s", host)
	}
	return nil
}

// filenameFromURL takes the last path segment of an http(s) URL, falling
// back to a random name with the detected extension.
func filenameFromURL(rawURL string, fallbackExt string) string {
	if !strings.HasPrefix(rawURL, "data:") {
		if parsed, err := url.Parse(rawURL); err == nil {
			base := path.Base(parsed.Path)
			if base != "" && base != "." && base != "/" && strings.Contains(base, ".") {
				return base
			}
		}
	}
	ext := fallbackExt
	if ext == "" {
		ext = ".bin"
	}
	return uuid.New().String() + ext
}

// sanitizeFilename strips path separators and unsafe characters.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = safeFilenameRe.ReplaceAllString(name, "_")
	if name == "" || name == "." {
		name = uuid.New().String()
	}
	return name
}
