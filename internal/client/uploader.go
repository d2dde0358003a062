package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	uploadField = "file"

	// DefaultMaxUploadBytes matches the server's default upload limit.
	DefaultMaxUploadBytes = 16 << 20
)

// DefaultAllowedExtensions is the allow-list used when none is configured.
var DefaultAllowedExtensions = []string{".csv", ".pdf", ".xlsx", ".xls"}

// Phase is a step of an upload attempt.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseSuccess
	PhaseFail
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseSuccess:
		return "success"
	case PhaseFail:
		return "fail"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// UploaderConfig configures one upload widget. Progress, when set, receives
// the bytes read from the source so far; total is the declared size.
type UploaderConfig struct {
	Endpoint string
	Allowed  []string
	MaxBytes int64
	Fields   map[string]string
	Progress func(sent, total int64)
	OnPhase  func(Phase)
}

// UploadResult is the server's reply to an upload.
type UploadResult struct {
	Message       string   `json:"message"`
	ImportedCount int      `json:"imported_count"`
	Errors        []string `json:"errors"`
}

// Uploader sends one file per call. Failed uploads are not retried; the
// caller keeps the file and may call Upload again.
type Uploader struct {
	c   *Client
	cfg UploaderConfig
}

// Uploader returns a widget posting to cfg.Endpoint.
func (c *Client) Uploader(cfg UploaderConfig) *Uploader {
	if len(cfg.Allowed) == 0 {
		cfg.Allowed = DefaultAllowedExtensions
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxUploadBytes
	}
	return &Uploader{c: c, cfg: cfg}
}

// Validate checks name and size against the widget's limits.
func (u *Uploader) Validate(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	allowed := false
	for _, a := range u.cfg.Allowed {
		if strings.EqualFold(a, ext) {
			allowed = true
			break
		}
	}
	if !allowed {
		return &ValidationError{
			Field:   uploadField,
			Message: "File type not supported. Allowed types: " + strings.Join(u.cfg.Allowed, ","),
		}
	}
	if size > u.cfg.MaxBytes {
		return &ValidationError{
			Field:   uploadField,
			Message: fmt.Sprintf("File too large. Maximum size is %s", formatBytes(u.cfg.MaxBytes)),
		}
	}
	return nil
}

// Upload validates and sends r as the multipart field "file".
func (u *Uploader) Upload(ctx context.Context, name string, r io.Reader, size int64) (*UploadResult, error) {
	if err := u.Validate(name, size); err != nil {
		return nil, err
	}
	u.phase(PhaseStart)

	src := r
	if u.cfg.Progress != nil {
		src = &progressReader{r: r, total: size, report: u.cfg.Progress}
	}
	var out UploadResult
	req := u.c.request(ctx).
		SetFileReader(uploadField, filepath.Base(name), src).
		SetResult(&out)
	if len(u.cfg.Fields) > 0 {
		req.SetFormData(u.cfg.Fields)
	}
	if err := u.c.execute(req, http.MethodPost, u.cfg.Endpoint); err != nil {
		u.phase(PhaseFail)
		return nil, err
	}
	if out.Message == "" {
		out.Message = "File uploaded successfully"
	}
	u.phase(PhaseSuccess)
	return &out, nil
}

func (u *Uploader) phase(p Phase) {
	if u.cfg.OnPhase != nil {
		u.cfg.OnPhase(p)
	}
}

type progressReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}
	return n, err
}

func formatBytes(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
