// Package client is the dashboard side of the billing monitor: a cookie
// session over the REST API, the upload widget, record forms, navigation
// rules and the polled dashboard state.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/listview"
)

// Config configures a Client. A zero Timeout means requests are bounded only
// by their context.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Log     zerolog.Logger
}

// Client talks to the billing server. The session cookie set by login is
// kept in the client's jar and sent on every later request.
type Client struct {
	rc  *resty.Client
	log zerolog.Logger
}

// New builds a Client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetCookieJar(jar).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	return &Client{rc: rc, log: cfg.Log}, nil
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.rc.R().SetContext(ctx).SetError(&errorBody{})
}

// do issues a JSON request and decodes a 2xx body into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req := c.request(ctx)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	return c.execute(req, method, path)
}

func (c *Client) execute(req *resty.Request, method, path string) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return networkError(err)
	}
	if resp.IsError() {
		return apiError(resp)
	}
	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode()).Msg("request done")
	return nil
}

// Submit sends a form request built by one of the record forms. A non-nil
// out receives the decoded response.
func (c *Client) Submit(ctx context.Context, r Request, out any) error {
	if r.File == nil {
		return c.do(ctx, r.Method, r.Path, nil, r.Body, out)
	}
	req := c.request(ctx).
		SetFileReader(uploadField, r.File.Name, r.File.Reader).
		SetFormData(r.Fields)
	if out != nil {
		req.SetResult(out)
	}
	return c.execute(req, r.Method, r.Path)
}

// Customers returns every customer matching crit, unpaginated.
func (c *Client) Customers(ctx context.Context, crit listview.CustomerCriteria) ([]domain.Customer, error) {
	var out struct {
		Items []domain.Customer `json:"pelanggan"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/pelanggan", crit.Values(), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Contracts returns every contract matching crit, unpaginated.
func (c *Client) Contracts(ctx context.Context, crit listview.ContractCriteria) ([]domain.Contract, error) {
	var out struct {
		Items []domain.Contract `json:"kontrak"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/kontrak", crit.Values(), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) AMList(ctx context.Context) ([]domain.AccountManager, error) {
	var out struct {
		AMs []domain.AccountManager `json:"am_list"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/am-list", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.AMs, nil
}

// Progress returns the payment summary. amID "" or "all" covers every
// account manager the caller may see.
func (c *Client) Progress(ctx context.Context, amID string) (*domain.PaymentSummary, error) {
	var q url.Values
	if amID != "" {
		q = url.Values{"am_id": {amID}}
	}
	var out domain.PaymentSummary
	if err := c.do(ctx, http.MethodGet, "/api/progres-pembayaran", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProgressPerAM(ctx context.Context) ([]domain.AMProgress, error) {
	var out struct {
		Rows []domain.AMProgress `json:"am_progress"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/progres-pembayaran-per-am", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// LastUpdate returns the server's change marker. It has the shape the
// change-poller expects.
func (c *Client) LastUpdate(ctx context.Context) (time.Time, error) {
	var out struct {
		LastUpdate time.Time `json:"last_update"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/last-update", nil, nil, &out); err != nil {
		return time.Time{}, err
	}
	return out.LastUpdate, nil
}

func (c *Client) PDFList(ctx context.Context) ([]domain.ContractFile, error) {
	var out struct {
		Files []domain.ContractFile `json:"pdf_list"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/kontrak/pdf-list", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	var out struct {
		Users []domain.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/pelanggan/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) DeleteContract(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/kontrak/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil, nil)
}

// BulkDeleteResult reports a bulk contract delete.
type BulkDeleteResult struct {
	Message      string   `json:"message"`
	DeletedCount int      `json:"deleted_count"`
	Errors       []string `json:"errors"`
}

func (c *Client) BulkDeleteContracts(ctx context.Context, ids []string) (*BulkDeleteResult, error) {
	var out BulkDeleteResult
	body := map[string][]string{"kontrak_ids": ids}
	if err := c.do(ctx, http.MethodDelete, "/api/kontrak/bulk-delete", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Template writes the CSV import template for kind ("pelanggan" or "kontrak").
func (c *Client) Template(ctx context.Context, kind string, w io.Writer) error {
	return c.download(ctx, "/api/upload/template", url.Values{"type": {kind}}, w)
}

// Export writes the filtered customer list as format ("csv" or "xlsx").
func (c *Client) Export(ctx context.Context, crit listview.CustomerCriteria, format string, w io.Writer) error {
	q := crit.Values()
	q.Set("format", format)
	return c.download(ctx, "/api/pelanggan/export", q, w)
}

// DownloadContract writes the PDF attached to a contract.
func (c *Client) DownloadContract(ctx context.Context, id string, w io.Writer) error {
	return c.download(ctx, "/api/kontrak/"+url.PathEscape(id)+"/download", nil, w)
}

func (c *Client) download(ctx context.Context, path string, query url.Values, w io.Writer) error {
	req := c.request(ctx).SetDoNotParseResponse(true)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	resp, err := req.Get(path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return networkError(err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		out := &APIError{Status: resp.StatusCode()}
		var eb errorBody
		if json.NewDecoder(body).Decode(&eb) == nil {
			out.Message, out.Details = eb.Error, eb.Details
		}
		if out.Message == "" {
			out.Message = http.StatusText(out.Status)
		}
		return out
	}
	if _, err := io.Copy(w, body); err != nil {
		return networkError(err)
	}
	return nil
}
