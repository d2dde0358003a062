package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

func TestBillingHandler_LastUpdate(t *testing.T) {
	e := newEcho()
	last := time.Date(2025, 6, 15, 8, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	h := NewBillingHandler(&stubCustomerService{
		lastUpdateFn: func(_ context.Context, who domain.Identity) (time.Time, error) {
			if who.Role != domain.RoleAM {
				t.Fatalf("identity not forwarded: %+v", who)
			}
			return last, nil
		},
	})
	h.now = func() time.Time { return time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC) }

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/last-update", nil), rec)
	withIdentity(c, amCaller)

	if err := h.LastUpdate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["last_update"] != "2025-06-15T01:00:00Z" {
		t.Fatalf("last_update must be UTC, got %q", resp["last_update"])
	}
	if resp["timestamp"] != "2025-06-15T09:00:00Z" {
		t.Fatalf("unexpected timestamp %q", resp["timestamp"])
	}
}

func TestBillingHandler_SegmentPIC(t *testing.T) {
	e := newEcho()
	h := NewBillingHandler(&stubCustomerService{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/segmen-pic/Enterprise", nil), rec)
	c.SetParamNames("segment")
	c.SetParamValues("Enterprise")

	if err := h.SegmentPIC(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"segmen":"Enterprise","pic_list":["Cintia","Yuda"]}` {
		t.Fatalf("unexpected body: %s", got)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/segmen-pic/Retail", nil), httptest.NewRecorder())
	c.SetParamNames("segment")
	c.SetParamValues("Retail")
	if code := httpCode(t, h.SegmentPIC(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestBillingHandler_Progress(t *testing.T) {
	e := newEcho()
	h := NewBillingHandler(&stubCustomerService{
		summaryFn: func(_ context.Context, _ domain.Identity, amID string) (*domain.PaymentSummary, error) {
			if amID != "am2" {
				t.Fatalf("unexpected am_id %q", amID)
			}
			return &domain.PaymentSummary{TotalProgress: 50, TotalBilled: 200, CustomerCount: 2, AMID: &amID}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/progres-pembayaran?am_id=am2", nil), rec)
	withIdentity(c, domain.Identity{UserID: "a1", Role: domain.RoleAdmin})

	if err := h.Progress(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"total_tagihan":200`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestBillingHandler_ProgressPerAM_Error(t *testing.T) {
	e := newEcho()
	boom := errors.New("mongo down")
	h := NewBillingHandler(&stubCustomerService{
		perAMFn: func(context.Context) ([]domain.AMProgress, error) { return nil, boom },
	})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/progres-pembayaran-per-am", nil), httptest.NewRecorder())
	if err := h.ProgressPerAM(c); !errors.Is(err, boom) {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestTemplateHandler_Download(t *testing.T) {
	e := newEcho()
	h := NewTemplateHandler()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/upload/template?type=kontrak", nil), rec)

	if err := h.Download(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.HasPrefix(rec.Body.String(), "no_kontrak,") {
		t.Fatalf("unexpected template: %q", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != "attachment; filename=template_kontrak.csv" {
		t.Fatalf("unexpected disposition %q", cd)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/upload/template?type=invoice", nil), httptest.NewRecorder())
	if err := h.Download(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
