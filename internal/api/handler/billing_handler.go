package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/monitorpelanggan/billing-monitor/internal/api/metrics"
	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
)

// BillingHandler serves the dashboard lookups, payment roll-ups and the
// change-poll endpoint.
type BillingHandler struct {
	service ports.CustomerService
	now     func() time.Time
}

func NewBillingHandler(service ports.CustomerService) *BillingHandler {
	return &BillingHandler{service: service, now: time.Now}
}

// AMList handles GET /api/am-list.
//
// @Summary      Active account managers
// @Tags         lookup
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  amListResponse
// @Router       /api/am-list [get]
func (h *BillingHandler) AMList(c echo.Context) error {
	ams, err := h.service.AMList(c.Request().Context())
	if err != nil {
		return err
	}
	if ams == nil {
		ams = []domain.AccountManager{}
	}
	return c.JSON(http.StatusOK, amListResponse{AMs: ams})
}

// SegmentPIC handles GET /api/segmen-pic/:segment.
//
// @Summary      PIC names for a segment
// @Tags         lookup
// @Produce      json
// @Security     BearerAuth
// @Param        segment  path      string  true  "Business, Government or Enterprise"
// @Success      200      {object}  segmentPICResponse
// @Failure      400      {object}  errorResponse
// @Router       /api/segmen-pic/{segment} [get]
func (h *BillingHandler) SegmentPIC(c echo.Context) error {
	seg := c.Param("segment")
	pics, ok := domain.PICsForSegment(domain.Segment(seg))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid segmen")
	}
	return c.JSON(http.StatusOK, segmentPICResponse{Segment: seg, PICs: pics})
}

// SegmentList handles GET /api/segmen-list.
//
// @Summary      Contract segments
// @Tags         lookup
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  segmentListResponse
// @Router       /api/segmen-list [get]
func (h *BillingHandler) SegmentList(c echo.Context) error {
	return c.JSON(http.StatusOK, segmentListResponse{Segments: domain.Segments})
}

// Progress handles GET /api/progres-pembayaran.
//
// @Summary      Payment totals
// @Description  Account managers get their own totals; managers may pass am_id.
// @Tags         progress
// @Produce      json
// @Security     BearerAuth
// @Param        am_id  query     string  false  "Account manager id or all"
// @Success      200    {object}  domain.PaymentSummary
// @Router       /api/progres-pembayaran [get]
func (h *BillingHandler) Progress(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	sum, err := h.service.Summary(c.Request().Context(), who, c.QueryParam("am_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}

// ProgressPerAM handles GET /api/progres-pembayaran-per-am.
//
// @Summary      Payment progress per account manager
// @Tags         progress
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  amProgressResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/progres-pembayaran-per-am [get]
func (h *BillingHandler) ProgressPerAM(c echo.Context) error {
	rows, err := h.service.ProgressPerAM(c.Request().Context())
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []domain.AMProgress{}
	}
	return c.JSON(http.StatusOK, amProgressResponse{Progress: rows})
}

// LastUpdate handles GET /api/last-update. Dashboards poll it and reload
// their lists when last_update moves forward.
//
// @Summary      Latest data change
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  lastUpdateResponse
// @Router       /api/last-update [get]
func (h *BillingHandler) LastUpdate(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	metrics.LastUpdatePollsTotal.WithLabelValues(who.Role).Inc()

	last, err := h.service.LastUpdate(c.Request().Context(), who)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lastUpdateResponse{LastUpdate: last.UTC(), Timestamp: h.now().UTC()})
}
