package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/monitorpelanggan/billing-monitor/internal/api/metrics"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
	"github.com/monitorpelanggan/billing-monitor/internal/importer"
	"github.com/monitorpelanggan/billing-monitor/internal/listview"
)

// CustomerHandler handles HTTP requests for billing customers.
type CustomerHandler struct {
	service ports.CustomerService
}

func NewCustomerHandler(service ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

func customerQuery(c echo.Context) ports.CustomerQuery {
	return ports.CustomerQuery{
		Criteria: listview.ParseCustomerCriteria(c.QueryParams()),
		Page:     queryInt(c, "page"),
		PerPage:  queryInt(c, "per_page"),
	}
}

// List handles GET /api/pelanggan.
//
// @Summary      List customers
// @Description  Account managers only ever see their own customers. Pagination is applied when page is set.
// @Tags         pelanggan
// @Produce      json
// @Security     BearerAuth
// @Param        am_id              query     string  false  "Account manager id or all"
// @Param        kategori           query     string  false  "C3mr, CYC, CR or all"
// @Param        periode            query     string  false  "1_bulan, 3_bulan, 6_bulan, 12_bulan, 2_tahun, 5_tahun or all"
// @Param        status_pembayaran  query     string  false  "Belum Bayar, Partial, Lunas or all"
// @Param        status_invoice     query     string  false  "Belum Terkirim, Terkirim or all"
// @Param        search             query     string  false  "Free text search"
// @Param        page               query     int     false  "1-based page"
// @Param        per_page           query     int     false  "Page size (default 10)"
// @Success      200                {object}  customerListResponse
// @Failure      401                {object}  errorResponse
// @Router       /api/pelanggan [get]
func (h *CustomerHandler) List(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	res, err := h.service.List(c.Request().Context(), who, customerQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCustomerList(res))
}

// Create handles POST /api/pelanggan.
//
// @Summary      Create a customer
// @Tags         pelanggan
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCustomerRequest  true  "Customer"
// @Success      201   {object}  customerResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/pelanggan [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	var req createCustomerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cust, err := h.service.Create(c.Request().Context(), toCustomerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, customerResponse{Message: "Pelanggan created successfully", Customer: cust})
}

// Update handles PUT /api/pelanggan/:id. Only the payment progress and the
// invoice status can change.
//
// @Summary      Update customer payment
// @Tags         pelanggan
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Customer id"
// @Param        body  body      updateCustomerRequest  true  "Payment fields"
// @Success      200   {object}  customerResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/pelanggan/{id} [put]
func (h *CustomerHandler) Update(c echo.Context) error {
	var req updateCustomerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cust, err := h.service.UpdatePayment(c.Request().Context(), c.Param("id"), toPaymentUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customerResponse{Message: "Pelanggan updated successfully", Customer: cust})
}

// Delete handles DELETE /api/pelanggan/:id.
//
// @Summary      Delete a customer
// @Tags         pelanggan
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/pelanggan/{id} [delete]
func (h *CustomerHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Pelanggan deleted successfully"})
}

// BulkUpload handles POST /api/pelanggan/bulk-upload. The import is all or
// nothing: a single bad row rejects the whole file.
//
// @Summary      Bulk import customers
// @Tags         pelanggan
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "CSV or Excel file"
// @Success      200   {object}  importResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/pelanggan/bulk-upload [post]
func (h *CustomerHandler) BulkUpload(c echo.Context) error {
	up, closeFn, err := formUpload(c)
	if err != nil {
		return err
	}
	defer closeFn()

	n, err := h.service.BulkImport(c.Request().Context(), up.Filename, up.Reader)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(importer.KindCustomer, importResult(err)).Inc()
		return err
	}
	metrics.ImportsTotal.WithLabelValues(importer.KindCustomer, "ok").Inc()
	metrics.ImportedRowsTotal.WithLabelValues(importer.KindCustomer).Add(float64(n))

	return c.JSON(http.StatusOK, importResponse{
		Message:       fmt.Sprintf("Successfully imported %d pelanggan.", n),
		ImportedCount: n,
	})
}

// Export handles GET /api/pelanggan/export.
//
// @Summary      Export customers
// @Description  Applies the list filters but not pagination.
// @Tags         pelanggan
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        format  query  string  false  "csv (default) or xlsx"
// @Success      200
// @Router       /api/pelanggan/export [get]
func (h *CustomerHandler) Export(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	format := strings.ToLower(c.QueryParam("format"))
	q := customerQuery(c)
	q.Page = 0

	var buf bytes.Buffer
	if err := h.service.Export(c.Request().Context(), who, q, format, &buf); err != nil {
		return err
	}

	contentType, ext := importer.ExportContentType(format)
	filename := "pelanggan_" + time.Now().Format("20060102") + ext
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}
