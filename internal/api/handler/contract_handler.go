package handler

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/monitorpelanggan/billing-monitor/internal/api/metrics"
	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
	"github.com/monitorpelanggan/billing-monitor/internal/importer"
	"github.com/monitorpelanggan/billing-monitor/internal/listview"
)

// ContractHandler handles HTTP requests for contracts and their documents.
type ContractHandler struct {
	service ports.ContractService
}

func NewContractHandler(service ports.ContractService) *ContractHandler {
	return &ContractHandler{service: service}
}

// List handles GET /api/kontrak.
//
// @Summary      List contracts
// @Tags         kontrak
// @Produce      json
// @Security     BearerAuth
// @Param        from             query     string  false  "Contract date lower bound (YYYY-MM-DD)"
// @Param        to               query     string  false  "Contract date upper bound (YYYY-MM-DD)"
// @Param        segmen           query     string  false  "Business, Government, Enterprise or all"
// @Param        jenis_transaksi  query     string  false  "Own Channel, GTMA, NGTMA or all"
// @Param        search           query     string  false  "Free text search"
// @Param        page             query     int     false  "1-based page"
// @Param        per_page         query     int     false  "Page size (default 10)"
// @Success      200              {object}  contractListResponse
// @Router       /api/kontrak [get]
func (h *ContractHandler) List(c echo.Context) error {
	res, err := h.service.List(c.Request().Context(), ports.ContractQuery{
		Criteria: listview.ParseContractCriteria(c.QueryParams()),
		Page:     queryInt(c, "page"),
		PerPage:  queryInt(c, "per_page"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContractList(res))
}

// Create handles POST /api/kontrak. The body is JSON, or multipart when a
// PDF is attached in the "file" field.
//
// @Summary      Create a contract
// @Tags         kontrak
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      contractRequest  false  "Contract (JSON)"
// @Param        file  formData  file             false  "Contract PDF (multipart)"
// @Success      201   {object}  contractResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/kontrak [post]
func (h *ContractHandler) Create(c echo.Context) error {
	if hasUpload(c) {
		return h.createWithFile(c)
	}

	var req contractRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	k, err := h.service.Create(c.Request().Context(), toContractInput(req), nil)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, contractResponse{Message: "Kontrak created successfully", Contract: k})
}

func (h *ContractHandler) createWithFile(c echo.Context) error {
	req, err := contractFromForm(c)
	if err != nil {
		return err
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	up, closeFn, err := formUpload(c)
	if err != nil {
		return err
	}
	defer closeFn()

	k, err := h.service.Create(c.Request().Context(), toContractInput(req), &up)
	if err != nil {
		return err
	}
	metrics.DocumentsUploadedTotal.Inc()
	return c.JSON(http.StatusCreated, contractResponse{Message: "Kontrak created successfully with file", Contract: k})
}

// contractFromForm reads contract fields from multipart form values.
func contractFromForm(c echo.Context) (contractRequest, error) {
	req := contractRequest{
		Number:          c.FormValue("no_kontrak"),
		JobName:         c.FormValue("nama_pekerjaan"),
		CustomerName:    c.FormValue("nama_customer"),
		TransactionType: c.FormValue("jenis_transaksi"),
		Segment:         c.FormValue("segmen"),
		PICName:         c.FormValue("pic_name"),
	}

	dates := []struct {
		field string
		dst   *domain.Date
	}{
		{"tanggal_kontrak", &req.ContractDate},
		{"start_date", &req.StartDate},
		{"end_date", &req.EndDate},
	}
	for _, d := range dates {
		raw := strings.TrimSpace(c.FormValue(d.field))
		if raw == "" {
			continue
		}
		parsed, err := domain.ParseDate(raw)
		if err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", d.field))
		}
		*d.dst = parsed
	}

	if raw := strings.TrimSpace(c.FormValue("nilai_kontrak")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "nilai_kontrak must be a number")
		}
		req.Value = v
	}
	return req, nil
}

// Update handles PUT /api/kontrak/:id. Absent fields are left unchanged.
//
// @Summary      Update a contract
// @Tags         kontrak
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Contract id"
// @Param        body  body      updateContractRequest  true  "Fields to change"
// @Success      200   {object}  contractResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/kontrak/{id} [put]
func (h *ContractHandler) Update(c echo.Context) error {
	var req updateContractRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	k, err := h.service.Update(c.Request().Context(), c.Param("id"), toContractPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contractResponse{Message: "Kontrak updated successfully", Contract: k})
}

// Delete handles DELETE /api/kontrak/:id.
//
// @Summary      Delete a contract
// @Tags         kontrak
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/kontrak/{id} [delete]
func (h *ContractHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Kontrak deleted successfully"})
}

// BulkDelete handles DELETE /api/kontrak/bulk-delete.
//
// @Summary      Delete several contracts
// @Tags         kontrak
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkDeleteRequest  true  "Contract ids"
// @Success      200   {object}  ports.BulkDeleteResult
// @Failure      400   {object}  errorResponse
// @Router       /api/kontrak/bulk-delete [delete]
func (h *ContractHandler) BulkDelete(c echo.Context) error {
	var req bulkDeleteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := h.service.BulkDelete(c.Request().Context(), req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// BulkUpload handles POST /api/kontrak/bulk-upload. Valid rows are stored and
// the rejected ones are listed in the response.
//
// @Summary      Bulk import contracts
// @Tags         kontrak
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "CSV or Excel file"
// @Success      200   {object}  ports.ImportResult
// @Failure      400   {object}  errorResponse
// @Router       /api/kontrak/bulk-upload [post]
func (h *ContractHandler) BulkUpload(c echo.Context) error {
	up, closeFn, err := formUpload(c)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := h.service.BulkImport(c.Request().Context(), up.Filename, up.Reader)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(importer.KindContract, importResult(err)).Inc()
		return err
	}
	metrics.ImportsTotal.WithLabelValues(importer.KindContract, "ok").Inc()
	metrics.ImportedRowsTotal.WithLabelValues(importer.KindContract).Add(float64(res.ImportedCount))
	return c.JSON(http.StatusOK, res)
}

// Upload handles POST /api/kontrak/:id/upload. A previous document is
// replaced.
//
// @Summary      Attach a contract PDF
// @Tags         kontrak
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Contract id"
// @Param        file  formData  file    true  "PDF document"
// @Success      200   {object}  contractUploadResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/kontrak/{id}/upload [post]
func (h *ContractHandler) Upload(c echo.Context) error {
	up, closeFn, err := formUpload(c)
	if err != nil {
		return err
	}
	defer closeFn()

	k, err := h.service.AttachFile(c.Request().Context(), c.Param("id"), up)
	if err != nil {
		return err
	}
	metrics.DocumentsUploadedTotal.Inc()

	var key string
	if k.FileKey != nil {
		key = *k.FileKey
	}
	return c.JSON(http.StatusOK, contractUploadResponse{Message: "File uploaded successfully", FilePath: key, Contract: k})
}

// View handles GET /api/kontrak/:id/view.
//
// @Summary      View a contract PDF inline
// @Tags         kontrak
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "Contract id"
// @Success      200
// @Failure      404  {object}  errorResponse
// @Router       /api/kontrak/{id}/view [get]
func (h *ContractHandler) View(c echo.Context) error {
	return h.serveFile(c, "inline")
}

// Download handles GET /api/kontrak/:id/download.
//
// @Summary      Download a contract PDF
// @Tags         kontrak
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "Contract id"
// @Success      200
// @Failure      404  {object}  errorResponse
// @Router       /api/kontrak/{id}/download [get]
func (h *ContractHandler) Download(c echo.Context) error {
	return h.serveFile(c, "attachment")
}

func (h *ContractHandler) serveFile(c echo.Context, disposition string) error {
	rc, info, err := h.service.OpenFile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	defer rc.Close()

	hdr := c.Response().Header()
	hdr.Set(echo.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", disposition, path.Base(info.Key)))
	if info.Size > 0 {
		hdr.Set(echo.HeaderContentLength, strconv.FormatInt(info.Size, 10))
	}
	return c.Stream(http.StatusOK, "application/pdf", rc)
}

// PDFList handles GET /api/kontrak/pdf-list.
//
// @Summary      List attached contract documents
// @Tags         kontrak
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  pdfListResponse
// @Router       /api/kontrak/pdf-list [get]
func (h *ContractHandler) PDFList(c echo.Context) error {
	files, err := h.service.ListFiles(c.Request().Context())
	if err != nil {
		return err
	}
	if files == nil {
		files = []domain.ContractFile{}
	}
	return c.JSON(http.StatusOK, pdfListResponse{Files: files, Total: len(files)})
}
