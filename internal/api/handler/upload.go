package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
	"github.com/monitorpelanggan/billing-monitor/internal/importer"
)

// uploadField is the multipart field every upload endpoint reads.
const uploadField = "file"

// formUpload opens the uploaded file. The returned func closes it.
func formUpload(c echo.Context) (ports.Upload, func(), error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		return ports.Upload{}, nil, echo.NewHTTPError(http.StatusBadRequest, "No file provided")
	}
	if fh.Filename == "" {
		return ports.Upload{}, nil, echo.NewHTTPError(http.StatusBadRequest, "No file selected")
	}

	f, err := fh.Open()
	if err != nil {
		return ports.Upload{}, nil, err
	}
	up := ports.Upload{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Reader:      f,
	}
	return up, func() { _ = f.Close() }, nil
}

// hasUpload reports whether the request is multipart and carries a file.
func hasUpload(c echo.Context) bool {
	_, err := c.FormFile(uploadField)
	return err == nil
}

func importResult(err error) string {
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrUnsupportedFile) {
		return "rejected"
	}
	return "error"
}

// TemplateHandler serves the bulk upload CSV templates.
type TemplateHandler struct{}

func NewTemplateHandler() *TemplateHandler { return &TemplateHandler{} }

// Download handles GET /api/upload/template.
//
// @Summary      Download a bulk upload template
// @Tags         upload
// @Produce      text/csv
// @Security     BearerAuth
// @Param        type  query  string  false  "pelanggan (default) or kontrak"
// @Success      200
// @Failure      400  {object}  errorResponse
// @Router       /api/upload/template [get]
func (h *TemplateHandler) Download(c echo.Context) error {
	kind := c.QueryParam("type")
	if kind == "" {
		kind = importer.KindCustomer
	}
	data, filename, err := importer.Template(kind)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+filename)
	return c.Blob(http.StatusOK, "text/csv", data)
}
