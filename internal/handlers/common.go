package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/nimbusworks/opsdesk/internal/config"
	"github.com/nimbusworks/opsdesk/internal/pdf"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/storage"
	"github.com/nimbusworks/opsdesk/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Handler bundles the dependencies shared by all route handlers.
type Handler struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Storage  storage.ObjectStorage
	Notifier *services.Notifier
	Renderer *pdf.Renderer
	Log      zerolog.Logger
}

// New creates a Handler.
func New(db *gorm.DB, cfg *config.Config, store storage.ObjectStorage, notifier *services.Notifier, renderer *pdf.Renderer, log zerolog.Logger) *Handler {
	return &Handler{DB: db, Cfg: cfg, Storage: store, Notifier: notifier, Renderer: renderer, Log: log}
}

// paramID parses a numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, types.NewValidationError("Invalid %s '%s'", name, raw)
	}
	return uint(id), nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c *fiber.Ctx, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// readUpload drains a multipart file header into memory.
func readUpload(fh *multipart.FileHeader) (*services.FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &services.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

// formFile reads a single named multipart file, nil when absent.
func formFile(c *fiber.Ctx, field string) (*services.FileUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	upload, err := readUpload(fh)
	if err != nil {
		return nil, types.NewValidationError("Failed to read uploaded file '%s'", field)
	}
	return upload, nil
}

// itemImages collects per-item images addressed as items[N][image] from a
// multipart form, keyed by item index.
func itemImages(form *multipart.Form, itemCount int) (map[int]*services.FileUpload, error) {
	images := make(map[int]*services.FileUpload)
	if form == nil {
		return images, nil
	}
	for i := 0; i < itemCount; i++ {
		field := fmt.Sprintf("items[%d][image]", i)
		headers, ok := form.File[field]
		if !ok || len(headers) == 0 {
			continue
		}
		upload, err := readUpload(headers[0])
		if err != nil {
			return nil, types.NewValidationError("Failed to read uploaded file '%s'", field)
		}
		images[i] = upload
	}
	return images, nil
}

// formFiles reads every file under a repeated multipart field, in order.
func formFiles(form *multipart.Form, field string) ([]*services.FileUpload, error) {
	var uploads []*services.FileUpload
	if form == nil {
		return uploads, nil
	}
	for _, fh := range form.File[field] {
		upload, err := readUpload(fh)
		if err != nil {
			return nil, types.NewValidationError("Failed to read uploaded file '%s'", field)
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}

// sendPDF renders HTML to PDF and streams it as a named attachment.
func (h *Handler) sendPDF(c *fiber.Ctx, html, filename string) error {
	if h.Renderer == nil {
		return types.NewInternalError("PDF rendering is not configured")
	}
	data, err := h.Renderer.RenderHTML(c.UserContext(), html)
	if err != nil {
		h.Log.Error().Err(err).Str("filename", filename).Msg("pdf render failed")
		return types.NewInternalError("Failed to render PDF")
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
