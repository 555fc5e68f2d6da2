package api

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// defaultUploadName is used when neither the query nor the form names the file.
const defaultUploadName = "upload.csv"

// IngestHandler accepts dataset uploads and runs ingestion synchronously.
type IngestHandler struct {
	svc Ingester
	log *logrus.Logger
}

// NewIngestHandler creates an IngestHandler with the given service and logger.
func NewIngestHandler(svc Ingester, log *logrus.Logger) *IngestHandler {
	return &IngestHandler{svc: svc, log: log}
}

// Upload handles POST /api/v1/ingest. The body is either the raw dataset or
// a multipart form with a "file" field.
func (h *IngestHandler) Upload(c *gin.Context) {
	name, data, err := readUpload(c)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, http.StatusRequestEntityTooLarge, ErrCodeInvalidRequest, "request body too large")

			return
		}

		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "could not read uploaded dataset")

		return
	}

	if len(data) == 0 {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "dataset is empty")

		return
	}

	report, err := h.svc.IngestUpload(c.Request.Context(), name, data)
	if err != nil {
		respondServiceError(c, h.log, "ingest: upload", err)

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":    "ingest.run",
		"ingest_id": report.IngestID,
		"source":    report.Source,
		"rows":      report.Rows,
	}).Info("audit")

	c.JSON(http.StatusCreated, report)
}

// readUpload returns the dataset name and bytes from either body shape.
func readUpload(c *gin.Context) (string, []byte, error) {
	name := c.Query("name")

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", nil, err
		}

		f, err := fh.Open()
		if err != nil {
			return "", nil, err
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return "", nil, err
		}

		if name == "" {
			name = fh.Filename
		}

		return uploadName(name), data, nil
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", nil, err
	}

	return uploadName(name), data, nil
}

// uploadName reduces name to a base file name.
func uploadName(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return defaultUploadName
	}

	return base
}
