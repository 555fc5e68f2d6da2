package client

import (
	"context"
	"io"
)

// IngestService uploads datasets for processing.
type IngestService struct {
	c *Client
}

// Upload sends a CSV or XLSX dataset as a multipart form and waits for the
// ingestion to finish.
func (s *IngestService) Upload(ctx context.Context, name string, r io.Reader) (*IngestReport, error) {
	var report IngestReport

	resp, err := s.c.rc.R().
		SetContext(ctx).
		SetFileReader("file", name, r).
		SetResult(&report).
		Post("/api/v1/ingest")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	return &report, nil
}
