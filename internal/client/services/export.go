package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/worklogger/internal/client/client"
	"github.com/dmitrijs2005/worklogger/internal/client/export"
	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/client/projection"
	"github.com/dmitrijs2005/worklogger/internal/filex"
	"github.com/dmitrijs2005/worklogger/internal/logging"
	"github.com/dmitrijs2005/worklogger/internal/netx"
)

// ErrNothingToExport means the selection is empty; no file is written.
var ErrNothingToExport = errors.New("no logs to export")

type UploadURLProvider interface {
	GetExportUploadURL(ctx context.Context, filename string) (*client.UploadTarget, error)
}

// UploadQueue remembers export copies still owed to object storage.
type UploadQueue interface {
	Enqueue(ctx context.Context, u *models.ExportUpload) error
	Pending(ctx context.Context) ([]*models.ExportUpload, error)
	MarkUploaded(ctx context.Context, localPath, url string) error
	Drop(ctx context.Context, localPath string) error
}

type ExportResult struct {
	Path  string
	Count int
	// URL is the download link of the uploaded copy, if any.
	URL string
}

// ExportService writes the current projections to a file. Whole-club and
// category exports read the Recent view; "mine" reads the Mine view.
type ExportService struct {
	views  *projection.Store
	urls   UploadURLProvider
	queue  UploadQueue
	dir    string
	logger logging.Logger

	upload func(ctx context.Context, url, contentType string, body []byte) error
}

func NewExportService(views *projection.Store, urls UploadURLProvider, queue UploadQueue, dir string, logger logging.Logger) *ExportService {
	return &ExportService{
		views:  views,
		urls:   urls,
		queue:  queue,
		dir:    dir,
		logger: logger.With("module", "export"),
		upload: netx.UploadToPresignedURL,
	}
}

func (s *ExportService) Export(ctx context.Context, f export.Filter, format string, upload bool) (*ExportResult, error) {
	w, err := export.WriterForFormat(format)
	if err != nil {
		return nil, err
	}

	var rows []*models.Entry
	if f.Scope == export.Mine {
		rows = s.views.Mine()
	} else {
		rows = f.Apply(s.views.Recent())
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNothingToExport, f.Describe())
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, rows); err != nil {
		return nil, err
	}

	name := f.FileName(w.Ext())
	path, err := filex.WriteFile(s.dir, name, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("save export: %w", err)
	}

	res := &ExportResult{Path: path, Count: len(rows)}
	s.logger.Info(ctx, "export written", "path", path, "rows", len(rows))

	if !upload {
		return res, nil
	}

	item := &models.ExportUpload{LocalPath: path, Filename: name, ContentType: contentType(w.Ext())}
	if err := s.queue.Enqueue(ctx, item); err != nil {
		s.logger.Warn(ctx, "upload not queued", "path", path, "error", err)
	}

	url, err := s.uploadOne(ctx, item, buf.Bytes())
	if err != nil {
		return res, err
	}
	res.URL = url
	return res, nil
}

// RetryUploads uploads every queued export copy. Files that no longer exist
// are dropped from the queue. It returns how many uploads succeeded and the
// first failure.
func (s *ExportService) RetryUploads(ctx context.Context) (int, error) {
	pending, err := s.queue.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending uploads: %w", err)
	}

	var (
		done     int
		firstErr error
	)
	for _, item := range pending {
		data, err := os.ReadFile(item.LocalPath)
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn(ctx, "export file gone, dropping upload", "path", item.LocalPath)
			_ = s.queue.Drop(ctx, item.LocalPath)
			continue
		}
		if err == nil {
			_, err = s.uploadOne(ctx, item, data)
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		done++
	}
	return done, firstErr
}

func (s *ExportService) uploadOne(ctx context.Context, item *models.ExportUpload, body []byte) (string, error) {
	target, err := s.urls.GetExportUploadURL(ctx, item.Filename)
	if err != nil {
		return "", fmt.Errorf("get upload url: %w", err)
	}
	if err := s.upload(ctx, target.PutURL, item.ContentType, body); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	if err := s.queue.MarkUploaded(ctx, item.LocalPath, target.GetURL); err != nil {
		s.logger.Warn(ctx, "upload done but not recorded", "path", item.LocalPath, "error", err)
	}
	s.logger.Info(ctx, "export uploaded", "key", target.Key)
	return target.GetURL, nil
}

func contentType(ext string) string {
	switch ext {
	case "csv":
		return "text/csv"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return ""
}
