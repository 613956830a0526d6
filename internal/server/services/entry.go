package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/civil"

	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/logging"
	"github.com/dmitrijs2005/worklogger/internal/server/models"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/worklogger/internal/timex"
)

// MaxRecentLimit caps ListRecent.
const MaxRecentLimit = 500

// Publisher announces committed changes. It is only set when the change feed
// is not driven by the database itself.
type Publisher interface {
	Publish(ctx context.Context, ev models.ChangeEvent) error
}

// EntryService owns the work_logs table.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   Publisher
	logger      logging.Logger
}

// NewEntryService constructs the service. publisher may be nil.
func NewEntryService(db *sql.DB, m repomanager.RepositoryManager, publisher Publisher, logger logging.Logger) *EntryService {
	return &EntryService{
		db:          db,
		repomanager: m,
		publisher:   publisher,
		logger:      logger.With("module", "entries"),
	}
}

// Insert validates and stores a new entry owned by userID.
func (s *EntryService) Insert(ctx context.Context, userID string, logDate, description, category string) (*models.Entry, error) {
	e, err := newEntry(userID, logDate, description, category)
	if err != nil {
		return nil, err
	}

	created, err := s.repomanager.Entries(s.db).Create(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("error creating entry: %w", err)
	}

	s.publish(ctx, models.ChangeEvent{Type: models.EventInsert, Table: common.EntriesTable, New: created})
	return created, nil
}

func newEntry(userID, logDate, description, category string) (*models.Entry, error) {
	d, err := civil.ParseDate(strings.TrimSpace(logDate))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", common.ErrorValidation, logDate)
	}
	// one day of slack for members east of the server
	if !timex.NotFuture(d.AddDays(-1)) {
		return nil, fmt.Errorf("%w: date cannot be in the future", common.ErrorValidation)
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", common.ErrorValidation)
	}
	if utf8.RuneCountInString(description) > common.MaxDescriptionLen {
		return nil, fmt.Errorf("%w: description is longer than %d characters", common.ErrorValidation, common.MaxDescriptionLen)
	}

	category = strings.ToLower(strings.TrimSpace(category))
	if category != "" && common.CategoryLabel(category) == "" {
		return nil, fmt.Errorf("%w: unknown category %q", common.ErrorValidation, category)
	}

	return &models.Entry{UserID: userID, LogDate: d, Description: description, Category: category}, nil
}

func (s *EntryService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Entry, error) {
	rows, err := s.repomanager.Entries(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return rows, nil
}

// ListRecent returns the newest entries of everyone. A non-positive limit
// means common.DefaultRecentLimit.
func (s *EntryService) ListRecent(ctx context.Context, limit int) ([]*models.Entry, error) {
	switch {
	case limit <= 0:
		limit = common.DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	rows, err := s.repomanager.Entries(s.db).ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return rows, nil
}

// Delete removes entry id on behalf of userID. Only the owner may delete;
// anyone else gets common.ErrForbidden.
func (s *EntryService) Delete(ctx context.Context, userID, id string) error {
	repo := s.repomanager.Entries(s.db)

	e, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error loading entry: %w", err)
	}
	if e.UserID != userID {
		return common.ErrForbidden
	}

	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting entry: %w", err)
	}

	s.publish(ctx, models.ChangeEvent{
		Type:  models.EventDelete,
		Table: common.EntriesTable,
		Old:   &models.RowKey{ID: e.ID, UserID: e.UserID},
	})
	return nil
}

// publish is best effort; the write is already committed.
func (s *EntryService) publish(ctx context.Context, ev models.ChangeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn(ctx, "change not published", "type", ev.Type, "error", err)
	}
}
