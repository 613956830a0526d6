package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/worklogger/internal/client/projection"
	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/logging"
)

// ErrDeleteInFlight is returned when the same entry is already being deleted.
var ErrDeleteInFlight = errors.New("delete already in progress")

type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// DeletionService removes an entry from both views right away and then asks
// the store to delete it. If the store refuses, the rows are put back unless
// a delete notification for the entry has arrived in the meantime.
type DeletionService struct {
	store  Deleter
	views  *projection.Store
	logger logging.Logger
}

func NewDeletionService(store Deleter, views *projection.Store, logger logging.Logger) *DeletionService {
	return &DeletionService{store: store, views: views, logger: logger.With("module", "deletion")}
}

func (s *DeletionService) Delete(ctx context.Context, id string) error {
	if !s.views.BeginDelete(id) {
		return ErrDeleteInFlight
	}

	err := s.store.Delete(ctx, id)
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		s.views.CommitDelete(id)
		return nil
	}

	restored := s.views.RollbackDelete(id)
	s.logger.Warn(ctx, "delete failed", "id", id, "restored", restored, "error", err)
	return fmt.Errorf("delete entry: %w", err)
}
