package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/logging"
	"github.com/dmitrijs2005/worklogger/internal/server/models"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/repomanager"
)

type profileInput struct {
	StudyYear int `validate:"min=1,max=5"`
}

// ProfileService reads and writes member profiles. A profile copies name
// and email from the account, only the study year is chosen by the member.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	validate    *validator.Validate
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ProfileService {
	return &ProfileService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "profiles"),
		validate:    validator.New(),
	}
}

// Get returns common.ErrorNotFound when id has not onboarded yet.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	p, err := s.repomanager.Profiles(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	return p, nil
}

// Upsert creates or updates the profile of userID.
func (s *ProfileService) Upsert(ctx context.Context, userID string, studyYear int) (*models.Profile, error) {
	if err := s.validate.Struct(profileInput{StudyYear: studyYear}); err != nil {
		return nil, fmt.Errorf("%w: study year must be between 1 and 5", common.ErrorValidation)
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	p, err := s.repomanager.Profiles(s.db).Upsert(ctx, &models.Profile{
		ID:        u.ID,
		FullName:  u.FullName,
		StudyYear: studyYear,
		Email:     u.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("error saving profile: %w", err)
	}
	s.logger.Info(ctx, "profile saved", "user_id", userID, "study_year", studyYear)
	return p, nil
}
