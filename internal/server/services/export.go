package services

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/logging"
	sc "github.com/dmitrijs2005/worklogger/internal/server/config"
	"github.com/dmitrijs2005/worklogger/internal/server/models"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/repomanager"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	now = time.Now
)

// UploadTarget is where a client puts an export file and where it can be
// fetched from afterwards.
type UploadTarget struct {
	Key    string
	PutURL string
	GetURL string
}

// ExportService hands out presigned object storage URLs for export files.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config, logger logging.Logger) *ExportService {
	return &ExportService{
		db:          db,
		repomanager: m,
		config:      config,
		logger:      logger.With("module", "exports"),
	}
}

// StorageKey is exports/<user>/<yyyy>/<mm>/<dd>/<uuid>/<filename>.
func StorageKey(userID, filename string) string {
	d := now().UTC()
	return path.Join("exports", userID,
		fmt.Sprintf("%04d/%02d/%02d", d.Year(), d.Month(), d.Day()),
		uuid.NewString(), filename)
}

func (s *ExportService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// UploadURL records an export of filename for userID and presigns a PUT and
// a GET for it.
func (s *ExportService) UploadURL(ctx context.Context, userID, filename string) (*UploadTarget, error) {
	filename = path.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == "/" {
		return nil, fmt.Errorf("%w: filename is required", common.ErrorValidation)
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error configuring storage: %w", err)
	}

	bucket := s.config.S3Bucket
	key := StorageKey(userID, filename)
	ttl := s.config.ExportURLValidityDuration
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	put, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	get, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("error presigning download: %w", err)
	}

	if err := s.repomanager.Exports(s.db).Create(ctx, &models.Export{
		UserID:     userID,
		Filename:   filename,
		StorageKey: key,
	}); err != nil {
		return nil, fmt.Errorf("error recording export: %w", err)
	}

	s.logger.Info(ctx, "export upload issued", "user_id", userID, "key", key)
	return &UploadTarget{Key: key, PutURL: put.URL, GetURL: get.URL}, nil
}
