// Package grpc serves WorkLogService: accounts, profiles, work log entries,
// export upload URLs and the change feed stream.
package grpc

import (
	"context"
	"net"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"github.com/dmitrijs2005/worklogger/internal/logging"
	pb "github.com/dmitrijs2005/worklogger/internal/proto"
	"github.com/dmitrijs2005/worklogger/internal/server/models"
	"github.com/dmitrijs2005/worklogger/internal/server/notify"
	"github.com/dmitrijs2005/worklogger/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, username, fullName, email string, salt, verifier []byte) (*models.User, error)
	GetSalt(ctx context.Context, userName string) ([]byte, error)
	Login(ctx context.Context, userName string, verifierCandidate []byte) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	WhoAmI(ctx context.Context, userID string) (*models.User, error)
}

type ProfileService interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	Upsert(ctx context.Context, userID string, studyYear int) (*models.Profile, error)
}

type EntryService interface {
	Insert(ctx context.Context, userID string, logDate, description, category string) (*models.Entry, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Entry, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Entry, error)
	Delete(ctx context.Context, userID, id string) error
}

type ExportService interface {
	UploadURL(ctx context.Context, userID, filename string) (*services.UploadTarget, error)
}

// Feed hands out change feed subscriptions.
type Feed interface {
	Subscribe(table string) *notify.Subscription
}

// Services groups what the handlers dispatch to.
type Services struct {
	Users    UserService
	Profiles ProfileService
	Entries  EntryService
	Exports  ExportService
	Feed     Feed
}

type GRPCServer struct {
	pb.UnimplementedWorkLogServiceServer
	address   string
	users     UserService
	profiles  ProfileService
	entries   EntryService
	exports   ExportService
	feed      Feed
	logger    logging.Logger
	jwtSecret []byte
	metrics   *Metrics

	quit     chan struct{}
	quitOnce sync.Once
}

// NewGRPCServer builds the server. reg may be nil to skip metric
// registration.
func NewGRPCServer(address string, l logging.Logger, svc Services, secretKey string, reg prometheus.Registerer) *GRPCServer {
	return &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		users:     svc.Users,
		profiles:  svc.Profiles,
		entries:   svc.Entries,
		exports:   svc.Exports,
		feed:      svc.Feed,
		jwtSecret: []byte(secretKey),
		metrics:   NewMetrics(reg),
		quit:      make(chan struct{}),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamMetricsInterceptor, s.streamAccessTokenInterceptor),
	)
	pb.RegisterWorkLogServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
// Open Subscribe streams are ended first so the stop does not wait on them.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.quitOnce.Do(func() { close(s.quit) })
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
