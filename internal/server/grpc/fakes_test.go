package grpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/logging"
	pb "github.com/dmitrijs2005/worklogger/internal/proto"
	"github.com/dmitrijs2005/worklogger/internal/server/auth"
	"github.com/dmitrijs2005/worklogger/internal/server/models"
	"github.com/dmitrijs2005/worklogger/internal/server/notify"
	"github.com/dmitrijs2005/worklogger/internal/server/services"
)

const testSecret = "secret"

var errBoom = errors.New("boom")

type fakeUsers struct {
	registered *models.User
	err        error
	salt       []byte
	pair       *services.TokenPair
	refreshed  string
	me         *models.User
}

func (f *fakeUsers) Register(_ context.Context, username, fullName, email string, salt, verifier []byte) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.registered = &models.User{ID: "u-new", UserName: username, FullName: fullName, Email: email, Salt: salt, Verifier: verifier}
	return f.registered, nil
}

func (f *fakeUsers) GetSalt(context.Context, string) ([]byte, error) { return f.salt, f.err }

func (f *fakeUsers) Login(context.Context, string, []byte) (*services.TokenPair, error) {
	return f.pair, f.err
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (*services.TokenPair, error) {
	f.refreshed = token
	return f.pair, f.err
}

func (f *fakeUsers) WhoAmI(context.Context, string) (*models.User, error) { return f.me, f.err }

type fakeProfiles struct {
	gotID   string
	profile *models.Profile
	err     error
}

func (f *fakeProfiles) Get(_ context.Context, id string) (*models.Profile, error) {
	f.gotID = id
	return f.profile, f.err
}

func (f *fakeProfiles) Upsert(_ context.Context, userID string, year int) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Profile{ID: userID, StudyYear: year}, nil
}

type fakeEntries struct {
	mu       sync.Mutex
	rows     []*models.Entry
	err      error
	owner    string
	limit    int
	deleted  []string
	insertBy string
}

func (f *fakeEntries) Insert(_ context.Context, userID string, logDate, description, category string) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	d, err := civil.ParseDate(logDate)
	if err != nil {
		return nil, err
	}
	f.insertBy = userID
	return &models.Entry{ID: "e-new", UserID: userID, LogDate: d, Description: description, Category: category}, nil
}

func (f *fakeEntries) ListByOwner(_ context.Context, ownerID string) ([]*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owner = ownerID
	return f.rows, f.err
}

func (f *fakeEntries) ListRecent(_ context.Context, limit int) ([]*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit = limit
	return f.rows, f.err
}

func (f *fakeEntries) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, userID+"/"+id)
	return nil
}

type fakeExports struct {
	target *services.UploadTarget
	err    error
}

func (f *fakeExports) UploadURL(context.Context, string, string) (*services.UploadTarget, error) {
	return f.target, f.err
}

type harness struct {
	client   pb.WorkLogServiceClient
	broker   *notify.Broker
	users    *fakeUsers
	profiles *fakeProfiles
	entries  *fakeEntries
	exports  *fakeExports
	server   *GRPCServer
}

// startServer serves a GRPCServer over bufconn until the test ends.
func startServer(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		broker:   notify.NewBroker(logging.NopLogger{}, nil),
		users:    &fakeUsers{},
		profiles: &fakeProfiles{},
		entries:  &fakeEntries{},
		exports:  &fakeExports{},
	}
	h.server = NewGRPCServer("bufnet", logging.NopLogger{}, Services{
		Users:    h.users,
		Profiles: h.profiles,
		Entries:  h.entries,
		Exports:  h.exports,
		Feed:     h.broker,
	}, testSecret, prometheus.NewRegistry())

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.server.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	h.client = pb.NewWorkLogServiceClient(conn)
	return h
}

func authed(t *testing.T, userID string) context.Context {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, tok)
}
