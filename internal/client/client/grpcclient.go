package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/common"
	pb "github.com/dmitrijs2005/worklogger/internal/proto"
)

// tokenSkew is how close to expiry an access token is refreshed before a
// stream is opened.
const tokenSkew = 5 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.WorkLogServiceClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onTokens     func(refreshToken string)

	// refreshMu serializes token refreshes.
	refreshMu sync.Mutex
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	s.accessToken = access
	s.refreshToken = refresh
	fn := s.onTokens
	s.mu.Unlock()

	if fn != nil {
		fn(refresh)
	}
}

// SetTokenObserver registers fn to receive every new refresh token, so the
// session can be persisted across restarts.
func (s *GRPCClient) SetTokenObserver(fn func(refreshToken string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokens = fn
}

// refresh exchanges the refresh token for a new pair. stale is the access
// token the caller saw rejected; if another goroutine has replaced it since,
// nothing is done.
func (s *GRPCClient) refresh(ctx context.Context, stale string) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	access, refresh := s.tokens()
	if access != stale {
		return nil
	}
	if refresh == "" {
		return ErrUnauthorized
	}

	resp, err := s.client.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		return err
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, _ := s.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)

	if err != nil {

		st, ok := status.FromError(err)
		if !ok {
			return err
		}

		if st.Code() != codes.Unauthenticated {
			return err
		}
		if st.Message() != common.ErrTokenExpired.Error() {
			return err
		}

		if _, refresh := s.tokens(); refresh == "" {
			return err
		}

		if err := s.refresh(ctx, access); err != nil {
			return err
		}

		// tokens refreshed, retrying with the new access token
		access, _ = s.tokens()
		return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	}

	return nil
}

// streamAccessTokenInterceptor attaches the access token to new streams.
// Stream errors surface on Recv, so an access token about to expire is
// refreshed up front instead of retried.
func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {

	access, refresh := s.tokens()
	if refresh != "" && tokenExpiring(access, time.Now().Add(tokenSkew)) {
		if err := s.refresh(ctx, access); err != nil {
			return nil, err
		}
		access, _ = s.tokens()
	}

	return streamer(withAccessToken(ctx, access), desc, cc, method, opts...)
}

// tokenExpiring reads the exp claim without verifying the signature; the
// server remains the judge of validity.
func tokenExpiring(token string, at time.Time) bool {
	if token == "" {
		return true
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(at)
}

func NewWorkLogClientService(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewWorkLogServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Register(ctx context.Context, userName, fullName, email string, salt []byte, verifier []byte) error {

	req := &pb.RegisterUserRequest{Username: userName, FullName: fullName, Email: email, Salt: salt, Verifier: verifier}

	_, err := s.client.RegisterUser(ctx, req)
	if err != nil {
		return s.mapError(err)
	}

	return nil
}

func (s *GRPCClient) GetSalt(ctx context.Context, userName string) ([]byte, error) {

	req := &pb.GetSaltRequest{Username: userName}

	resp, err := s.client.GetSalt(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Salt, nil
}

func (s *GRPCClient) Login(ctx context.Context, userName string, verifier []byte) error {

	req := &pb.LoginRequest{Username: userName, VerifierCandidate: verifier}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// Restore resumes a session from a stored refresh token.
func (s *GRPCClient) Restore(ctx context.Context, refreshToken string) error {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = refreshToken
	s.mu.Unlock()

	if err := s.refresh(ctx, ""); err != nil {
		s.Logout()
		return s.mapError(err)
	}
	return nil
}

// Logout forgets the tokens held in memory.
func (s *GRPCClient) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*models.Identity, error) {
	resp, err := s.client.WhoAmI(ctx, &pb.WhoAmIRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Identity == nil {
		return nil, ErrUnauthorized
	}
	id := resp.Identity
	return &models.Identity{ID: id.Id, Username: id.Username, FullName: id.FullName, Email: id.Email}, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.GetStatus() != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	resp, err := s.client.GetProfile(ctx, &pb.GetProfileRequest{Id: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Profile == nil {
		return nil, ErrNotFound
	}
	return profileFromPB(resp.Profile), nil
}

func (s *GRPCClient) UpsertProfile(ctx context.Context, studyYear int) (*models.Profile, error) {
	resp, err := s.client.UpsertProfile(ctx, &pb.UpsertProfileRequest{StudyYear: int32(studyYear)})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Profile == nil {
		return nil, fmt.Errorf("upsert profile: empty response")
	}
	return profileFromPB(resp.Profile), nil
}

func (s *GRPCClient) ListByOwner(ctx context.Context, ownerID string) ([]*models.Entry, error) {
	resp, err := s.client.ListEntriesByOwner(ctx, &pb.ListEntriesByOwnerRequest{OwnerId: ownerID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return entriesFromPB(resp.Entries)
}

func (s *GRPCClient) ListRecent(ctx context.Context, limit int) ([]*models.Entry, error) {
	resp, err := s.client.ListRecentEntries(ctx, &pb.ListRecentEntriesRequest{Limit: int32(limit)})
	if err != nil {
		return nil, s.mapError(err)
	}
	return entriesFromPB(resp.Entries)
}

func (s *GRPCClient) Insert(ctx context.Context, date civil.Date, description, category string) (*models.Entry, error) {
	req := &pb.InsertEntryRequest{LogDate: date.String(), Description: description, Category: category}

	resp, err := s.client.InsertEntry(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Entry == nil {
		return nil, fmt.Errorf("insert entry: empty response")
	}
	return entryFromPB(resp.Entry)
}

func (s *GRPCClient) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteEntry(ctx, &pb.DeleteEntryRequest{Id: id})
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) GetExportUploadURL(ctx context.Context, filename string) (*UploadTarget, error) {
	resp, err := s.client.GetExportUploadURL(ctx, &pb.GetExportUploadURLRequest{Filename: filename})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &UploadTarget{Key: resp.Key, PutURL: resp.PutUrl, GetURL: resp.GetUrl}, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.PermissionDenied:
		return &StoreError{Code: st.Code(), Message: st.Message(), kind: common.ErrForbidden}
	case codes.InvalidArgument:
		return &StoreError{Code: st.Code(), Message: st.Message(), kind: common.ErrorValidation}
	default:
		return &StoreError{Code: st.Code(), Message: st.Message(), kind: common.ErrorInternal}
	}
}

func profileFromPB(p *pb.Profile) *models.Profile {
	return &models.Profile{ID: p.Id, DisplayName: p.FullName, StudyYear: int(p.StudyYear), Email: p.Email}
}

func entryFromPB(e *pb.Entry) (*models.Entry, error) {
	date, err := civil.ParseDate(e.LogDate)
	if err != nil {
		return nil, fmt.Errorf("entry %s: bad log date %q: %w", e.Id, e.LogDate, err)
	}

	out := &models.Entry{
		ID:          e.Id,
		OwnerID:     e.OwnerId,
		Date:        date,
		Description: e.Description,
		Category:    e.Category,
		CreatedAt:   time.UnixMicro(e.CreatedAt).UTC(),
	}
	if e.HasOwner {
		out.Owner = &models.OwnerDisplay{Name: e.OwnerName, StudyYear: int(e.OwnerStudyYear)}
	}
	return out, nil
}

func entriesFromPB(in []*pb.Entry) ([]*models.Entry, error) {
	out := make([]*models.Entry, 0, len(in))
	for _, e := range in {
		m, err := entryFromPB(e)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
