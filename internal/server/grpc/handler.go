package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/worklogger/internal/common"
	pb "github.com/dmitrijs2005/worklogger/internal/proto"
	"github.com/dmitrijs2005/worklogger/internal/server/models"
)

// toStatus maps a service error onto the status code clients branch on.
// Internal failures are logged and reported without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) caller(ctx context.Context) (string, error) {
	id, ok := userIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return id, nil
}

func toPBEntry(e *models.Entry) *pb.Entry {
	out := &pb.Entry{
		Id:          e.ID,
		OwnerId:     e.UserID,
		LogDate:     e.LogDate.String(),
		Description: e.Description,
		Category:    e.Category,
		CreatedAt:   e.CreatedAt.UnixMicro(),
	}
	if e.Owner != nil {
		out.HasOwner = true
		out.OwnerName = e.Owner.FullName
		out.OwnerStudyYear = int32(e.Owner.StudyYear)
	}
	return out
}

func toPBEntries(in []*models.Entry) []*pb.Entry {
	out := make([]*pb.Entry, 0, len(in))
	for _, e := range in {
		out = append(out, toPBEntry(e))
	}
	return out
}

func toPBProfile(p *models.Profile) *pb.Profile {
	return &pb.Profile{Id: p.ID, FullName: p.FullName, StudyYear: int32(p.StudyYear), Email: p.Email}
}

func toPBEvent(ev models.ChangeEvent) *pb.ChangeEvent {
	out := &pb.ChangeEvent{Type: ev.Type, Table: ev.Table}
	if ev.New != nil {
		out.New = toPBEntry(ev.New)
	}
	if ev.Old != nil {
		out.Old = &pb.Entry{Id: ev.Old.ID, OwnerId: ev.Old.UserID}
	}
	return out
}

func (s *GRPCServer) RegisterUser(ctx context.Context, req *pb.RegisterUserRequest) (*pb.RegisterUserResponse, error) {

	s.logger.Info(ctx, "Registration request", "username", req.Username)

	result, err := s.users.Register(ctx, req.Username, req.FullName, req.Email, req.Salt, req.Verifier)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "username", req.Username, "id", result.ID)
	return &pb.RegisterUserResponse{UserId: result.ID}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *pb.GetSaltRequest) (*pb.GetSaltResponse, error) {
	result, err := s.users.GetSalt(ctx, req.Username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.GetSaltResponse{Salt: result}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	tokens, err := s.users.Login(ctx, req.Username, req.VerifierCandidate)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.LoginResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.RefreshTokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *pb.WhoAmIRequest) (*pb.WhoAmIResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.WhoAmI(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.WhoAmIResponse{Identity: &pb.Identity{Id: u.ID, Username: u.UserName, FullName: u.FullName, Email: u.Email}}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *pb.GetProfileRequest) (*pb.GetProfileResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	id := req.Id
	if id == "" {
		id = userID
	}
	p, err := s.profiles.Get(ctx, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.GetProfileResponse{Profile: toPBProfile(p)}, nil
}

func (s *GRPCServer) UpsertProfile(ctx context.Context, req *pb.UpsertProfileRequest) (*pb.UpsertProfileResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.Upsert(ctx, userID, int(req.StudyYear))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.UpsertProfileResponse{Profile: toPBProfile(p)}, nil
}

func (s *GRPCServer) ListEntriesByOwner(ctx context.Context, req *pb.ListEntriesByOwnerRequest) (*pb.ListEntriesResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	owner := req.OwnerId
	if owner == "" {
		owner = userID
	}
	entries, err := s.entries.ListByOwner(ctx, owner)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.ListEntriesResponse{Entries: toPBEntries(entries)}, nil
}

func (s *GRPCServer) ListRecentEntries(ctx context.Context, req *pb.ListRecentEntriesRequest) (*pb.ListEntriesResponse, error) {
	if _, err := s.caller(ctx); err != nil {
		return nil, err
	}
	entries, err := s.entries.ListRecent(ctx, int(req.Limit))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.ListEntriesResponse{Entries: toPBEntries(entries)}, nil
}

func (s *GRPCServer) InsertEntry(ctx context.Context, req *pb.InsertEntryRequest) (*pb.InsertEntryResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.entries.Insert(ctx, userID, req.LogDate, req.Description, req.Category)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.InsertEntryResponse{Entry: toPBEntry(e)}, nil
}

func (s *GRPCServer) DeleteEntry(ctx context.Context, req *pb.DeleteEntryRequest) (*pb.DeleteEntryResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.entries.Delete(ctx, userID, req.Id); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.DeleteEntryResponse{}, nil
}

func (s *GRPCServer) GetExportUploadURL(ctx context.Context, req *pb.GetExportUploadURLRequest) (*pb.GetExportUploadURLResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.exports.UploadURL(ctx, userID, req.Filename)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.GetExportUploadURLResponse{Key: t.Key, PutUrl: t.PutURL, GetUrl: t.GetURL}, nil
}

// Subscribe acknowledges the subscription once it is attached to the feed,
// then streams the table's changes. When the feed drops the subscription
// the stream fails with Unavailable and the client resubscribes.
func (s *GRPCServer) Subscribe(req *pb.SubscribeRequest, stream grpc.ServerStreamingServer[pb.ChangeEvent]) error {
	ctx := stream.Context()

	table := req.Table
	if table == "" {
		table = common.EntriesTable
	}
	if table != common.EntriesTable {
		return status.Errorf(codes.InvalidArgument, "unknown table %q", req.Table)
	}

	sub := s.feed.Subscribe(table)
	defer sub.Close()

	if err := stream.Send(&pb.ChangeEvent{Type: common.EventSubscribed, Table: table}); err != nil {
		return err
	}
	s.logger.Debug(ctx, "subscribed", "table", table)

	for {
		select {
		case <-ctx.Done():
			return status.FromContextError(ctx.Err()).Err()
		case <-s.quit:
			return status.Error(codes.Unavailable, "server shutting down")
		case ev, ok := <-sub.Events():
			if !ok {
				return status.Error(codes.Unavailable, "change feed reset")
			}
			if err := stream.Send(toPBEvent(ev)); err != nil {
				return err
			}
		}
	}
}
