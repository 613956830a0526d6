package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/logging"
	pb "github.com/dmitrijs2005/worklogger/internal/proto"
	"github.com/dmitrijs2005/worklogger/internal/server/auth"
)

func newTestServer() *GRPCServer {
	return NewGRPCServer("", logging.NopLogger{}, Services{}, testSecret, nil)
}

func withToken(tok string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, tok))
}

func TestInterceptor_PublicMethodsSkipAuth(t *testing.T) {
	s := newTestServer()

	for method := range publicMethods {
		called := false
		h := func(ctx context.Context, req any) (any, error) {
			called = true
			_, ok := userIDFromContext(ctx)
			assert.False(t, ok)
			return "ok", nil
		}

		resp, err := s.accessTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: method}, h)
		require.NoError(t, err, method)
		assert.True(t, called, method)
		assert.Equal(t, "ok", resp)
	}
}

func TestInterceptor_ProtectedMethod(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: pb.WorkLogService_InsertEntry_FullMethodName}

	valid, err := auth.GenerateToken("u1", []byte(testSecret), time.Hour)
	require.NoError(t, err)
	expired, err := auth.GenerateToken("u1", []byte(testSecret), -time.Second)
	require.NoError(t, err)
	foreign, err := auth.GenerateToken("u1", []byte("other"), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		ctx     context.Context
		wantMsg string
	}{
		{"no metadata", context.Background(), "missing token"},
		{"empty token", withToken(""), "missing token"},
		{"garbage", withToken("not-a-jwt"), "invalid token"},
		{"wrong secret", withToken(foreign), "invalid token"},
		{"expired", withToken(expired), "token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := func(ctx context.Context, req any) (any, error) {
				t.Fatal("handler must not run")
				return nil, nil
			}
			_, err := s.accessTokenInterceptor(tt.ctx, nil, info, h)
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, codes.Unauthenticated, st.Code())
			assert.Equal(t, tt.wantMsg, st.Message())
		})
	}

	t.Run("valid", func(t *testing.T) {
		var got string
		h := func(ctx context.Context, req any) (any, error) {
			got, _ = userIDFromContext(ctx)
			return nil, nil
		}
		_, err := s.accessTokenInterceptor(withToken(valid), nil, info, h)
		require.NoError(t, err)
		assert.Equal(t, "u1", got)
	})
}

type stubServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s stubServerStream) Context() context.Context { return s.ctx }

func TestStreamInterceptor(t *testing.T) {
	s := newTestServer()
	info := &grpc.StreamServerInfo{FullMethod: pb.WorkLogService_Subscribe_FullMethodName, IsServerStream: true}

	err := s.streamAccessTokenInterceptor(nil, stubServerStream{ctx: context.Background()}, info,
		func(any, grpc.ServerStream) error {
			t.Fatal("handler must not run")
			return nil
		})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	tok, err := auth.GenerateToken("u7", []byte(testSecret), time.Hour)
	require.NoError(t, err)

	var got string
	err = s.streamAccessTokenInterceptor(nil, stubServerStream{ctx: withToken(tok)}, info,
		func(_ any, ss grpc.ServerStream) error {
			got, _ = userIDFromContext(ss.Context())
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, "u7", got)
}
