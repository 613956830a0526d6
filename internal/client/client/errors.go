package client

import (
	"errors"

	"google.golang.org/grpc/codes"

	"github.com/dmitrijs2005/worklogger/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = common.ErrorNotFound
)

// StoreError carries a server rejection. Error returns the server message
// unchanged so it can be shown to the member as is.
type StoreError struct {
	Code    codes.Code
	Message string
	kind    error
}

func (e *StoreError) Error() string { return e.Message }

func (e *StoreError) Unwrap() error { return e.kind }
