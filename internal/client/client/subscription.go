package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/common"
	pb "github.com/dmitrijs2005/worklogger/internal/proto"
)

// subscriptionBuffer is how many events may queue while the consumer is
// busy, e.g. reconciling right after subscribe.
const subscriptionBuffer = 64

var errNoAck = errors.New("subscribe: stream not acknowledged")

type eventReceiver interface {
	Recv() (*pb.ChangeEvent, error)
}

type streamSubscription struct {
	cancel context.CancelFunc
	events chan models.ChangeEvent
	done   chan struct{}
	err    error
	mapErr func(error) error
}

// Subscribe opens the change feed of table. It returns once the server has
// attached the stream to the feed, so no change committed afterwards is
// missed.
func (s *GRPCClient) Subscribe(ctx context.Context, table string) (Subscription, error) {
	sctx, cancel := context.WithCancel(ctx)

	stream, err := s.client.Subscribe(sctx, &pb.SubscribeRequest{Table: table})
	if err != nil {
		cancel()
		return nil, s.mapError(err)
	}

	ack, err := stream.Recv()
	if err != nil {
		cancel()
		return nil, s.mapError(err)
	}
	if ack.Type != common.EventSubscribed {
		cancel()
		return nil, errNoAck
	}

	sub := &streamSubscription{
		cancel: cancel,
		events: make(chan models.ChangeEvent, subscriptionBuffer),
		done:   make(chan struct{}),
		mapErr: s.mapError,
	}
	go sub.pump(sctx, stream)
	return sub, nil
}

func (sub *streamSubscription) Events() <-chan models.ChangeEvent { return sub.events }

// Err is valid once Events is closed.
func (sub *streamSubscription) Err() error {
	<-sub.done
	return sub.err
}

// Close stops the feed and waits for the reader to exit.
func (sub *streamSubscription) Close() {
	sub.cancel()
	<-sub.done
}

func (sub *streamSubscription) pump(ctx context.Context, stream eventReceiver) {
	defer close(sub.done)
	defer close(sub.events)

	for {
		msg, err := stream.Recv()
		if err != nil {
			switch {
			case ctx.Err() != nil:
			case errors.Is(err, io.EOF):
				sub.err = io.ErrUnexpectedEOF
			default:
				sub.err = sub.mapErr(err)
			}
			return
		}

		ev, err := eventFromPB(msg)
		if err != nil {
			sub.err = err
			return
		}

		select {
		case sub.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func eventFromPB(msg *pb.ChangeEvent) (models.ChangeEvent, error) {
	ev := models.ChangeEvent{Type: models.ChangeType(msg.Type), Table: msg.Table}

	var err error
	switch ev.Type {
	case models.ChangeInsert:
		if msg.New == nil {
			return ev, fmt.Errorf("insert event without row")
		}
		ev.New, err = entryFromPB(msg.New)
	case models.ChangeDelete:
		if msg.Old == nil || msg.Old.Id == "" {
			return ev, fmt.Errorf("delete event without id")
		}
		// a delete carries the key only
		ev.Old = &models.Entry{ID: msg.Old.Id, OwnerID: msg.Old.OwnerId}
	default:
		return ev, fmt.Errorf("unknown event type %q", msg.Type)
	}
	return ev, err
}
