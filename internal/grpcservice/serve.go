package grpcservice

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/soheilhy/cmux"
	"google.golang.org/grpc"
)

// Serve answers gRPC and HTTP/1.1 on ln until ctx is done or the listener
// fails. ln is closed on return. A clean shutdown returns nil.
func Serve(ctx context.Context, ln net.Listener, svc ControlServer) error {
	m := cmux.New(ln)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.HTTP1Fast())

	gs := grpc.NewServer()
	Register(gs, svc)
	hs := &http.Server{Handler: NewGateway(svc), ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 3)
	go func() { errc <- gs.Serve(grpcL) }()
	go func() { errc <- hs.Serve(httpL) }()
	go func() { errc <- m.Serve() }()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errc:
	}

	gs.Stop()
	_ = hs.Close()
	_ = ln.Close()

	if err == nil || closedErr(err) {
		slog.Debug("control socket stopped", "addr", ln.Addr())
		return nil
	}
	return err
}

func closedErr(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, cmux.ErrListenerClosed) ||
		errors.Is(err, http.ErrServerClosed) ||
		errors.Is(err, grpc.ErrServerStopped)
}
