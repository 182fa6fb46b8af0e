// Package grpcservice implements the ghostclip Control service: a read-only
// view of a running keeper, served as gRPC and as HTTP/JSON on the local
// IPC socket.
//
// There is no generated code. Requests and responses are protobuf
// well-known types (Empty, Struct, HttpBody) and the service descriptor is
// declared by hand in desc.go.
package grpcservice

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"go.klb.dev/ghostclip/internal/keeper"
)

// TextContentType is the content type of pasted clipboard data.
const TextContentType = "text/plain; charset=utf-8"

// Source is what the service reports on. *keeper.Keeper satisfies it.
type Source interface {
	Status() keeper.Status
	Contents() []byte
}

// Service implements the Control service.
type Service struct {
	src     Source
	version string
}

// New returns a Service reporting on src.
func New(src Source, version string) *Service {
	return &Service{src: src, version: version}
}

// Status implements Control.Status.
func (s *Service) Status(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.src.Status()
	fields := map[string]any{
		"version":    s.version,
		"mode":       st.Mode,
		"ownership":  st.Ownership.String(),
		"bytes":      st.Bytes,
		"transfer":   st.Transfer,
		"reassemble": st.Reassemble,
	}
	if !st.Updated.IsZero() {
		fields["updated"] = st.Updated.UTC().Format(time.RFC3339Nano)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "status: %v", err)
	}
	return out, nil
}

// Paste implements Control.Paste. An empty cache is NotFound.
func (s *Service) Paste(_ context.Context, _ *emptypb.Empty) (*httpbody.HttpBody, error) {
	data := s.src.Contents()
	if len(data) == 0 {
		return nil, status.Error(codes.NotFound, "clipboard cache is empty")
	}
	slog.Debug("ipc: clipboard pasted", "bytes", len(data))
	return &httpbody.HttpBody{ContentType: TextContentType, Data: data}, nil
}
