package grpcservice

import (
	"context"
	"net/http"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
)

// HTTP routes served next to the gRPC service.
const (
	StatusPath    = "/v1/status"
	ClipboardPath = "/v1/clipboard"
)

// NewGateway returns an HTTP mux exposing svc as JSON (status) and raw text
// (clipboard). gRPC status codes map to HTTP codes the usual gateway way,
// so an empty cache is a 404.
func NewGateway(svc ControlServer) *gwruntime.ServeMux {
	mux := gwruntime.NewServeMux(
		gwruntime.WithMarshalerOption(gwruntime.MIMEWildcard, &gwruntime.HTTPBodyMarshaler{
			Marshaler: &gwruntime.JSONPb{
				MarshalOptions:   protojson.MarshalOptions{EmitUnpopulated: true},
				UnmarshalOptions: protojson.UnmarshalOptions{DiscardUnknown: true},
			},
		}),
	)
	handle(mux, StatusPath, func(ctx context.Context) (proto.Message, error) {
		return svc.Status(ctx, &emptypb.Empty{})
	})
	handle(mux, ClipboardPath, func(ctx context.Context) (proto.Message, error) {
		return svc.Paste(ctx, &emptypb.Empty{})
	})
	return mux
}

func handle(mux *gwruntime.ServeMux, path string, call func(context.Context) (proto.Message, error)) {
	// HandlePath only fails on a malformed pattern.
	if err := mux.HandlePath(http.MethodGet, path, func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		ctx := gwruntime.NewServerMetadataContext(r.Context(), gwruntime.ServerMetadata{})
		_, outbound := gwruntime.MarshalerForRequest(mux, r)
		resp, err := call(ctx)
		if err != nil {
			gwruntime.HTTPError(ctx, mux, outbound, w, r, err)
			return
		}
		gwruntime.ForwardResponseMessage(ctx, mux, outbound, w, r, resp)
	}); err != nil {
		panic(err)
	}
}
