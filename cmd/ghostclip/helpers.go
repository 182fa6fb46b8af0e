package main

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.klb.dev/ghostclip/internal/grpcservice"
	"go.klb.dev/ghostclip/internal/ipc"
)

const rpcTimeout = 2 * time.Second

// dialIPC returns a Control client on the local IPC Unix socket.
// No auth needed: the socket is local and owner-restricted by the OS.
func dialIPC() (*grpcservice.Client, func(), error) {
	if !ipc.IsRunning() {
		return nil, nil, fmt.Errorf("no ghostclip daemon on %s (start it with --ipc)", ipc.SocketPath())
	}
	cc, err := grpc.NewClient(ipc.Target(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}
	return grpcservice.NewClient(cc), func() { _ = cc.Close() }, nil
}

func rpcContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), rpcTimeout)
}

func fmtAge(t time.Time, now time.Time) string {
	age := now.Sub(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Local().Format("15:04:05")
}
