package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/ghostclip/internal/grpcservice"
	"go.klb.dev/ghostclip/internal/ipc"
	"go.klb.dev/ghostclip/internal/keeper"
	"go.klb.dev/ghostclip/internal/xconn"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "ghostclip",
		Short: "Keep the X11 clipboard alive after its owner exits",
		Long: `ghostclip copies every new CLIPBOARD value into memory and takes the
selection over when the application that set it goes away, so the content
stays pasteable.

Reactive mode (default) watches owner changes through the XFIXES extension
and only takes ownership once the selection has been left unowned. Intrusive
mode (-i) needs no extension: it takes ownership right after copying.

Config file search order (first found wins):
  /etc/ghostclip/ghostclip.toml
  $HOME/.config/ghostclip/ghostclip.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → GHOSTCLIP_* env vars → flags`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE:      func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:         func(_ *cobra.Command, _ []string) error { return runDaemon(v) },
	}

	f := cmd.Flags()
	f.BoolP("intrusive", "i", false, "take ownership right after copying instead of waiting for the owner to leave")
	f.String("display", "", "X display to connect to (default $DISPLAY)")
	f.Bool("reassemble", false, "reassemble large (INCR) transfers (when unset: on in reactive mode, off in intrusive mode)")
	f.Bool("ipc", false, "serve status and paste on the local control socket")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(v *viper.Viper) error {
	setupLogging(v)
	cfg := loadDaemonConfig(v)
	opts := cfg.Keeper

	slog.Info("ghostclip starting",
		"version", Version,
		"mode", opts.Mode(),
		"reassemble", opts.Reassemble,
	)

	conn, err := xconn.Dial(cfg.Display)
	if err != nil {
		return err
	}
	defer conn.Close()

	atoms, err := keeper.ResolveAtoms(conn)
	if err != nil {
		return fmt.Errorf("atoms: %w", err)
	}
	if !opts.Intrusive {
		if err := conn.WatchSelection(atoms.Clipboard); err != nil {
			return fmt.Errorf("reactive mode needs XFIXES (try --intrusive): %w", err)
		}
	}

	k := keeper.New(conn, atoms, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	if cfg.IPC {
		startControl(ctx, k)
	}

	err = k.Run()
	if errors.Is(err, xconn.ErrClosed) && ctx.Err() != nil {
		slog.Info("ghostclip stopped")
		return nil
	}
	return err
}

func startControl(ctx context.Context, k *keeper.Keeper) {
	ln, err := ipc.Listen()
	if err != nil {
		slog.Warn("control socket unavailable", "err", err)
		return
	}
	slog.Info("control socket listening", "path", ipc.SocketPath())
	go func() {
		if err := grpcservice.Serve(ctx, ln, grpcservice.New(k, Version)); err != nil {
			slog.Warn("control socket failed", "err", err)
		}
	}()
}
