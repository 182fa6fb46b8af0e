package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/ghostclip/internal/clip"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy stdin to the clipboard (like xclip -selection clipboard)",
		Long: `Reads stdin and places it on the CLIPBOARD selection, then keeps serving
it for --hold or until another client takes the selection. With a ghostclip
daemon running the content survives this command exiting.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runCopy(cmd.InOrStdin(), v) },
	}

	cmd.Flags().Duration("hold", time.Second, "how long to keep serving the selection")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runCopy(in io.Reader, v *viper.Viper) error {
	setupLogging(v)

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	b, err := clip.New()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := clip.Hold(ctx, b, data, v.GetDuration("hold"))
	slog.Debug("copy finished", "result", r.String())
	return nil
}
