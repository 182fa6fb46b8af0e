package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newPasteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paste",
		Short: "Print the daemon's cached clipboard to stdout",
		Long: `Writes the clipboard content held by the running ghostclip daemon to
stdout. Nothing is printed (exit 0) when the cache is empty. The daemon must
have been started with --ipc.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error { return runPaste(cmd.OutOrStdout()) },
	}
}

func runPaste(out io.Writer) error {
	client, done, err := dialIPC()
	if err != nil {
		return err
	}
	defer done()

	ctx, cancel := rpcContext()
	defer cancel()
	body, err := client.Paste(ctx)
	if status.Code(err) == codes.NotFound {
		// Empty cache: print nothing (pbpaste behaviour).
		return nil
	}
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}

	_, err = out.Write(body.GetData())
	return err
}
