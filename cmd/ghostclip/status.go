package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"go.klb.dev/ghostclip/internal/ipc"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what the running daemon holds",
		Long: `Asks the running ghostclip daemon for its mode, selection ownership and
the size of the cached clipboard. The daemon must have been started with
--ipc.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runStatus(cmd.OutOrStdout(), v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

func runStatus(out io.Writer, v *viper.Viper) error {
	client, done, err := dialIPC()
	if err != nil {
		return err
	}
	defer done()

	ctx, cancel := rpcContext()
	defer cancel()
	resp, err := client.Status(ctx)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	if v.GetBool("json") {
		enc, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(resp)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(enc))
		return nil
	}

	printStatus(out, resp, ipc.SocketPath(), time.Now())
	return nil
}

func printStatus(out io.Writer, resp *structpb.Struct, socket string, now time.Time) {
	f := resp.GetFields()
	str := func(k string) string { return f[k].GetStringValue() }

	w := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", str("version"))
	fmt.Fprintf(w, "Socket:\t%s\n", socket)
	fmt.Fprintf(w, "Mode:\t%s\n", str("mode"))
	fmt.Fprintf(w, "Reassemble:\t%t\n", f["reassemble"].GetBoolValue())
	fmt.Fprintf(w, "Ownership:\t%s\n", str("ownership"))
	fmt.Fprintf(w, "Cached:\t%d bytes\n", int(f["bytes"].GetNumberValue()))
	if f["transfer"].GetBoolValue() {
		fmt.Fprintf(w, "Transfer:\tin progress\n")
	}
	updated := "-"
	if t, err := time.Parse(time.RFC3339Nano, str("updated")); err == nil {
		updated = fmtAge(t, now)
	}
	fmt.Fprintf(w, "Updated:\t%s\n", updated)
	_ = w.Flush()
}
