package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/ghostclip/internal/keeper"
	"go.klb.dev/ghostclip/internal/logging"
)

// daemonConfig is the resolved configuration of the root command.
type daemonConfig struct {
	Display string
	IPC     bool
	Keeper  keeper.Options
}

// loadDaemonConfig reads the daemon settings out of a bound viper. Large
// transfers are reassembled in reactive mode and discarded in intrusive mode
// unless reassemble was set explicitly (flag, env or config file).
func loadDaemonConfig(v *viper.Viper) daemonConfig {
	cfg := daemonConfig{
		Display: v.GetString("display"),
		IPC:     v.GetBool("ipc"),
		Keeper:  keeper.Options{Intrusive: v.GetBool("intrusive")},
	}
	if v.IsSet("reassemble") {
		cfg.Keeper.Reassemble = v.GetBool("reassemble")
	} else {
		cfg.Keeper.Reassemble = !cfg.Keeper.Intrusive
	}
	return cfg
}

// bindViper loads ghostclip.toml (from --config, /etc/ghostclip or
// ~/.config/ghostclip), GHOSTCLIP_* env vars and cmd's flags into v. A
// missing config file is fine; a broken one is an error.
//
// Precedence (lowest → highest): defaults → config file → GHOSTCLIP_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("ghostclip")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/ghostclip/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/ghostclip", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("GHOSTCLIP")
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	resolveLogging(interactive, v.GetString("log-format"), v.GetString("log-level"))
}
