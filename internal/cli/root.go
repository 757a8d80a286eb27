package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configPath string
	port       string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quizlive",
		Short: "Real-time multiplayer quiz engine and gateway",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to YAML config (env: QUIZLIVE_CONFIG)")
	cmd.PersistentFlags().StringVar(&port, "port", "", "gateway port, overrides config (env: QUIZLIVE_PORT)")

	v := viper.New()
	v.SetEnvPrefix("QUIZLIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	cmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = cmd.PersistentFlags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(NewGatewayCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}
