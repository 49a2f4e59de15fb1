package cmd

import (
	"fmt"
	"os"
	"strings"

	download "github.com/kstonekuan/splatter-mcp-app/cmd/sharp/download"
	engine "github.com/kstonekuan/splatter-mcp-app/cmd/sharp/engine"
	run "github.com/kstonekuan/splatter-mcp-app/cmd/sharp/run"
	"github.com/kstonekuan/splatter-mcp-app/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "SHARP"

var Cmd = &cobra.Command{
	Use:   "sharp",
	Short: "SHARP inference orchestration service",
	Long:  "Turns a single image into a 3D gaussian-splat point cloud by orchestrating the SHARP model across GPU compute tiers",

	// Runs before this command and any subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetEnvPrefix(envPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer(
			`-`, `_`,
			`.`, `_`,
		))
		viper.AutomaticEnv()

		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		return config.LoadEnvAndConfigFiles()
	},
}

func Execute() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pflags := Cmd.PersistentFlags()

	pflags.String("sharp-home", "", "Path to the sharp home directory")
	pflags.String("config-file", "", "Path to the config file")
	pflags.String("env-file", "", "Path to the env file")

	viper.BindPFlag("sharp_home", pflags.Lookup("sharp-home"))
	viper.BindPFlag("config_file", pflags.Lookup("config-file"))
	viper.BindPFlag("env_file", pflags.Lookup("env-file"))

	Cmd.AddCommand(run.Cmd, engine.Cmd, download.Cmd)
	Cmd.CompletionOptions.HiddenDefaultCmd = true
}
