package engine

import (
	"github.com/kstonekuan/splatter-mcp-app/internal/app"
	"github.com/kstonekuan/splatter-mcp-app/internal/config"
	"github.com/kstonekuan/splatter-mcp-app/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Cmd = &cobra.Command{
	Use:   "engine",
	Short: "Start the prediction execution-unit server",
	RunE:  runEngine,
}

func init() {
	flags := Cmd.Flags()

	flags.Int("port", 8882, "Port to run the engine on")
	flags.String("host", "localhost", "Host to run the engine on")
	flags.String("environment", "dev", "Environment configuration")
	flags.String("sharp-binary", config.DefaultSharpBinary, "Path to the sharp CLI")
	flags.String("checkpoint-url", config.DefaultCheckpointUrl, "Source URL of the model checkpoint")
	flags.String("checkpoint-filename", config.DefaultCheckpointFilename, "Filename of the checkpoint in the cache")
	flags.String("cache-dir", "", "Shared checkpoint cache directory")
	flags.Int("tier-workers", config.DefaultTierWorkers, "Concurrent predictions per GPU tier")
	flags.String("filesystem-type", "", "Artifact archive backend: 'local' or 's3'")

	viper.BindPFlags(flags)
	bindEnvs()
}

func bindEnvs() {
	viper.BindEnv("port")
	viper.BindEnv("host")
	viper.BindEnv("environment")
	viper.BindEnv("sharp_binary")
	viper.BindEnv("checkpoint_url")
	viper.BindEnv("checkpoint_filename")
	viper.BindEnv("cache_dir")
	viper.BindEnv("tier_workers")
	viper.BindEnv("filesystem_type")
}

func runEngine(_ *cobra.Command, _ []string) error {
	app, err := app.NewApp(config.MustGetConfig(),
		app.WithFileUploader(),
		app.WithEngine(),
	)
	if err != nil {
		return err
	}
	defer app.Close()

	srv, err := server.NewServer(app.Config())
	if err != nil {
		return err
	}
	srv.SetupEngineRoutes(app)

	return srv.ServeUntilSignal(app.Context())
}
