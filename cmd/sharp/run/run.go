package run

import (
	"github.com/kstonekuan/splatter-mcp-app/internal/app"
	"github.com/kstonekuan/splatter-mcp-app/internal/config"
	"github.com/kstonekuan/splatter-mcp-app/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Start the inference adapter server",
	RunE:  runApp,
}

func init() {
	flags := Cmd.Flags()

	flags.Int("port", 8881, "Port to run the server on")
	flags.String("host", "localhost", "Host to run the server on")
	flags.String("environment", "dev", "Environment configuration")
	flags.String("endpoint-url", "", "URL of the upstream prediction deployment")
	flags.Float64("timeout-seconds", config.DefaultTimeoutSeconds, "Timeout for the upstream call, in seconds")
	flags.String("allow-mock-inference", "", "Serve a placeholder artifact when no endpoint is configured (1/true/yes/on)")
	flags.String("filesystem-type", "", "Artifact archive backend: 'local' or 's3'")

	flags.String("s3-access-key", "", "S3 access key")
	flags.String("s3-secret-key", "", "S3 secret key")
	flags.String("s3-region-name", "", "S3 region name")
	flags.String("s3-bucket-name", "", "S3 bucket name")
	flags.String("s3-folder", "", "S3 folder")
	flags.String("s3-public-url", "", "Public URL for S3 files")
	flags.String("s3-endpoint-url", "", "S3 endpoint URL")

	viper.BindPFlags(flags)
	bindEnvs()
}

func bindEnvs() {
	// Core settings, e.g. SHARP_PORT
	viper.BindEnv("port")
	viper.BindEnv("host")
	viper.BindEnv("environment")
	viper.BindEnv("endpoint_url")
	viper.BindEnv("timeout_seconds")
	viper.BindEnv("allow_mock_inference")
	viper.BindEnv("filesystem_type")

	// S3 bindings, e.g. SHARP_S3_ACCESS_KEY
	viper.BindEnv("s3.access_key")
	viper.BindEnv("s3.secret_key")
	viper.BindEnv("s3.region_name")
	viper.BindEnv("s3.bucket_name")
	viper.BindEnv("s3.folder")
	viper.BindEnv("s3.public_url")
	viper.BindEnv("s3.endpoint_url")
}

func runApp(_ *cobra.Command, _ []string) error {
	app, err := app.NewApp(config.MustGetConfig(),
		app.WithFileUploader(),
		app.WithInference(),
	)
	if err != nil {
		return err
	}
	defer app.Close()

	srv, err := server.NewServer(app.Config())
	if err != nil {
		return err
	}
	srv.SetupAdapterRoutes(app)

	return srv.ServeUntilSignal(app.Context())
}
