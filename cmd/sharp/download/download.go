package download

import (
	"fmt"

	"github.com/kstonekuan/splatter-mcp-app/internal/config"
	"github.com/kstonekuan/splatter-mcp-app/internal/services/checkpoint"
	"github.com/kstonekuan/splatter-mcp-app/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Cmd = &cobra.Command{
	Use:   "download",
	Short: "Pre-provision the model checkpoint into the cache",
	RunE:  runDownload,
}

func init() {
	flags := Cmd.Flags()

	flags.String("checkpoint-url", config.DefaultCheckpointUrl, "Source URL of the model checkpoint")
	flags.String("checkpoint-filename", config.DefaultCheckpointFilename, "Filename of the checkpoint in the cache")
	flags.String("cache-dir", "", "Shared checkpoint cache directory")

	viper.BindPFlags(flags)
	viper.BindEnv("checkpoint_url")
	viper.BindEnv("checkpoint_filename")
	viper.BindEnv("cache_dir")
}

func runDownload(cmd *cobra.Command, _ []string) error {
	cfg := config.MustGetConfig()

	log, err := logger.InitLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	provisioner := checkpoint.NewProvisioner(cfg, log, checkpoint.WithProgress())
	path, err := provisioner.Ensure(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Checkpoint available at %s\n", path)
	return nil
}
