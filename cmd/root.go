package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/pano360/internal/logging"
	"github.com/kiesman99/pano360/internal/pipeline"
	"github.com/kiesman99/pano360/internal/projector"
	"github.com/kiesman99/pano360/internal/publish"
	"github.com/kiesman99/pano360/internal/stitcher"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
// Invoked bare it runs the batch stitcher over a folder of images.
var rootCmd = &cobra.Command{
	Use:   "pano360",
	Short: "Stitch overlapping photos into a 360° equirectangular panorama",
	Long: `pano360 stitches a set of overlapping photographs into a single
360° equirectangular panorama.

Run without a subcommand it reads every JPEG/PNG in a folder (default:
Images), stitches them, projects the result onto an equirectangular
canvas and writes both the final image and the intermediate flat
panorama back into the folder.

Examples:
  # Stitch the Images folder in place
  pano360

  # Stitch another folder at a custom output size
  pano360 --folder shoots/rooftop --width 4096 --height 2048

  # Start the HTTP API
  pano360 serve --port 8080`,
	RunE: runBatch,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pano360.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text|json)")

	// Output options shared by the batch command and the server
	rootCmd.PersistentFlags().Int("width", 2048, "equirectangular output width")
	rootCmd.PersistentFlags().Int("height", 1024, "equirectangular output height")
	rootCmd.PersistentFlags().IntP("quality", "q", 95, "JPEG quality for output files")

	// Batch options
	rootCmd.Flags().StringP("folder", "f", "Images", "folder of input images")

	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("width", rootCmd.PersistentFlags().Lookup("width"))
	viper.BindPFlag("height", rootCmd.PersistentFlags().Lookup("height"))
	viper.BindPFlag("quality", rootCmd.PersistentFlags().Lookup("quality"))
	viper.BindPFlag("folder", rootCmd.Flags().Lookup("folder"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pano360" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pano360")
	}

	viper.SetEnvPrefix("PANO360")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func initLogging() {
	slog.SetDefault(logging.New(viper.GetString("log-level"), viper.GetString("log-format")))
}

// newPipeline assembles the production pipeline from viper settings.
func newPipeline() *pipeline.Pipeline {
	projection := projector.Config{
		Width:  viper.GetInt("width"),
		Height: viper.GetInt("height"),
	}
	if projection.Width <= 0 || projection.Height <= 0 {
		projection = projector.DefaultConfig()
	}

	return pipeline.New(
		stitcher.NewOpenCVEngine(),
		projection,
		publish.New(viper.GetInt("quality")),
	)
}

// runBatch is the batch tool: stitch a folder, write the equirectangular
// result and the intermediate panorama back into it.
func runBatch(cmd *cobra.Command, args []string) error {
	folder := viper.GetString("folder")
	p := newPipeline()

	result, err := p.RunDirectory(cmd.Context(), folder)
	if err != nil {
		return fmt.Errorf("stitching %s: %w", folder, err)
	}

	// Primary output: a failed write is fatal.
	outPath := filepath.Join(folder, "stitched_output.jpg")
	if err := p.Publisher().Persist(outPath, result.JPEG); err != nil {
		return err
	}

	// Secondary output: the flat panorama is a nice-to-have; report and
	// keep the exit status clean.
	panoPath := filepath.Join(folder, "panorama.jpg")
	if err := p.Publisher().PersistImage(panoPath, result.Panorama); err != nil {
		slog.Warn("saving intermediate panorama failed", "error", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved stitched image to: %s\n", outPath)
	return nil
}
