package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/annotation"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/dnaclient"
)

var logger = zap.NewNop()

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:     "agtool",
		Short:   "Genome-model predictions and variant effect scoring",
		Long:    "agtool requests genome-model predictions and variant-effect scores for DNA regions and mutations from a remote prediction backend.",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			return initLogger(verbose)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("api-key", "", "Prediction backend API key (or AGTOOL_API_KEY)")
	cmd.PersistentFlags().String("base-url", "", "Prediction backend base URL")
	viper.BindPFlag("api_key", cmd.PersistentFlags().Lookup("api-key"))
	viper.BindPFlag("base_url", cmd.PersistentFlags().Lookup("base-url"))

	cmd.AddCommand(newPredictSequenceCmd())
	cmd.AddCommand(newPredictIntervalCmd())
	cmd.AddCommand(newVariantEffectCmd())
	cmd.AddCommand(newScoreVariantCmd())
	cmd.AddCommand(newISMCmd())
	cmd.AddCommand(newOntologyCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func initConfig() error {
	// A local .env is picked up if present; absence is not an error.
	_ = godotenv.Load()

	viper.SetEnvPrefix("AGTOOL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("organism", string(dnaclient.OrganismHuman))
	viper.SetDefault("concurrency", 4)
	viper.SetDefault("batch_size", 64)

	home, err := os.UserHomeDir()
	if err != nil {
		return nil // no home directory, flags and env only
	}
	viper.SetConfigFile(filepath.Join(home, ".agtool.yaml"))
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok || os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func initLogger(verbose bool) error {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	logger = l
	return nil
}

// backendClient creates the prediction backend client from config.
func backendClient() (*dnaclient.HTTPClient, error) {
	apiKey := viper.GetString("api_key")
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured (set AGTOOL_API_KEY or run: agtool config set api_key <key>)")
	}
	return dnaclient.NewHTTPClient(viper.GetString("base_url"), apiKey, dnaclient.WithLogger(logger)), nil
}

// annotationClient creates the Ensembl gene-annotation client.
func annotationClient() *annotation.Client {
	opts := []annotation.ClientOption{annotation.WithLogger(logger)}
	if u := viper.GetString("ensembl_url"); u != "" {
		opts = append(opts, annotation.WithBaseURL(u))
	}
	return annotation.NewClient(opts...)
}

func configuredOrganism() (dnaclient.Organism, error) {
	return dnaclient.ParseOrganism(viper.GetString("organism"))
}

// defaultStorePath places the score cache next to the config file.
func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "agtool.duckdb"
	}
	return filepath.Join(home, ".agtool.duckdb")
}

// openOutput opens the CSV output destination, stdout for "-" or empty.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
