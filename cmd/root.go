package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/roessland/nikeplus/np"
	"github.com/roessland/nikeplus/pkg/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	envFile  string
	jsonMode bool
)

var rootCmd = &cobra.Command{
	Use:   "nikeplus",
	Short: "A client for the Nike+ API",
	Long: `Nikeplus talks to the Nike+ API through OAuth2: log in, list and inspect
sport activities, record new ones and export everything to disk.

It can also host the login flow and a small JSON API with 'nikeplus serve'.`,
	SilenceUsage: true,
}

// getConfigValue returns the flag value if non-empty, otherwise returns the viper config value
func getConfigValue(flagValue, viperKey string) string {
	if flagValue != "" {
		return flagValue
	}
	return viper.GetString(viperKey)
}

// newOutput creates the output logger for a command run
func newOutput() (*output.OutputLogger, error) {
	ol, err := output.New(jsonMode)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return ol, nil
}

// newClient builds the Nike+ client from the current configuration
func newClient(ol *output.OutputLogger) (*np.Client, error) {
	return np.Setup(np.Config{
		ClientID:     viper.GetString("client_id"),
		ClientSecret: viper.GetString("client_secret"),
		Callback:     viper.GetString("callback"),
		BaseURL:      viper.GetString("base_url"),
		Backend:      viper.GetString("backend"),
		SessionPath:  viper.GetString("session_path"),
	}, ol.Component("nike"))
}

// showFailure reports err to the user unless it was already presented
func showFailure(ol *output.OutputLogger, err error, msg string) error {
	if !errors.Is(err, np.ErrLoginRequired) {
		ol.LogAndShowError(err, "%s", msg)
	}
	return err
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Viper defaults
	viper.SetDefault("callback", "http://localhost:8080/callback")
	viper.SetDefault("backend", "session")
	viper.SetDefault("session_path", "~/.nikeplus/session.json")
	viper.SetDefault("save_dir", "~/.nikeplus/activities")
	viper.SetDefault("addr", defaultServeAddr)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.nikeplus/nikeplus.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file first")
	rootCmd.PersistentFlags().BoolVar(&jsonMode, "json", false, "Output structured JSON instead of interactive mode")
	rootCmd.PersistentFlags().String("session-path", "", "Path to the session file (default: ~/.nikeplus/session.json)")
	viper.BindPFlag("session_path", rootCmd.PersistentFlags().Lookup("session-path"))

	// Bind environment variables
	viper.BindEnv("client_id", "NIKEPLUS_CLIENT_ID")
	viper.BindEnv("client_secret", "NIKEPLUS_CLIENT_SECRET")
	viper.BindEnv("callback", "NIKEPLUS_CALLBACK")
	viper.BindEnv("base_url", "NIKEPLUS_BASE_URL")
	viper.BindEnv("backend", "NIKEPLUS_BACKEND")
	viper.BindEnv("session_path", "NIKEPLUS_SESSION_PATH")
	viper.BindEnv("save_dir", "NIKEPLUS_SAVE_DIR")
	viper.BindEnv("addr", "NIKEPLUS_ADDR")
}

func initConfig() {
	if envFile == "" {
		envFile = os.Getenv("NIKEPLUS_ENV_FILE")
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load env file %s: %v\n", envFile, err)
			os.Exit(1)
		}
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in ~/.nikeplus/ directory with name "nikeplus" (without extension).
		viper.AddConfigPath(filepath.Join(home, ".nikeplus"))
		viper.SetConfigName("nikeplus")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in silently (logging is via LOG_LEVEL env var)
	viper.ReadInConfig()
}
