// Command anylist is a CLI client for the AnyList service.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lunarhue/anylist"
)

var rootCmd = &cobra.Command{
	Use:   "anylist",
	Short: "Manage AnyList shopping lists, recipes and meal plans",
	Long: `A command line client for the AnyList service.

Credentials come from flags, the ANYLIST_EMAIL/ANYLIST_PASSWORD
environment variables, or a config file at ~/.config/anylist/config.yaml.
The session token bundle is cached encrypted next to the config file so
repeated invocations skip the password exchange.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("email", "", "account email")
	rootCmd.PersistentFlags().String("password", "", "account password")
	rootCmd.PersistentFlags().String("base-url", anylist.DefaultBaseURL, "service base URL")
	rootCmd.PersistentFlags().String("credentials", defaultCredentialsPath(), "encrypted token cache file (empty disables caching)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log protocol activity to stderr")

	for _, name := range []string{"email", "password", "base-url", "credentials", "verbose"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("anylist")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.AddConfigPath(configDir())
	// A missing config file is fine; flags and env cover everything.
	_ = viper.ReadInConfig()
}

func configDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "anylist")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "anylist")
}

func defaultCredentialsPath() string {
	return filepath.Join(configDir(), "credentials")
}

// newClient builds a client from the resolved configuration and logs in.
func newClient(cmd *cobra.Command) (*anylist.Client, error) {
	email := viper.GetString("email")
	password := viper.GetString("password")
	if email == "" || password == "" {
		return nil, errors.New("email and password are required (flags, ANYLIST_EMAIL/ANYLIST_PASSWORD, or config file)")
	}

	logger := zap.NewNop()
	if viper.GetBool("verbose") {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		logger = l
	}

	if path := viper.GetString("credentials"); path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0o700)
	}
	client, err := anylist.New(anylist.Options{
		Email:           email,
		Password:        password,
		BaseURL:         viper.GetString("base-url"),
		CredentialsPath: viper.GetString("credentials"),
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	if err := client.Login(cmd.Context()); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return client, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
