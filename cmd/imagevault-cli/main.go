package main

import (
	"os"

	"github.com/sagarc03/imagevault/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile     string
	server      string
	ownerFlag   string
	profileName string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "imagevault-cli",
	Version: version,
	Short:   "Client for the imagevault object store",
	Long: `Imagevault CLI - client for the imagevault owned-file object store.

Every object on the server belongs to an owner; upload, download, and
delete act as the owner given by --owner, the IMAGEVAULT_OWNER
environment variable, or the active profile.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.imagevault/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "server URL (default: http://localhost:5790, env: IMAGEVAULT_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&ownerFlag, "owner", "o", "", "owner to act as (env: IMAGEVAULT_OWNER)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use (env: IMAGEVAULT_PROFILE)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(transferCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig merges config from file, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	// 1. Load from config file
	configPath := cfgFile
	if configPath == "" {
		configPath = clientcli.DefaultConfigPath()
	}

	if configPath != "" {
		fileCfg, err := loadProfileConfig(configPath)
		if err != nil {
			// Only error if user explicitly specified a config file
			if cfgFile != "" {
				return nil, err
			}
		} else {
			configs = append(configs, fileCfg)
		}
	}

	// 2. Load from environment variables
	configs = append(configs, clientcli.ConfigFromEnv())

	// 3. Load from flags
	configs = append(configs, &clientcli.Config{
		Endpoint: server,
		Owner:    ownerFlag,
	})

	return clientcli.MergeConfig(configs...), nil
}

func loadProfileConfig(configPath string) (*clientcli.Config, error) {
	file, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	name := profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	profile, err := file.GetProfile(name)
	if err != nil {
		return nil, err
	}

	return clientcli.ConfigFromProfile(profile), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}
