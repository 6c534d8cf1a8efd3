package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ConfigCmd creates the config command for the per-user config.yaml.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the client configuration file",
	}

	var apiKey, apiURL string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API URL and key in config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadGlobalConfig()
			if err != nil {
				return err
			}
			if config == nil {
				config = &GlobalConfig{}
			}
			if cmd.Flags().Changed("key") {
				config.APIKey = apiKey
			}
			if cmd.Flags().Changed("url") {
				config.APIURL = apiURL
			}
			if err := SaveGlobalConfig(config); err != nil {
				return err
			}
			path, _ := GetConfigPath()
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}
	setCmd.Flags().StringVar(&apiKey, "key", "", "API key")
	setCmd.Flags().StringVar(&apiURL, "url", "", "API base URL")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved settings and where they came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flagKey, _ := cmd.Flags().GetString("api-key")
			flagURL, _ := cmd.Flags().GetString("api-url")
			settings, err := ResolveSettings(flagKey, flagURL)
			if err != nil {
				return err
			}
			key := "(none)"
			if settings.APIKey != "" {
				key = maskKey(settings.APIKey)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "api_url: %s (%s)\n", settings.APIURL, settings.URLSource)
			fmt.Fprintf(out, "api_key: %s (%s)\n", key, settings.KeySource)
			return nil
		},
	}

	cmd.AddCommand(setCmd, showCmd)
	return cmd
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
