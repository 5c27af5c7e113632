package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type ConfigRow struct {
	AppKey      string `json:"appKey"`
	AppSecret   string `json:"appSecret"`
	ConsumerKey string `json:"consumerKey"`
	Endpoint    string `json:"endpoint"`
	Zone        string `json:"zone"`
	IAM         string `json:"iam"`
	TgToken     string `json:"tgToken,omitempty"`
	TgChatID    string `json:"tgChatId,omitempty"`
}

var (
	cfgAppKey      string
	cfgAppSecret   string
	cfgConsumerKey string
	cfgEndpoint    string
	cfgZone        string
	cfgIAM         string
	cfgTgToken     string
	cfgTgChatID    string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Service configuration commands",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the active configuration (secrets masked)",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var cfg ConfigRow
		if err := client.Get("/api/config", &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(cfg)
	},
}

var configSetOVHCmd = &cobra.Command{
	Use:   "set-ovh",
	Short: "Update the provider credentials",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		patch := map[string]string{}
		setIfChanged(cmd, patch, "app-key", "appKey", cfgAppKey)
		setIfChanged(cmd, patch, "app-secret", "appSecret", cfgAppSecret)
		setIfChanged(cmd, patch, "consumer-key", "consumerKey", cfgConsumerKey)
		setIfChanged(cmd, patch, "endpoint", "endpoint", cfgEndpoint)
		setIfChanged(cmd, patch, "zone", "zone", cfgZone)
		setIfChanged(cmd, patch, "iam", "iam", cfgIAM)
		if len(patch) == 0 {
			fmt.Fprintln(os.Stderr, "Error: no fields to update")
			os.Exit(1)
		}

		var cfg ConfigRow
		if err := client.Post("/api/config/ovh", patch, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Provider configuration updated")
		printResult(cfg)
	},
}

var configSetTelegramCmd = &cobra.Command{
	Use:   "set-telegram",
	Short: "Update the Telegram notification channel",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		patch := map[string]string{}
		setIfChanged(cmd, patch, "token", "tgToken", cfgTgToken)
		setIfChanged(cmd, patch, "chat-id", "tgChatId", cfgTgChatID)
		if len(patch) == 0 {
			fmt.Fprintln(os.Stderr, "Error: no fields to update")
			os.Exit(1)
		}

		var resp struct {
			TestSent bool `json:"testSent"`
		}
		if err := client.Post("/api/config/telegram", patch, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if resp.TestSent {
			fmt.Println("Telegram configured, test message sent")
		} else {
			fmt.Println("Telegram configuration saved, test message not delivered")
		}
	},
}

func setIfChanged(cmd *cobra.Command, patch map[string]string, flag, key, value string) {
	if cmd.Flags().Changed(flag) {
		patch[key] = value
	}
}

func init() {
	configSetOVHCmd.Flags().StringVar(&cfgAppKey, "app-key", "", "Application key")
	configSetOVHCmd.Flags().StringVar(&cfgAppSecret, "app-secret", "", "Application secret")
	configSetOVHCmd.Flags().StringVar(&cfgConsumerKey, "consumer-key", "", "Consumer key")
	configSetOVHCmd.Flags().StringVar(&cfgEndpoint, "endpoint", "", "API endpoint (e.g. ovh-eu)")
	configSetOVHCmd.Flags().StringVar(&cfgZone, "zone", "", "Subsidiary zone (e.g. IE)")
	configSetOVHCmd.Flags().StringVar(&cfgIAM, "iam", "", "Account identity tag used in notifications")

	configSetTelegramCmd.Flags().StringVar(&cfgTgToken, "token", "", "Bot token")
	configSetTelegramCmd.Flags().StringVar(&cfgTgChatID, "chat-id", "", "Chat ID")

	configCmd.AddCommand(configGetCmd, configSetOVHCmd, configSetTelegramCmd)
	rootCmd.AddCommand(configCmd)
}
