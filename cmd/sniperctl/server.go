package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type AvailabilityRow struct {
	FQN         string `json:"fqn"`
	PlanCode    string `json:"planCode"`
	Datacenters []struct {
		Datacenter   string `json:"datacenter"`
		Availability string `json:"availability"`
	} `json:"datacenters"`
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server catalog and availability commands",
}

var serverCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Dump the raw eco server catalog",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var catalog json.RawMessage
		if err := client.Get("/api/servers", &catalog); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(catalog)
		fmt.Println()
	},
}

var serverAvailabilityCmd = &cobra.Command{
	Use:   "availability <plan-code>",
	Short: "Probe datacenter availability for a plan",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var entries []AvailabilityRow
		if err := client.Get("/api/servers/"+args[0]+"/availability", &entries); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(entries)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service status",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var status map[string]interface{}
		if err := client.Get("/api/status", &status); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(status)
	},
}

func init() {
	serverCmd.AddCommand(serverCatalogCmd, serverAvailabilityCmd)
	rootCmd.AddCommand(serverCmd, statusCmd)
}
