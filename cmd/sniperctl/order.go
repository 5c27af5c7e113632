package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type OrderRow struct {
	ID         string `json:"id"`
	PlanCode   string `json:"planCode"`
	Name       string `json:"name"`
	Datacenter string `json:"datacenter"`
	OrderTime  string `json:"orderTime"`
	Status     string `json:"status"`
	OrderID    string `json:"orderId,omitempty"`
	OrderURL   string `json:"orderUrl,omitempty"`
	Error      string `json:"error,omitempty"`
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Order history commands",
}

var orderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List order history",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var orders []OrderRow
		if err := client.Get("/api/orders", &orders); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(orders)
	},
}

var orderDeleteCmd = &cobra.Command{
	Use:   "delete <order-id>",
	Short: "Delete an order record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		if err := client.Delete("/api/orders/"+args[0], nil); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Order record %s deleted\n", args[0])
	},
}

var orderClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole order history",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp struct {
			Cleared int `json:"cleared"`
		}
		if err := client.Delete("/api/orders", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared %d order records\n", resp.Cleared)
	},
}

func init() {
	orderCmd.AddCommand(orderListCmd, orderDeleteCmd, orderClearCmd)
	rootCmd.AddCommand(orderCmd)
}
