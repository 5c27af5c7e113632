package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type TaskRow struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	PlanCode     string      `json:"planCode"`
	Datacenter   string      `json:"datacenter"`
	Quantity     int         `json:"quantity"`
	OS           string      `json:"os"`
	Duration     string      `json:"duration"`
	Options      []OptionRow `json:"options"`
	Status       string      `json:"status"`
	CreatedAt    string      `json:"createdAt"`
	RetryCount   int         `json:"retryCount"`
	MaxRetries   int         `json:"maxRetries"`
	TaskInterval int         `json:"taskInterval"`
	NextRetryAt  string      `json:"nextRetryAt,omitempty"`
	Message      string      `json:"message,omitempty"`
}

type OptionRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var (
	taskName       string
	taskOS         string
	taskDuration   string
	taskQuantity   int
	taskMaxRetries int
	taskInterval   int
	taskOptions    []string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Snipe task management commands",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snipe tasks",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var tasks []TaskRow
		if err := client.Get("/api/tasks", &tasks); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(tasks)
	},
}

var taskGetCmd = &cobra.Command{
	Use:   "get <task-id>",
	Short: "Get task details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var task TaskRow
		if err := client.Get("/api/tasks/"+args[0], &task); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(task)
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add <plan-code> <datacenter>",
	Short: "Create a snipe task",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		options := make([]OptionRow, 0, len(taskOptions))
		for _, opt := range taskOptions {
			label, value, ok := strings.Cut(opt, "=")
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: option %q must be label=value\n", opt)
				os.Exit(1)
			}
			options = append(options, OptionRow{Label: label, Value: value})
		}

		body := map[string]interface{}{
			"planCode":     args[0],
			"datacenter":   args[1],
			"name":         taskName,
			"os":           taskOS,
			"duration":     taskDuration,
			"quantity":     taskQuantity,
			"maxRetries":   taskMaxRetries,
			"taskInterval": taskInterval,
			"options":      options,
		}

		var task TaskRow
		if err := client.Post("/api/tasks", body, &task); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Task %s created for %s in %s\n", task.ID, task.PlanCode, task.Datacenter)
	},
}

var taskWatchCmd = &cobra.Command{
	Use:   "watch <task-id>",
	Short: "Watch task until it reaches a terminal state",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID := args[0]
		client := NewClient(apiURL)

		for {
			var task TaskRow
			if err := client.Get("/api/tasks/"+taskID, &task); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("Task %s: %s (attempt %d/%d) %s\n",
				taskID[:8], task.Status, task.RetryCount, task.MaxRetries, task.Message)

			if task.Status == "completed" || task.Status == "max_retries_reached" {
				break
			}

			time.Sleep(5 * time.Second)
		}
	},
}

var taskRetryCmd = &cobra.Command{
	Use:   "retry <task-id>",
	Short: "Reset a failed task back to pending",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var task TaskRow
		if err := client.Post("/api/tasks/"+args[0]+"/retry", nil, &task); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Task %s status: %s\n", task.ID, task.Status)
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		if err := client.Delete("/api/tasks/"+args[0], nil); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Task %s deleted\n", args[0])
	},
}

var taskClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all tasks",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp struct {
			Cleared int `json:"cleared"`
		}
		if err := client.Delete("/api/tasks", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared %d tasks\n", resp.Cleared)
	},
}

func init() {
	taskAddCmd.Flags().StringVar(&taskName, "name", "", "Display name for the task")
	taskAddCmd.Flags().StringVar(&taskOS, "os", "", "Operating system (server default when empty)")
	taskAddCmd.Flags().StringVar(&taskDuration, "duration", "", "Billing duration (server default when empty)")
	taskAddCmd.Flags().IntVar(&taskQuantity, "quantity", 1, "Number of servers")
	taskAddCmd.Flags().IntVar(&taskMaxRetries, "max-retries", 0, "Retry budget (0 = unlimited)")
	taskAddCmd.Flags().IntVar(&taskInterval, "interval", 60, "Seconds between attempts")
	taskAddCmd.Flags().StringArrayVar(&taskOptions, "option", nil, "Add-on option as label=value (repeatable)")

	taskCmd.AddCommand(taskListCmd, taskGetCmd, taskAddCmd, taskWatchCmd, taskRetryCmd, taskDeleteCmd, taskClearCmd)
	rootCmd.AddCommand(taskCmd)
}
