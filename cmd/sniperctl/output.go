package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
)

func printResult(v interface{}) {
	if output == "json" {
		json.NewEncoder(os.Stdout).Encode(v)
		return
	}
	printTable(v)
}

func printTable(v interface{}) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	switch data := v.(type) {
	case []TaskRow:
		if len(data) == 0 {
			fmt.Println("No tasks found.")
			return
		}
		fmt.Fprintln(w, "TASK ID\tPLAN\tDC\tSTATUS\tATTEMPT\tMESSAGE")
		for _, t := range data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
				shortID(t.ID), t.PlanCode, t.Datacenter, t.Status,
				t.RetryCount, t.MaxRetries, truncate(t.Message, 48))
		}
	case TaskRow:
		fmt.Fprintf(w, "Task ID:\t%s\n", data.ID)
		fmt.Fprintf(w, "Name:\t%s\n", data.Name)
		fmt.Fprintf(w, "Plan:\t%s\n", data.PlanCode)
		fmt.Fprintf(w, "Datacenter:\t%s\n", data.Datacenter)
		fmt.Fprintf(w, "OS:\t%s\n", data.OS)
		fmt.Fprintf(w, "Duration:\t%s\n", data.Duration)
		fmt.Fprintf(w, "Status:\t%s\n", data.Status)
		fmt.Fprintf(w, "Attempt:\t%d/%d\n", data.RetryCount, data.MaxRetries)
		fmt.Fprintf(w, "Interval:\t%ds\n", data.TaskInterval)
		if data.NextRetryAt != "" {
			fmt.Fprintf(w, "Next retry:\t%s\n", data.NextRetryAt)
		}
		if data.Message != "" {
			fmt.Fprintf(w, "Message:\t%s\n", data.Message)
		}
		for _, opt := range data.Options {
			fmt.Fprintf(w, "Option:\t%s=%s\n", opt.Label, opt.Value)
		}
	case []OrderRow:
		if len(data) == 0 {
			fmt.Println("No orders found.")
			return
		}
		fmt.Fprintln(w, "RECORD ID\tPLAN\tDC\tSTATUS\tORDER ID\tTIME")
		for _, o := range data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				shortID(o.ID), o.PlanCode, o.Datacenter, o.Status, o.OrderID, o.OrderTime)
		}
	case ConfigRow:
		fmt.Fprintf(w, "Endpoint:\t%s\n", data.Endpoint)
		fmt.Fprintf(w, "Zone:\t%s\n", data.Zone)
		fmt.Fprintf(w, "IAM:\t%s\n", data.IAM)
		fmt.Fprintf(w, "App key:\t%s\n", data.AppKey)
		fmt.Fprintf(w, "Consumer key:\t%s\n", data.ConsumerKey)
		fmt.Fprintf(w, "Telegram:\t%v\n", data.TgToken != "")
	case []AvailabilityRow:
		if len(data) == 0 {
			fmt.Println("No availability entries.")
			return
		}
		fmt.Fprintln(w, "FQN\tDATACENTER\tAVAILABILITY")
		for _, e := range data {
			for _, dc := range e.Datacenters {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.FQN, dc.Datacenter, dc.Availability)
			}
		}
	default:
		json.NewEncoder(os.Stdout).Encode(v)
	}
	w.Flush()
}

func shortID(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
