package core

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderSuccess OrderStatus = "success"
	OrderFailed  OrderStatus = "failed"
)

// OrderRecord is an immutable historical fact: one terminal workflow
// outcome. Soft unavailability never produces a record.
type OrderRecord struct {
	ID         string      `json:"id"`
	PlanCode   string      `json:"planCode"`
	Name       string      `json:"name"`
	Datacenter string      `json:"datacenter"`
	OrderTime  time.Time   `json:"orderTime"`
	Status     OrderStatus `json:"status"`
	OrderID    string      `json:"orderId,omitempty"`
	OrderURL   string      `json:"orderUrl,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Supersedes reports whether r replaces prev under the history upsert
// rule: same plan code, same datacenter (case-insensitive), same status.
func (r *OrderRecord) Supersedes(prev *OrderRecord) bool {
	return r.PlanCode == prev.PlanCode &&
		strings.EqualFold(r.Datacenter, prev.Datacenter) &&
		r.Status == prev.Status
}
