package sniper

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/core"
	"github.com/imagehubcc/titan-sniper/internal/events"
	"github.com/imagehubcc/titan-sniper/internal/notify"
	"github.com/imagehubcc/titan-sniper/internal/observability"
	"github.com/imagehubcc/titan-sniper/internal/provider"
)

// Mandatory cart item configuration labels. Failing to set one of these
// aborts the purchase; any other configuration failure is logged and
// ignored.
const (
	labelDatacenter = "dedicated_datacenter"
	labelOS         = "dedicated_os"
	labelRegion     = "region"
)

// Workflow turns an available slot into a paid order. Execute runs at
// most once per dispatch; the scheduler's in-flight guard ensures a
// single execution per task id.
type Workflow struct {
	mgr     *Manager
	runtime *Runtime
	broker  *events.Broker
	log     *zap.Logger
}

func NewWorkflow(mgr *Manager, runtime *Runtime, broker *events.Broker, log *zap.Logger) *Workflow {
	return &Workflow{mgr: mgr, runtime: runtime, broker: broker, log: log}
}

// Execute drives the full acquisition sequence for one task attempt.
// Every failure is translated into a task transition here; nothing
// propagates out.
func (w *Workflow) Execute(ctx context.Context, task core.Task) {
	client, notifier, cfg := w.runtime.Snapshot()
	log := observability.TaskLogger(w.log, task.ID, task.PlanCode, task.Datacenter)

	start := time.Now()
	outcome := w.run(ctx, client, notifier, cfg, task, log)
	observability.WorkflowTotal.WithLabelValues(outcome).Inc()
	observability.WorkflowDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

func (w *Workflow) run(ctx context.Context, client provider.Caller, notifier notify.Notifier, cfg core.ApiConfig, task core.Task, log *zap.Logger) string {
	if client == nil {
		w.mgr.UpdateStatus(task.ID, core.TaskError, "provider client not configured")
		return "dispatch_error"
	}

	// Step 1: probe. Probing only the plan code; the option-aware FQN
	// filter is applied locally when scanning for the datacenter.
	w.mgr.UpdateStatus(task.ID, core.TaskRunning, "checking server availability...")
	entries, err := provider.Probe(ctx, client, task.PlanCode, nil, log)
	if err != nil {
		if provider.IsUnavailable(err) {
			return w.softFail(task, fmt.Sprintf("plan %s momentarily unavailable: %v", task.PlanCode, err), log)
		}
		return w.hardFail(task, cfg, notifier, purchaseState{}, fmt.Errorf("availability check failed: %w", err), log)
	}
	if len(entries) == 0 {
		return w.softFail(task, fmt.Sprintf("no availability information for plan %s", task.PlanCode), log)
	}

	// Step 2: match the target datacenter.
	match, found := FindAvailableDatacenter(entries, task.Datacenter, task.Options)
	if !found {
		return w.softFail(task,
			fmt.Sprintf("plan %s currently unavailable in %s", task.PlanCode, task.Datacenter), log)
	}
	log.Info("availability found",
		zap.String("matched_datacenter", match.Datacenter),
		zap.String("fqn", match.FQN),
		zap.String("availability", match.Availability),
	)

	state, err := w.purchase(ctx, client, cfg, task, match, log)
	if err != nil {
		if provider.IsUnavailable(err) {
			// The purchase API itself can report a momentary stock gap.
			return w.softFail(task, fmt.Sprintf("server configuration momentarily unavailable: %v", err), log)
		}
		return w.hardFail(task, cfg, notifier, state, err, log)
	}

	return w.succeed(task, cfg, notifier, match, state, log)
}

// purchaseState accumulates identifiers as the purchase progresses so
// failure reporting can reference them.
type purchaseState struct {
	cartID          string
	itemID          int64
	attachedOptions int
	orderID         string
	orderURL        string
}

// purchase runs steps 3-8: cart, mandatory configuration, add-on
// options, assign, checkout.
func (w *Workflow) purchase(ctx context.Context, client provider.Caller, cfg core.ApiConfig, task core.Task, match Match, log *zap.Logger) (purchaseState, error) {
	var state purchaseState

	// Step 3: open the cart and add the base line item.
	w.mgr.UpdateStatus(task.ID, core.TaskRunning, "creating cart...")
	cart, err := provider.CreateCart(ctx, client, cfg.Zone)
	if err != nil {
		return state, err
	}
	state.cartID = cart.CartID
	log.Info("cart created", zap.String("cart_id", cart.CartID))

	w.mgr.UpdateStatus(task.ID, core.TaskRunning, fmt.Sprintf("adding base item %s...", task.PlanCode))
	item, err := provider.AddEcoItem(ctx, client, cart.CartID, task.PlanCode, task.Duration, task.Quantity)
	if err != nil {
		return state, err
	}
	state.itemID = item.ItemID
	log.Info("base item added", zap.Int64("item_id", item.ItemID))

	// Step 4: mandatory configuration. The matched datacenter token is
	// used verbatim; the region comes from the prefix table.
	w.mgr.UpdateStatus(task.ID, core.TaskRunning, "setting mandatory configuration...")
	required, err := provider.RequiredConfigurations(ctx, client, cart.CartID, item.ItemID)
	if err != nil {
		// Some plans expose no required-configuration listing at all.
		log.Warn("required configuration listing unavailable", zap.Error(err))
	}
	regionRequired := false
	for _, rc := range required {
		if rc.Label == labelRegion {
			regionRequired = rc.Required
			break
		}
	}

	region := RegionForDatacenter(match.Datacenter)
	if region == "" {
		log.Warn("no region mapping for datacenter", zap.String("datacenter", match.Datacenter))
		if regionRequired {
			return state, fmt.Errorf("required configuration %q cannot be determined for datacenter %s",
				labelRegion, match.Datacenter)
		}
	}

	configurations := []struct{ label, value string }{
		{labelDatacenter, match.Datacenter},
		{labelOS, task.OS},
	}
	if region != "" {
		configurations = append(configurations, struct{ label, value string }{labelRegion, region})
	}
	mandatory := map[string]bool{labelDatacenter: true, labelOS: true, labelRegion: true}

	// Step 5: submit each configuration.
	for _, c := range configurations {
		if err := provider.SetConfiguration(ctx, client, cart.CartID, item.ItemID, c.label, c.value); err != nil {
			if mandatory[c.label] {
				return state, fmt.Errorf("mandatory configuration %s=%s rejected: %w", c.label, c.value, err)
			}
			log.Warn("optional configuration rejected",
				zap.String("label", c.label),
				zap.String("value", c.value),
				zap.Error(err),
			)
			continue
		}
		log.Info("configuration set", zap.String("label", c.label), zap.String("value", c.value))
	}

	// Step 6: add-on options. Never fatal.
	state.attachedOptions = w.attachOptions(ctx, client, cfg, task, cart.CartID, item.ItemID, log)

	// Step 7: bind the cart, strictly after all items and configuration.
	w.mgr.UpdateStatus(task.ID, core.TaskRunning, "assigning cart...")
	if err := provider.AssignCart(ctx, client, cart.CartID); err != nil {
		return state, err
	}

	// Step 8: checkout with auto-pay off and the cooling-off waiver on.
	w.mgr.UpdateStatus(task.ID, core.TaskRunning, "checking out...")
	if _, err := provider.CheckoutSummary(ctx, client, cart.CartID); err != nil {
		return state, err
	}
	result, err := provider.Checkout(ctx, client, cart.CartID)
	if err != nil {
		return state, err
	}
	if result.OrderID != 0 {
		state.orderID = strconv.FormatInt(result.OrderID, 10)
	}
	state.orderURL = result.URL
	return state, nil
}

// attachOptions runs the option matcher against the cart item: offerings
// are attempted in provider order, selected by prefix match against the
// requested values, and individual attach failures do not abort the rest.
func (w *Workflow) attachOptions(ctx context.Context, client provider.Caller, cfg core.ApiConfig, task core.Task, cartID string, itemID int64, log *zap.Logger) int {
	wanted := task.WantedOptionValues()
	if len(wanted) == 0 {
		return 0
	}
	w.mgr.UpdateStatus(task.ID, core.TaskRunning, "attaching hardware options...")

	offerings, err := provider.ListEcoOptions(ctx, client, cartID, task.PlanCode)
	if err != nil {
		log.Warn("listing compatible options failed, ordering base configuration only", zap.Error(err))
		return 0
	}
	log.Info("compatible options listed", zap.Int("count", len(offerings)))

	attachedSet := make(map[string]bool)
	var attached []string
	for _, offering := range offerings {
		if offering.PlanCode == "" || attachedSet[offering.PlanCode] {
			continue
		}
		value, ok := MatchOffering(offering.PlanCode, wanted)
		if !ok {
			continue
		}

		duration := offering.Duration
		if duration == "" {
			duration = task.Duration
		}
		pricingMode := offering.PricingMode
		if pricingMode == "" {
			pricingMode = "default"
		}
		req := provider.EcoOptionRequest{
			ItemID:      itemID,
			PlanCode:    offering.PlanCode,
			Duration:    duration,
			PricingMode: pricingMode,
			Quantity:    1,
		}
		if err := provider.AddEcoOption(ctx, client, cartID, req); err != nil {
			log.Warn("attaching option failed",
				zap.String("option", offering.PlanCode),
				zap.String("requested", value),
				zap.Error(err),
			)
			continue
		}
		log.Info("option attached",
			zap.String("option", offering.PlanCode),
			zap.String("requested", value),
		)
		attachedSet[offering.PlanCode] = true
		attached = append(attached, offering.PlanCode)
	}

	if unmet := UnmetValues(wanted, attached); len(unmet) > 0 {
		log.Warn("requested options not satisfied, proceeding with base item",
			zap.Strings("unmet", unmet))
	}
	return len(attached)
}

// softFail re-arms the task for another attempt. No order record, no
// external notification: confirmed unavailability is routine, not an
// error.
func (w *Workflow) softFail(task core.Task, message string, log *zap.Logger) string {
	log.Info("attempt found no stock", zap.String("reason", message))
	w.mgr.UpdateStatus(task.ID, core.TaskPending, message)
	return "soft"
}

// hardFail records a failed order, re-queues the task, and notifies.
func (w *Workflow) hardFail(task core.Task, cfg core.ApiConfig, notifier notify.Notifier, state purchaseState, err error, log *zap.Logger) string {
	message := fmt.Sprintf("order attempt failed: %v", err)
	log.Error("attempt failed", zap.Error(err), zap.String("cart_id", state.cartID))

	rec := core.OrderRecord{
		ID:         core.NewID(),
		PlanCode:   task.PlanCode,
		Name:       task.Name,
		Datacenter: task.Datacenter,
		OrderTime:  time.Now(),
		Status:     core.OrderFailed,
		OrderID:    state.orderID,
		OrderURL:   state.orderURL,
		Error:      message,
	}
	w.mgr.AddOrder(rec)
	w.mgr.UpdateStatus(task.ID, core.TaskError, message)
	w.broker.Publish(events.EventOrderFailed, rec)

	text := fmt.Sprintf("%s: order attempt failed - %v", cfg.IAM, err)
	if state.cartID != "" {
		text += fmt.Sprintf("\nCart ID: %s", state.cartID)
	}
	w.notify(notifier, text)
	return "hard"
}

// succeed records the completed order and broadcasts the good news.
func (w *Workflow) succeed(task core.Task, cfg core.ApiConfig, notifier notify.Notifier, match Match, state purchaseState, log *zap.Logger) string {
	log.Info("order created",
		zap.String("order_id", state.orderID),
		zap.String("order_url", state.orderURL),
		zap.Int("options_attached", state.attachedOptions),
	)

	rec := core.OrderRecord{
		ID:         core.NewID(),
		PlanCode:   task.PlanCode,
		Name:       task.Name,
		Datacenter: match.Datacenter,
		OrderTime:  time.Now(),
		Status:     core.OrderSuccess,
		OrderID:    state.orderID,
		OrderURL:   state.orderURL,
	}
	w.mgr.AddOrder(rec)
	w.mgr.UpdateStatus(task.ID, core.TaskCompleted,
		fmt.Sprintf("order %s created (%d options attached)", state.orderID, state.attachedOptions))
	w.broker.Publish(events.EventOrderCompleted, rec)

	w.notify(notifier, fmt.Sprintf(
		"%s: order %s created!\nPlan: %s\nDatacenter: %s\nOptions attached: %d\nOrder URL: %s",
		cfg.IAM, state.orderID, task.PlanCode, match.Datacenter, state.attachedOptions, state.orderURL,
	))
	return "success"
}

func (w *Workflow) notify(notifier notify.Notifier, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if notifier.Send(ctx, text) {
		observability.NotificationsTotal.WithLabelValues("sent").Inc()
	} else {
		observability.NotificationsTotal.WithLabelValues("dropped").Inc()
	}
}
