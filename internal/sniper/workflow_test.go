package sniper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ovh/go-ovh/ovh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/core"
	"github.com/imagehubcc/titan-sniper/internal/events"
	"github.com/imagehubcc/titan-sniper/internal/provider"
)

type workflowHarness struct {
	mgr      *Manager
	broker   *events.Broker
	runtime  *Runtime
	workflow *Workflow
	caller   *fakeCaller
	notifier *fakeNotifier
	sub      events.Subscriber
}

func newWorkflowHarness(t *testing.T) *workflowHarness {
	t.Helper()
	mgr, broker := newTestManager(t)
	caller := newFakeCaller()
	notifier := &fakeNotifier{}

	runtime := NewRuntime(zap.NewNop())
	runtime.SetClient(caller)
	runtime.SetNotifier(notifier)

	sub := broker.Subscribe()
	t.Cleanup(func() { broker.Unsubscribe(sub) })

	return &workflowHarness{
		mgr:      mgr,
		broker:   broker,
		runtime:  runtime,
		workflow: NewWorkflow(mgr, runtime, broker, zap.NewNop()),
		caller:   caller,
		notifier: notifier,
		sub:      sub,
	}
}

func (h *workflowHarness) createTask(t *testing.T) core.Task {
	t.Helper()
	cfg := testConfig()
	cfg.Options = []core.AddonOption{
		{Label: "memory", Value: "ram64"},
		{Label: "storage", Value: "raid1"},
	}
	return h.mgr.CreateTask(cfg)
}

func (h *workflowHarness) waitForEvent(t *testing.T, typ events.EventType) events.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-h.sub:
			if ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("event %s never arrived", typ)
		}
	}
}

func availabilityResponse(fqn, dc, token string) []provider.AvailabilityEntry {
	return []provider.AvailabilityEntry{{
		FQN:      fqn,
		PlanCode: "24ska01",
		Datacenters: []provider.DatacenterAvailability{
			{Datacenter: dc, Availability: token},
		},
	}}
}

// routeSuccess wires the fake provider for a complete purchase: probe,
// cart, configuration, options, assign, checkout.
func (h *workflowHarness) routeSuccess() {
	h.caller.getFn = func(path string, out interface{}) error {
		switch {
		case strings.HasPrefix(path, "/dedicated/server/datacenter/availabilities"):
			return respond(out, availabilityResponse("24ska01.ram64.raid1", "GRA", "1H-high"))
		case strings.Contains(path, "/requiredConfiguration"):
			return respond(out, []provider.RequiredConfiguration{
				{Label: "dedicated_datacenter", Required: true},
				{Label: "dedicated_os", Required: true},
				{Label: "region", Required: true},
			})
		case strings.Contains(path, "/eco/options"):
			return respond(out, []provider.EcoOption{
				{PlanCode: "ram64-ecc-2400", Family: "memory", Duration: "P1M", PricingMode: "default"},
				{PlanCode: "raid1-soft", Family: "storage"},
				{PlanCode: "nic10g", Family: "network"},
			})
		case strings.Contains(path, "/checkout"):
			return respond(out, map[string]interface{}{"prices": map[string]interface{}{}})
		}
		return fmt.Errorf("unexpected GET %s", path)
	}
	h.caller.postFn = func(path string, payload, out interface{}) error {
		switch {
		case path == "/order/cart":
			return respond(out, provider.Cart{CartID: "c1"})
		case path == "/order/cart/c1/eco":
			return respond(out, provider.CartItem{ItemID: 42})
		case strings.Contains(path, "/configuration"):
			return nil
		case strings.HasSuffix(path, "/eco/options"):
			return nil
		case strings.HasSuffix(path, "/assign"):
			return nil
		case strings.HasSuffix(path, "/checkout"):
			return respond(out, provider.CheckoutResult{OrderID: 123456, URL: "https://www.ovh.com/order/123456"})
		}
		return fmt.Errorf("unexpected POST %s", path)
	}
}

func TestWorkflowSuccess(t *testing.T) {
	h := newWorkflowHarness(t)
	task := h.createTask(t)
	h.routeSuccess()

	h.workflow.Execute(context.Background(), task)

	got, ok := h.mgr.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, core.TaskCompleted, got.Status)
	assert.Nil(t, got.NextRetryAt)
	assert.Contains(t, got.Message, "order 123456 created")

	orders := h.mgr.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, core.OrderSuccess, orders[0].Status)
	assert.Equal(t, "123456", orders[0].OrderID)
	// The provider's datacenter token is recorded verbatim, not the
	// lowercase target from the task.
	assert.Equal(t, "GRA", orders[0].Datacenter)
	assert.Equal(t, "https://www.ovh.com/order/123456", orders[0].OrderURL)

	h.waitForEvent(t, events.EventOrderCompleted)

	texts := h.notifier.sent()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "order 123456 created")
	assert.Contains(t, texts[0], "Datacenter: GRA")
}

func TestWorkflowSuccessConfiguresMandatoryLabels(t *testing.T) {
	h := newWorkflowHarness(t)
	task := h.createTask(t)
	h.routeSuccess()

	h.workflow.Execute(context.Background(), task)

	var labels []string
	for _, p := range h.caller.payloads["/order/cart/c1/item/42/configuration"] {
		m, ok := p.(map[string]string)
		require.True(t, ok)
		labels = append(labels, m["label"]+"="+m["value"])
	}
	assert.Contains(t, labels, "dedicated_datacenter=GRA")
	assert.Contains(t, labels, "dedicated_os=none_64.en")
	assert.Contains(t, labels, "region=europe")
}

func TestWorkflowSuccessAttachesMatchingOptions(t *testing.T) {
	h := newWorkflowHarness(t)
	task := h.createTask(t)
	h.routeSuccess()

	h.workflow.Execute(context.Background(), task)

	var attached []string
	for _, p := range h.caller.payloads["/order/cart/c1/eco/options"] {
		req, ok := p.(provider.EcoOptionRequest)
		require.True(t, ok)
		attached = append(attached, req.PlanCode)
		assert.Equal(t, int64(42), req.ItemID)
		assert.Equal(t, 1, req.Quantity)
	}
	// Prefix matches on ram64 and raid1; nic10g matches no requested value.
	assert.Equal(t, []string{"ram64-ecc-2400", "raid1-soft"}, attached)

	got, _ := h.mgr.Task(task.ID)
	assert.Contains(t, got.Message, "2 options attached")
}

func TestWorkflowSoftWhenNoAvailability(t *testing.T) {
	h := newWorkflowHarness(t)
	task := h.createTask(t)

	h.caller.getFn = func(path string, out interface{}) error {
		return respond(out, availabilityResponse("24ska01", "gra", "unavailable"))
	}

	h.workflow.Execute(context.Background(), task)

	got, _ := h.mgr.Task(task.ID)
	assert.Equal(t, core.TaskPending, got.Status)
	require.NotNil(t, got.NextRetryAt)
	assert.Empty(t, h.mgr.Orders(), "soft outcomes must not produce order records")
	assert.Empty(t, h.notifier.sent())
	assert.Empty(t, h.caller.posts(), "no cart may be opened without a match")
}

func TestWorkflowSoftWhenProbeEmpty(t *testing.T) {
	h := newWorkflowHarness(t)
	task := h.createTask(t)

	h.caller.getFn = func(path string, out interface{}) error {
		return respond(out, []provider.AvailabilityEntry{})
	}

	h.workflow.Execute(context.Background(), task)

	got, _ := h.mgr.Task(task.ID)
	assert.Equal(t, core.TaskPending, got.Status)
	assert.Empty(t, h.mgr.Orders())
}

func TestWorkflowHardFailureOnCartError(t *testing.T) {
	h := newWorkflowHarness(t)
	task := h.createTask(t)

	h.caller.getFn = func(path string, out interface{}) error {
		return respond(out, availabilityResponse("24ska01", "gra", "72H"))
	}
	h.caller.postFn = func(path string, payload, out interface{}) error {
		return errors.New("cart service exploded")
	}

	h.workflow.Execute(context.Background(), task)

	got, _ := h.mgr.Task(task.ID)
	assert.Equal(t, core.TaskError, got.Status)
	require.NotNil(t, got.NextRetryAt, "hard failures re-queue the task")

	orders := h.mgr.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, core.OrderFailed, orders[0].Status)
	assert.Contains(t, orders[0].Error, "cart service exploded")

	h.waitForEvent(t, events.EventOrderFailed)

	texts := h.notifier.sent()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "order attempt failed")
}

func TestWorkflowCheckoutUnavailableIsSoft(t *testing.T) {
	h := newWorkflowHarness(t)
	task := h.createTask(t)
	h.routeSuccess()

	base := h.caller.postFn
	h.caller.postFn = func(path string, payload, out interface{}) error {
		if strings.HasSuffix(path, "/checkout") {
			return &ovh.APIError{
				Code:    400,
				Message: "Server 24ska01 is not available in GRA at the moment",
			}
		}
		return base(path, payload, out)
	}

	h.workflow.Execute(context.Background(), task)

	// A momentary stock gap discovered mid-purchase is not a failure.
	got, _ := h.mgr.Task(task.ID)
	assert.Equal(t, core.TaskPending, got.Status)
	assert.Empty(t, h.mgr.Orders())
	assert.Empty(t, h.notifier.sent())
}

func TestWorkflowHardFailWhenRegionRequiredButUnmapped(t *testing.T) {
	h := newWorkflowHarness(t)
	task := h.createTask(t)
	h.routeSuccess()

	baseGet := h.caller.getFn
	h.caller.getFn = func(path string, out interface{}) error {
		if strings.HasPrefix(path, "/dedicated/server/datacenter/availabilities") {
			return respond(out, availabilityResponse("24ska01.ram64.raid1", "xyz9", "1H-high"))
		}
		return baseGet(path, out)
	}
	task2 := task
	task2.Datacenter = "xyz9"

	h.workflow.Execute(context.Background(), task2)

	got, _ := h.mgr.Task(task.ID)
	assert.Equal(t, core.TaskError, got.Status)
	require.Len(t, h.mgr.Orders(), 1)
	assert.Equal(t, core.OrderFailed, h.mgr.Orders()[0].Status)

	// Failing before configuration: no label may have been submitted.
	assert.Empty(t, h.caller.payloads["/order/cart/c1/item/42/configuration"])
}

func TestWorkflowDispatchErrorWithoutClient(t *testing.T) {
	h := newWorkflowHarness(t)
	task := h.createTask(t)
	h.runtime.SetClient(nil)

	h.workflow.Execute(context.Background(), task)

	got, _ := h.mgr.Task(task.ID)
	assert.Equal(t, core.TaskError, got.Status)
	assert.Contains(t, got.Message, "not configured")
	assert.Empty(t, h.mgr.Orders())
}

func TestWorkflowOptionAttachFailureIsNotFatal(t *testing.T) {
	h := newWorkflowHarness(t)
	task := h.createTask(t)
	h.routeSuccess()

	base := h.caller.postFn
	h.caller.postFn = func(path string, payload, out interface{}) error {
		if strings.HasSuffix(path, "/eco/options") {
			return errors.New("option out of stock")
		}
		return base(path, payload, out)
	}

	h.workflow.Execute(context.Background(), task)

	got, _ := h.mgr.Task(task.ID)
	assert.Equal(t, core.TaskCompleted, got.Status)
	assert.Contains(t, got.Message, "0 options attached")
	require.Len(t, h.mgr.Orders(), 1)
	assert.Equal(t, core.OrderSuccess, h.mgr.Orders()[0].Status)
}
