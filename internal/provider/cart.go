package provider

import (
	"context"
	"fmt"
	"net/url"
)

// Typed wrappers over the cart/checkout endpoints used by the order
// workflow, in the order the workflow calls them.

func CreateCart(ctx context.Context, c Caller, subsidiary string) (Cart, error) {
	var cart Cart
	payload := map[string]string{"ovhSubsidiary": subsidiary}
	if err := c.Post(ctx, "/order/cart", payload, &cart); err != nil {
		return Cart{}, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

func AddEcoItem(ctx context.Context, c Caller, cartID, planCode, duration string, quantity int) (CartItem, error) {
	var item CartItem
	payload := map[string]interface{}{
		"planCode":    planCode,
		"pricingMode": "default",
		"duration":    duration,
		"quantity":    quantity,
	}
	path := fmt.Sprintf("/order/cart/%s/eco", cartID)
	if err := c.Post(ctx, path, payload, &item); err != nil {
		return CartItem{}, fmt.Errorf("add eco item %s: %w", planCode, err)
	}
	return item, nil
}

func RequiredConfigurations(ctx context.Context, c Caller, cartID string, itemID int64) ([]RequiredConfiguration, error) {
	var configs []RequiredConfiguration
	path := fmt.Sprintf("/order/cart/%s/item/%d/requiredConfiguration", cartID, itemID)
	if err := c.Get(ctx, path, &configs); err != nil {
		return nil, fmt.Errorf("required configurations: %w", err)
	}
	return configs, nil
}

func SetConfiguration(ctx context.Context, c Caller, cartID string, itemID int64, label, value string) error {
	payload := map[string]string{"label": label, "value": value}
	path := fmt.Sprintf("/order/cart/%s/item/%d/configuration", cartID, itemID)
	if err := c.Post(ctx, path, payload, nil); err != nil {
		return fmt.Errorf("set configuration %s: %w", label, err)
	}
	return nil
}

func ListEcoOptions(ctx context.Context, c Caller, cartID, planCode string) ([]EcoOption, error) {
	var options []EcoOption
	q := url.Values{}
	q.Set("planCode", planCode)
	path := fmt.Sprintf("/order/cart/%s/eco/options?%s", cartID, q.Encode())
	if err := c.Get(ctx, path, &options); err != nil {
		return nil, fmt.Errorf("list eco options: %w", err)
	}
	return options, nil
}

func AddEcoOption(ctx context.Context, c Caller, cartID string, req EcoOptionRequest) error {
	path := fmt.Sprintf("/order/cart/%s/eco/options", cartID)
	if err := c.Post(ctx, path, req, nil); err != nil {
		return fmt.Errorf("add eco option %s: %w", req.PlanCode, err)
	}
	return nil
}

// AssignCart binds the cart to the account. Must run only after every
// item and configuration is attached; earlier binding rejects later
// additions.
func AssignCart(ctx context.Context, c Caller, cartID string) error {
	path := fmt.Sprintf("/order/cart/%s/assign", cartID)
	if err := c.Post(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("assign cart: %w", err)
	}
	return nil
}

func CheckoutSummary(ctx context.Context, c Caller, cartID string) (map[string]interface{}, error) {
	var summary map[string]interface{}
	path := fmt.Sprintf("/order/cart/%s/checkout", cartID)
	if err := c.Get(ctx, path, &summary); err != nil {
		return nil, fmt.Errorf("checkout summary: %w", err)
	}
	return summary, nil
}

func Checkout(ctx context.Context, c Caller, cartID string) (CheckoutResult, error) {
	var result CheckoutResult
	payload := map[string]interface{}{
		"autoPayWithPreferredPaymentMethod": false,
		"waiveRetractationPeriod":           true,
	}
	path := fmt.Sprintf("/order/cart/%s/checkout", cartID)
	if err := c.Post(ctx, path, payload, &result); err != nil {
		return CheckoutResult{}, fmt.Errorf("checkout: %w", err)
	}
	return result, nil
}
