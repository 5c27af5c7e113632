package provider

// DatacenterAvailability is one datacenter's stock signal for an FQN.
// Availability is a provider-defined token; anything outside the known
// negative sentinels means some stock is present.
type DatacenterAvailability struct {
	Datacenter   string `json:"datacenter"`
	Availability string `json:"availability"`
}

// AvailabilityEntry is one row of the availabilities listing. Transient,
// never persisted.
type AvailabilityEntry struct {
	FQN         string                   `json:"fqn"`
	PlanCode    string                   `json:"planCode"`
	Datacenters []DatacenterAvailability `json:"datacenters"`
}

// Cart is the provider-side transaction container created per attempt.
type Cart struct {
	CartID string `json:"cartId"`
}

// CartItem is a line item inside a cart.
type CartItem struct {
	ItemID int64 `json:"itemId"`
}

// RequiredConfiguration describes one configuration key the provider
// expects on a cart item.
type RequiredConfiguration struct {
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// EcoOption is one add-on offering compatible with a cart's base item.
type EcoOption struct {
	PlanCode    string `json:"planCode"`
	Family      string `json:"family,omitempty"`
	Duration    string `json:"duration,omitempty"`
	PricingMode string `json:"pricingMode,omitempty"`
}

// EcoOptionRequest attaches one offering to the base item.
type EcoOptionRequest struct {
	ItemID      int64  `json:"itemId"`
	PlanCode    string `json:"planCode"`
	Duration    string `json:"duration"`
	PricingMode string `json:"pricingMode"`
	Quantity    int    `json:"quantity"`
}

// CheckoutResult is the provider's answer to a submitted checkout.
type CheckoutResult struct {
	OrderID int64  `json:"orderId"`
	URL     string `json:"url"`
}
