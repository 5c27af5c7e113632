package core

// ApiConfig holds the provider credentials and notification settings.
// Persisted as config.json and mutable at runtime through the API.
type ApiConfig struct {
	AppKey      string `json:"appKey"`
	AppSecret   string `json:"appSecret"`
	ConsumerKey string `json:"consumerKey"`
	Endpoint    string `json:"endpoint"`
	Zone        string `json:"zone"`
	IAM         string `json:"iam"`
	TgToken     string `json:"tgToken,omitempty"`
	TgChatID    string `json:"tgChatId,omitempty"`
}

// DefaultApiConfig returns a config with provider defaults and no credentials.
func DefaultApiConfig() ApiConfig {
	return ApiConfig{
		Endpoint: "ovh-eu",
		Zone:     "IE",
		IAM:      "go-ovh-ie",
	}
}

// HasCredentials reports whether the three signing keys are all set.
func (c *ApiConfig) HasCredentials() bool {
	return c.AppKey != "" && c.AppSecret != "" && c.ConsumerKey != ""
}

// HasTelegram reports whether the notification channel is configured.
func (c *ApiConfig) HasTelegram() bool {
	return c.TgToken != "" && c.TgChatID != ""
}

// UpdateAPIPart overwrites only the provider-credential fields that are
// present in the patch.
func (c *ApiConfig) UpdateAPIPart(patch map[string]string) {
	if v, ok := patch["appKey"]; ok {
		c.AppKey = v
	}
	if v, ok := patch["appSecret"]; ok {
		c.AppSecret = v
	}
	if v, ok := patch["consumerKey"]; ok {
		c.ConsumerKey = v
	}
	if v, ok := patch["endpoint"]; ok {
		c.Endpoint = v
	}
	if v, ok := patch["zone"]; ok {
		c.Zone = v
	}
	if v, ok := patch["iam"]; ok {
		c.IAM = v
	}
}

// UpdateTelegramPart overwrites only the notification fields present in
// the patch.
func (c *ApiConfig) UpdateTelegramPart(patch map[string]string) {
	if v, ok := patch["tgToken"]; ok {
		c.TgToken = v
	}
	if v, ok := patch["tgChatId"]; ok {
		c.TgChatID = v
	}
}

// Sanitized returns a copy with every secret masked, safe for logs and
// event payloads.
func (c ApiConfig) Sanitized() ApiConfig {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "******"
	}
	c.AppKey = mask(c.AppKey)
	c.AppSecret = mask(c.AppSecret)
	c.ConsumerKey = mask(c.ConsumerKey)
	c.TgToken = mask(c.TgToken)
	return c
}
