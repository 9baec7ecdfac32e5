package domain

// DefaultPaymentAmount is the USDT amount charged when no amount has
// ever been configured.
const DefaultPaymentAmount = 10

// AmountConfig is the process-wide payment amount in whole USDT. A
// payment snapshots the value at creation time; changing it never
// affects already-issued invoices.
type AmountConfig struct {
	USDT int `json:"usdt"`
}

// Credentials authenticate against the payment processor. Payments stay
// disabled until both fields are present.
type Credentials struct {
	APIKey     string `json:"api_key"`
	MerchantID string `json:"merchant_id"`
}

// Configured reports whether the credentials are complete enough to
// enable the payment feature.
func (c Credentials) Configured() bool {
	return c.APIKey != "" && c.MerchantID != ""
}
