package models

// Operator is a mobile-money operator a payment can be routed through.
type Operator struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
}
