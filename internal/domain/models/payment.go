package models

// PaymentIntent - заказ, открытый у платежного провайдера.
// Amount в минимальных единицах валюты (пайсы для INR).
type PaymentIntent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status,omitempty"`
}
