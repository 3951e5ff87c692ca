package domain

import "strings"

// DeliveryMethod is inferred from the free-text delivery address, never stored
// as a separate user choice.
type DeliveryMethod string

const (
	DeliveryAddress DeliveryMethod = "ADDRESS"
	DeliverySpeedy  DeliveryMethod = "SPEEDY"
	DeliveryEcont   DeliveryMethod = "ECONT"
)

// Fixed shipping costs in BGN per delivery method.
var deliveryCosts = map[DeliveryMethod]float64{
	DeliveryAddress: 9.90,
	DeliverySpeedy:  5.20,
	DeliveryEcont:   6.90,
}

// ClassifyDelivery maps a delivery address to a method by substring match.
// Speedy is checked before Econt; an address mentioning both couriers goes to
// Speedy. Empty or unrecognized addresses mean home delivery.
func ClassifyDelivery(address string) (DeliveryMethod, float64) {
	a := strings.ToLower(address)
	switch {
	case strings.Contains(a, "спиди"):
		return DeliverySpeedy, deliveryCosts[DeliverySpeedy]
	case strings.Contains(a, "еконт") || strings.Contains(a, "econt"):
		return DeliveryEcont, deliveryCosts[DeliveryEcont]
	default:
		return DeliveryAddress, deliveryCosts[DeliveryAddress]
	}
}

// ShippingCostFor returns only the cost component of ClassifyDelivery.
func ShippingCostFor(address string) float64 {
	_, cost := ClassifyDelivery(address)
	return cost
}
