package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDelivery(t *testing.T) {
	cases := []struct {
		name    string
		address string
		method  DeliveryMethod
		cost    float64
	}{
		{"empty address means home delivery", "", DeliveryAddress, 9.90},
		{"plain street address", "ул. Витоша 15, София", DeliveryAddress, 9.90},
		{"speedy office", "Спиди офис Младост 1", DeliverySpeedy, 5.20},
		{"speedy lowercase", "до офис на спиди", DeliverySpeedy, 5.20},
		{"econt cyrillic", "Еконт Люлин", DeliveryEcont, 6.90},
		{"econt latin", "Econt office Varna", DeliveryEcont, 6.90},
		{"both couriers mentioned, speedy wins", "еконт или спиди, все едно", DeliverySpeedy, 5.20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, cost := ClassifyDelivery(tc.address)
			assert.Equal(t, tc.method, m)
			assert.InDelta(t, tc.cost, cost, 0.001)
		})
	}
}

func TestShippingCostFor(t *testing.T) {
	assert.InDelta(t, 6.90, ShippingCostFor("ЕКОНТ Бургас"), 0.001)
}
