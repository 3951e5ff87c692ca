package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderTotalRecomputed(t *testing.T) {
	o := Order{
		Address: "Еконт Дружба",
		Items: OrderItems{
			{Price: 10, Quantity: 2},
			{Price: 5, Quantity: 1},
		},
	}

	assert.InDelta(t, 31.90, o.Total(), 0.001)
	assert.Equal(t, DeliveryEcont, o.DeliveryMethod())
}

func TestOrderItemTolerantDecoding(t *testing.T) {
	cases := []struct {
		name string
		blob string
		want OrderItem
	}{
		{
			"current shape",
			`{"productCode":"B-12","name":"Колие","images":["a.jpg"],"price":24.9,"quantity":3}`,
			OrderItem{ProductCode: "B-12", Name: "Колие", Images: []string{"a.jpg"}, Price: 24.9, Quantity: 3},
		},
		{
			"legacy code field, string price, no images",
			`{"code":"B-12","name":"Колие","price":"24.90","quantity":"2"}`,
			OrderItem{ProductCode: "B-12", Name: "Колие", Images: []string{}, Price: 24.9, Quantity: 2},
		},
		{
			"missing numerics default",
			`{"productCode":"B-12"}`,
			OrderItem{ProductCode: "B-12", Images: []string{}, Price: 0, Quantity: 1},
		},
		{
			"garbage numerics default",
			`{"productCode":"B-12","price":"free","quantity":null}`,
			OrderItem{ProductCode: "B-12", Images: []string{}, Price: 0, Quantity: 1},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var it OrderItem
			require.NoError(t, json.Unmarshal([]byte(tc.blob), &it))
			assert.Equal(t, tc.want, it)
		})
	}
}

func TestOrderItemsSnapshotArray(t *testing.T) {
	blob := `[{"code":"A","price":"1.50","quantity":2},{"productCode":"B"}]`

	var items OrderItems
	require.NoError(t, json.Unmarshal([]byte(blob), &items))

	require.Len(t, items, 2)
	assert.InDelta(t, 3.0, items.Subtotal(), 0.001)
	assert.Equal(t, 1, items[1].Quantity)
}
