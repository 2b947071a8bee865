package production

import "strings"

// KitchenOrder is an order normalized for aggregation: regular orders map
// directly, package orders arrive here after their meal selections were
// resolved to names against the catalog.
type KitchenOrder struct {
	OrderID      string
	CustomerName string
	Lines        []KitchenLine
}

// KitchenLine is one meal-and-quantity entry of a normalized order.
type KitchenLine struct {
	MealName string
	Quantity int
}

// ContributingOrder ties a meal line item back to the order that produced it.
type ContributingOrder struct {
	OrderID      string `json:"orderId"`
	Quantity     int    `json:"quantity"`
	CustomerName string `json:"customerName"`
}

// MealLineItem is the per-meal tally across all orders for the day.
type MealLineItem struct {
	MealName      string              `json:"mealName"`
	TotalQuantity int                 `json:"totalQuantity"`
	Orders        []ContributingOrder `json:"orders"`
}

// BuildMealLineItems flattens normalized orders into one tally per distinct
// meal name. Lines without a resolvable meal name are skipped. Output is in
// first-seen order so results are deterministic.
func BuildMealLineItems(orders []KitchenOrder) []MealLineItem {
	index := make(map[string]int)
	items := make([]MealLineItem, 0)

	for _, order := range orders {
		for _, line := range order.Lines {
			name := strings.TrimSpace(line.MealName)
			if name == "" {
				continue
			}

			i, ok := index[name]
			if !ok {
				i = len(items)
				index[name] = i
				items = append(items, MealLineItem{MealName: name})
			}

			items[i].TotalQuantity += line.Quantity
			items[i].Orders = append(items[i].Orders, ContributingOrder{
				OrderID:      order.OrderID,
				Quantity:     line.Quantity,
				CustomerName: order.CustomerName,
			})
		}
	}

	return items
}
