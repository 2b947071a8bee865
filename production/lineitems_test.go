package production

import "testing"

func TestBuildMealLineItems(t *testing.T) {
	orders := []KitchenOrder{
		{OrderID: "ord-1", CustomerName: "Alice", Lines: []KitchenLine{
			{MealName: "Chicken Wrap", Quantity: 3},
		}},
		{OrderID: "ord-2", CustomerName: "Bob", Lines: []KitchenLine{
			{MealName: "Chicken Wrap", Quantity: 2},
			{MealName: "Veggie Bowl", Quantity: 1},
		}},
	}

	items := BuildMealLineItems(orders)

	if len(items) != 2 {
		t.Fatalf("got %d line items, want 2", len(items))
	}

	wrap := items[0]
	if wrap.MealName != "Chicken Wrap" {
		t.Fatalf("first-seen order not preserved, got %q first", wrap.MealName)
	}
	if wrap.TotalQuantity != 5 {
		t.Fatalf("Chicken Wrap total = %d, want 5", wrap.TotalQuantity)
	}
	if len(wrap.Orders) != 2 {
		t.Fatalf("Chicken Wrap orders = %d, want 2", len(wrap.Orders))
	}
	if wrap.Orders[0].OrderID != "ord-1" || wrap.Orders[0].CustomerName != "Alice" {
		t.Fatalf("traceability lost: %+v", wrap.Orders[0])
	}
}

func TestBuildMealLineItemsConservation(t *testing.T) {
	orders := []KitchenOrder{
		{OrderID: "a", Lines: []KitchenLine{{MealName: "X", Quantity: 4}, {MealName: "Y", Quantity: 1}}},
		{OrderID: "b", Lines: []KitchenLine{{MealName: "X", Quantity: 2}}},
		{OrderID: "c", Lines: []KitchenLine{{MealName: "Z", Quantity: 7}, {MealName: "Y", Quantity: 3}}},
	}

	inputTotal := 0
	for _, o := range orders {
		for _, l := range o.Lines {
			inputTotal += l.Quantity
		}
	}

	outputTotal := 0
	for _, item := range BuildMealLineItems(orders) {
		outputTotal += item.TotalQuantity
	}

	if inputTotal != outputTotal {
		t.Fatalf("quantity not conserved: in %d, out %d", inputTotal, outputTotal)
	}
}

func TestBuildMealLineItemsSkipsUnresolvedNames(t *testing.T) {
	orders := []KitchenOrder{
		{OrderID: "a", Lines: []KitchenLine{
			{MealName: "  ", Quantity: 5},
			{MealName: "", Quantity: 2},
			{MealName: "Soup", Quantity: 1},
		}},
	}

	items := BuildMealLineItems(orders)
	if len(items) != 1 || items[0].MealName != "Soup" || items[0].TotalQuantity != 1 {
		t.Fatalf("got %+v, want only Soup x1", items)
	}
}

func TestBuildMealLineItemsSparse(t *testing.T) {
	// no orders means no line items, not zero-filled entries
	if items := BuildMealLineItems(nil); len(items) != 0 {
		t.Fatalf("got %d items for no orders", len(items))
	}
}
