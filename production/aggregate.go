package production

// QuantityItem is one (quantity, unit) pair awaiting aggregation. Provenance
// travels alongside in the resolver's buckets; the aggregator only needs the
// numbers.
type QuantityItem struct {
	Quantity float64
	Unit     string
}

// Total is a normalized aggregate in one base unit.
type Total struct {
	BaseValue float64
	BaseUnit  string
}

// AggregateQuantities converts every item to base units and sums them. The
// result's unit comes from converting the first item. Unit compatibility is
// deliberately not enforced here: callers check CanAggregateUnits and log a
// warning, but aggregation proceeds regardless, because a visibly wrong
// number is more useful to kitchen staff than a missing one.
func AggregateQuantities(items []QuantityItem) Total {
	if len(items) == 0 {
		return Total{}
	}

	_, baseUnit := ConvertToBaseUnit(items[0].Quantity, items[0].Unit)

	var sum float64
	for _, item := range items {
		v, _ := ConvertToBaseUnit(item.Quantity, item.Unit)
		sum += v
	}

	return Total{BaseValue: sum, BaseUnit: baseUnit}
}
