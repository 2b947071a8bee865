package production

import (
	"fmt"
	"strings"
)

// Unit equivalence classes. Units outside the table form singleton classes
// keyed by the unit string itself, so they never aggregate with anything else.
const (
	ClassMass   = "mass"
	ClassVolume = "volume"
	ClassCount  = "count"
)

const (
	BaseMass   = "g"
	BaseVolume = "ml"
	BaseCount  = "pcs"
)

type unitDef struct {
	class    string
	toBase   float64
	baseUnit string
}

var unitTable = map[string]unitDef{
	// mass (base = g)
	"mg": {ClassMass, 0.001, BaseMass},
	"g":  {ClassMass, 1, BaseMass},
	"kg": {ClassMass, 1000, BaseMass},
	"oz": {ClassMass, 28.349523125, BaseMass},
	"lb": {ClassMass, 453.59237, BaseMass},

	// volume (base = ml)
	"ml":   {ClassVolume, 1, BaseVolume},
	"cl":   {ClassVolume, 10, BaseVolume},
	"l":    {ClassVolume, 1000, BaseVolume},
	"tsp":  {ClassVolume, 4.92892159375, BaseVolume},
	"tbsp": {ClassVolume, 14.78676478125, BaseVolume},
	"cup":  {ClassVolume, 236.5882365, BaseVolume},

	// count (base = pcs)
	"pcs":   {ClassCount, 1, BaseCount},
	"pc":    {ClassCount, 1, BaseCount},
	"piece": {ClassCount, 1, BaseCount},
	"each":  {ClassCount, 1, BaseCount},
	"dozen": {ClassCount, 12, BaseCount},
}

var unitAliases = map[string]string{
	"gram":        "g",
	"grams":       "g",
	"kilogram":    "kg",
	"kilograms":   "kg",
	"milligram":   "mg",
	"milligrams":  "mg",
	"milliliter":  "ml",
	"milliliters": "ml",
	"liter":       "l",
	"liters":      "l",
	"litre":       "l",
	"litres":      "l",
	"lbs":         "lb",
	"pieces":      "piece",
	"ea":          "each",
}

func normalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if alias, ok := unitAliases[u]; ok {
		return alias
	}
	return u
}

// UnitClass returns the equivalence class of a unit. Unrecognized units are
// their own class.
func UnitClass(unit string) string {
	u := normalizeUnit(unit)
	if def, ok := unitTable[u]; ok {
		return def.class
	}
	return "unit:" + u
}

// ConvertToBaseUnit converts a quantity to its class's canonical base unit.
// An unrecognized unit converts to itself unchanged; that is not an error.
func ConvertToBaseUnit(quantity float64, unit string) (float64, string) {
	u := normalizeUnit(unit)
	if def, ok := unitTable[u]; ok {
		return quantity * def.toBase, def.baseUnit
	}
	return quantity, unit
}

// CanAggregateUnits reports whether every unit in the list shares one
// equivalence class. When it does not, reason names the incompatible units.
func CanAggregateUnits(units []string) (bool, string) {
	if len(units) <= 1 {
		return true, ""
	}

	firstClass := UnitClass(units[0])
	for _, u := range units[1:] {
		if UnitClass(u) != firstClass {
			return false, fmt.Sprintf("cannot combine %q with %q", units[0], u)
		}
	}
	return true, ""
}
