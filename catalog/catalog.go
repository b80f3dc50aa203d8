package catalog

// Part is a catalog entry. Parts are compared by value and used directly
// as map keys, so the struct must stay comparable.
type Part struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SampleParts returns the built-in part catalog used for seeding.
func SampleParts() []Part {
	return []Part{
		{ID: "P1001", Name: "Oil Filter", Description: "Standard oil filter"},
		{ID: "P1002", Name: "Air Filter", Description: "Engine air filter"},
		{ID: "P1003", Name: "Spark Plug", Description: "Iridium spark plug"},
		{ID: "P1004", Name: "Brake Pad", Description: "Front ceramic pads"},
		{ID: "P1005", Name: "Brake Disc", Description: "Vented front brake disc"},
		{ID: "P1006", Name: "Wiper Blade", Description: "22-inch all-weather"},
		{ID: "P1007", Name: "Headlight Bulb", Description: "H4 Halogen bulb"},
		{ID: "P1A008", Name: "Taillight Bulb", Description: "P21W bulb"},
		{ID: "P1009", Name: "Battery", Description: "12V 60Ah AGM battery"},
		{ID: "P1010", Name: "Alternator", Description: "120A alternator"},
		{ID: "P1S11", Name: "Starter Motor", Description: "1.4kW starter"},
		{ID: "P1012", Name: "Timing Belt", Description: "Rubber timing belt kit"},
		{ID: "P1013", Name: "Water Pump", Description: "Coolant water pump"},
		{ID: "P1014", Name: "Radiator", Description: "Aluminum core radiator"},
		{ID: "P1015", Name: "Tire", Description: "205/55R16 All-Season"},
		{ID: "P1016", Name: "Wheel Rim", Description: "16-inch alloy rim"},
		{ID: "P1017", Name: "Shock Absorber", Description: "Front gas shock"},
		{ID: "P1018", Name: "Exhaust Muffler", Description: "Stainless steel muffler"},
		{ID: "P1019", Name: "Catalytic Converter", Description: "OEM spec converter"},
		{ID: "P1020", Name: "Fuel Injector", Description: "Bosch fuel injector"},
	}
}

// InitialStock returns the seed stock levels for the first ten sample parts.
func InitialStock(parts []Part) map[Part]int {
	quantities := []int{25, 30, 50, 20, 50, 25, 30, 50, 20, 40}
	stock := make(map[Part]int, len(quantities))
	for i, qty := range quantities {
		if i >= len(parts) {
			break
		}
		stock[parts[i]] = qty
	}
	return stock
}
