package enums

import "fmt"

// StockUnit is the unit a product's stock counter is denominated in.
type StockUnit string

const (
	StockUnitPiece StockUnit = "PIECE"
	StockUnitKg    StockUnit = "KG"
	StockUnitLitre StockUnit = "LITRE"
	StockUnitPack  StockUnit = "PACK"
)

var validStockUnits = []StockUnit{
	StockUnitPiece,
	StockUnitKg,
	StockUnitLitre,
	StockUnitPack,
}

// String implements fmt.Stringer.
func (s StockUnit) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockUnit.
func (s StockUnit) IsValid() bool {
	for _, candidate := range validStockUnits {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockUnit converts raw input into a StockUnit.
func ParseStockUnit(value string) (StockUnit, error) {
	for _, candidate := range validStockUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock unit %q", value)
}
