package enums

import "fmt"

// StockHolderType identifies which kind of site owns an inventory row.
type StockHolderType string

const (
	StockHolderWarehouse StockHolderType = "warehouse"
	StockHolderStore     StockHolderType = "store"
)

var validStockHolderTypes = []StockHolderType{
	StockHolderWarehouse,
	StockHolderStore,
}

// IsValid reports whether the value is a known StockHolderType.
func (h StockHolderType) IsValid() bool {
	for _, candidate := range validStockHolderTypes {
		if candidate == h {
			return true
		}
	}
	return false
}

// ParseStockHolderType converts raw input into a StockHolderType.
func ParseStockHolderType(value string) (StockHolderType, error) {
	for _, candidate := range validStockHolderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock holder type %q", value)
}
