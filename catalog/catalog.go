// Package catalog holds the static magnet price table.
package catalog

import "fmt"

// Size is a printable magnet size. Prices are in minor currency units.
type Size struct {
	Code      string `json:"code"`
	Label     string `json:"label"`
	UnitPrice int64  `json:"unitPrice"`
}

type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

const (
	SizeSmall     = "small"
	SizeMedium    = "medium"
	SizeLarge     = "large"
	SizePanoramic = "panoramic"

	DefaultSize   = SizeMedium
	DefaultBorder = "none"
	DefaultFinish = "glossy"
)

var sizes = []Size{
	{Code: SizeSmall, Label: `Small (2x2")`, UnitPrice: 399},
	{Code: SizeMedium, Label: `Medium (3x3")`, UnitPrice: 599},
	{Code: SizeLarge, Label: `Large (4x4")`, UnitPrice: 799},
	{Code: SizePanoramic, Label: `Panoramic (2x6")`, UnitPrice: 999},
}

var borders = []Option{
	{Code: "none", Label: "No Border"},
	{Code: "thin", Label: "Thin Border"},
	{Code: "thick", Label: "Thick Border"},
	{Code: "rounded", Label: "Rounded Border"},
}

var finishes = []Option{
	{Code: "matte", Label: "Matte"},
	{Code: "glossy", Label: "Glossy"},
}

// Sizes returns a copy of the size table in display order.
func Sizes() []Size {
	return append([]Size(nil), sizes...)
}

func Borders() []Option {
	return append([]Option(nil), borders...)
}

func Finishes() []Option {
	return append([]Option(nil), finishes...)
}

// LookupSize finds a size by code.
func LookupSize(code string) (Size, bool) {
	for _, s := range sizes {
		if s.Code == code {
			return s, true
		}
	}
	return Size{}, false
}

func ValidBorder(code string) bool {
	return hasOption(borders, code)
}

func ValidFinish(code string) bool {
	return hasOption(finishes, code)
}

func hasOption(options []Option, code string) bool {
	for _, o := range options {
		if o.Code == code {
			return true
		}
	}
	return false
}

// LinePrice returns the quantity-inclusive price of a line, the value the
// storefront sends as an order item's price.
func LinePrice(sizeCode string, quantity int) (int64, error) {
	size, ok := LookupSize(sizeCode)
	if !ok {
		return 0, fmt.Errorf("unknown size %q", sizeCode)
	}
	if quantity < 1 {
		return 0, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	return size.UnitPrice * int64(quantity), nil
}
