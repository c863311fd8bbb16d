package handoverprotocol

import (
	"time"

	"github.com/shopspring/decimal"
)

type ScanKind string

const (
	Success       ScanKind = "success"
	Ignored       ScanKind = "ignored"
	NotFound      ScanKind = "not_found"
	Duplicate     ScanKind = "duplicate"
	Uninitialized ScanKind = "uninitialized"
	Failure       ScanKind = "error"
)

type LineItem struct {
	SKU       string          `json:"sku" yaml:"sku"`
	Name      string          `json:"name" yaml:"name"`
	Variant   string          `json:"variant,omitempty" yaml:"variant"`
	Quantity  int             `json:"quantity" yaml:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" yaml:"unit_price"`
}

// Order is one row of a marketplace export. Source is the marketplace label as
// exported ("Shopee", "TikTok Shop", ...).
type Order struct {
	OrderNumber      string          `json:"order_number" yaml:"order_number"`
	TrackingNumber   string          `json:"tracking_number" yaml:"tracking_number"`
	Source           string          `json:"source" yaml:"source"`
	OriginFile       string          `json:"origin_file" yaml:"origin_file"`
	Items            []LineItem      `json:"items,omitempty" yaml:"items"`
	ShippingProvider string          `json:"shipping_provider,omitempty" yaml:"shipping_provider"`
	TotalAmount      decimal.Decimal `json:"total_amount" yaml:"total_amount"`
}

type LoadRequest struct {
	Orders []Order `json:"orders" yaml:"orders"`
}

type LoadSummary struct {
	DatasetID   string         `json:"dataset_id"`
	TotalOrders int            `json:"total_orders"`
	BySource    map[string]int `json:"by_source"`
	FileCount   int            `json:"file_count"`
	Skipped     int            `json:"skipped"`
}

type ScanRequest struct {
	Code string `json:"code"`
}

type ScanEvent struct {
	TrackingNumber string    `json:"tracking_number"`
	OrderNumber    string    `json:"order_number"`
	Source         string    `json:"source"`
	OriginFile     string    `json:"origin_file"`
	ScannedAt      time.Time `json:"scanned_at"`
}

type ScanResponse struct {
	Kind                ScanKind   `json:"kind"`
	Message             string     `json:"message,omitempty"`
	Code                string     `json:"code,omitempty"`
	Event               *ScanEvent `json:"event,omitempty"`
	Order               *Order     `json:"order,omitempty"`
	PreviouslyScannedAt *time.Time `json:"previously_scanned_at,omitempty"`
}

type Stats struct {
	TotalOrders     int            `json:"total_orders"`
	BySource        map[string]int `json:"by_source"`
	ScannedCount    int            `json:"scanned_count"`
	Remaining       int            `json:"remaining"`
	ScannedBySource map[string]int `json:"scanned_by_source"`
}

type Health struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
