package data

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Dataset struct {
	ID          uuid.UUID
	LoadedAt    time.Time
	TotalOrders int
	FileCount   int
}

type LineItem struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Variant   string          `json:"variant"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Order struct {
	DatasetID        uuid.UUID
	TrackingNumber   string
	OrderNumber      string
	Source           string
	OriginFile       string
	Items            []LineItem
	ShippingProvider string
	TotalAmount      decimal.Decimal
}

type ScanEvent struct {
	DatasetID      uuid.UUID
	TrackingNumber string
	OrderNumber    string
	Source         string
	OriginFile     string
	ScannedAt      time.Time
}
