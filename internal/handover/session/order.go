package session

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Source string

const (
	SourceShopee  = Source("shopee")
	SourceTikTok  = Source("tiktok")
	SourceUnknown = Source("unknown")
)

// Sources lists every classification in display order.
var Sources = []Source{SourceShopee, SourceTikTok, SourceUnknown}

// ClassifySource maps a marketplace label from an export ("Shopee", "TikTok Shop", ...)
// onto a Source.
func ClassifySource(label string) Source {
	normalized := strings.ToLower(strings.TrimSpace(label))
	normalized = strings.ReplaceAll(normalized, " ", "")
	switch {
	case strings.HasPrefix(normalized, string(SourceShopee)):
		return SourceShopee
	case strings.HasPrefix(normalized, string(SourceTikTok)):
		return SourceTikTok
	}
	return SourceUnknown
}

type LineItem struct {
	SKU       string
	Name      string
	Variant   string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i LineItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	OrderNumber      string
	TrackingNumber   string
	Source           Source
	OriginFile       string
	Items            []LineItem
	ShippingProvider string
	TotalAmount      decimal.Decimal
}

type ScanEvent struct {
	TrackingNumber string
	OrderNumber    string
	Source         Source
	OriginFile     string
	ScannedAt      time.Time
}

func newScanEvent(order Order, scannedAt time.Time) ScanEvent {
	return ScanEvent{
		TrackingNumber: order.TrackingNumber,
		OrderNumber:    order.OrderNumber,
		Source:         order.Source,
		OriginFile:     order.OriginFile,
		ScannedAt:      scannedAt,
	}
}
