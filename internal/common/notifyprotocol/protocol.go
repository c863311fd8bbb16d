package notifyprotocol

import "time"

// Message is published once for every successful scan.
type Message struct {
	DatasetID      string    `json:"dataset_id"`
	Source         string    `json:"source"`
	OrderNumber    string    `json:"order_number"`
	TrackingNumber string    `json:"tracking_number"`
	OriginFile     string    `json:"origin_file"`
	ScannedAt      time.Time `json:"scanned_at"`
}
