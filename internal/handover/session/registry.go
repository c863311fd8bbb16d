package session

import "sort"

// Registry is the read-only index of one loaded dataset. It is never mutated
// after construction, so lookups need no locking.
type Registry struct {
	orders    map[string]Order
	bySource  map[Source]int
	fileCount int
	skipped   int
}

// NewRegistry indexes orders by tracking number. Rows without a tracking number
// are skipped. When a tracking number repeats, a Shopee row wins over others,
// otherwise the first row is kept.
func NewRegistry(orders []Order) *Registry {
	r := &Registry{
		orders:   make(map[string]Order, len(orders)),
		bySource: make(map[Source]int, len(Sources)),
	}
	files := make(map[string]struct{})
	for _, order := range orders {
		if order.TrackingNumber == "" {
			r.skipped++
			continue
		}
		if order.Source == "" {
			order.Source = SourceUnknown
		}
		if order.OriginFile != "" {
			files[order.OriginFile] = struct{}{}
		}
		existing, ok := r.orders[order.TrackingNumber]
		if ok {
			r.skipped++
			if existing.Source == SourceShopee || order.Source != SourceShopee {
				continue
			}
			r.bySource[existing.Source]--
		}
		r.orders[order.TrackingNumber] = order
		r.bySource[order.Source]++
	}
	r.fileCount = len(files)
	return r
}

func (r *Registry) Lookup(trackingNumber string) (Order, bool) {
	order, ok := r.orders[trackingNumber]
	return order, ok
}

func (r *Registry) Len() int {
	return len(r.orders)
}

func (r *Registry) CountBySource() map[Source]int {
	res := make(map[Source]int, len(Sources))
	for _, source := range Sources {
		res[source] = r.bySource[source]
	}
	return res
}

func (r *Registry) FileCount() int {
	return r.fileCount
}

// Skipped is the number of input rows that did not make it into the index.
func (r *Registry) Skipped() int {
	return r.skipped
}

// Orders returns the indexed orders sorted by tracking number.
func (r *Registry) Orders() []Order {
	res := make([]Order, 0, len(r.orders))
	for _, order := range r.orders {
		res = append(res, order)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].TrackingNumber < res[j].TrackingNumber
	})
	return res
}

func (r *Registry) trackingNumbers() []string {
	res := make([]string, 0, len(r.orders))
	for trackingNumber := range r.orders {
		res = append(res, trackingNumber)
	}
	return res
}
