package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/moacafe/internal/ir"
)

// SalesSummary is the staff dashboard's headline numbers.
type SalesSummary struct {
	TotalSales int64                  `json:"totalSales"`
	OrderCount int                    `json:"orderCount"`
	ByStatus   map[ir.OrderStatus]int `json:"byStatus"`
}

// Summary totals the current orders. Cancelled orders count towards
// OrderCount and ByStatus but not towards TotalSales.
func (a *App) Summary() SalesSummary {
	s := SalesSummary{ByStatus: map[ir.OrderStatus]int{
		ir.StatusPending:   0,
		ir.StatusPreparing: 0,
		ir.StatusDelivered: 0,
		ir.StatusCancelled: 0,
	}}
	for _, o := range a.engine.Orders() {
		s.OrderCount++
		s.ByStatus[o.Status]++
		if o.Status != ir.StatusCancelled {
			s.TotalSales += o.TotalAmount
		}
	}
	return s
}

// TablePayloadPrefix starts every table QR payload.
const TablePayloadPrefix = "MOA_TABLE_"

// Tables returns the QR payload for every table in the event configuration.
func (a *App) Tables() []string {
	count := a.engine.EventConfig().TableCount
	out := make([]string, count)
	for i := range out {
		out[i] = TablePayload(i + 1)
	}
	return out
}

// TablePayload returns the QR payload for one table.
func TablePayload(table int) string {
	return TablePayloadPrefix + strconv.Itoa(table)
}

// ParseTable accepts a bare table number or a QR payload and checks it
// against the event configuration.
func (a *App) ParseTable(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), TablePayloadPrefix))
	if err != nil {
		return 0, &Error{Code: ErrCodeTableOutOfRange, Message: fmt.Sprintf("not a table: %q", s)}
	}
	if err := a.checkTable(n); err != nil {
		return 0, err
	}
	return n, nil
}
