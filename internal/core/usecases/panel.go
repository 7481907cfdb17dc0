package usecases

import (
	"log/slog"
	"strconv"

	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/ports"
)

// Panel drives the status, total-count and legend regions. Any region may
// be nil and is then skipped.
type Panel struct {
	status ports.TextRegion
	total  ports.TextRegion
	legend ports.LegendRegion

	count int
}

// NewPanel creates a panel over the given regions.
func NewPanel(status, total ports.TextRegion, legend ports.LegendRegion) *Panel {
	return &Panel{status: status, total: total, legend: legend}
}

// SetStatus shows msg in the status region and logs it.
func (p *Panel) SetStatus(msg string) {
	slog.Info("status", "text", msg)
	if p.status != nil {
		p.status.SetText(msg)
	}
}

// SetTotal shows n as the total count.
func (p *Panel) SetTotal(n int) {
	if n < 0 {
		n = 0
	}
	p.count = n
	if p.total != nil {
		p.total.SetText(strconv.Itoa(n))
	}
}

// DecrementTotal lowers the total count by one, never below zero.
func (p *Panel) DecrementTotal() int {
	p.SetTotal(p.count - 1)
	return p.count
}

// Total returns the displayed total count.
func (p *Panel) Total() int { return p.count }

// ShowLegend renders l in the legend region.
func (p *Panel) ShowLegend(l domain.Legend) {
	if p.legend != nil {
		p.legend.ShowLegend(l)
	}
}
