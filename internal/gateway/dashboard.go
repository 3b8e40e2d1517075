package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"moneyboard/internal/core"
)

// DashboardAPI covers /dashboard/.
type DashboardAPI struct{ c *Client }

// Summary fetches the monthly summary. A zero period asks for the server's
// current month. A nil summary with a nil error means the server had none.
func (a *DashboardAPI) Summary(ctx context.Context, p core.Period) (*core.DashboardSummary, error) {
	q := url.Values{}
	if !p.IsZero() {
		q.Set("year", strconv.Itoa(p.Year))
		q.Set("month", strconv.Itoa(p.Month))
	}
	var out *core.DashboardSummary
	if err := a.c.do(ctx, "dashboard summary", http.MethodGet, "/dashboard/summary", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *DashboardAPI) MonthlyTrend(ctx context.Context) (core.MonthlyTrend, error) {
	var out core.MonthlyTrend
	err := a.c.do(ctx, "monthly trend", http.MethodGet, "/dashboard/monthly-trend", nil, nil, &out)
	return out, err
}
