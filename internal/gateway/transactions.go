package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"moneyboard/internal/core"
	"moneyboard/internal/log"
)

// Filter narrows a transaction listing to an inclusive date range. Zero
// bounds are left open.
type Filter struct {
	Start core.Date
	End   core.Date
}

func (f Filter) query() url.Values {
	q := url.Values{}
	if !f.Start.IsZero() {
		q.Set("start_date", f.Start.String())
	}
	if !f.End.IsZero() {
		q.Set("end_date", f.End.String())
	}
	return q
}

// TransactionAPI covers one transaction collection (/expenses/ or /income/).
type TransactionAPI struct {
	c    *Client
	kind core.Kind
}

// Kind reports which collection the API addresses.
func (a *TransactionAPI) Kind() core.Kind { return a.kind }

func (a *TransactionAPI) collection() string { return "/" + a.kind.Collection() + "/" }

func (a *TransactionAPI) item(id int64) string {
	return fmt.Sprintf("/%s/%d", a.kind.Collection(), id)
}

func (a *TransactionAPI) op(verb string) string { return verb + " " + a.kind.String() }

func (a *TransactionAPI) List(ctx context.Context, f Filter) ([]core.Transaction, error) {
	var out []core.Transaction
	if err := a.c.do(ctx, a.op("list"), http.MethodGet, a.collection(), f.query(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []core.Transaction{}
	}
	return out, nil
}

func (a *TransactionAPI) Get(ctx context.Context, id int64) (core.Transaction, error) {
	var out core.Transaction
	err := a.c.do(ctx, a.op("get"), http.MethodGet, a.item(id), nil, nil, &out)
	return out, err
}

// Create posts a draft. Callers validate it first; the gateway sends it as is.
func (a *TransactionAPI) Create(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	var out core.Transaction
	if err := a.c.do(ctx, a.op("create"), http.MethodPost, a.collection(), nil, draft, &out); err != nil {
		return core.Transaction{}, err
	}
	a.c.logger.Info("Transaction created", log.NewFields().
		WithTransaction(a.kind.String(), out.ID, out.Amount.String(), out.CategoryID).ToSlice()...)
	return out, nil
}

func (a *TransactionAPI) Update(ctx context.Context, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	var out core.Transaction
	err := a.c.do(ctx, a.op("update"), http.MethodPut, a.item(id), nil, patch, &out)
	return out, err
}

func (a *TransactionAPI) Delete(ctx context.Context, id int64) error {
	return a.c.do(ctx, a.op("delete"), http.MethodDelete, a.item(id), nil, nil, nil)
}
