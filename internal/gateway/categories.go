package gateway

import (
	"context"
	"fmt"
	"net/http"

	"moneyboard/internal/core"
	"moneyboard/internal/log"
)

// CategoryAPI covers /categories/.
type CategoryAPI struct{ c *Client }

func (a *CategoryAPI) List(ctx context.Context) ([]core.Category, error) {
	var out []core.Category
	if err := a.c.do(ctx, "list categories", http.MethodGet, "/categories/", nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []core.Category{}
	}
	return out, nil
}

func (a *CategoryAPI) Create(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	var out core.Category
	err := a.c.do(ctx, "create category", http.MethodPost, "/categories/", nil, in, &out)
	if err == nil {
		a.c.logger.Info("Category created", log.FieldCategoryID, out.ID)
	}
	return out, err
}

func (a *CategoryAPI) Update(ctx context.Context, id int64, patch core.CategoryPatch) (core.Category, error) {
	var out core.Category
	err := a.c.do(ctx, "update category", http.MethodPut, fmt.Sprintf("/categories/%d", id), nil, patch, &out)
	return out, err
}

func (a *CategoryAPI) Delete(ctx context.Context, id int64) error {
	return a.c.do(ctx, "delete category", http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, nil, nil)
}
