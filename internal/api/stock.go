package api

import (
	"context"
	"fmt"

	"github.com/harrylevesque/campusclinic/internal/models"
)

type StockService struct {
	res resource[models.StockItem]
}

func (s *StockService) List(ctx context.Context) ([]models.StockItem, error) {
	return s.res.list(ctx, nil)
}

func (s *StockService) Get(ctx context.Context, id models.ID) (models.StockItem, error) {
	if err := requireID(id); err != nil {
		return models.StockItem{}, err
	}
	return s.res.get(ctx, id)
}

func (s *StockService) Create(ctx context.Context, item models.StockItem) (models.StockItem, error) {
	return s.res.create(ctx, item)
}

func (s *StockService) Update(ctx context.Context, id models.ID, item models.StockItem) (models.StockItem, error) {
	if err := requireID(id); err != nil {
		return models.StockItem{}, err
	}
	return s.res.update(ctx, id, item)
}

func (s *StockService) Delete(ctx context.Context, id models.ID) error {
	if err := requireID(id); err != nil {
		return err
	}
	return s.res.delete(ctx, id)
}

type quantityPatch struct {
	Quantity int `json:"quantity"`
}

// Adjust adds delta to the item's quantity. It reads then writes the item;
// a concurrent edit in between is overwritten.
func (s *StockService) Adjust(ctx context.Context, id models.ID, delta int) (models.StockItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return models.StockItem{}, err
	}
	n := item.Quantity + delta
	if n < 0 {
		return models.StockItem{}, &Error{
			Kind:   KindValidation,
			Fields: map[string][]string{"quantity": {fmt.Sprintf("Only %d %s left.", item.Quantity, unitOr(item.Unit, "units"))}},
		}
	}
	return s.res.update(ctx, id, quantityPatch{Quantity: n})
}

func unitOr(unit, def string) string {
	if unit == "" {
		return def
	}
	return unit
}
