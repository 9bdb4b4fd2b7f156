package engine

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/resume-quest/pkg/shop"
)

// Purchase buys a shop item. Rejections leave the player unchanged, show a
// notification and return one of the shop sentinel errors.
func (e *Engine) Purchase(itemID string) error {
	defer e.flush()
	e.mu.Lock()
	defer e.mu.Unlock()

	item, ok := e.catalog.Find(itemID)
	if !ok {
		return fmt.Errorf("%w: %s", shop.ErrUnknownItem, itemID)
	}

	p, err := shop.Purchase(e.player, item)
	if err != nil {
		switch {
		case errors.Is(err, shop.ErrAlreadyOwned):
			e.notify("You already own " + item.Name + ".")
		case errors.Is(err, shop.ErrInsufficientCoins):
			e.notify("Not enough coins for " + item.Name + ".")
		}
		e.log.Debug("Purchase rejected", "item_id", itemID, "error", err)
		return err
	}

	e.player = p
	e.notify("You bought " + item.Name + "!")
	e.emit(EventItemPurchased, map[string]any{"item_id": item.ID, "cost": item.Cost})
	e.log.Info("Item purchased", "item_id", item.ID, "coins", p.Coins)
	return nil
}

// Catalog returns the vendor's stock.
func (e *Engine) Catalog() shop.Catalog {
	return append(shop.Catalog(nil), e.catalog...)
}
