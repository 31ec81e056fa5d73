package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/navigation"
	"github.com/vladislavdragonenkov/storefront/internal/session"
)

// runWalkthrough проигрывает типичную покупку: вход, каталог, корзина,
// оформление и отслеживание. Используется как дымовой сценарий headless-запуска.
func runWalkthrough(ctx context.Context, sess *session.Session, logger *log.Entry) (domain.Order, error) {
	navigate := func(actions ...navigation.Action) error {
		for _, action := range actions {
			if _, err := sess.Navigate(action); err != nil {
				return fmt.Errorf("navigate %s: %w", action, err)
			}
		}
		return nil
	}

	if err := navigate(navigation.ActionLogin, navigation.ActionLoginSuccess, navigation.ActionOpenProducts); err != nil {
		return domain.Order{}, err
	}

	products, err := sess.Catalog()
	if err != nil {
		return domain.Order{}, fmt.Errorf("load catalog: %w", err)
	}
	if len(products) < 2 {
		return domain.Order{}, errors.New("catalog must contain at least two products")
	}

	first, err := sess.AddToCart(products[0].ID, 1)
	if err != nil {
		return domain.Order{}, err
	}
	if _, err := sess.AddToCart(products[1].ID, 1); err != nil {
		return domain.Order{}, err
	}
	sess.Increment(first.ID)

	if err := navigate(navigation.ActionOpenCart, navigation.ActionCheckout); err != nil {
		return domain.Order{}, err
	}

	quote := sess.Quote()
	logger.WithFields(log.Fields{
		"subtotal": quote.Subtotal.StringFixed(2),
		"shipping": quote.ShippingFee.StringFixed(2),
		"total":    quote.Total.StringFixed(2),
	}).Info("walkthrough checkout quote")

	order, err := sess.PlaceOrder(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("place order: %w", err)
	}

	if err := navigate(navigation.ActionTrackOrder); err != nil {
		return domain.Order{}, err
	}
	tracked, err := sess.Deliveries()
	if err != nil {
		return domain.Order{}, fmt.Errorf("load deliveries: %w", err)
	}
	for _, t := range tracked {
		if !t.CanReceive {
			continue
		}
		if _, err := sess.MarkReceived(ctx, t.Delivery.OrderID); err != nil {
			return domain.Order{}, fmt.Errorf("mark %s received: %w", t.Delivery.OrderID, err)
		}
	}

	if err := navigate(navigation.ActionBack, navigation.ActionBackToHome); err != nil {
		return domain.Order{}, err
	}

	logger.WithFields(log.Fields{
		"order_id":   order.ID,
		"total":      order.Total.StringFixed(2),
		"deliveries": len(tracked),
	}).Info("walkthrough completed")
	return order, nil
}
