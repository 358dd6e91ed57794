package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
	"github.com/BuildTradeHQ/buildtrade_api/internal/repository"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

// CheckoutService converts cart items into an order in one transaction:
// validate every line first, then mutate. Any failure anywhere rolls back
// everything — no order row, no stock change, no cart change.
type CheckoutService struct {
	db             *sqlx.DB
	carts          *repository.CartRepository
	orders         *repository.OrderRepository
	pricing        *PricingService
	inventory      *InventoryService
	taxRate        decimal.Decimal
	deliveryCharge decimal.Decimal
}

// NewCheckoutService creates a CheckoutService with the given tax rate and
// the delivery charge applied when the request does not supply one.
func NewCheckoutService(
	db *sqlx.DB,
	carts *repository.CartRepository,
	orders *repository.OrderRepository,
	pricing *PricingService,
	inventory *InventoryService,
	taxRate, deliveryCharge decimal.Decimal,
) *CheckoutService {
	return &CheckoutService{
		db:             db,
		carts:          carts,
		orders:         orders,
		pricing:        pricing,
		inventory:      inventory,
		taxRate:        taxRate,
		deliveryCharge: deliveryCharge,
	}
}

// CheckoutInput is the checkout request. An empty ItemIDs means the whole
// cart; a subset checks out only those lines and leaves the rest untouched.
// A nil DeliveryCharges falls back to the configured flat charge.
type CheckoutInput struct {
	ItemIDs         []int64
	Address         AddressInput
	PaymentMethod   models.PaymentMethod
	DeliveryCharges *decimal.Decimal
}

// AddressInput is the delivery address supplied at checkout.
type AddressInput struct {
	Line1 string `json:"line1" binding:"required"`
	City  string `json:"city" binding:"required"`
	State string `json:"state"`
	Zip   string `json:"zip"`
	Phone string `json:"phone" binding:"required"`
}

// Checkout runs the two-phase transaction. Phase one reads the selected
// cart lines inside the tx, resolves every price, and checks every stock
// level — collecting all failures, not just the first. Phase two creates
// the order, writes snapshot lines, decrements stock (guarded, so a
// concurrent buyer makes the decrement fail and the whole order roll back),
// and deletes exactly the checked-out cart rows.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64, role models.Role, in CheckoutInput) (*models.Order, error) {
	if !in.PaymentMethod.Valid() {
		return nil, utils.Validation("INVALID_PAYMENT_METHOD", "unsupported payment method")
	}
	if in.Address.Line1 == "" || in.Address.City == "" || in.Address.Phone == "" {
		return nil, utils.Validation("INVALID_ADDRESS", "address line, city and phone are required")
	}
	delivery := s.deliveryCharge
	if in.DeliveryCharges != nil {
		if in.DeliveryCharges.IsNegative() {
			return nil, utils.Validation("INVALID_DELIVERY_CHARGES", "delivery charges must be >= 0")
		}
		delivery = *in.DeliveryCharges
	}

	var order *models.Order
	err := repository.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		lines, err := s.carts.Lines(tx, userID, in.ItemIDs)
		if err != nil {
			return utils.Internal(err)
		}
		if len(lines) == 0 {
			return utils.Validation("CART_EMPTY", "no cart items to check out")
		}

		// Validation pass: price every line and check every stock level
		// before touching anything.
		prices := make([]decimal.Decimal, len(lines))
		var unpriced []string
		var short []stockFailure
		for i, line := range lines {
			price, _, err := s.pricing.Resolve(tx, line.MaterialID, role)
			if err != nil {
				if utils.KindOf(err) == utils.KindPricing {
					unpriced = append(unpriced, line.SKU)
					continue
				}
				return err
			}
			prices[i] = price
			if line.Qty > line.StockQty {
				short = append(short, stockFailure{SKU: line.SKU, Requested: line.Qty, Available: line.StockQty})
			}
		}
		if len(unpriced) > 0 {
			return &utils.AppError{
				Kind:    utils.KindPricing,
				Code:    "PRICE_UNAVAILABLE",
				Message: "no price available for some materials",
				Details: unpriced,
			}
		}
		if len(short) > 0 {
			return utils.ValidationWithDetails("INSUFFICIENT_STOCK", "not enough stock for some materials", short)
		}

		// Mutation pass.
		addr := &models.Address{
			UserID: userID,
			Line1:  in.Address.Line1,
			City:   in.Address.City,
			State:  in.Address.State,
			Zip:    in.Address.Zip,
			Phone:  in.Address.Phone,
		}
		if err := s.orders.CreateAddress(tx, addr); err != nil {
			return utils.Internal(err)
		}

		order = &models.Order{
			UserID:          userID,
			Address:         formatAddress(in.Address),
			Status:          models.OrderPlaced,
			Subtotal:        decimal.Zero,
			Tax:             decimal.Zero,
			DeliveryCharges: delivery,
			Total:           decimal.Zero,
			PaymentMethod:   in.PaymentMethod,
		}
		if err := s.orders.Create(tx, order); err != nil {
			return utils.Internal(err)
		}

		subtotal := decimal.Zero
		itemIDs := make([]int64, 0, len(lines))
		for i, line := range lines {
			itemIDs = append(itemIDs, line.ID)
			snapshot := models.MaterialSnapshot{
				Title: line.Title,
				SKU:   line.SKU,
				Unit:  line.Unit,
				Price: prices[i],
			}
			item := &models.OrderItem{
				OrderID:    order.ID,
				MaterialID: line.MaterialID,
				Title:      snapshot.Title,
				SKU:        snapshot.SKU,
				Unit:       snapshot.Unit,
				Qty:        line.Qty,
				Price:      snapshot.Price,
				LineTotal:  snapshot.Price.Mul(decimal.NewFromInt(int64(line.Qty))),
			}
			if err := s.orders.InsertItem(tx, item); err != nil {
				return utils.Internal(err)
			}
			// Guarded decrement; a concurrent checkout that got here first
			// makes this fail and rolls the whole order back.
			if _, err := s.inventory.DecrementStock(tx, line.MaterialID, line.Qty); err != nil {
				return err
			}
			s.inventory.ReevaluateAlert(tx, line.MaterialID)
			subtotal = subtotal.Add(item.LineTotal)
			order.Items = append(order.Items, *item)
		}

		order.Subtotal = subtotal
		order.Tax = subtotal.Mul(s.taxRate).Round(2)
		order.Total = subtotal.Add(order.Tax).Add(order.DeliveryCharges)
		if err := s.orders.UpdateTotals(tx, order); err != nil {
			return utils.Internal(err)
		}

		if _, err := s.carts.DeleteByIDs(tx, userID, itemIDs); err != nil {
			return utils.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Int64("order_id", order.ID).
		Int64("user_id", userID).
		Int("items", len(order.Items)).
		Str("total", order.Total.StringFixed(2)).
		Msg("checkout completed")
	return order, nil
}

// formatAddress renders the snapshot text stored on the order.
func formatAddress(a AddressInput) string {
	parts := []string{a.Line1, a.City}
	if a.State != "" {
		parts = append(parts, a.State)
	}
	if a.Zip != "" {
		parts = append(parts, a.Zip)
	}
	return fmt.Sprintf("%s (ph: %s)", strings.Join(parts, ", "), a.Phone)
}
