package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
	"github.com/BuildTradeHQ/buildtrade_api/internal/notify"
	"github.com/BuildTradeHQ/buildtrade_api/internal/repository"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

// OrderService owns the post-checkout order lifecycle: reads, admin status
// changes with post-commit notifications, reviews, and the sales report.
type OrderService struct {
	orders *repository.OrderRepository
	hooks  *notify.Hooks
}

// NewOrderService creates an OrderService. hooks may be nil to disable
// status notifications.
func NewOrderService(orders *repository.OrderRepository, hooks *notify.Hooks) *OrderService {
	return &OrderService{orders: orders, hooks: hooks}
}

// Get returns one order with its items. Owners see their own orders; admins
// see any.
func (s *OrderService) Get(userID int64, role models.Role, orderID int64) (*models.Order, error) {
	o, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("ORDER_NOT_FOUND", "order not found")
		}
		return nil, utils.Internal(err)
	}
	if o.UserID != userID && role != models.RoleAdmin {
		return nil, utils.Forbidden("NOT_OWNER", "not your order")
	}
	return o, nil
}

// List returns orders scoped by role: admins see all, others their own.
func (s *OrderService) List(userID int64, role models.Role) ([]models.Order, error) {
	var (
		list []models.Order
		err  error
	)
	if role == models.RoleAdmin {
		list, err = s.orders.ListAll()
	} else {
		list, err = s.orders.ListByUser(userID)
	}
	if err != nil {
		return nil, utils.Internal(err)
	}
	return list, nil
}

// SetStatus moves an order to a new status. Only statuses from the allowed
// set are accepted; setting the current status again is a no-op and fires
// no notification. The write is a compare-and-set on the old status, so
// concurrent changes cannot both fire for the same transition. Notifiers
// run after the write and never fail the request.
func (s *OrderService) SetStatus(ctx context.Context, orderID int64, newStatus models.OrderStatus) (*models.Order, error) {
	if !newStatus.Valid() {
		return nil, utils.Validation("INVALID_STATUS", "unknown order status")
	}
	o, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("ORDER_NOT_FOUND", "order not found")
		}
		return nil, utils.Internal(err)
	}
	oldStatus := o.Status
	if oldStatus == newStatus {
		return o, nil
	}
	ok, err := s.orders.UpdateStatusFrom(orderID, oldStatus, newStatus)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if !ok {
		return nil, utils.Conflict("STATUS_CHANGED", "order status changed concurrently, retry")
	}
	o.Status = newStatus
	if s.hooks != nil {
		s.hooks.Fire(ctx, o, oldStatus, newStatus)
	}
	return o, nil
}

// CreateReview records the owner's one-per-order review.
func (s *OrderService) CreateReview(ctx context.Context, userID, orderID int64, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, utils.Validation("INVALID_RATING", "rating must be between 1 and 5")
	}
	o, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("ORDER_NOT_FOUND", "order not found")
		}
		return nil, utils.Internal(err)
	}
	if o.UserID != userID {
		return nil, utils.Forbidden("NOT_OWNER", "not your order")
	}
	exists, err := s.orders.ReviewExists(orderID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if exists {
		return nil, utils.Conflict("REVIEW_EXISTS", "order already has a review")
	}
	rev := &models.Review{OrderID: orderID, Rating: rating, Comment: comment}
	if err := s.orders.CreateReview(rev); err != nil {
		return nil, utils.Internal(err)
	}
	return rev, nil
}

// ListReviews returns the reviews on the user's own orders.
func (s *OrderService) ListReviews(userID int64) ([]models.Review, error) {
	list, err := s.orders.ListReviewsByUser(userID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	return list, nil
}

// SalesReport aggregates daily order counts and revenue between the
// optional YYYY-MM-DD bounds (admin view).
func (s *OrderService) SalesReport(from, to string) ([]models.SalesRow, error) {
	rows, err := s.orders.SalesReport(from, to)
	if err != nil {
		return nil, utils.Internal(err)
	}
	log.Debug().Str("from", from).Str("to", to).Int("days", len(rows)).Msg("sales report generated")
	return rows, nil
}
