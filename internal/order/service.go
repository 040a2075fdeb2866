package order

import (
	"context"
	"errors"
	"fmt"

	"aura-be/internal/discount"
	"aura-be/internal/logger"
	"aura-be/internal/utils"

	"go.uber.org/zap"
)

type PlaceOrderInput struct {
	StoreID      int64       `json:"store_id"`
	Items        []OrderItem `json:"items"`
	DiscountCode string      `json:"discount_code"`
	Phone        string      `json:"phone"`
	// Direct places the order as Processing immediately (cash-on-delivery
	// style), deducting stock in the creation transaction instead of
	// waiting for a gateway callback.
	Direct bool `json:"direct"`
}

type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error)
	GetOrders(ctx context.Context) ([]*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
	SettlePayment(ctx context.Context, txnid string) (SettleOutcome, error)
	CancelWithNote(ctx context.Context, id, note string) error
}

type service struct {
	repo      Repository
	discounts discount.Service
	taxRate   float64
}

func NewService(repo Repository, discounts discount.Service, taxRate float64) Service {
	return &service{
		repo:      repo,
		discounts: discounts,
		taxRate:   taxRate,
	}
}

// PlaceOrder builds an immutable order snapshot from the cart and persists it
// before any payment redirect happens. The returned order's ID is the txnid
// the gateway will echo back.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.Int("item_count", len(input.Items)),
	)

	email := utils.GetUserEmailFromContext(ctx)
	if email == "" {
		return nil, ErrUnauthenticated
	}

	if len(input.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	var code *discount.DiscountCode
	if input.DiscountCode != "" {
		var err error
		code, err = s.discounts.Validate(ctx, input.DiscountCode)
		if err != nil {
			log.Warn("discount code rejected",
				zap.String("code", input.DiscountCode),
				zap.Error(err),
			)
			return nil, err
		}
	}

	totals := ComputeTotals(input.Items, code, s.taxRate)

	status := StatusPendingPayment
	if input.Direct {
		status = StatusProcessing
	}

	o := &Order{
		ID:        NewOrderID(),
		UserEmail: email,
		StoreID:   input.StoreID,
		Phone:     input.Phone,
		Items:     input.Items,
		Subtotal:  totals.Subtotal,
		Discount:  totals.Discount,
		Taxes:     totals.Taxes,
		Total:     totals.Total,
		Status:    status,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("status", string(o.Status)),
		zap.Float64("total", o.Total),
	)
	return o, nil
}

func (s *service) GetOrders(ctx context.Context) ([]*Order, error) {
	email := utils.GetUserEmailFromContext(ctx)
	if email == "" {
		return nil, ErrUnauthenticated
	}
	return s.repo.GetByUserEmail(ctx, email)
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	email := utils.GetUserEmailFromContext(ctx)
	isAdmin := utils.GetUserRoleFromContext(ctx) == utils.RoleAdmin
	if !isAdmin && o.UserEmail != email {
		return nil, ErrForbidden
	}
	return o, nil
}

// UpdateStatus applies fulfillment transitions. The payment pipeline owns
// Pending Payment and its exits; fulfillment only moves settled orders
// forward.
func (s *service) UpdateStatus(ctx context.Context, id string, status OrderStatus) error {
	validTargets := map[OrderStatus]bool{
		StatusShipped:   true,
		StatusDelivered: true,
		StatusCancelled: true,
	}
	if !validTargets[status] {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if o.Status == StatusPendingPayment || o.Status == StatusCancelled {
		return fmt.Errorf("%w: order %s is %s", ErrInvalidStatus, id, o.Status)
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

// SettlePayment runs the atomic commit for a verified successful callback.
// If the commit fails after the gateway already captured the money, the order
// is cancelled with a manual-review note; that inconsistency cannot be
// self-healed and must surface to an operator.
func (s *service) SettlePayment(ctx context.Context, txnid string) (SettleOutcome, error) {
	log := logger.FromCtx(ctx).With(zap.String("order_id", txnid))

	outcome, err := s.repo.Settle(ctx, txnid)
	if err == nil {
		switch outcome {
		case Settled:
			log.Info("order settled, stock deducted")
		case AlreadyProcessed:
			log.Info("duplicate callback, order already settled")
		case AlreadyCancelled:
			log.Warn("success callback for cancelled order ignored")
		}
		return outcome, nil
	}

	if errors.Is(err, ErrOrderNotFound) {
		return 0, err
	}

	log.Error("settle transaction failed", zap.Error(err))

	note := fmt.Sprintf(
		"Payment succeeded but order processing failed. Needs manual review. Reason: %v", err,
	)
	if cancelErr := s.repo.Cancel(ctx, txnid, note); cancelErr != nil {
		log.Error("failed to cancel order after settle failure", zap.Error(cancelErr))
	}
	return 0, err
}

func (s *service) CancelWithNote(ctx context.Context, id, note string) error {
	return s.repo.Cancel(ctx, id, note)
}
