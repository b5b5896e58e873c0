package service

import (
	"github.com/rs/zerolog/log"

	"github.com/lamnm/aims-checkout/internal/core/domain"
)

// Shipping fee policy, amounts in VND.
const (
	baseShippingFee       = 22000
	perItemShippingFee    = 2500
	freeShippingThreshold = 100000
	maxShippingDiscount   = 25000
)

// CalculateShippingFee prices delivery for an order: a base fee plus a
// per-item fee over the summed quantities. Orders at or above the
// free-shipping threshold get a flat discount, floored at zero.
func CalculateShippingFee(order *domain.Order) int64 {
	fee := int64(baseShippingFee) + int64(order.TotalItems())*perItemShippingFee
	if order.Amount >= freeShippingThreshold {
		fee -= maxShippingDiscount
		if fee < 0 {
			fee = 0
		}
	}
	log.Debug().
		Int64("order_amount", order.Amount).
		Int64("shipping_fee", fee).
		Msg("calculated shipping fee")
	return fee
}
