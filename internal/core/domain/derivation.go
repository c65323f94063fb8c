package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DefaultWithdrawalConcept labels withdrawals recorded without a concept.
const DefaultWithdrawalConcept = "Cash withdrawal"

// SaleMovements derives the till movements for a stored sale. Credit sales
// produce none: the receivable is collected later through credit payments.
func SaleMovements(sale Sale) ([]MovementDraft, error) {
	ref := RefTo(RefSale, sale.SaleID)
	concept := fmt.Sprintf("Sale #%d", sale.SaleID)

	switch sale.Method {
	case MethodCredit:
		return nil, nil
	case MethodMixed:
		if err := ValidateMixedSplit(sale.Total, sale.CashAmount, sale.QRAmount); err != nil {
			return nil, err
		}
		drafts := make([]MovementDraft, 0, 2)
		if sale.CashAmount.IsPositive() {
			drafts = append(drafts, MovementDraft{
				Direction: DirectionIn,
				Concept:   concept + " - Cash",
				Amount:    sale.CashAmount,
				Method:    MethodPtr(MethodCash),
				Reference: ref,
			})
		}
		if sale.QRAmount.IsPositive() {
			drafts = append(drafts, MovementDraft{
				Direction: DirectionIn,
				Concept:   concept + " - QR",
				Amount:    sale.QRAmount,
				Method:    MethodPtr(MethodQR),
				Reference: ref,
			})
		}
		return drafts, nil
	case MethodCash, MethodQR, MethodOther:
		return []MovementDraft{{
			Direction: DirectionIn,
			Concept:   concept,
			Amount:    sale.Total,
			Method:    MethodPtr(sale.Method),
			Reference: ref,
		}}, nil
	}
	return nil, fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, sale.Method)
}

// ValidateMixedSplit checks that the cash and QR portions of a mixed payment
// are non-negative whole cents and add up to the total.
func ValidateMixedSplit(total, cash, qr decimal.Decimal) error {
	if cash.IsNegative() || qr.IsNegative() {
		return fmt.Errorf("%w: mixed payment portions cannot be negative", apperrors.ErrInvalidAmount)
	}
	if err := ValidateCents(cash, "cash portion"); err != nil {
		return err
	}
	if err := ValidateCents(qr, "QR portion"); err != nil {
		return err
	}
	if !cash.Add(qr).Equal(total) {
		return fmt.Errorf("%w: cash %s plus QR %s does not match total %s",
			apperrors.ErrInvalidAmount, cash.String(), qr.String(), total.String())
	}
	return nil
}

// PurchaseMovement derives the single outgoing movement of a purchase. The
// purchase keeps its own payment method.
func PurchaseMovement(p Purchase) MovementDraft {
	var concept string
	switch p.Kind {
	case PurchaseGoods:
		concept = fmt.Sprintf("Goods purchase #%d", p.PurchaseID)
	case PurchaseSupplies:
		concept = fmt.Sprintf("Supplies purchase #%d", p.PurchaseID)
	default:
		if d := strings.TrimSpace(p.Description); d != "" {
			concept = "Expense: " + d
		} else {
			concept = fmt.Sprintf("Expense #%d", p.PurchaseID)
		}
	}
	return MovementDraft{
		Direction: DirectionOut,
		Concept:   concept,
		Amount:    p.Total,
		Method:    MethodPtr(p.Method),
		Reference: RefTo(RefPurchase, p.PurchaseID),
	}
}

// CreditPaymentMovement derives the incoming movement of a credit collection.
func CreditPaymentMovement(p CreditPayment) MovementDraft {
	return MovementDraft{
		Direction: DirectionIn,
		Concept:   fmt.Sprintf("Credit payment #%d", p.CreditID),
		Amount:    p.Amount,
		Method:    MethodPtr(p.Method),
		Reference: RefTo(RefCreditPayment, p.PaymentID),
	}
}

// WithdrawalMovement derives a manual cash withdrawal.
func WithdrawalMovement(amount decimal.Decimal, concept string) MovementDraft {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		concept = DefaultWithdrawalConcept
	}
	return MovementDraft{
		Direction: DirectionOut,
		Concept:   concept,
		Amount:    amount,
		Method:    MethodPtr(MethodCash),
		Reference: &Reference{Kind: RefManualWithdrawal},
	}
}
