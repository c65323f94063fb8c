package mapping

import (
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	"github.com/SscSPs/licoreria_pos/internal/models"
)

func ToModelProduct(d domain.Product) models.Product {
	return models.Product{
		ProductID: d.ProductID,
		Name:      d.Name,
		Category:  d.Category,
		Price:     d.Price,
		Stock:     d.Stock,
		MinStock:  d.MinStock,
	}
}

func ToDomainProduct(m models.Product) domain.Product {
	return domain.Product{
		ProductID: m.ProductID,
		Name:      m.Name,
		Category:  m.Category,
		Price:     m.Price,
		Stock:     m.Stock,
		MinStock:  m.MinStock,
	}
}

// ToModelSale splits a domain Sale into its header and item rows.
func ToModelSale(d domain.Sale) (models.Sale, []models.SaleItem) {
	sale := models.Sale{
		SaleID:      d.SaleID,
		SessionID:   d.SessionID,
		Total:       d.Total,
		Method:      string(d.Method),
		CashAmount:  d.CashAmount,
		QRAmount:    d.QRAmount,
		Customer:    d.Customer,
		Phone:       d.CustomerPhone,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	items := make([]models.SaleItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = models.SaleItem{
			SaleID:    d.SaleID,
			LineNo:    i + 1,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		}
	}
	return sale, items
}

// ToDomainSale joins a sale row with its items, which must be in line order.
func ToDomainSale(m models.Sale, items []models.SaleItem) domain.Sale {
	d := domain.Sale{
		SaleID:        m.SaleID,
		SessionID:     m.SessionID,
		Total:         m.Total,
		Method:        domain.PaymentMethod(m.Method),
		CashAmount:    m.CashAmount,
		QRAmount:      m.QRAmount,
		Customer:      m.Customer,
		CustomerPhone: m.Phone,
		Items:         make([]domain.SaleItem, len(items)),
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
	for i, it := range items {
		d.Items[i] = domain.SaleItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		}
	}
	return d
}

// ToModelPurchase splits a domain Purchase into its header and item rows.
func ToModelPurchase(d domain.Purchase) (models.Purchase, []models.PurchaseItem) {
	purchase := models.Purchase{
		PurchaseID:  d.PurchaseID,
		SessionID:   d.SessionID,
		Kind:        string(d.Kind),
		Total:       d.Total,
		Method:      string(d.Method),
		Supplier:    d.Supplier,
		Description: d.Description,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	items := make([]models.PurchaseItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = models.PurchaseItem{
			PurchaseID: d.PurchaseID,
			LineNo:     i + 1,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitCost:   it.UnitCost,
		}
	}
	return purchase, items
}

func ToDomainPurchase(m models.Purchase, items []models.PurchaseItem) domain.Purchase {
	d := domain.Purchase{
		PurchaseID:  m.PurchaseID,
		SessionID:   m.SessionID,
		Kind:        domain.PurchaseKind(m.Kind),
		Total:       m.Total,
		Method:      domain.PaymentMethod(m.Method),
		Supplier:    m.Supplier,
		Description: m.Description,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if len(items) > 0 {
		d.Items = make([]domain.PurchaseItem, len(items))
		for i, it := range items {
			d.Items[i] = domain.PurchaseItem{ProductID: it.ProductID, Quantity: it.Quantity, UnitCost: it.UnitCost}
		}
	}
	return d
}

func ToModelCreditAccount(d domain.CreditAccount) models.CreditAccount {
	return models.CreditAccount{
		CreditID:    d.CreditID,
		SaleID:      d.SaleID,
		Customer:    d.Customer,
		Phone:       d.CustomerPhone,
		Total:       d.Total,
		Paid:        d.Paid,
		Outstanding: d.Outstanding,
		Status:      string(d.Status),
		OpenedAt:    d.OpenedAt,
	}
}

func ToDomainCreditAccount(m models.CreditAccount) domain.CreditAccount {
	return domain.CreditAccount{
		CreditID:      m.CreditID,
		SaleID:        m.SaleID,
		Customer:      m.Customer,
		CustomerPhone: m.Phone,
		Total:         m.Total,
		Paid:          m.Paid,
		Outstanding:   m.Outstanding,
		Status:        domain.CreditStatus(m.Status),
		OpenedAt:      m.OpenedAt,
	}
}

func ToModelCreditPayment(d domain.CreditPayment) models.CreditPayment {
	return models.CreditPayment{
		PaymentID:   d.PaymentID,
		CreditID:    d.CreditID,
		SessionID:   d.SessionID,
		Amount:      d.Amount,
		Method:      string(d.Method),
		Notes:       d.Notes,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainCreditPayment(m models.CreditPayment) domain.CreditPayment {
	return domain.CreditPayment{
		PaymentID:   m.PaymentID,
		CreditID:    m.CreditID,
		SessionID:   m.SessionID,
		Amount:      m.Amount,
		Method:      domain.PaymentMethod(m.Method),
		Notes:       m.Notes,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
