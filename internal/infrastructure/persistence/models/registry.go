package models

// All returns every model managed by AutoMigrate, parents before children
func All() []any {
	return []any{
		&PartModel{},
		&StockMovementModel{},
		&PriceHistoryModel{},
		&DeviceModel{},
		&PartUsageModel{},
		&CustomerInvoiceModel{},
		&InvoiceItemModel{},
		&PaymentModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderItemModel{},
		&PurchaseReturnModel{},
		&PurchaseReturnItemModel{},
		&SupplierInvoiceModel{},
		&SupplierPaymentModel{},
		&CreditNoteModel{},
		&CreditApplicationModel{},
		&AuditLogModel{},
	}
}
