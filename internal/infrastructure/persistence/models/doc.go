// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so the domain layer stays free of
// ORM tags.
//
// Each model has a ToDomain method and a ...FromDomain constructor.
// Repositories read and write models only and hand domain types to callers.
//
// Layout:
//   - base.go: BaseModel and AggregateModel
//   - json.go: JSONMap, a jsonb/text column for audit snapshots
//   - inventory.go: parts, stock movements, price history
//   - finance.go: customer and supplier invoices, payments, credit notes
//   - trade.go: purchase orders and purchase returns
//   - repair.go: devices and ticket part usage
//   - audit.go: audit log rows
//   - registry.go: the model list for AutoMigrate
package models
