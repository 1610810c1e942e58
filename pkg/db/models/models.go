package models

// All lists every persisted model in dependency order, for AutoMigrate in
// SQLite dev mode and tests.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&Sale{},
		&SaleItem{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
