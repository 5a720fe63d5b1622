package models

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&Item{},
		&Sari{},
		&Movement{},
		&Customer{},
		&Supplier{},
	}
}
