package models

// AllModels lists every persisted entity in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&Department{},
		&Level{},
		&User{},
		&Training{},
		&TrainingSection{},
		&UserTraining{},
		&AuditLog{},
	}
}
