package models

// All lists every table, parents before children, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Property{},
		&PropertyImage{},
		&PropertyAmenity{},
		&PropertyDocument{},
		&PropertyView{},
		&SavedProperty{},
		&PropertyApplication{},
		&Conversation{},
		&Message{},
		&Notification{},
		&Review{},
		&PropertyOwnerVerification{},
		&VerificationDocument{},
	}
}
