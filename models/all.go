package models

// All lists every table the service owns, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Course{},
		&Video{},
		&Test{},
		&Question{},
		&Challenge{},
		&TestAttempt{},
		&Progress{},
		&Enrollment{},
		&Community{},
		&CommunityMember{},
	}
}
