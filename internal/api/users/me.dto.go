package users

import "time"

type MeResponse struct {
	User    UserDTO    `json:"user"`
	Billing BillingDTO `json:"billing"`
	Access  AccessDTO  `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID               uint    `json:"id"`
	Email            string  `json:"email"`
	Name             string  `json:"name"`
	Lastname         string  `json:"lastname"`
	Tel              *string `json:"tel"`
	Role             string  `json:"role"`
	IsVerified       bool    `json:"is_verified"`
	NativeLanguage   string  `json:"native_language"`
	LearningLanguage string  `json:"learning_language"`
	Level            string  `json:"level"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	Subscriptions []SubscriptionDTO `json:"subscriptions"`
	Credits       int               `json:"credits"`
	Trial         *TrialDTO         `json:"trial"`
}

type SubscriptionDTO struct {
	Kind      string    `json:"kind"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Valid     bool      `json:"valid"`
	Status    string    `json:"status"`
}

type TrialDTO struct {
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	DaysLeft *int       `json:"days_left"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	FreeAccess       bool         `json:"free_access"`
	PremiumGroups    DecisionDTO  `json:"premium_groups"`
	IndividualClass  DecisionDTO  `json:"individual_classes"`
	GroupClass       DecisionDTO  `json:"group_classes"`
	EnrolledClassIDs []string     `json:"enrolled_class_ids"`
	JoinedGroupIDs   []string     `json:"joined_group_ids"`
}

type DecisionDTO struct {
	Granted bool   `json:"granted"`
	Reason  string `json:"reason"`
	Upsell  bool   `json:"upsell"`
}
