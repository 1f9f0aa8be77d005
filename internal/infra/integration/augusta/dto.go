package augusta

// SubmitLeadPayload is the fixed shape the partner intake endpoint accepts.
type SubmitLeadPayload struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ReferralID string `json:"referralId"`
	SubID      string `json:"subId"`
}
