package mail

import "gopkg.in/gomail.v2"

type PartnerFailureAlertData struct {
	LeadID    string
	Name      string
	Email     string
	Phone     string
	Source    string
	Savings   string
	DealRange string
	CreatedAt string
	AlertedAt string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string

	dialer mailDialer
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}
