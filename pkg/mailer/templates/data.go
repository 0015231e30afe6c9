package templates

import (
	"encoding/json"
	"time"
)

// Brand is the sender identity shown in every email.
type Brand struct {
	AppName        string
	CompanyName    string
	CompanyAddress string
	LogoURL        string
	SupportURL     string
}

// EmailData defines standard fields for email templates.
type EmailData struct {
	Email string `json:"Email"`
	Type  string `json:"Type"`

	AppName        string `json:"AppName"`
	CompanyName    string `json:"CompanyName"`
	CompanyAddress string `json:"CompanyAddress"`
	LogoURL        string `json:"LogoURL"`
	SupportURL     string `json:"SupportURL"`

	Code             string    `json:"Code"`
	ExpiresAt        time.Time `json:"ExpiresAt"`
	ExpiresAtText    string    `json:"ExpiresAtText"`
	ExpiresInMinutes int       `json:"ExpiresInMinutes"`
}

// Option pattern
type Option func(*EmailData)

func WithExpiresIn(issuedAt time.Time, dur time.Duration) Option {
	return func(d *EmailData) {
		utc := issuedAt.Add(dur).UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
		d.ExpiresInMinutes = int(dur.Minutes())
	}
}

func newBaseEmailData(b Brand, typ, email string, opts ...Option) EmailData {
	d := EmailData{
		Email:          email,
		Type:           typ,
		AppName:        b.AppName,
		CompanyName:    b.CompanyName,
		CompanyAddress: b.CompanyAddress,
		LogoURL:        b.LogoURL,
		SupportURL:     b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewVerificationCodeData builds the data for the verification_code template.
func NewVerificationCodeData(b Brand, email, code string, opts ...Option) map[string]any {
	d := newBaseEmailData(b, VerificationCode, email, opts...)
	d.Code = code
	return ToMap(d)
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}
