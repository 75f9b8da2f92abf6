package models

import "time"

// Certificate is an idempotently issued proof of attendance. The participant
// name and event title are snapshotted at issuance so public validation never
// needs a live join.
type Certificate struct {
	ValidationCode  string    `db:"validation_code" json:"validation_code"`
	EnrollmentID    string    `db:"enrollment_id" json:"enrollment_id"`
	ParticipantName string    `db:"participant_name" json:"participant_name"`
	EventTitle      string    `db:"event_title" json:"event_title"`
	IssuedAt        time.Time `db:"issued_at" json:"issued_at"`
}

// CertificateValidation is the public lookup result for a validation code.
type CertificateValidation struct {
	Valid           bool       `json:"valid"`
	ParticipantName string     `json:"participant_name,omitempty"`
	EventTitle      string     `json:"event_title,omitempty"`
	IssuedAt        *time.Time `json:"issued_at,omitempty"`
}

// CertificateIssued is returned by generation, carrying the signed download
// link alongside the record.
type CertificateIssued struct {
	Certificate
	DownloadToken   string    `json:"download_token"`
	DownloadExpires time.Time `json:"download_expires"`
}
