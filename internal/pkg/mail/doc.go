// Package mail defines the contracts for sending email messages.
//
// Use cases work with the Mail interface and the Message payload. SMTP sends
// through a real server; Log writes messages to the structured logger and is
// meant for local development where no mail server is running.
package mail
