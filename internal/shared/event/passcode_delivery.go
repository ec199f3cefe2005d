package event

import "time"

const PasscodeDeliveryDestination string = "passcode_delivery"
const PasscodeDeliveryConsumerMailer string = "passcode_delivery_mailer"

type PasscodeDeliveryMessage struct {
	Identifier string    `json:"identifier"`
	Name       string    `json:"name"`
	Code       string    `json:"code"`
	ExpiresAt  time.Time `json:"expires_at"`
}
