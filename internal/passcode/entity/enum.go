package entity

type VerifyStatus int8

const (
	// VerifyStatusUnknown is the zero value and is never returned by a verification.
	VerifyStatusUnknown VerifyStatus = 0

	// VerifyStatusSuccess mean the code matched and the record is consumed.
	VerifyStatusSuccess VerifyStatus = 1

	// VerifyStatusMismatch mean the code did not match and an attempt was spent.
	VerifyStatusMismatch VerifyStatus = 2

	// VerifyStatusExpired mean the record outlived its validity window.
	VerifyStatusExpired VerifyStatus = 3

	// VerifyStatusExhausted mean every attempt has been spent on the record.
	VerifyStatusExhausted VerifyStatus = 4

	// VerifyStatusAbsent mean no active record exists for the identifier.
	VerifyStatusAbsent VerifyStatus = 5
)

func (vs VerifyStatus) String() string {
	switch vs {
	case VerifyStatusSuccess:
		return "SUCCESS"
	case VerifyStatusMismatch:
		return "MISMATCH"
	case VerifyStatusExpired:
		return "EXPIRED"
	case VerifyStatusExhausted:
		return "EXHAUSTED"
	case VerifyStatusAbsent:
		return "ABSENT"
	default:
		return "UNKNOWN"
	}
}

func (vs VerifyStatus) Ensure() VerifyStatus {
	switch vs {
	case VerifyStatusSuccess, VerifyStatusMismatch, VerifyStatusExpired,
		VerifyStatusExhausted, VerifyStatusAbsent:
		return vs
	default:
		return VerifyStatusUnknown
	}
}
