package errors

var (
	ErrValidationFailed = &DomainError{
		Code:    "VALIDATION_FAILED",
		Message: "webhook request could not be validated",
	}
	ErrVerificationFailed = &DomainError{
		Code:    "VERIFICATION_FAILED",
		Message: "transaction could not be verified with the provider",
	}
	ErrProviderError = &DomainError{
		Code:    "PROVIDER_ERROR",
		Message: "payment provider returned an error",
	}
	ErrProviderInitiationFailed = &DomainError{
		Code:    "PROVIDER_INITIATION_FAILED",
		Message: "payment provider could not initiate the operation",
	}
	ErrUnknownProvider = &DomainError{
		Code:    "UNKNOWN_PROVIDER",
		Message: "payment provider is not registered",
	}
)
