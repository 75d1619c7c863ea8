package shared

// ConfirmationPolicy specifies how workflows handle operator confirmations.
type ConfirmationPolicy int

const (
	// ConfirmationPrompt indicates the workflow should prompt the operator.
	ConfirmationPrompt ConfirmationPolicy = iota
	// ConfirmationAssumeYes indicates the workflow should continue without prompting.
	ConfirmationAssumeYes
)

// ConfirmationPolicyFromBool converts an assume-yes flag into a policy.
func ConfirmationPolicyFromBool(assumeYes bool) ConfirmationPolicy {
	if assumeYes {
		return ConfirmationAssumeYes
	}
	return ConfirmationPrompt
}

// ShouldPrompt reports whether the workflow must prompt the operator.
func (policy ConfirmationPolicy) ShouldPrompt() bool {
	return policy != ConfirmationAssumeYes
}

// ShouldAssumeYes reports whether prompting can be skipped.
func (policy ConfirmationPolicy) ShouldAssumeYes() bool {
	return policy == ConfirmationAssumeYes
}
