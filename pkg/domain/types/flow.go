package types

import "fmt"

// Flow is a coarse category of banking intent used to steer prompting and
// logging. Classification happens once per turn; anything the classifier
// cannot place lands in FlowGeneralInquiry.
type Flow string

const (
	FlowCardIssue        Flow = "card_issue"
	FlowAccountServicing Flow = "account_servicing"
	FlowAccountOpening   Flow = "account_opening"
	FlowTransactions     Flow = "transactions"
	FlowDigitalSupport   Flow = "digital_support"
	FlowTransfers        Flow = "transfers"
	FlowClosure          Flow = "closure"
	FlowGeneralInquiry   Flow = "general_inquiry"
)

// AllFlows returns all valid flows
func AllFlows() []Flow {
	return []Flow{
		FlowCardIssue,
		FlowAccountServicing,
		FlowAccountOpening,
		FlowTransactions,
		FlowDigitalSupport,
		FlowTransfers,
		FlowClosure,
		FlowGeneralInquiry,
	}
}

// IsValid checks if the flow is valid
func (f Flow) IsValid() bool {
	switch f {
	case FlowCardIssue,
		FlowAccountServicing,
		FlowAccountOpening,
		FlowTransactions,
		FlowDigitalSupport,
		FlowTransfers,
		FlowClosure,
		FlowGeneralInquiry:
		return true
	default:
		return false
	}
}

// String returns the string representation of the flow
func (f Flow) String() string {
	return string(f)
}

// ParseFlow parses a string into a Flow
func ParseFlow(s string) (Flow, error) {
	flow := Flow(s)
	if !flow.IsValid() {
		return "", fmt.Errorf("invalid flow: %s", s)
	}
	return flow, nil
}
