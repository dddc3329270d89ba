package model

import "strings"

// Intent is the discrete classification of what the caller wants this turn.
type Intent string

const (
	IntentAnalyticsSummary Intent = "analytics_summary"
	IntentActiveCases      Intent = "active_cases"
	IntentGreeting         Intent = "greeting"
	IntentNoRequest        Intent = "no_request"
	IntentInvalidBusiness  Intent = "invalid_business"
	IntentUnsupported      Intent = "unsupported"
	IntentFrustration      Intent = "frustration"
	IntentEmergency        Intent = "emergency"
	IntentBook             Intent = "book"
	IntentRegister         Intent = "register"
	IntentReschedule       Intent = "reschedule"
	IntentCancel           Intent = "cancel"
	IntentGetAppointments  Intent = "get_appointments"
	IntentOrgInfo          Intent = "org_info"
)

// Intents is the closed label set the classifier may answer with, in prompt order.
var Intents = []Intent{
	IntentAnalyticsSummary,
	IntentActiveCases,
	IntentGreeting,
	IntentNoRequest,
	IntentInvalidBusiness,
	IntentUnsupported,
	IntentFrustration,
	IntentEmergency,
	IntentBook,
	IntentRegister,
	IntentReschedule,
	IntentCancel,
	IntentGetAppointments,
	IntentOrgInfo,
}

var knownIntents = func() map[Intent]struct{} {
	m := make(map[Intent]struct{}, len(Intents))
	for _, it := range Intents {
		m[it] = struct{}{}
	}
	return m
}()

// IsKnown reports whether i belongs to the closed label set.
func (i Intent) IsKnown() bool {
	_, ok := knownIntents[i]
	return ok
}

// ParseIntent normalises a raw classifier completion. Anything outside the
// closed set becomes IntentUnsupported.
func ParseIntent(raw string) Intent {
	label := strings.ToLower(strings.TrimSpace(raw))
	label = strings.Trim(label, "\"'`.")
	label = strings.TrimSpace(label)
	if it := Intent(label); it.IsKnown() {
		return it
	}
	return IntentUnsupported
}
