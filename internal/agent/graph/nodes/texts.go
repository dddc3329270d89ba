package nodes

// Fixed utterances produced by canned and fallback nodes.
const (
	GreetingGeneral      = "Hello, thanks for calling. I'm the firm's analytics assistant."
	ServicesMention      = "I can summarize the firm's case analytics for any time period or walk you through your active cases. What would you like to know?"
	greetingPersonalized = "Welcome back, %s! I can summarize your firm's case analytics or go over your active cases. What would you like to know?"
	GreetingReturning    = "Welcome back! I can summarize your firm's case analytics or go over your active cases. What would you like to know?"

	ThanksGoodbye   = "Thank you for calling. Have a great day!"
	PoliteRejection = "I'm sorry, I can only help with case analytics and active case information. Is there anything along those lines I can help you with?"

	AskDOB                  = "Thanks. To verify your identity, could you please tell me your date of birth?"
	identityConfirmed       = "Thank you, %s. You're verified. How can I help you today?"
	IdentityConfirmedNoName = "Thank you. You're verified. How can I help you today?"
	IdentityFailed          = "I'm sorry, I wasn't able to verify your identity, so I can't share case information on this call. Goodbye."

	// MissingContextClarification is spoken when an analytics question carries no time period.
	MissingContextClarification = "I can help with that. Could you please specify which specific year or time period you're interested in?"

	// LegalAPIFailure is the error marker recorded in a failed fetch outcome.
	LegalAPIFailure    = "Failed to fetch data from Legal API"
	AnalyticsApology   = "I couldn't retrieve the analytics data from the system right now."
	ActiveCasesApology = "I couldn't retrieve the active cases data from the system right now."
)
