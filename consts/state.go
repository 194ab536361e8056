package consts

// SessionState tracks where an agent session is in its question/answer cycle.
type SessionState string

const (
	State_AwaitingUserInput  SessionState = "awaiting_user_input"
	State_AwaitingCompletion SessionState = "awaiting_completion"
	State_ExecutingTools     SessionState = "executing_tools"
	State_AnswerReady        SessionState = "answer_ready"
)

const (
	// Upper bound on provider-supplied list lengths
	MaxNewsItems        = 5
	MaxEarningsQuarters = 4
)
