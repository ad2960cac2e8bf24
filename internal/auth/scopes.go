package auth

// Known OAuth scopes used by the assistant backend.
const (
	ScopeAssistantUse = "assistant:use"
	ScopeFitnessRead  = "fitness:read"
)
