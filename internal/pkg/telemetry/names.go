package telemetry

// Span names.
const (
	SpanRankingSuggest = "ranking.suggest"
	SpanSessionSubmit  = "session.submit"
)

// Span attribute keys.
const (
	AttrSessionID      = "openroute.session_id"
	AttrMaxSuggestions = "openroute.max_suggestions"
	AttrSuggestions    = "openroute.suggestions"
	AttrHTTPStatus     = "http.status_code"
)
