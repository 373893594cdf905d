package domain

import "encoding/json"

// Preferences weights the ranking backend's scoring. All values are in [0,1].
type Preferences struct {
	FitnessLevel     float64 `json:"fitness_level"`
	ScenicPreference float64 `json:"scenic_preference"`
	AvoidMainRoads   float64 `json:"avoid_main_roads"`
	TimePriority     float64 `json:"time_priority"`
}

// SuggestionRequest is the body sent to the ranking backend.
type SuggestionRequest struct {
	Start          string      `json:"start"`
	End            string      `json:"end"`
	MaxSuggestions int         `json:"max_suggestions"`
	Preferences    Preferences `json:"preferences"`
}

// SuggestionMetrics holds the scalar metrics of one candidate route.
type SuggestionMetrics struct {
	DistanceM      float64 `json:"distance_m"`
	DurationS      float64 `json:"duration_s"`
	AscendM        float64 `json:"ascend_m"`
	ScenicRatio    float64 `json:"scenic_ratio"`
	MajorRoadRatio float64 `json:"major_road_ratio"`
}

// Suggestion is one ranked candidate route. Route is the backend's opaque
// payload and is only interpreted by the geometry extractor.
type Suggestion struct {
	ID          string            `json:"id"`
	Score       float64           `json:"score"`
	Explanation string            `json:"explanation"`
	Metrics     SuggestionMetrics `json:"metrics"`
	Route       json.RawMessage   `json:"route"`
}

// ResponseMeta describes how many candidate paths the backend considered.
type ResponseMeta struct {
	SourcePaths         int `json:"source_paths"`
	ReturnedSuggestions int `json:"returned_suggestions"`
}

// SuggestionResponse is a ranking backend response. Suggestions keep the
// backend's ranking order.
type SuggestionResponse struct {
	Suggestions []Suggestion  `json:"suggestions"`
	Meta        *ResponseMeta `json:"meta,omitempty"`
}
