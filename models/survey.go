package models

import (
	"github.com/google/uuid"
)

// LocationStatusUnavailable is reported for surveys uploaded without location data
const LocationStatusUnavailable = "unavailable"

// Survey represents a completed survey ready for upload. Responses are kept in
// the order the prompts were answered.
type Survey struct {
	SurveyKey      string           `json:"survey_key"`
	Time           int64            `json:"time"`
	Timezone       string           `json:"timezone"`
	LocationStatus string           `json:"location_status"`
	SurveyID       string           `json:"survey_id"`
	LaunchContext  LaunchContext    `json:"survey_launch_context"`
	Responses      []PromptResponse `json:"responses"`
}

// LaunchContext records the circumstances under which a survey was launched
type LaunchContext struct {
	LaunchTime     int64    `json:"launch_time"`
	LaunchTimezone string   `json:"launch_timezone"`
	ActiveTriggers []string `json:"active_triggers"`
}

// PromptResponse is the answer to a single prompt within a survey. Value is
// opaque to the client - the server validates it against the campaign.
type PromptResponse struct {
	PromptID string      `json:"prompt_id"`
	Value    interface{} `json:"value"`
}

// NewSurvey returns a survey for the given ID, taken at the given epoch-millis
// time in the given timezone. A fresh v4 UUID is generated for the survey key.
func NewSurvey(surveyID string, time int64, timezone string, responses []PromptResponse) Survey {
	return Survey{
		SurveyKey:      uuid.NewString(),
		Time:           time,
		Timezone:       timezone,
		LocationStatus: LocationStatusUnavailable,
		SurveyID:       surveyID,
		LaunchContext: LaunchContext{
			LaunchTime:     time,
			LaunchTimezone: timezone,
			ActiveTriggers: []string{},
		},
		Responses: responses,
	}
}
