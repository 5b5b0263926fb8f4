package clients

import (
	"net/url"
	"reflect"

	"github.com/gorilla/schema"

	"github.com/surveykit/surveykit/utils"
)

// The option structs below enumerate every optional parameter each Ohmage
// operation recognizes, replacing the catch-all keyword arguments of older
// clients. Zero-valued fields are left out of the request entirely, so the
// server's own defaults apply.

// CampaignReadOptions are the optional parameters accepted by CampaignRead
type CampaignReadOptions struct {
	// CampaignURNList restricts the result to the listed campaigns
	CampaignURNList []string `schema:"campaign_urn_list,omitempty"`
	// StartDate/EndDate restrict to campaigns created in the range (ISO8601)
	StartDate string `schema:"start_date,omitempty"`
	EndDate   string `schema:"end_date,omitempty"`
	// PrivacyState is "shared" or "private"
	PrivacyState string `schema:"privacy_state,omitempty"`
	// RunningState is "running" or "stopped"
	RunningState string `schema:"running_state,omitempty"`
	// UserRole filters on the logged-in user's role, e.g. "author"
	UserRole string `schema:"user_role,omitempty"`
	// ClassURNList restricts to campaigns attached to the listed classes
	ClassURNList []string `schema:"class_urn_list,omitempty"`
}

// SurveyResponseReadOptions are the optional parameters accepted by
// SurveyResponseRead
type SurveyResponseReadOptions struct {
	// OutputFormat is one of "json-rows" (default), "json-columns" or "csv"
	OutputFormat string `schema:"output_format,omitempty"`
	// ColumnList restricts the columns returned; defaults to
	// urn:ohmage:special:all
	ColumnList []string `schema:"column_list,omitempty"`
	// UserList restricts to responses from the listed users; defaults to
	// urn:ohmage:special:all
	UserList []string `schema:"user_list,omitempty"`
	// SurveyIDList and PromptIDList restrict to the listed surveys/prompts.
	// One of the two must be present
	SurveyIDList []string `schema:"survey_id_list,omitempty"`
	PromptIDList []string `schema:"prompt_id_list,omitempty"`
	// StartDate/EndDate restrict to a date range; both must be present
	StartDate string `schema:"start_date,omitempty"`
	EndDate   string `schema:"end_date,omitempty"`
	// PrivacyState is "shared" or "private"
	PrivacyState string `schema:"privacy_state,omitempty"`
	// SortOrder is a comma-separated list of user, timestamp, survey
	SortOrder string `schema:"sort_order,omitempty"`
	// SuppressMetadata drops the metadata section of the output
	SuppressMetadata bool `schema:"suppress_metadata,omitempty"`
	// PrettyPrint indents JSON output
	PrettyPrint bool `schema:"pretty_print,omitempty"`
	// ReturnID includes the primary key of each response (json-rows only)
	ReturnID bool `schema:"return_id,omitempty"`
	// Collapse removes duplicate results
	Collapse bool `schema:"collapse,omitempty"`
	// NumToSkip/NumToProcess page through responses in reverse
	// chronological order
	NumToSkip    int `schema:"num_to_skip,omitempty"`
	NumToProcess int `schema:"num_to_process,omitempty"`
	// SurveyResponseIDList restricts to the listed response IDs
	SurveyResponseIDList []string `schema:"survey_response_id_list,omitempty"`
}

// MobilityReadOptions are the optional parameters accepted by MobilityRead
type MobilityReadOptions struct {
	// Username reads another user's data, where the server allows it
	Username string `schema:"username,omitempty"`
	// WithSensorData returns the raw sensor data alongside the points
	WithSensorData bool `schema:"with_sensor_data,omitempty"`
}

// MobilityDatesReadOptions are the optional parameters accepted by
// MobilityDatesRead
type MobilityDatesReadOptions struct {
	// StartDate/EndDate bound the returned dates (ISO8601)
	StartDate string `schema:"start_date,omitempty"`
	EndDate   string `schema:"end_date,omitempty"`
	// Username reads another user's data, where the server allows it
	Username string `schema:"username,omitempty"`
}

var optionsEncoder = newOptionsEncoder()

func newOptionsEncoder() *schema.Encoder {
	encoder := schema.NewEncoder()
	// string slices become the comma-separated URN lists the API expects
	encoder.RegisterEncoder([]string{}, func(v reflect.Value) string {
		return utils.Params.JoinURNs(v.Interface().([]string))
	})

	return encoder
}

// encodeOptions merges the non-zero fields of the given options struct into
// params. A nil opts is fine and adds nothing
func encodeOptions(params url.Values, opts interface{}) error {
	if opts == nil || reflect.ValueOf(opts).IsNil() {
		return nil
	}

	return optionsEncoder.Encode(opts, params)
}
