package clients_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surveykit/surveykit/clients"
	"github.com/surveykit/surveykit/models"
	"github.com/surveykit/surveykit/models/enums"
	"github.com/surveykit/surveykit/testutil"
	"github.com/surveykit/surveykit/transport"
)

const (
	testHashedPassword = "hashed-pw-abc"
	testToken          = "token-xyz"
)

// installLoginHandlers wires the two auth endpoints onto the provider
func installLoginHandlers(provider *testutil.MockProvider) {
	provider.Router.HandleFunc("/app/user/auth", func(w http.ResponseWriter, r *http.Request) {
		testutil.RespondJSON(w, http.StatusOK,
			`{"result":"success","hashed_password":"`+testHashedPassword+`"}`)
	}).Methods("POST")

	provider.Router.HandleFunc("/app/user/auth_token", func(w http.ResponseWriter, r *http.Request) {
		testutil.RespondJSON(w, http.StatusOK,
			`{"result":"success","token":"`+testToken+`"}`)
	}).Methods("POST")
}

func TestLogin(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()
	installLoginHandlers(provider)

	api := clients.NewOhmage(&models.Config{Server: provider.URL()})
	session, err := api.Login(context.Background(), "alice", "secret")

	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, testHashedPassword, session.HashedPassword)
	assert.Equal(t, testToken, session.Token)

	assert.True(t, api.IsAuthenticated(false))
	assert.True(t, api.IsAuthenticated(true))
}

func TestLoginThenImplicitCredentials(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()
	installLoginHandlers(provider)

	var gotParams url.Values
	provider.Router.HandleFunc("/app/campaign/read", func(w http.ResponseWriter, r *http.Request) {
		gotParams = testutil.FormValues(t, r)
		testutil.RespondJSON(w, http.StatusOK, `{"result":"success","data":{}}`)
	}).Methods("POST")

	api := clients.NewOhmage(&models.Config{Server: provider.URL()})
	_, err := api.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	// no explicit session - the cached token must be sent
	_, err = api.CampaignRead(context.Background(), nil, enums.OutputFormatShort, nil)

	require.NoError(t, err)
	assert.Equal(t, testToken, gotParams.Get("auth_token"))
	assert.Equal(t, "short", gotParams.Get("output_format"))
	assert.Equal(t, "surveykit-go", gotParams.Get("client"))
}

func TestExpiredTokenFallsBackToPassword(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()
	installLoginHandlers(provider)

	var gotParams url.Values
	provider.Router.HandleFunc("/app/campaign/read", func(w http.ResponseWriter, r *http.Request) {
		gotParams = testutil.FormValues(t, r)
		testutil.RespondJSON(w, http.StatusOK, `{"result":"success","data":{}}`)
	}).Methods("POST")

	api := clients.NewOhmage(&models.Config{
		Server:        provider.URL(),
		TokenLifetime: 10 * time.Millisecond,
	})
	_, err := api.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	// let the cached token time out; the hashed password stays valid
	time.Sleep(50 * time.Millisecond)
	require.False(t, api.IsAuthenticated(true))

	_, err = api.CampaignRead(context.Background(), nil, enums.OutputFormatShort, nil)

	require.NoError(t, err)
	assert.Empty(t, gotParams.Get("auth_token"))
	assert.Equal(t, "alice", gotParams.Get("user"))
	assert.Equal(t, testHashedPassword, gotParams.Get("password"))
}

func TestExplicitSessionWinsOverCache(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()
	installLoginHandlers(provider)

	var gotParams url.Values
	provider.Router.HandleFunc("/app/campaign/read", func(w http.ResponseWriter, r *http.Request) {
		gotParams = testutil.FormValues(t, r)
		testutil.RespondJSON(w, http.StatusOK, `{"result":"success","data":{}}`)
	}).Methods("POST")

	api := clients.NewOhmage(&models.Config{Server: provider.URL()})
	_, err := api.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	other := &models.Session{Username: "bob", HashedPassword: "other-hash", Token: "other-token"}
	_, err = api.CampaignRead(context.Background(), other, enums.OutputFormatLong, nil)

	require.NoError(t, err)
	assert.Equal(t, "other-token", gotParams.Get("auth_token"))
	assert.Equal(t, "long", gotParams.Get("output_format"))
}

func TestLogoutDropsCachedSession(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()
	installLoginHandlers(provider)

	var gotParams url.Values
	provider.Router.HandleFunc("/app/campaign/read", func(w http.ResponseWriter, r *http.Request) {
		gotParams = testutil.FormValues(t, r)
		testutil.RespondJSON(w, http.StatusOK, `{"result":"success","data":{}}`)
	}).Methods("POST")

	api := clients.NewOhmage(&models.Config{Server: provider.URL()})
	_, err := api.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	api.Logout()
	assert.False(t, api.IsAuthenticated(false))
	assert.False(t, api.IsAuthenticated(true))

	_, err = api.CampaignRead(context.Background(), nil, enums.OutputFormatShort, nil)
	require.NoError(t, err)
	assert.Empty(t, gotParams.Get("auth_token"))
}

func TestCampaignReadOptions(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()

	var gotParams url.Values
	provider.Router.HandleFunc("/app/campaign/read", func(w http.ResponseWriter, r *http.Request) {
		gotParams = testutil.FormValues(t, r)
		testutil.RespondJSON(w, http.StatusOK, `{"result":"success","data":{}}`)
	}).Methods("POST")

	api := clients.NewOhmage(&models.Config{Server: provider.URL()})
	session := &models.Session{Token: "tok"}
	opts := &clients.CampaignReadOptions{
		CampaignURNList: []string{"urn:campaign:CS101", "urn:campaign:CS102"},
		StartDate:       "2011-11-01",
		RunningState:    "running",
	}

	_, err := api.CampaignRead(context.Background(), session, enums.OutputFormatShort, opts)

	require.NoError(t, err)
	assert.Equal(t, "urn:campaign:CS101,urn:campaign:CS102", gotParams.Get("campaign_urn_list"))
	assert.Equal(t, "2011-11-01", gotParams.Get("start_date"))
	assert.Equal(t, "running", gotParams.Get("running_state"))

	// zero-valued options stay out of the request
	assert.False(t, gotParams.Has("end_date"))
	assert.False(t, gotParams.Has("privacy_state"))
}

func TestSurveyUpload(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()
	installLoginHandlers(provider)

	var gotContentType string
	var gotParams url.Values
	provider.Router.HandleFunc("/app/survey/upload", func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotParams = testutil.FormValues(t, r)
		testutil.RespondJSON(w, http.StatusOK, `{"result":"success"}`)
	}).Methods("POST")

	api := clients.NewOhmage(&models.Config{Server: provider.URL()})
	_, err := api.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	survey := models.NewSurvey("daily-checkin", 1335312000000, "America/Los_Angeles", []models.PromptResponse{
		{PromptID: "mood", Value: "good"},
		{PromptID: "hours_slept", Value: 7},
	})

	_, err = api.SurveyUpload(context.Background(), nil, "urn:campaign:CS101", "2012-01-01 10:00:00", []models.Survey{survey})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotContentType, "multipart/form-data"))
	assert.Equal(t, "urn:campaign:CS101", gotParams.Get("campaign_urn"))
	assert.Equal(t, "2012-01-01 10:00:00", gotParams.Get("campaign_creation_timestamp"))

	// survey upload authenticates with the cached user and hashed password
	assert.Equal(t, "alice", gotParams.Get("user"))
	assert.Equal(t, testHashedPassword, gotParams.Get("password"))
	assert.Empty(t, gotParams.Get("auth_token"))

	var uploaded []models.Survey
	require.NoError(t, json.Unmarshal([]byte(gotParams.Get("surveys")), &uploaded))
	require.Len(t, uploaded, 1)
	assert.Equal(t, "daily-checkin", uploaded[0].SurveyID)
	assert.Equal(t, survey.SurveyKey, uploaded[0].SurveyKey)
	assert.Len(t, uploaded[0].Responses, 2)
}

func TestSurveyResponseReadDefaults(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()

	var gotParams url.Values
	provider.Router.HandleFunc("/app/survey_response/read", func(w http.ResponseWriter, r *http.Request) {
		gotParams = testutil.FormValues(t, r)
		testutil.RespondJSON(w, http.StatusOK, `{"result":"success","data":[]}`)
	}).Methods("POST")

	api := clients.NewOhmage(&models.Config{Server: provider.URL()})
	session := &models.Session{Token: "tok"}

	_, err := api.SurveyResponseRead(context.Background(), session, "urn:campaign:CS101", nil)

	require.NoError(t, err)
	assert.Equal(t, "urn:campaign:CS101", gotParams.Get("campaign_urn"))
	assert.Equal(t, "json-rows", gotParams.Get("output_format"))
	assert.Equal(t, "urn:ohmage:special:all", gotParams.Get("column_list"))
	assert.Equal(t, "urn:ohmage:special:all", gotParams.Get("user_list"))
	assert.Equal(t, "tok", gotParams.Get("auth_token"))
}

func TestSurveyResponseReadOptions(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()

	var gotParams url.Values
	provider.Router.HandleFunc("/app/survey_response/read", func(w http.ResponseWriter, r *http.Request) {
		gotParams = testutil.FormValues(t, r)
		testutil.RespondJSON(w, http.StatusOK, `{"result":"success","data":[]}`)
	}).Methods("POST")

	api := clients.NewOhmage(&models.Config{Server: provider.URL()})
	session := &models.Session{Token: "tok"}
	opts := &clients.SurveyResponseReadOptions{
		OutputFormat: "json-columns",
		UserList:     []string{"alice", "bob"},
		SurveyIDList: []string{"daily-checkin"},
		PrettyPrint:  true,
		NumToSkip:    20,
	}

	_, err := api.SurveyResponseRead(context.Background(), session, "urn:campaign:CS101", opts)

	require.NoError(t, err)
	assert.Equal(t, "json-columns", gotParams.Get("output_format"))
	assert.Equal(t, "alice,bob", gotParams.Get("user_list"))
	assert.Equal(t, "daily-checkin", gotParams.Get("survey_id_list"))
	assert.Equal(t, "true", gotParams.Get("pretty_print"))
	assert.Equal(t, "20", gotParams.Get("num_to_skip"))
}

func TestMobilityRead(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()

	var gotParams url.Values
	provider.Router.HandleFunc("/app/mobility/read", func(w http.ResponseWriter, r *http.Request) {
		gotParams = testutil.FormValues(t, r)
		testutil.RespondJSON(w, http.StatusOK, `{"result":"success","data":[]}`)
	}).Methods("POST")

	api := clients.NewOhmage(&models.Config{Server: provider.URL()})
	session := &models.Session{Token: "tok"}

	_, err := api.MobilityRead(context.Background(), session, "2012-05-01", &clients.MobilityReadOptions{WithSensorData: true})

	require.NoError(t, err)
	assert.Equal(t, "2012-05-01", gotParams.Get("date"))
	assert.Equal(t, "true", gotParams.Get("with_sensor_data"))
	assert.Equal(t, "tok", gotParams.Get("auth_token"))
}

func TestMobilityDatesRead(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()

	var gotParams url.Values
	provider.Router.HandleFunc("/app/mobility/dates/read", func(w http.ResponseWriter, r *http.Request) {
		gotParams = testutil.FormValues(t, r)
		testutil.RespondJSON(w, http.StatusOK, `{"result":"success","data":[]}`)
	}).Methods("POST")

	api := clients.NewOhmage(&models.Config{Server: provider.URL()})
	session := &models.Session{Token: "tok"}
	opts := &clients.MobilityDatesReadOptions{StartDate: "2012-05-01", EndDate: "2012-05-31"}

	_, err := api.MobilityDatesRead(context.Background(), session, opts)

	require.NoError(t, err)
	assert.Equal(t, "2012-05-01", gotParams.Get("start_date"))
	assert.Equal(t, "2012-05-31", gotParams.Get("end_date"))
}

func TestAPIErrorSurfacesCodes(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()

	provider.Router.HandleFunc("/app/campaign/read", func(w http.ResponseWriter, r *http.Request) {
		testutil.RespondJSON(w, http.StatusOK,
			`{"result":"failure","errors":[{"code":"0200","text":"bad auth"}]}`)
	}).Methods("POST")

	api := clients.NewOhmage(&models.Config{Server: provider.URL()})
	session := &models.Session{Token: "expired"}

	_, err := api.CampaignRead(context.Background(), session, enums.OutputFormatShort, nil)

	require.Error(t, err)
	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []int{200}, apiErr.Codes())
}

func TestConfigReadXMLPassthrough(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()

	xmlBody := `<?xml version="1.0" encoding="UTF-8"?><config><version>2.10</version></config>`
	provider.Router.HandleFunc("/app/config/read", func(w http.ResponseWriter, r *http.Request) {
		// deliberately lie about the content type - sniffing must win
		testutil.RespondJSON(w, http.StatusOK, xmlBody)
	}).Methods("GET")

	api := clients.NewOhmage(&models.Config{Server: provider.URL()})
	payload, err := api.ConfigRead(context.Background())

	require.NoError(t, err)
	assert.True(t, payload.IsXML())
	assert.Equal(t, xmlBody, string(payload.Raw))
}

func TestHTTPErrorSurfaced(t *testing.T) {
	provider := testutil.NewMockProvider()
	defer provider.Close()

	provider.Router.HandleFunc("/app/config/read", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "the server is on fire", http.StatusInternalServerError)
	})

	api := clients.NewOhmage(&models.Config{Server: provider.URL()})
	_, err := api.ConfigRead(context.Background())

	require.Error(t, err)
	var httpErr *transport.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Contains(t, string(httpErr.Body), "on fire")
}

func TestLiveConfigRead(t *testing.T) {
	config := testutil.LiveConfig(t)

	api := clients.NewOhmage(config)
	payload, err := api.ConfigRead(context.Background())

	require.NoError(t, err)
	if !payload.IsXML() {
		assert.Equal(t, "success", payload.Data["result"])
	}
}
