package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/careerhub-go/internal/config"
	"github.com/careerhub-go/internal/i18n"
	"github.com/careerhub-go/internal/models"
	"github.com/careerhub-go/internal/services/ai"
	"github.com/careerhub-go/internal/services/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLocalizer has no message files loaded, so Get returns raw message IDs
func testLocalizer(t *testing.T) *i18n.Localizer {
	t.Helper()
	localizer, err := i18n.NewLocalizer(&config.I18nConfig{DefaultLanguage: "en"})
	require.NoError(t, err)
	return localizer
}

func TestRequestLang(t *testing.T) {
	cases := map[string]string{
		"":                      "",
		"en":                    "en",
		"en-US,en;q=0.9":        "en",
		"zh-CN,zh;q=0.9,en;q=0": "zh",
		"fr;q=0.8":              "fr",
		" de , en ":             "de",
	}

	for header, want := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			r.Header.Set("Accept-Language", header)
		}
		assert.Equal(t, want, requestLang(r), "header %q", header)
	}
}

func TestUserKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-User-ID", "u42")
	assert.Equal(t, "u42", userKey(r))

	r = httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	assert.Equal(t, "10.0.0.1:5000", userKey(r))
}

func TestWriteGenerationErrorStatusMapping(t *testing.T) {
	localizer := testLocalizer(t)

	cases := []struct {
		err         error
		wantStatus  int
		wantMessage string
		rateLimited bool
	}{
		{&ai.Error{Kind: ai.KindConfig}, http.StatusInternalServerError, i18n.MsgMissingAPIKey, false},
		{&ai.Error{Kind: ai.KindRateLimited}, http.StatusTooManyRequests, i18n.MsgRateLimited, true},
		{&ai.Error{Kind: ai.KindTimeout}, http.StatusGatewayTimeout, i18n.MsgRequestTimeout, false},
		{&ai.Error{Kind: ai.KindModelUnavailable}, http.StatusBadGateway, i18n.MsgModelUnavailable, false},
		{assert.AnError, http.StatusInternalServerError, i18n.MsgGenerationFailed, false},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		writeGenerationError(w, localizer, "en", tc.err)

		assert.Equal(t, tc.wantStatus, w.Code)
		assert.Contains(t, w.Body.String(), tc.wantMessage)
		if tc.rateLimited {
			assert.Contains(t, w.Body.String(), `"rateLimited":true`)
		}
	}
}

func TestWriteGenerationErrorGenericKeepsMessage(t *testing.T) {
	localizer := testLocalizer(t)

	w := httptest.NewRecorder()
	writeGenerationError(w, localizer, "en", &ai.Error{Kind: ai.KindGeneric, Message: "upstream exploded"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "upstream exploded")

	// Without a message the localized fallback is used
	w = httptest.NewRecorder()
	writeGenerationError(w, localizer, "en", &ai.Error{Kind: ai.KindGeneric})
	assert.Contains(t, w.Body.String(), i18n.MsgGenerationFailed)
}

func TestParseFilter(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/projects?q=chat&mode=remote&sort=teamSize&dir=asc&open=true&tags=ai,%20health&skills=go&teamMin=2&teamMax=6", nil)

	filter := parseFilter(r)

	assert.Equal(t, "chat", filter.Query)
	assert.Equal(t, models.WorkModeRemote, filter.WorkMode)
	assert.Equal(t, store.OrderByTeamSize, filter.SortBy)
	assert.False(t, filter.SortDesc)
	assert.True(t, filter.OpenOnly)
	assert.Equal(t, []string{"ai", "health"}, filter.Tags)
	assert.Equal(t, []string{"go"}, filter.Skills)
	assert.Equal(t, 2, filter.TeamSizeMin)
	assert.Equal(t, 6, filter.TeamSizeMax)
}

func TestParseFilterDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/projects", nil)

	filter := parseFilter(r)

	assert.Equal(t, models.WorkModeAll, filter.WorkMode)
	assert.Equal(t, store.OrderByCreatedAt, filter.SortBy)
	assert.True(t, filter.SortDesc)
	assert.False(t, filter.OpenOnly)
	assert.Empty(t, filter.Tags)
	assert.Zero(t, filter.TeamSizeMin)
	assert.Zero(t, filter.TeamSizeMax)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList("a, b"))
	assert.Equal(t, []string{"a"}, splitList("a,,  ,"))
}
