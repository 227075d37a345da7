package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/careerhub-go/internal/i18n"
	"github.com/careerhub-go/internal/services/ai"
)

type errorResponse struct {
	Error       string `json:"error"`
	RateLimited bool   `json:"rateLimited,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// requestLang picks the language from the Accept-Language header
func requestLang(r *http.Request) string {
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return ""
	}
	lang := strings.TrimSpace(strings.Split(header, ",")[0])
	if idx := strings.IndexAny(lang, "-;"); idx > 0 {
		lang = lang[:idx]
	}
	return strings.ToLower(lang)
}

// userKey identifies the caller for rate limiting
func userKey(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return r.RemoteAddr
}

// writeGenerationError maps a typed generation error to an HTTP status
// and a localized user-facing message. Generic failures keep their raw
// message when one exists.
func writeGenerationError(w http.ResponseWriter, localizer *i18n.Localizer, lang string, err error) {
	genErr, ok := err.(*ai.Error)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: localizer.Get(lang, i18n.MsgGenerationFailed, nil),
		})
		return
	}

	switch genErr.Kind {
	case ai.KindConfig:
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: localizer.Get(lang, i18n.MsgMissingAPIKey, nil),
		})
	case ai.KindRateLimited:
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error:       localizer.Get(lang, i18n.MsgRateLimited, nil),
			RateLimited: true,
		})
	case ai.KindTimeout:
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{
			Error: localizer.Get(lang, i18n.MsgRequestTimeout, nil),
		})
	case ai.KindModelUnavailable:
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error: localizer.Get(lang, i18n.MsgModelUnavailable, nil),
		})
	default:
		message := genErr.Message
		if message == "" {
			message = localizer.Get(lang, i18n.MsgGenerationFailed, nil)
		}
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: message})
	}
}
