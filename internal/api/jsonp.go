package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/rs/zerolog/log"
)

// callbackPattern accepts plain javascript identifiers with dotted paths.
var callbackPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

// writeReply writes v as JSON, or as a JSONP callback invocation when a valid
// callback name is supplied. Invalid callback names fall back to plain JSON.
func writeReply(w http.ResponseWriter, callback string, v any) {
	if callback == "" || !callbackPattern.MatchString(callback) {
		writeJSON(w, http.StatusOK, v)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal jsonp body")
		writeError(w, http.StatusInternalServerError, "encoding failure")
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	// The comment prefix stops content-sniffing attacks on the script tag.
	fmt.Fprintf(w, "/**/%s(%s);", callback, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write json")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
