package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ti-assistant/server/pkg/ti4"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// rejectionStatus maps an engine rejection kind onto the HTTP status the
// REST surface reports it with: state-machine refusals (wrong phase, wrong
// turn, duplicate work, rule violations) are conflicts with the game's
// current state; events naming things that don't exist or carrying bad
// arguments are unprocessable.
func rejectionStatus(kind ti4.RejectionKind) int {
	switch kind {
	case ti4.RejectionUnknownEntity, ti4.RejectionCatalogMissing, ti4.RejectionInvalidArgument:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusConflict
	}
}

// writeRejection reports a reducer rejection for one game: the envelope
// carries the machine-readable kind alongside the human-readable reason so
// clients can branch without parsing prose.
func writeRejection(w http.ResponseWriter, gameID string, rej *ti4.Rejection) {
	writeJSON(w, rejectionStatus(rej.Kind), map[string]string{
		"error":  rej.Reason,
		"kind":   string(rej.Kind),
		"gameId": gameID,
	})
}

// decodeJSON reads and decodes JSON from a request body.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
