package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/domain"
)

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageBody{Message: message})
}

// reportDTO renders r with wire field names and a numeric id.
func reportDTO(r domain.WorkReport) map[string]any {
	body := api.EncodeReport(r)
	if n, err := strconv.ParseInt(r.ID, 10, 64); err == nil {
		body["id"] = n
	} else {
		body["id"] = r.ID
	}
	return body
}

func reportDTOs(rs []domain.WorkReport) []map[string]any {
	out := make([]map[string]any, 0, len(rs))
	for _, r := range rs {
		out = append(out, reportDTO(r))
	}
	return out
}
