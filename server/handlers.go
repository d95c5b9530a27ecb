package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

// ChatRequest is the incoming chat turn.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is the full turn result returned to the client.
type ChatResponse struct {
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`

	// Pipeline state, for transparency.
	SQL  string `json:"sql,omitempty"`
	Rows int    `json:"rows"`

	ChartPNG     string `json:"chart_png,omitempty"` // base64
	ChartSkipped bool   `json:"chart_skipped"`
	SkipReason   string `json:"skip_reason,omitempty"`

	Error string `json:"error,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	reply := s.sessions.HandleMessage(r.Context(), req.SessionID, req.Message)
	turn := reply.Turn

	resp := ChatResponse{
		SQL:          turn.SQL,
		ChartSkipped: turn.ChartSkipped,
		SkipReason:   turn.SkipReason,
	}
	if turn.Failed() {
		resp.Error = reply.Messages[0].Text
	} else {
		resp.Answer = turn.Answer
		resp.Explanation = turn.Explanation
		if turn.Result != nil {
			resp.Rows = turn.Result.RowCount
		}
		if turn.Chart != nil {
			resp.ChartPNG = base64.StdEncoding.EncodeToString(turn.Chart.PNG)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"schema": s.schema.Description(),
		"tables": s.schema.Tables(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
