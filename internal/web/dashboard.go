package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/fileparser/internal/core"
	"github.com/JonMunkholm/fileparser/internal/web/templates"
)

// handleDashboard renders the job table for browsers.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	params := templates.DashboardParams{
		Title:   serviceName,
		Version: core.Version,
		Jobs:    s.service.Jobs(""),
		Health:  s.service.LimiterStatus(),
		Now:     time.Now(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(params).Render(r.Context(), w); err != nil {
		respondError(w, r, fmt.Errorf("render dashboard: %w", err), http.StatusInternalServerError)
	}
}
