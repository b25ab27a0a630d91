package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/djstrauss/dingertuesday/internal/clock"
	"github.com/djstrauss/dingertuesday/internal/modules/daily"
	"github.com/djstrauss/dingertuesday/internal/modules/report"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) respondOK(w http.ResponseWriter, format string, args ...interface{}) {
	s.respondJSON(w, http.StatusOK, statusResponse{Status: "success", Message: fmt.Sprintf(format, args...)})
}

func (s *Server) respondError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	s.respondJSON(w, status, statusResponse{Status: "error", Message: fmt.Sprintf(format, args...)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"day":    s.clk.Today(),
	})
}

// handleDaily serves one data class through the tiered resolver. Total
// resolution failure returns an explicit error payload, never a bare
// 500 from a propagated panic.
func (s *Server) handleDaily(class daily.DataClass) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.resolver.Resolve(r.Context(), class)
		if err != nil {
			s.log.Error().Err(err).Str("class", string(class)).Msg("Resolution failed")
			s.respondJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error":      err.Error(),
				"source":     daily.SourceError,
				"today_date": res.Day,
			})
			return
		}
		s.respondJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleMatchupHitters(w http.ResponseWriter, r *http.Request) {
	teamID, err := strconv.Atoi(chi.URLParam(r, "teamID"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid team id")
		return
	}

	result, err := s.matchups.HittersForTeam(r.Context(), teamID)
	if err != nil {
		s.log.Error().Err(err).Int("team", teamID).Msg("Matchup resolution failed")
		s.respondError(w, http.StatusBadGateway, "could not build matchup for team %d", teamID)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	limit := 10
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	articles, err := s.content.List(limit, offset)
	if err != nil {
		s.log.Error().Err(err).Msg("Article list failed")
		s.respondError(w, http.StatusInternalServerError, "could not list articles")
		return
	}
	if articles == nil {
		articles = []report.Article{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"articles": articles})
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	article, err := s.content.GetBySlug(slug)
	if err != nil {
		s.log.Error().Err(err).Str("slug", slug).Msg("Article fetch failed")
		s.respondError(w, http.StatusInternalServerError, "could not load article")
		return
	}
	if article == nil {
		s.respondError(w, http.StatusNotFound, "article %q not found", slug)
		return
	}
	s.respondJSON(w, http.StatusOK, article)
}

func (s *Server) handleDailyStatus(w http.ResponseWriter, r *http.Request) {
	now := s.clk.Now()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"today": s.clk.Today(),
		"local_time": map[string]interface{}{
			"current_time": now.Format(time.RFC3339),
			"timezone":     s.clk.Location().String(),
			"next_cutover": s.clk.NextCutover().Format(time.RFC3339),
		},
		"classes":           s.resolver.Status(),
		"cache_entries":     s.cache.Len(),
		"scheduler_running": s.sched.Running(),
	})
}

func (s *Server) handleTriggerRefresh(w http.ResponseWriter, r *http.Request) {
	s.triggerJob(w, r, "refresh")
}

func (s *Server) handleTriggerJob(w http.ResponseWriter, r *http.Request) {
	s.triggerJob(w, r, chi.URLParam(r, "name"))
}

func (s *Server) triggerJob(w http.ResponseWriter, r *http.Request, name string) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	// The job outlives this request on purpose; only job registration
	// problems surface here.
	if err := s.sched.Trigger(context.Background(), name, force); err != nil {
		s.respondError(w, http.StatusConflict, "%s", err)
		return
	}
	s.respondOK(w, "job %q triggered", name)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix != "" {
		n := s.cache.ClearPrefix(prefix)
		s.respondOK(w, "cleared %d entries with prefix %q", n, prefix)
		return
	}
	s.cache.Clear()
	s.respondOK(w, "all caches cleared")
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	today, err := time.Parse(clock.DayFormat, s.clk.Today())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "bad operating day")
		return
	}
	cutoff := today.AddDate(0, 0, -s.retentionDays).Format(clock.DayFormat)

	deleted, err := s.store.PurgeOlderThan(cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("Purge failed")
		s.respondError(w, http.StatusInternalServerError, "purge failed")
		return
	}
	s.respondOK(w, "purged %d records older than %s", deleted, cutoff)
}

func (s *Server) handleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"running": s.sched.Running(),
		"jobs":    s.sched.Status(),
	})
}
