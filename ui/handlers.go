package ui

import (
	"encoding/json"
	"net/http"
	"strings"

	"focustrack/adapters/excel"
	apperrors "focustrack/internal/errors"
	"focustrack/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"running":             s.tracker.IsRunning(),
		"current_activity":    s.tracker.CurrentActivity(),
		"today_total_seconds": s.tracker.TodayTotalSeconds(),
	})
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeRange(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	activities, err := s.activities.QueryRange(r.Context(), from, to)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, activities)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeRange(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	summary, err := s.summaries.Build(r.Context(), from, to)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeRange(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	activities, err := s.activities.QueryRange(r.Context(), from, to)
	if err != nil {
		s.respondError(w, err)
		return
	}
	summary, err := s.summaries.Build(r.Context(), from, to)
	if err != nil {
		s.respondError(w, err)
		return
	}
	projects, err := s.projects.List(r.Context(), false)
	if err != nil {
		s.respondError(w, err)
		return
	}
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="focustrack-report.xlsx"`)
	if err := excel.WriteReport(w, activities, summary, names); err != nil {
		s.logger.Error("export failed: %v", err)
	}
}

type assignRequest struct {
	ProjectID string  `json:"project_id"`
	Note      *string `json:"note,omitempty"`
}

func (s *Server) handleAssignProject(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, apperrors.InvalidInput("malformed request body"))
		return
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		s.respondError(w, apperrors.InvalidInput("project_id is required"))
		return
	}
	if _, err := s.projects.Get(r.Context(), req.ProjectID); err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.tracker.SetProject(r.Context(), req.ProjectID, req.Note); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.tracker.CurrentActivity())
}

func (s *Server) handleClearProject(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.ClearProject(r.Context()); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.tracker.CurrentActivity())
}

// correctionRequest carries a manual categorization to learn from. Project
// accepts either an exact identifier or a loose (e.g. spoken) name.
type correctionRequest struct {
	Project     string  `json:"project"`
	AppName     string  `json:"app_name,omitempty"`
	WindowTitle string  `json:"window_title,omitempty"`
	URL         string  `json:"url,omitempty"`
	Note        *string `json:"note,omitempty"`
}

func (s *Server) handleCorrection(w http.ResponseWriter, r *http.Request) {
	var req correctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, apperrors.InvalidInput("malformed request body"))
		return
	}
	if strings.TrimSpace(req.Project) == "" {
		s.respondError(w, apperrors.InvalidInput("project is required"))
		return
	}

	project, err := s.projects.Get(r.Context(), req.Project)
	if err != nil {
		if resolved := s.categorizer.FindProject(r.Context(), req.Project); resolved != nil {
			project = resolved
		} else {
			s.respondError(w, apperrors.NotFound("project"))
			return
		}
	}

	// Default the correction's context to the live activity.
	if req.AppName == "" {
		if current := s.tracker.CurrentActivity(); current != nil {
			req.AppName = current.AppName
			if req.WindowTitle == "" {
				req.WindowTitle = current.WindowTitle
			}
			if req.URL == "" {
				req.URL = current.URL
			}
		}
	}
	if req.AppName == "" {
		s.respondError(w, apperrors.InvalidInput("no live activity and no app_name given"))
		return
	}

	if current := s.tracker.CurrentActivity(); current != nil && current.AppName == req.AppName {
		if err := s.tracker.SetProject(r.Context(), project.ID, req.Note); err != nil {
			s.respondError(w, err)
			return
		}
	}

	if err := s.categorizer.LearnFromManual(r.Context(), req.AppName, req.WindowTitle, req.URL, project.ID); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"project":          project,
		"current_activity": s.tracker.CurrentActivity(),
	})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") == ""
	projects, err := s.projects.List(r.Context(), activeOnly)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, projects)
}

type projectRequest struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

func (s *Server) handleSaveProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, apperrors.InvalidInput("malformed request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.respondError(w, apperrors.InvalidInput("name is required"))
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Color == "" {
		req.Color = "#3B82F6"
	}

	project := &models.Project{
		ID:       req.ID,
		Name:     req.Name,
		Color:    req.Color,
		Icon:     req.Icon,
		IsActive: true,
	}
	if err := s.projects.Save(r.Context(), project); err != nil {
		s.respondError(w, err)
		return
	}
	s.categorizer.Invalidate()
	s.respondJSON(w, http.StatusCreated, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Soft-deactivate by default; hard delete nulls activity references.
	var err error
	if r.URL.Query().Get("hard") != "" {
		err = s.projects.Delete(r.Context(), id)
	} else {
		err = s.projects.Deactivate(r.Context(), id)
	}
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.categorizer.Invalidate()
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.rules.List(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rules)
}

type ruleRequest struct {
	Priority  int             `json:"priority"`
	Kind      models.RuleKind `json:"kind"`
	Pattern   string          `json:"pattern"`
	ProjectID string          `json:"project_id"`
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, apperrors.InvalidInput("malformed request body"))
		return
	}
	if !req.Kind.Valid() {
		s.respondError(w, apperrors.InvalidInput("kind must be app_name, window_title or url"))
		return
	}
	if strings.TrimSpace(req.Pattern) == "" || strings.TrimSpace(req.ProjectID) == "" {
		s.respondError(w, apperrors.InvalidInput("pattern and project_id are required"))
		return
	}
	if _, err := s.projects.Get(r.Context(), req.ProjectID); err != nil {
		s.respondError(w, err)
		return
	}

	rule := models.NewCategoryRule(req.Priority, req.Kind, req.Pattern, req.ProjectID)
	if err := s.rules.Insert(r.Context(), &rule); err != nil {
		s.respondError(w, err)
		return
	}
	s.categorizer.Invalidate()
	s.respondJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, apperrors.InvalidInput("malformed rule id"))
		return
	}
	if err := s.rules.Delete(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	s.categorizer.Invalidate()
	s.respondJSON(w, http.StatusNoContent, nil)
}
