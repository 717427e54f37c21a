package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/daniel/webtoon-agent/internal/db"
	"github.com/daniel/webtoon-agent/internal/script"
	"github.com/daniel/webtoon-agent/internal/source"
	"github.com/daniel/webtoon-agent/internal/story"
)

// GenerateStoryRequest represents the request body for /story/generate.
// Either post_id (resolved through the source provider) or post_title
// (inline seed content) must be set.
type GenerateStoryRequest struct {
	PostID      string `json:"post_id,omitempty" validate:"required_without=PostTitle"`
	PostTitle   string `json:"post_title,omitempty" validate:"required_without=PostID"`
	PostContent string `json:"post_content,omitempty"`
	Mood        string `json:"mood,omitempty" validate:"omitempty,oneof=rofan modern_romance slice_of_life revenge high_teen"`
}

// GenerateWebtoonRequest represents the request body for /webtoon/generate.
type GenerateWebtoonRequest struct {
	Story      string `json:"story" validate:"required,min=1"`
	GenreStyle string `json:"genre_style,omitempty"`
}

// RunResponse represents the response for a submitted run.
type RunResponse struct {
	RunID string `json:"run_id"`
	Kind  string `json:"kind"`
	Phase string `json:"phase"`
}

// handleGenerateStory submits a story run and returns its id immediately.
func (s *Server) handleGenerateStory(w http.ResponseWriter, r *http.Request) {
	var req GenerateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validator.Struct(req); err != nil {
		verr := extractValidationError(err)
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	post := &source.Post{ID: req.PostID, Title: req.PostTitle, Content: req.PostContent}
	if req.PostID != "" && req.PostTitle == "" {
		if s.deps.Provider == nil {
			s.errorResponse(w, http.StatusBadRequest, "post_id lookup is not configured; send post_title instead")
			return
		}
		fetched, err := s.deps.Provider.GetPost(r.Context(), req.PostID)
		if err != nil {
			s.errorResponse(w, http.StatusBadGateway, "failed to fetch post: "+err.Error())
			return
		}
		post = fetched
	}

	mood := req.Mood
	if mood == "" {
		mood = story.DefaultMood
	}

	snap := s.deps.StoryEngine.Submit(story.Request{Post: post, Mood: mood})
	s.jsonResponse(w, http.StatusAccepted, RunResponse{
		RunID: snap.RunID.String(),
		Kind:  snap.Kind,
		Phase: string(snap.Phase),
	})
}

// handleGenerateWebtoon submits a script run over existing story text.
func (s *Server) handleGenerateWebtoon(w http.ResponseWriter, r *http.Request) {
	var req GenerateWebtoonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validator.Struct(req); err != nil {
		verr := extractValidationError(err)
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	snap := s.deps.ScriptEngine.Submit(script.Request{Story: req.Story, GenreStyle: req.GenreStyle})
	s.jsonResponse(w, http.StatusAccepted, RunResponse{
		RunID: snap.RunID.String(),
		Kind:  snap.Kind,
		Phase: string(snap.Phase),
	})
}

// storedRunResponse is a persisted run served after the in-memory registry
// no longer knows it, e.g. across restarts.
type storedRunResponse struct {
	*db.RunRecord
	Result json.RawMessage `json:"result,omitempty"`
}

// handleGetRun returns the current snapshot of a run. Runs evicted from the
// registry fall back to the persistence layer when one is configured.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run id")
		return
	}

	snap, err := s.deps.Registry.Get(id)
	if err == nil {
		s.jsonResponse(w, http.StatusOK, snap)
		return
	}

	if s.deps.DB != nil {
		rec, dbErr := s.deps.DB.GetRun(r.Context(), id)
		if dbErr != nil {
			log.Printf("Warning: failed to look up stored run %s: %v", id, dbErr)
		} else if rec != nil {
			resp := storedRunResponse{RunRecord: rec}
			if content, aErr := s.deps.DB.GetArtifact(r.Context(), id, rec.Kind); aErr == nil && content != nil {
				resp.Result = content
			}
			s.jsonResponse(w, http.StatusOK, resp)
			return
		}
	}

	s.errorResponse(w, HTTPStatus(err), err.Error())
}

// handleListRuns returns every known run, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.deps.Registry.List())
}

// handleListMoods returns the supported story moods.
func (s *Server) handleListMoods(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"moods":   story.Moods(),
		"default": story.DefaultMood,
	})
}
