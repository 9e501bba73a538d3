package http

import (
	"errors"
	"net/http"

	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/abcbank/voxteller/pkg/utils/errutil"
	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
)

func sessionIDFromURL(r *http.Request) types.SessionID {
	return types.SessionID(chi.URLParam(r, "sessionID"))
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.uc.StartSession(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to start session"), http.StatusInternalServerError)
		return
	}
	respondJSON(w, r, http.StatusCreated, session)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.uc.GetSession(r.Context(), sessionIDFromURL(r))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
			return
		}
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, r, http.StatusOK, session)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.uc.ListSessions(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.uc.EndSession(r.Context(), sessionIDFromURL(r))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
			return
		}
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, r, http.StatusOK, session)
}

func (s *Server) listTurns(w http.ResponseWriter, r *http.Request) {
	turns, err := s.uc.ListTurns(r.Context(), sessionIDFromURL(r))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"turns": turns})
}
