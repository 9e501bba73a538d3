package http

import (
	"encoding/json"
	"net/http"

	"github.com/abcbank/voxteller/pkg/domain/model"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/abcbank/voxteller/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
)

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	envKey := types.EnvKey(r.URL.Query().Get("env"))
	cfg, err := s.uc.GetConfig(r.Context(), envKey)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, r, http.StatusOK, cfg)
}

func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	var cfg model.AgentConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid config body"), http.StatusBadRequest)
		return
	}

	if err := s.uc.PutConfig(r.Context(), &cfg); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, r, http.StatusOK, &cfg)
}
