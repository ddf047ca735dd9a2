package mux

import (
	"errors"
	"net/http"
	"regexp"

	gmux "github.com/gorilla/mux"

	"leviathan-server/pkg/playable/cardgame"
)

func (m *Mux) getTemplate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, rows, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		writeJSON(w, http.StatusOK, paginate(m.manager.Templates(), start, rows))
	}
}

type postTemplatePayload struct {
	Name string `json:"name"`
	// Config is the default config when omitted
	Config *cardgame.Config `json:"config"`
}

func (m *Mux) postTemplate() http.HandlerFunc {
	var wordChar = regexp.MustCompile(`\w`)
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postTemplatePayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if !wordChar.MatchString(pp.Name) || len(pp.Name) < 3 || len(pp.Name) > 40 {
			writeJSONError(w, http.StatusBadRequest, errors.New("name must be 3-40 characters"))
			return
		}

		cfg := cardgame.DefaultConfig()
		if pp.Config != nil {
			cfg = *pp.Config
		}

		if cfg.WinCondition == cardgame.WinClosestSum && cfg.BlackjackTarget == 0 {
			cfg.BlackjackTarget = m.config.blackjackTarget
		}

		tmpl, err := m.manager.CreateTemplate(r.Context(), pp.Name, cfg, playerID(r))
		if err != nil {
			writeManagerError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, tmpl)
	}
}

func (m *Mux) getTemplateID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl, err := m.manager.Template(gmux.Vars(r)["id"])
		if err != nil {
			writeManagerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, tmpl)
	}
}

type postTemplateIDInstancePayload struct {
	EntryFee float64 `json:"entryFee"`
}

func (m *Mux) postTemplateIDInstance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postTemplateIDInstancePayload
		if !decodeRequest(w, r, &pp, true) {
			return
		}

		inst, err := m.manager.CreateInstance(r.Context(), gmux.Vars(r)["id"], playerID(r), pp.EntryFee)
		if err != nil {
			writeManagerError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, inst)
	}
}
