package mux

import (
	"context"
	"net/http"
	"strings"

	gmux "github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"leviathan-server/internal/config"
	"leviathan-server/internal/jwt"
	"leviathan-server/pkg/launchpad"
	"leviathan-server/pkg/room"
	"leviathan-server/pkg/statesync"
)

type ctxKey int

const (
	ctxPlayerKey ctxKey = iota
	ctxInstanceKey
)

const uuidPattern = "{id:(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}}"

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	config  muxConfig
	version string
	manager *launchpad.Manager
	pitBoss *room.PitBoss

	// store for testing purposes
	authRouter *gmux.Router
}

type muxConfig struct {
	// blackjackTarget is used for closest_sum templates that don't set a target
	blackjackTarget int
}

// NewMux returns a new HTTP mux
func NewMux(version string, manager *launchpad.Manager, syncer *statesync.Syncer) *Mux {
	pitBoss := room.NewPitBoss(logrus.StandardLogger(), manager, syncer)
	pitBoss.StartShift()

	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		manager: manager,
		pitBoss: pitBoss,
		config: muxConfig{
			blackjackTarget: config.Instance().BlackjackTarget,
		},
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		r.Methods(http.MethodGet).Path("/template").Handler(this.getTemplate())
		r.Methods(http.MethodPost).Path("/template").Handler(this.postTemplate())
		r.Methods(http.MethodGet).Path("/template/" + uuidPattern).Handler(this.getTemplateID())
		r.Methods(http.MethodPost).Path("/template/" + uuidPattern + "/instance").Handler(this.postTemplateIDInstance())

		r.Methods(http.MethodGet).Path("/instance").Handler(this.getInstance())

		ir := r.PathPrefix("/instance/" + uuidPattern).Subrouter()
		ir.Use(this.instanceMiddleware)

		ir.Methods(http.MethodGet).Path("").Handler(this.getInstanceID())
		ir.Methods(http.MethodGet).Path("/state").Handler(this.getInstanceIDState())
		ir.Methods(http.MethodGet).Path("/ws").Handler(this.getInstanceIDWS())
		ir.Methods(http.MethodPost).Path("/join").Handler(this.postInstanceIDJoin())
		ir.Methods(http.MethodPost).Path("/pay").Handler(this.postInstanceIDPay())
		ir.Methods(http.MethodPost).Path("/start").Handler(this.postInstanceIDStart())
		ir.Methods(http.MethodPost).Path("/leave").Handler(this.postInstanceIDLeave())
		ir.Methods(http.MethodPost).Path("/cancel").Handler(this.postInstanceIDCancel())
		ir.Methods(http.MethodPost).Path("/finish").Handler(this.postInstanceIDFinish())
		ir.Methods(http.MethodPost).Path("/action").Handler(this.postInstanceIDAction())
	}

	return this
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		playerID, err := jwt.ValidPlayerID(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxPlayerKey, playerID)
		w.Header().Set("Leviathan-PlayerID", playerID)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// instanceMiddleware requires authMiddleware to execute first
func (m *Mux) instanceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inst, err := m.manager.Instance(gmux.Vars(r)["id"])
		if err != nil {
			writeManagerError(w, err)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxInstanceKey, inst)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

func playerID(r *http.Request) string {
	return r.Context().Value(ctxPlayerKey).(string)
}

func instance(r *http.Request) *launchpad.Instance {
	return r.Context().Value(ctxInstanceKey).(*launchpad.Instance)
}
