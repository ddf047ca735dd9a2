package mux

import (
	"context"
	"net/http"

	"leviathan-server/pkg/launchpad"
	"leviathan-server/pkg/playable"
)

func (m *Mux) getInstance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, rows, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		instances := m.manager.Instances(launchpad.Status(r.FormValue("status")))
		writeJSON(w, http.StatusOK, paginate(instances, start, rows))
	}
}

func (m *Mux) getInstanceID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, instance(r))
	}
}

func (m *Mux) getInstanceIDState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := m.manager.VisibleState(instance(r).ID, playerID(r))
		if err != nil {
			writeManagerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}

// instanceHandler runs fn for the player and instance, then responds with the updated instance
func (m *Mux) instanceHandler(fn func(ctx context.Context, instanceID, playerID string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := instance(r).ID
		if err := fn(r.Context(), id, playerID(r)); err != nil {
			writeManagerError(w, err)
			return
		}

		inst, err := m.manager.Instance(id)
		if err != nil {
			writeManagerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, inst)
	}
}

type postInstanceIDJoinPayload struct {
	Name string `json:"name"`
}

func (m *Mux) postInstanceIDJoin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postInstanceIDJoinPayload
		if !decodeRequest(w, r, &pp, true) {
			return
		}

		m.instanceHandler(func(ctx context.Context, instanceID, playerID string) error {
			return m.manager.JoinInstance(ctx, instanceID, playerID, pp.Name)
		})(w, r)
	}
}

func (m *Mux) postInstanceIDPay() http.HandlerFunc {
	return m.instanceHandler(m.manager.ConfirmPayment)
}

func (m *Mux) postInstanceIDStart() http.HandlerFunc {
	return m.instanceHandler(func(ctx context.Context, instanceID, playerID string) error {
		if err := m.requireCreator(instanceID, playerID); err != nil {
			return err
		}

		return m.manager.StartInstance(ctx, instanceID)
	})
}

func (m *Mux) postInstanceIDLeave() http.HandlerFunc {
	return m.instanceHandler(m.manager.LeaveInstance)
}

func (m *Mux) postInstanceIDCancel() http.HandlerFunc {
	return m.instanceHandler(m.manager.CancelInstance)
}

type postInstanceIDFinishPayload struct {
	WinnerID string `json:"winnerId"`
}

func (m *Mux) postInstanceIDFinish() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postInstanceIDFinishPayload
		if !decodeRequest(w, r, &pp, true) {
			return
		}

		m.instanceHandler(func(ctx context.Context, instanceID, playerID string) error {
			if err := m.requireCreator(instanceID, playerID); err != nil {
				return err
			}

			return m.manager.FinishInstance(ctx, instanceID, pp.WinnerID)
		})(w, r)
	}
}

func (m *Mux) postInstanceIDAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload playable.PayloadIn
		if !decodeRequest(w, r, &payload) {
			return
		}

		res, err := m.manager.PlayerAction(r.Context(), instance(r).ID, playerID(r), &payload)
		if err != nil {
			writeManagerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func (m *Mux) requireCreator(instanceID, playerID string) error {
	inst, err := m.manager.Instance(instanceID)
	if err != nil {
		return err
	}

	if inst.CreatorID != playerID {
		return launchpad.ErrNotCreator
	}

	return nil
}
