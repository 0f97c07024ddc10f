package api

import (
	"net/http"

	"pharmasupply/m/domain"
)

type demandRequest struct {
	MedID int64 `json:"medId"`
}

// listDemands returns demand requests; a consumer only sees their own.
func (h *Handler) listDemands(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r)
	var userID *int64
	if identity.Role == domain.RoleUser {
		userID = &identity.ID
	} else if raw := r.URL.Query().Get("userId"); raw != "" {
		if id, err := parseID(raw); err == nil {
			userID = &id
		}
	}
	demands, err := h.store.Demands.List(userID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", demands)
}

func (h *Handler) getDemand(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	demand, err := h.store.Demands.Get(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	identity := identityFromContext(r)
	if identity.Role == domain.RoleUser && demand.UserID != identity.ID {
		respondError(w, http.StatusForbidden, "Access denied")
		return
	}
	respondData(w, http.StatusOK, "", demand)
}

func (h *Handler) createDemand(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleUser) {
		return
	}
	var req demandRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MedID == 0 {
		respondError(w, http.StatusBadRequest, "Medicine ID is required")
		return
	}
	demand, err := h.store.Demands.Create(identityFromContext(r).ID, req.MedID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusCreated, "Demand created successfully", demand)
}

func (h *Handler) updateDemand(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleUser) {
		return
	}
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req demandRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MedID == 0 {
		respondError(w, http.StatusBadRequest, "Medicine ID is required")
		return
	}
	demand, err := h.store.Demands.Update(id, identityFromContext(r).ID, req.MedID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Demand updated successfully", demand)
}

func (h *Handler) deleteDemand(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleUser) {
		return
	}
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := h.store.Demands.Delete(id, identityFromContext(r).ID); err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Demand deleted successfully", nil)
}
