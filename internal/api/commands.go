package api

import (
	"net/http"

	"pharmasupply/m/domain"
	"pharmasupply/m/internal/store"
)

type commandRequest struct {
	MedID      int64 `json:"medId"`
	NumOfUnits int64 `json:"numOfUnits"`
}

// listCommands returns commands visible to the caller: a pharmacy sees
// its own, a fournisseur sees the ones it accepted, consumers see all.
func (h *Handler) listCommands(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r)
	filter := store.Filter{State: r.URL.Query().Get("state")}
	if raw := r.URL.Query().Get("pharmId"); raw != "" {
		if id, err := parseID(raw); err == nil {
			filter.PharmID = id
		}
	}
	if raw := r.URL.Query().Get("fournisseurId"); raw != "" {
		if id, err := parseID(raw); err == nil {
			filter.FournisseurID = id
		}
	}
	switch identity.Role {
	case domain.RolePharmacy:
		filter.PharmID = identity.ID
	case domain.RoleFournisseur:
		filter.FournisseurID = identity.ID
	}
	commands, err := h.store.Commands.List(filter)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", commands)
}

func (h *Handler) pendingCommands(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleFournisseur) {
		return
	}
	commands, err := h.store.Commands.Pending()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", commands)
}

func (h *Handler) getCommand(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	command, err := h.store.Commands.Get(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	identity := identityFromContext(r)
	if identity.Role == domain.RolePharmacy && command.PharmID != identity.ID {
		respondError(w, http.StatusForbidden, "Access denied")
		return
	}
	if identity.Role == domain.RoleFournisseur &&
		(command.FournisseurID == nil || *command.FournisseurID != identity.ID) {
		respondError(w, http.StatusForbidden, "Access denied")
		return
	}
	respondData(w, http.StatusOK, "", command)
}

func (h *Handler) createCommand(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RolePharmacy) {
		return
	}
	var req commandRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MedID == 0 || req.NumOfUnits == 0 {
		respondError(w, http.StatusBadRequest, "Medicine ID and number of units are required")
		return
	}
	command, err := h.store.Commands.Create(req.MedID, identityFromContext(r).ID, req.NumOfUnits)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusCreated, "Command created successfully", command)
}

func (h *Handler) acceptCommand(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleFournisseur) {
		return
	}
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	command, err := h.store.Commands.Accept(id, identityFromContext(r).ID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Command accepted successfully", command)
}

func (h *Handler) deliverCommand(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleFournisseur) {
		return
	}
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	command, err := h.store.Commands.Deliver(id, identityFromContext(r).ID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Command marked as delivered successfully", command)
}

// updateCommand amends the ordered quantity while the command is still
// awaiting.
func (h *Handler) updateCommand(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RolePharmacy) {
		return
	}
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req commandRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.NumOfUnits == 0 {
		respondError(w, http.StatusBadRequest, "Number of units is required")
		return
	}
	command, err := h.store.Commands.AmendUnits(id, identityFromContext(r).ID, req.NumOfUnits)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Command updated successfully", command)
}

func (h *Handler) deleteCommand(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RolePharmacy) {
		return
	}
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := h.store.Commands.Delete(id, identityFromContext(r).ID); err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Command deleted successfully", nil)
}
