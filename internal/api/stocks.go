package api

import (
	"net/http"

	"pharmasupply/m/domain"
)

type stockRequest struct {
	MedicalID  int64 `json:"medicalId"`
	NumOfUnits int64 `json:"numOfUnits"`
}

type unitsRequest struct {
	Units int64 `json:"units"`
}

// listStocks returns stock rows; a pharmacy session only sees its own.
func (h *Handler) listStocks(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r)
	var pharmID *int64
	if identity.Role == domain.RolePharmacy {
		pharmID = &identity.ID
	} else if raw := r.URL.Query().Get("pharmId"); raw != "" {
		if id, err := parseID(raw); err == nil {
			pharmID = &id
		}
	}
	stocks, err := h.store.Stocks.List(pharmID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", stocks)
}

// stocksByMedicine reports which pharmacies hold a medicine and the
// total units available across all of them.
func (h *Handler) stocksByMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	result, err := h.store.Stocks.ByMedicine(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", result)
}

func (h *Handler) getStock(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	stock, err := h.store.Stocks.Get(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	identity := identityFromContext(r)
	if identity.Role == domain.RolePharmacy && stock.PharmID != identity.ID {
		respondError(w, http.StatusForbidden, "Access denied")
		return
	}
	respondData(w, http.StatusOK, "", stock)
}

func (h *Handler) createStock(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RolePharmacy) {
		return
	}
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MedicalID == 0 {
		respondError(w, http.StatusBadRequest, "Medicine ID and number of units are required")
		return
	}
	stock, err := h.store.Stocks.Create(identityFromContext(r).ID, req.MedicalID, req.NumOfUnits)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusCreated, "Stock created successfully", stock)
}

// updateStock overwrites the unit count.
func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RolePharmacy) {
		return
	}
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	stock, err := h.store.Stocks.SetUnits(id, identityFromContext(r).ID, req.NumOfUnits)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Stock updated successfully", stock)
}

func (h *Handler) addStock(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RolePharmacy) {
		return
	}
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req unitsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Units <= 0 {
		respondError(w, http.StatusBadRequest, "Valid number of units to add is required")
		return
	}
	stock, err := h.store.Stocks.Add(id, identityFromContext(r).ID, req.Units)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Units added to stock", stock)
}

func (h *Handler) removeStock(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RolePharmacy) {
		return
	}
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req unitsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Units <= 0 {
		respondError(w, http.StatusBadRequest, "Valid number of units to remove is required")
		return
	}
	stock, err := h.store.Stocks.Remove(id, identityFromContext(r).ID, req.Units)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Units removed from stock", stock)
}

func (h *Handler) deleteStock(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RolePharmacy) {
		return
	}
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := h.store.Stocks.Delete(id, identityFromContext(r).ID); err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Stock deleted successfully", nil)
}
