package api

import (
	"net/http"
)

type medicineRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.store.Medicines.List()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", medicines)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	medicine, err := h.store.Medicines.ByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", medicine)
}

func (h *Handler) searchMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.store.Medicines.Search(r.URL.Query().Get("name"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", medicines)
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Medicine name is required")
		return
	}
	if req.Price < 0 {
		respondError(w, http.StatusBadRequest, "Price must not be negative")
		return
	}
	medicine, err := h.store.Medicines.Create(req.Name, req.Price)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusCreated, "Medicine created successfully", medicine)
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	medicine, err := h.store.Medicines.Update(id, req.Name, req.Price)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Medicine updated successfully", medicine)
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := h.store.Medicines.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Medicine deleted successfully", nil)
}
