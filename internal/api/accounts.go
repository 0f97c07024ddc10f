package api

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"pharmasupply/m/domain"
)

// User handlers (consumer accounts)

type userRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.Accounts.ListUsers()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	user, err := h.store.Accounts.UserByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Unable to secure password")
		return
	}
	user, err := h.store.Accounts.CreateUser(req.Username, string(hashed))
	if err != nil {
		h.registerError(w, err)
		return
	}
	respondData(w, http.StatusCreated, "User created successfully", user)
}

// updateUser lets a consumer change their own username or password.
func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	identity := identityFromContext(r)
	if identity.Role == domain.RoleUser && identity.ID != id {
		respondError(w, http.StatusForbidden, "Access denied")
		return
	}
	current, err := h.store.Accounts.UserByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	username := current.Username
	if req.Username != "" {
		username = req.Username
	}
	hash := ""
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Unable to secure password")
			return
		}
		hash = string(hashed)
	}
	user, err := h.store.Accounts.UpdateUser(id, username, hash)
	if err != nil {
		h.registerError(w, err)
		return
	}
	respondData(w, http.StatusOK, "User updated successfully", user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	identity := identityFromContext(r)
	if identity.Role == domain.RoleUser && identity.ID != id {
		respondError(w, http.StatusForbidden, "Access denied")
		return
	}
	if err := h.store.Accounts.DeleteUser(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "User deleted successfully", nil)
}

// Pharmacy handlers

type profileRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	PhoneNumber string `json:"phoneNumber"`
}

func (h *Handler) listPharmacies(w http.ResponseWriter, r *http.Request) {
	pharmacies, err := h.store.Accounts.ListPharmacies()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", pharmacies)
}

func (h *Handler) getPharmacy(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	pharmacy, err := h.store.Accounts.PharmacyByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", pharmacy)
}

// updatePharmacy updates a pharmacy profile. A pharmacy session may only
// touch its own row.
func (h *Handler) updatePharmacy(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	identity := identityFromContext(r)
	if identity.Role == domain.RolePharmacy && identity.ID != id {
		respondError(w, http.StatusForbidden, "Access denied")
		return
	}
	current, err := h.store.Accounts.PharmacyByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	applyProfile(&current.Username, &current.Name, &current.Location, &current.PhoneNumber, req)
	pharmacy, err := h.store.Accounts.UpdatePharmacy(id, current)
	if err != nil {
		h.registerError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Pharmacy updated successfully", pharmacy)
}

func (h *Handler) deletePharmacy(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	identity := identityFromContext(r)
	if identity.Role == domain.RolePharmacy && identity.ID != id {
		respondError(w, http.StatusForbidden, "Access denied")
		return
	}
	if err := h.store.Accounts.DeletePharmacy(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Pharmacy deleted successfully", nil)
}

// Fournisseur handlers

func (h *Handler) listFournisseurs(w http.ResponseWriter, r *http.Request) {
	fournisseurs, err := h.store.Accounts.ListFournisseurs()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", fournisseurs)
}

func (h *Handler) getFournisseur(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	fournisseur, err := h.store.Accounts.FournisseurByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", fournisseur)
}

func (h *Handler) createFournisseur(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.Name == "" || req.Location == "" || req.PhoneNumber == "" {
		respondError(w, http.StatusBadRequest, "Username, password, name, location, and phone number are required")
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Unable to secure password")
		return
	}
	fournisseur, err := h.store.Accounts.CreateFournisseur(domain.Fournisseur{
		Username: req.Username, Password: string(hashed),
		Name: req.Name, Location: req.Location, PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.registerError(w, err)
		return
	}
	respondData(w, http.StatusCreated, "Fournisseur created successfully", fournisseur)
}

func (h *Handler) updateFournisseur(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	identity := identityFromContext(r)
	if identity.Role == domain.RoleFournisseur && identity.ID != id {
		respondError(w, http.StatusForbidden, "Access denied")
		return
	}
	current, err := h.store.Accounts.FournisseurByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	applyProfile(&current.Username, &current.Name, &current.Location, &current.PhoneNumber, req)
	fournisseur, err := h.store.Accounts.UpdateFournisseur(id, current)
	if err != nil {
		h.registerError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Fournisseur updated successfully", fournisseur)
}

func (h *Handler) deleteFournisseur(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	identity := identityFromContext(r)
	if identity.Role == domain.RoleFournisseur && identity.ID != id {
		respondError(w, http.StatusForbidden, "Access denied")
		return
	}
	if err := h.store.Accounts.DeleteFournisseur(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Fournisseur deleted successfully", nil)
}

// applyProfile overlays the non-empty request fields onto the current
// profile values.
func applyProfile(username, name, location, phone *string, req profileRequest) {
	if req.Username != "" {
		*username = req.Username
	}
	if req.Name != "" {
		*name = req.Name
	}
	if req.Location != "" {
		*location = req.Location
	}
	if req.PhoneNumber != "" {
		*phone = req.PhoneNumber
	}
}
