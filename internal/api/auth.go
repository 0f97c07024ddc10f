package api

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"pharmasupply/m/domain"
	"pharmasupply/m/internal/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	UserType    string `json:"userType"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	PhoneNumber string `json:"phoneNumber"`
}

type authResponse struct {
	SessionID string          `json:"sessionId"`
	User      domain.Identity `json:"user"`
}

// credentials looks up the account for a login attempt in the table
// matching userType and returns its identity snapshot plus stored hash.
func (h *Handler) credentials(username, userType string) (domain.Identity, string, error) {
	switch userType {
	case domain.RoleUser:
		u, err := h.store.Accounts.UserByUsername(username)
		if err != nil {
			return domain.Identity{}, "", err
		}
		return domain.Identity{ID: u.ID, Username: u.Username, Role: domain.RoleUser}, u.Password, nil
	case domain.RolePharmacy:
		p, err := h.store.Accounts.PharmacyByUsername(username)
		if err != nil {
			return domain.Identity{}, "", err
		}
		name := p.Name
		return domain.Identity{ID: p.ID, Username: p.Username, Role: domain.RolePharmacy, Name: &name}, p.Password, nil
	case domain.RoleFournisseur:
		f, err := h.store.Accounts.FournisseurByUsername(username)
		if err != nil {
			return domain.Identity{}, "", err
		}
		name := f.Name
		return domain.Identity{ID: f.ID, Username: f.Username, Role: domain.RoleFournisseur, Name: &name}, f.Password, nil
	}
	return domain.Identity{}, "", store.ErrInvalidInput
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.UserType == "" {
		respondError(w, http.StatusBadRequest, "Username, password, and userType are required")
		return
	}

	identity, hash, err := h.credentials(req.Username, req.UserType)
	if errors.Is(err, store.ErrInvalidInput) {
		respondError(w, http.StatusBadRequest, "Invalid userType. Must be user, pharmacy, or fournisseur")
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.sessions.Create(identity)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   24 * 60 * 60,
	})
	respondData(w, http.StatusOK, "Login successful", authResponse{SessionID: token, User: identity})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.UserType == "" {
		respondError(w, http.StatusBadRequest, "Username, password, and userType are required")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Unable to secure password")
		return
	}

	var identity domain.Identity
	switch req.UserType {
	case domain.RoleUser:
		u, err := h.store.Accounts.CreateUser(req.Username, string(hashed))
		if err != nil {
			h.registerError(w, err)
			return
		}
		identity = domain.Identity{ID: u.ID, Username: u.Username, Role: domain.RoleUser}
	case domain.RolePharmacy:
		if req.Name == "" || req.Location == "" || req.PhoneNumber == "" {
			respondError(w, http.StatusBadRequest, "Name, location, and phone number are required for pharmacy registration")
			return
		}
		p, err := h.store.Accounts.CreatePharmacy(domain.Pharmacy{
			Username: req.Username, Password: string(hashed),
			Name: req.Name, Location: req.Location, PhoneNumber: req.PhoneNumber,
		})
		if err != nil {
			h.registerError(w, err)
			return
		}
		name := p.Name
		identity = domain.Identity{ID: p.ID, Username: p.Username, Role: domain.RolePharmacy, Name: &name}
	case domain.RoleFournisseur:
		if req.Name == "" || req.Location == "" || req.PhoneNumber == "" {
			respondError(w, http.StatusBadRequest, "Name, location, and phone number are required for fournisseur registration")
			return
		}
		f, err := h.store.Accounts.CreateFournisseur(domain.Fournisseur{
			Username: req.Username, Password: string(hashed),
			Name: req.Name, Location: req.Location, PhoneNumber: req.PhoneNumber,
		})
		if err != nil {
			h.registerError(w, err)
			return
		}
		name := f.Name
		identity = domain.Identity{ID: f.ID, Username: f.Username, Role: domain.RoleFournisseur, Name: &name}
	default:
		respondError(w, http.StatusBadRequest, "Invalid userType. Must be user, pharmacy, or fournisseur")
		return
	}

	respondData(w, http.StatusCreated, "Registration successful", identity)
}

func (h *Handler) registerError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrConflict) {
		respondError(w, http.StatusConflict, "Username already exists")
		return
	}
	respondStoreError(w, err)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if token := extractToken(r); token != "" {
		if err := h.sessions.Revoke(token); err != nil {
			respondStoreError(w, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	respondData(w, http.StatusOK, "Logout successful", nil)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, "", identityFromContext(r))
}
