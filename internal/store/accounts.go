package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmasupply/m/domain"
)

// Accounts persists the three account tables. Users are consumers;
// pharmacies and fournisseurs additionally carry a profile.
type Accounts struct {
	db *sqlx.DB
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// Users

func (a *Accounts) CreateUser(username, passwordHash string) (domain.User, error) {
	res, err := a.db.Exec(`INSERT INTO users (username, password) VALUES (?, ?)`, username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{ID: id, Username: username, Password: passwordHash}, nil
}

func (a *Accounts) UserByID(id int64) (domain.User, error) {
	var u domain.User
	err := a.db.Get(&u, `SELECT id, username, password FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

func (a *Accounts) UserByUsername(username string) (domain.User, error) {
	var u domain.User
	err := a.db.Get(&u, `SELECT id, username, password FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

func (a *Accounts) ListUsers() ([]domain.User, error) {
	users := []domain.User{}
	err := a.db.Select(&users, `SELECT id, username, password FROM users ORDER BY id`)
	return users, err
}

// UpdateUser changes the username and, when passwordHash is non-empty,
// the stored password hash.
func (a *Accounts) UpdateUser(id int64, username, passwordHash string) (domain.User, error) {
	if _, err := a.UserByID(id); err != nil {
		return domain.User{}, err
	}
	var err error
	if passwordHash != "" {
		_, err = a.db.Exec(`UPDATE users SET username = ?, password = ? WHERE id = ?`, username, passwordHash, id)
	} else {
		_, err = a.db.Exec(`UPDATE users SET username = ? WHERE id = ?`, username, id)
	}
	if isUniqueViolation(err) {
		return domain.User{}, ErrConflict
	}
	if err != nil {
		return domain.User{}, err
	}
	return a.UserByID(id)
}

func (a *Accounts) DeleteUser(id int64) error {
	res, err := a.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Pharmacies

func (a *Accounts) CreatePharmacy(p domain.Pharmacy) (domain.Pharmacy, error) {
	res, err := a.db.Exec(
		`INSERT INTO pharmacies (username, password, name, location, phone_number) VALUES (?, ?, ?, ?, ?)`,
		p.Username, p.Password, p.Name, p.Location, p.PhoneNumber)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Pharmacy{}, ErrConflict
		}
		return domain.Pharmacy{}, err
	}
	p.ID, err = res.LastInsertId()
	return p, err
}

func (a *Accounts) PharmacyByID(id int64) (domain.Pharmacy, error) {
	var p domain.Pharmacy
	err := a.db.Get(&p, `SELECT id, username, password, name, location, phone_number FROM pharmacies WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Pharmacy{}, ErrNotFound
	}
	return p, err
}

func (a *Accounts) PharmacyByUsername(username string) (domain.Pharmacy, error) {
	var p domain.Pharmacy
	err := a.db.Get(&p, `SELECT id, username, password, name, location, phone_number FROM pharmacies WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Pharmacy{}, ErrNotFound
	}
	return p, err
}

func (a *Accounts) ListPharmacies() ([]domain.Pharmacy, error) {
	pharmacies := []domain.Pharmacy{}
	err := a.db.Select(&pharmacies, `SELECT id, username, password, name, location, phone_number FROM pharmacies ORDER BY id`)
	return pharmacies, err
}

func (a *Accounts) UpdatePharmacy(id int64, p domain.Pharmacy) (domain.Pharmacy, error) {
	if _, err := a.PharmacyByID(id); err != nil {
		return domain.Pharmacy{}, err
	}
	_, err := a.db.Exec(
		`UPDATE pharmacies SET username = ?, name = ?, location = ?, phone_number = ? WHERE id = ?`,
		p.Username, p.Name, p.Location, p.PhoneNumber, id)
	if isUniqueViolation(err) {
		return domain.Pharmacy{}, ErrConflict
	}
	if err != nil {
		return domain.Pharmacy{}, err
	}
	return a.PharmacyByID(id)
}

func (a *Accounts) DeletePharmacy(id int64) error {
	res, err := a.db.Exec(`DELETE FROM pharmacies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Fournisseurs

func (a *Accounts) CreateFournisseur(f domain.Fournisseur) (domain.Fournisseur, error) {
	res, err := a.db.Exec(
		`INSERT INTO fournisseurs (username, password, name, location, phone_number) VALUES (?, ?, ?, ?, ?)`,
		f.Username, f.Password, f.Name, f.Location, f.PhoneNumber)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Fournisseur{}, ErrConflict
		}
		return domain.Fournisseur{}, err
	}
	f.ID, err = res.LastInsertId()
	return f, err
}

func (a *Accounts) FournisseurByID(id int64) (domain.Fournisseur, error) {
	var f domain.Fournisseur
	err := a.db.Get(&f, `SELECT id, username, password, name, location, phone_number FROM fournisseurs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Fournisseur{}, ErrNotFound
	}
	return f, err
}

func (a *Accounts) FournisseurByUsername(username string) (domain.Fournisseur, error) {
	var f domain.Fournisseur
	err := a.db.Get(&f, `SELECT id, username, password, name, location, phone_number FROM fournisseurs WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Fournisseur{}, ErrNotFound
	}
	return f, err
}

func (a *Accounts) ListFournisseurs() ([]domain.Fournisseur, error) {
	fournisseurs := []domain.Fournisseur{}
	err := a.db.Select(&fournisseurs, `SELECT id, username, password, name, location, phone_number FROM fournisseurs ORDER BY id`)
	return fournisseurs, err
}

func (a *Accounts) UpdateFournisseur(id int64, f domain.Fournisseur) (domain.Fournisseur, error) {
	if _, err := a.FournisseurByID(id); err != nil {
		return domain.Fournisseur{}, err
	}
	_, err := a.db.Exec(
		`UPDATE fournisseurs SET username = ?, name = ?, location = ?, phone_number = ? WHERE id = ?`,
		f.Username, f.Name, f.Location, f.PhoneNumber, id)
	if isUniqueViolation(err) {
		return domain.Fournisseur{}, ErrConflict
	}
	if err != nil {
		return domain.Fournisseur{}, err
	}
	return a.FournisseurByID(id)
}

func (a *Accounts) DeleteFournisseur(id int64) error {
	res, err := a.db.Exec(`DELETE FROM fournisseurs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
