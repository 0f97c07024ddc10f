package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmasupply/m/domain"
)

// Medicines persists the medicine catalog.
type Medicines struct {
	db *sqlx.DB
}

func (m *Medicines) Create(name string, price float64) (domain.Medicine, error) {
	name = strings.TrimSpace(name)
	if name == "" || price < 0 {
		return domain.Medicine{}, ErrInvalidInput
	}
	res, err := m.db.Exec(`INSERT INTO medicines (name, price) VALUES (?, ?)`, name, price)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Medicine{}, ErrConflict
		}
		return domain.Medicine{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Medicine{}, err
	}
	return domain.Medicine{ID: id, Name: name, Price: price}, nil
}

func (m *Medicines) ByID(id int64) (domain.Medicine, error) {
	var med domain.Medicine
	err := m.db.Get(&med, `SELECT id, name, price FROM medicines WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Medicine{}, ErrNotFound
	}
	return med, err
}

func (m *Medicines) List() ([]domain.Medicine, error) {
	medicines := []domain.Medicine{}
	err := m.db.Select(&medicines, `SELECT id, name, price FROM medicines ORDER BY id`)
	return medicines, err
}

// Search matches medicines by name substring, case-insensitive.
func (m *Medicines) Search(name string) ([]domain.Medicine, error) {
	medicines := []domain.Medicine{}
	like := "%" + strings.TrimSpace(name) + "%"
	err := m.db.Select(&medicines, `SELECT id, name, price FROM medicines WHERE name LIKE ? ORDER BY name`, like)
	return medicines, err
}

func (m *Medicines) Update(id int64, name string, price float64) (domain.Medicine, error) {
	name = strings.TrimSpace(name)
	if name == "" || price < 0 {
		return domain.Medicine{}, ErrInvalidInput
	}
	if _, err := m.ByID(id); err != nil {
		return domain.Medicine{}, err
	}
	_, err := m.db.Exec(`UPDATE medicines SET name = ?, price = ? WHERE id = ?`, name, price, id)
	if isUniqueViolation(err) {
		return domain.Medicine{}, ErrConflict
	}
	if err != nil {
		return domain.Medicine{}, err
	}
	return domain.Medicine{ID: id, Name: name, Price: price}, nil
}

func (m *Medicines) Delete(id int64) error {
	res, err := m.db.Exec(`DELETE FROM medicines WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
