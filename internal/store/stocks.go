package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"pharmasupply/m/domain"
)

// Stocks persists per-pharmacy inventory rows and enforces the unit
// count guards. Increment and decrement are single conditional updates
// so two concurrent calls cannot drive a count negative.
type Stocks struct {
	db *sqlx.DB
}

const stockDetailQuery = `
	SELECT s.id, s.pharm_id, s.medical_id, s.num_of_units,
	       m.name AS medicine_name, m.price AS medicine_price,
	       p.name AS pharmacy_name
	FROM stocks s
	JOIN medicines m ON m.id = s.medical_id
	JOIN pharmacies p ON p.id = s.pharm_id`

// ByMedicineResult is the availability report for one medicine across
// all pharmacies holding it.
type ByMedicineResult struct {
	Medicine        domain.Medicine      `json:"medicine"`
	Stocks          []domain.StockDetail `json:"stocks"`
	TotalPharmacies int                  `json:"totalPharmacies"`
	TotalUnits      int64                `json:"totalUnits"`
}

// Create inserts a new stock row. A row already covering the
// (pharmacy, medicine) pair is a conflict; callers add or remove units
// on the existing row instead.
func (s *Stocks) Create(pharmID, medicalID, units int64) (domain.StockDetail, error) {
	if units < 0 {
		return domain.StockDetail{}, ErrInvalidInput
	}
	var exists bool
	if err := s.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM medicines WHERE id = ?)`, medicalID); err != nil {
		return domain.StockDetail{}, err
	}
	if !exists {
		return domain.StockDetail{}, ErrNotFound
	}
	res, err := s.db.Exec(`INSERT INTO stocks (pharm_id, medical_id, num_of_units) VALUES (?, ?, ?)`,
		pharmID, medicalID, units)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.StockDetail{}, ErrConflict
		}
		return domain.StockDetail{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.StockDetail{}, err
	}
	return s.Get(id)
}

func (s *Stocks) Get(id int64) (domain.StockDetail, error) {
	var stock domain.StockDetail
	err := s.db.Get(&stock, stockDetailQuery+` WHERE s.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StockDetail{}, ErrNotFound
	}
	return stock, err
}

// List returns stock rows, restricted to one pharmacy when pharmID is set.
func (s *Stocks) List(pharmID *int64) ([]domain.StockDetail, error) {
	stocks := []domain.StockDetail{}
	if pharmID != nil {
		err := s.db.Select(&stocks, stockDetailQuery+` WHERE s.pharm_id = ? ORDER BY s.id`, *pharmID)
		return stocks, err
	}
	err := s.db.Select(&stocks, stockDetailQuery+` ORDER BY s.id`)
	return stocks, err
}

// ByMedicine reports which pharmacies hold a medicine, highest stock
// first, with the aggregate unit total across all of them.
func (s *Stocks) ByMedicine(medicalID int64) (ByMedicineResult, error) {
	var med domain.Medicine
	err := s.db.Get(&med, `SELECT id, name, price FROM medicines WHERE id = ?`, medicalID)
	if errors.Is(err, sql.ErrNoRows) {
		return ByMedicineResult{}, ErrNotFound
	}
	if err != nil {
		return ByMedicineResult{}, err
	}
	stocks := []domain.StockDetail{}
	err = s.db.Select(&stocks, stockDetailQuery+` WHERE s.medical_id = ? AND s.num_of_units > 0 ORDER BY s.num_of_units DESC`, medicalID)
	if err != nil {
		return ByMedicineResult{}, err
	}
	result := ByMedicineResult{Medicine: med, Stocks: stocks, TotalPharmacies: len(stocks)}
	for _, stock := range stocks {
		result.TotalUnits += stock.NumOfUnits
	}
	return result, nil
}

// SetUnits overwrites the unit count on a row owned by pharmID.
func (s *Stocks) SetUnits(id, pharmID, units int64) (domain.StockDetail, error) {
	if units < 0 {
		return domain.StockDetail{}, ErrInvalidInput
	}
	if err := s.requireOwner(id, pharmID); err != nil {
		return domain.StockDetail{}, err
	}
	if _, err := s.db.Exec(`UPDATE stocks SET num_of_units = ? WHERE id = ?`, units, id); err != nil {
		return domain.StockDetail{}, err
	}
	return s.Get(id)
}

// Add increments the unit count by a positive amount.
func (s *Stocks) Add(id, pharmID, units int64) (domain.StockDetail, error) {
	if units <= 0 {
		return domain.StockDetail{}, ErrInvalidInput
	}
	if err := s.requireOwner(id, pharmID); err != nil {
		return domain.StockDetail{}, err
	}
	if _, err := s.db.Exec(`UPDATE stocks SET num_of_units = num_of_units + ? WHERE id = ?`, units, id); err != nil {
		return domain.StockDetail{}, err
	}
	return s.Get(id)
}

// Remove decrements the unit count by a positive amount. The update only
// applies while enough units remain, so the count never goes negative.
func (s *Stocks) Remove(id, pharmID, units int64) (domain.StockDetail, error) {
	if units <= 0 {
		return domain.StockDetail{}, ErrInvalidInput
	}
	if err := s.requireOwner(id, pharmID); err != nil {
		return domain.StockDetail{}, err
	}
	res, err := s.db.Exec(`UPDATE stocks SET num_of_units = num_of_units - ? WHERE id = ? AND num_of_units >= ?`,
		units, id, units)
	if err != nil {
		return domain.StockDetail{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.StockDetail{}, ErrInsufficientStock
	}
	return s.Get(id)
}

func (s *Stocks) Delete(id, pharmID int64) error {
	if err := s.requireOwner(id, pharmID); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM stocks WHERE id = ?`, id)
	return err
}

func (s *Stocks) requireOwner(id, pharmID int64) error {
	var owner int64
	err := s.db.Get(&owner, `SELECT pharm_id FROM stocks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != pharmID {
		return ErrForbidden
	}
	return nil
}
