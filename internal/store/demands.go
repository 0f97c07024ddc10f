package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"pharmasupply/m/domain"
)

// Demands persists consumer wish-list requests. No state machine; the
// only cross-entity check is that the medicine exists.
type Demands struct {
	db *sqlx.DB
}

const demandDetailQuery = `
	SELECT d.id, d.med_id, d.user_id, d.date,
	       m.name AS medicine_name, m.price AS medicine_price,
	       u.username
	FROM demands d
	JOIN medicines m ON m.id = d.med_id
	JOIN users u ON u.id = d.user_id`

func (d *Demands) Create(userID, medID int64) (domain.DemandDetail, error) {
	var exists bool
	if err := d.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM medicines WHERE id = ?)`, medID); err != nil {
		return domain.DemandDetail{}, err
	}
	if !exists {
		return domain.DemandDetail{}, ErrNotFound
	}
	res, err := d.db.Exec(`INSERT INTO demands (med_id, user_id) VALUES (?, ?)`, medID, userID)
	if err != nil {
		return domain.DemandDetail{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.DemandDetail{}, err
	}
	return d.Get(id)
}

func (d *Demands) Get(id int64) (domain.DemandDetail, error) {
	var demand domain.DemandDetail
	err := d.db.Get(&demand, demandDetailQuery+` WHERE d.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DemandDetail{}, ErrNotFound
	}
	return demand, err
}

// List returns demands newest first, restricted to one consumer when
// userID is set.
func (d *Demands) List(userID *int64) ([]domain.DemandDetail, error) {
	demands := []domain.DemandDetail{}
	if userID != nil {
		err := d.db.Select(&demands, demandDetailQuery+` WHERE d.user_id = ? ORDER BY d.date DESC, d.id DESC`, *userID)
		return demands, err
	}
	err := d.db.Select(&demands, demandDetailQuery+` ORDER BY d.date DESC, d.id DESC`)
	return demands, err
}

// Update repoints an owned demand at another medicine.
func (d *Demands) Update(id, userID, medID int64) (domain.DemandDetail, error) {
	demand, err := d.Get(id)
	if err != nil {
		return domain.DemandDetail{}, err
	}
	if demand.UserID != userID {
		return domain.DemandDetail{}, ErrForbidden
	}
	var exists bool
	if err := d.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM medicines WHERE id = ?)`, medID); err != nil {
		return domain.DemandDetail{}, err
	}
	if !exists {
		return domain.DemandDetail{}, ErrNotFound
	}
	if _, err := d.db.Exec(`UPDATE demands SET med_id = ? WHERE id = ?`, medID, id); err != nil {
		return domain.DemandDetail{}, err
	}
	return d.Get(id)
}

func (d *Demands) Delete(id, userID int64) error {
	demand, err := d.Get(id)
	if err != nil {
		return err
	}
	if demand.UserID != userID {
		return ErrForbidden
	}
	_, err = d.db.Exec(`DELETE FROM demands WHERE id = ?`, id)
	return err
}
