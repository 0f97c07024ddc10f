package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmasupply/m/domain"
)

// Commands persists supply orders and enforces the fulfillment state
// machine: awaiting -> on_delivery -> delivered. Every transition is a
// single conditional update keyed on the current state, so two racing
// calls cannot both move the same command.
type Commands struct {
	db *sqlx.DB
}

const commandDetailQuery = `
	SELECT c.id, c.med_id, c.pharm_id, c.fournisseur_id, c.num_of_units,
	       c.start_date, c.state,
	       m.name AS medicine_name, m.price AS medicine_price,
	       p.name AS pharmacy_name,
	       f.name AS fournisseur_name
	FROM commands c
	JOIN medicines m ON m.id = c.med_id
	JOIN pharmacies p ON p.id = c.pharm_id
	LEFT JOIN fournisseurs f ON f.id = c.fournisseur_id`

// Filter narrows command listings. Zero fields match everything.
type Filter struct {
	State         string
	PharmID       int64
	FournisseurID int64
}

// Create opens a new command in the awaiting state with no fournisseur
// bound and the current timestamp as start date.
func (c *Commands) Create(medID, pharmID, units int64) (domain.CommandDetail, error) {
	if units <= 0 {
		return domain.CommandDetail{}, ErrInvalidInput
	}
	var exists bool
	if err := c.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM medicines WHERE id = ?)`, medID); err != nil {
		return domain.CommandDetail{}, err
	}
	if !exists {
		return domain.CommandDetail{}, ErrNotFound
	}
	res, err := c.db.Exec(
		`INSERT INTO commands (med_id, pharm_id, fournisseur_id, num_of_units, state) VALUES (?, ?, NULL, ?, 'awaiting')`,
		medID, pharmID, units)
	if err != nil {
		return domain.CommandDetail{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.CommandDetail{}, err
	}
	return c.Get(id)
}

func (c *Commands) Get(id int64) (domain.CommandDetail, error) {
	var cmd domain.CommandDetail
	err := c.db.Get(&cmd, commandDetailQuery+` WHERE c.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CommandDetail{}, ErrNotFound
	}
	return cmd, err
}

// List returns commands matching the filter, newest first.
func (c *Commands) List(f Filter) ([]domain.CommandDetail, error) {
	clauses := []string{}
	args := []any{}
	if f.State != "" {
		clauses = append(clauses, "c.state = ?")
		args = append(args, f.State)
	}
	if f.PharmID != 0 {
		clauses = append(clauses, "c.pharm_id = ?")
		args = append(args, f.PharmID)
	}
	if f.FournisseurID != 0 {
		clauses = append(clauses, "c.fournisseur_id = ?")
		args = append(args, f.FournisseurID)
	}
	query := commandDetailQuery
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY c.start_date DESC, c.id DESC"

	commands := []domain.CommandDetail{}
	err := c.db.Select(&commands, query, args...)
	return commands, err
}

// Pending returns all awaiting commands, newest first.
func (c *Commands) Pending() ([]domain.CommandDetail, error) {
	return c.List(Filter{State: domain.StateAwaiting})
}

// Accept binds a fournisseur to an awaiting command and moves it to
// on_delivery. Only effective once: the conditional update fails for any
// command that already left awaiting.
func (c *Commands) Accept(id, fournisseurID int64) (domain.CommandDetail, error) {
	res, err := c.db.Exec(
		`UPDATE commands SET fournisseur_id = ?, state = 'on_delivery' WHERE id = ? AND state = 'awaiting'`,
		fournisseurID, id)
	if err != nil {
		return domain.CommandDetail{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := c.Get(id); err != nil {
			return domain.CommandDetail{}, err
		}
		return domain.CommandDetail{}, ErrInvalidTransition
	}
	return c.Get(id)
}

// Deliver moves an on_delivery command to delivered. Only the bound
// fournisseur may deliver.
func (c *Commands) Deliver(id, fournisseurID int64) (domain.CommandDetail, error) {
	cmd, err := c.Get(id)
	if err != nil {
		return domain.CommandDetail{}, err
	}
	if cmd.FournisseurID == nil || *cmd.FournisseurID != fournisseurID {
		return domain.CommandDetail{}, ErrForbidden
	}
	res, err := c.db.Exec(
		`UPDATE commands SET state = 'delivered' WHERE id = ? AND state = 'on_delivery' AND fournisseur_id = ?`,
		id, fournisseurID)
	if err != nil {
		return domain.CommandDetail{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.CommandDetail{}, ErrInvalidTransition
	}
	return c.Get(id)
}

// AmendUnits changes the ordered quantity. Legal only for the owning
// pharmacy and only while the command is still awaiting.
func (c *Commands) AmendUnits(id, pharmID, units int64) (domain.CommandDetail, error) {
	if units <= 0 {
		return domain.CommandDetail{}, ErrInvalidInput
	}
	cmd, err := c.Get(id)
	if err != nil {
		return domain.CommandDetail{}, err
	}
	if cmd.PharmID != pharmID {
		return domain.CommandDetail{}, ErrForbidden
	}
	res, err := c.db.Exec(
		`UPDATE commands SET num_of_units = ? WHERE id = ? AND state = 'awaiting'`,
		units, id)
	if err != nil {
		return domain.CommandDetail{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.CommandDetail{}, ErrInvalidTransition
	}
	return c.Get(id)
}

// Delete cancels an awaiting command owned by pharmID.
func (c *Commands) Delete(id, pharmID int64) error {
	cmd, err := c.Get(id)
	if err != nil {
		return err
	}
	if cmd.PharmID != pharmID {
		return ErrForbidden
	}
	res, err := c.db.Exec(`DELETE FROM commands WHERE id = ? AND state = 'awaiting'`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInvalidTransition
	}
	return nil
}
