package store

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"pharmasupply/m/domain"
	"pharmasupply/m/internal/migrations"
)

func setup(t *testing.T) *Store {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	migrations.Run(db)
	return New(db)
}

func newPharmacy(t *testing.T, s *Store, username string) domain.Pharmacy {
	t.Helper()
	p, err := s.Accounts.CreatePharmacy(domain.Pharmacy{
		Username: username, Password: "x",
		Name: username, Location: "here", PhoneNumber: "0102030405",
	})
	if err != nil {
		t.Fatalf("create pharmacy %s: %v", username, err)
	}
	return p
}

func newFournisseur(t *testing.T, s *Store, username string) domain.Fournisseur {
	t.Helper()
	f, err := s.Accounts.CreateFournisseur(domain.Fournisseur{
		Username: username, Password: "x",
		Name: username, Location: "there", PhoneNumber: "0607080910",
	})
	if err != nil {
		t.Fatalf("create fournisseur %s: %v", username, err)
	}
	return f
}

func newMedicine(t *testing.T, s *Store, name string, price float64) domain.Medicine {
	t.Helper()
	m, err := s.Medicines.Create(name, price)
	if err != nil {
		t.Fatalf("create medicine %s: %v", name, err)
	}
	return m
}

func TestAccountUniqueUsernames(t *testing.T) {
	s := setup(t)
	if _, err := s.Accounts.CreateUser("alice", "h"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.Accounts.CreateUser("alice", "h"); err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	// Same username across account tables is fine.
	newPharmacy(t, s, "alice")
	newFournisseur(t, s, "alice")
}

func TestMedicineCatalog(t *testing.T) {
	s := setup(t)
	med := newMedicine(t, s, "Aspirin", 5)
	if _, err := s.Medicines.Create("Aspirin", 7); err != ErrConflict {
		t.Fatalf("expected ErrConflict on duplicate name, got %v", err)
	}
	if _, err := s.Medicines.Create("Free", -1); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput on negative price, got %v", err)
	}
	newMedicine(t, s, "Paracetamol", 3.5)

	found, err := s.Medicines.Search("aspi")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].ID != med.ID {
		t.Fatalf("expected only Aspirin, got %+v", found)
	}

	if _, err := s.Medicines.ByID(9999); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
