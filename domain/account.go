package domain

// Account roles as carried in session snapshots and route guards.
const (
	RoleUser        = "user"
	RolePharmacy    = "pharmacy"
	RoleFournisseur = "fournisseur"
)

// User is a consumer account; it only files demand requests.
type User struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"-"`
}

// Pharmacy is a branch account; it owns stocks and initiates commands.
type Pharmacy struct {
	ID          int64  `db:"id" json:"id"`
	Username    string `db:"username" json:"username"`
	Password    string `db:"password" json:"-"`
	Name        string `db:"name" json:"name"`
	Location    string `db:"location" json:"location"`
	PhoneNumber string `db:"phone_number" json:"phoneNumber"`
}

// Fournisseur is a supplier account; it fulfills commands.
type Fournisseur struct {
	ID          int64  `db:"id" json:"id"`
	Username    string `db:"username" json:"username"`
	Password    string `db:"password" json:"-"`
	Name        string `db:"name" json:"name"`
	Location    string `db:"location" json:"location"`
	PhoneNumber string `db:"phone_number" json:"phoneNumber"`
}
