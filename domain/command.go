package domain

// Command lifecycle states. A command starts awaiting and never returns
// to it once a fournisseur accepts.
const (
	StateAwaiting   = "awaiting"
	StateOnDelivery = "on_delivery"
	StateDelivered  = "delivered"
)

// Command is a pharmacy's supply request for a medicine.
// FournisseurID is nil exactly while the command is awaiting.
type Command struct {
	ID            int64  `db:"id" json:"id"`
	MedID         int64  `db:"med_id" json:"medId"`
	PharmID       int64  `db:"pharm_id" json:"pharmId"`
	FournisseurID *int64 `db:"fournisseur_id" json:"fournisseurId"`
	NumOfUnits    int64  `db:"num_of_units" json:"numOfUnits"`
	StartDate     string `db:"start_date" json:"startDate"`
	State         string `db:"state" json:"state"`
}

// CommandDetail is a command joined with display names of the medicine,
// the requesting pharmacy and, once bound, the fournisseur.
type CommandDetail struct {
	Command
	MedicineName    string  `db:"medicine_name" json:"medicineName"`
	MedicinePrice   float64 `db:"medicine_price" json:"medicinePrice"`
	PharmacyName    string  `db:"pharmacy_name" json:"pharmacyName"`
	FournisseurName *string `db:"fournisseur_name" json:"fournisseurName"`
}
