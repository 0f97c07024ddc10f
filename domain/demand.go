package domain

// Demand is a consumer's wish-list request for a medicine. There is no
// fulfillment workflow behind it, just the request log.
type Demand struct {
	ID     int64  `db:"id" json:"id"`
	MedID  int64  `db:"med_id" json:"medId"`
	UserID int64  `db:"user_id" json:"userId"`
	Date   string `db:"date" json:"date"`
}

// DemandDetail is a demand joined with the medicine and requester names.
type DemandDetail struct {
	Demand
	MedicineName  string  `db:"medicine_name" json:"medicineName"`
	MedicinePrice float64 `db:"medicine_price" json:"medicinePrice"`
	Username      string  `db:"username" json:"username"`
}
