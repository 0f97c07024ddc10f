package domain

// Stock tracks one pharmacy's on-hand units of one medicine.
// At most one row exists per (pharmacy, medicine) pair.
type Stock struct {
	ID         int64 `db:"id" json:"id"`
	PharmID    int64 `db:"pharm_id" json:"pharmId"`
	MedicalID  int64 `db:"medical_id" json:"medicalId"`
	NumOfUnits int64 `db:"num_of_units" json:"numOfUnits"`
}

// StockDetail is a stock row joined with its medicine and pharmacy names.
type StockDetail struct {
	Stock
	MedicineName  string  `db:"medicine_name" json:"medicineName"`
	MedicinePrice float64 `db:"medicine_price" json:"medicinePrice"`
	PharmacyName  string  `db:"pharmacy_name" json:"pharmacyName"`
}
