package domain

// Identity is the snapshot stored against a session token at login.
// Name is nil for consumer accounts.
type Identity struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Role     string  `json:"role"`
	Name     *string `json:"name"`
}

// Session binds an opaque token to an identity until it expires.
// ExpiresAt is unix seconds so freshness checks stay integer comparisons.
type Session struct {
	ID        string `db:"id" json:"id"`
	UserID    int64  `db:"user_id" json:"userId"`
	UserType  string `db:"user_type" json:"userType"`
	UserData  string `db:"user_data" json:"-"`
	ExpiresAt int64  `db:"expires_at" json:"expiresAt"`
}
