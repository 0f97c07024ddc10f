package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"pharmasupply/m/internal/migrations"
	"pharmasupply/m/internal/session"
	"pharmasupply/m/internal/store"
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	migrations.Run(db)
	handler := New(store.New(db), session.New(db, time.Hour))
	srv := httptest.NewServer(handler.Router())
	t.Cleanup(func() {
		srv.Close()
		db.Close()
	})
	return srv
}

func request(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, testEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var env testEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response of %s %s: %v", method, path, err)
	}
	return resp.StatusCode, env
}

// register creates an account of the given type and returns a login token.
func register(t *testing.T, srv *httptest.Server, userType, username string) string {
	t.Helper()
	payload := map[string]string{
		"username": username,
		"password": "secret123",
		"userType": userType,
	}
	if userType != "user" {
		payload["name"] = username + " inc"
		payload["location"] = "Downtown"
		payload["phoneNumber"] = "0102030405"
	}
	status, env := request(t, srv, http.MethodPost, "/api/auth/register", "", payload)
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d, %s", username, status, env.Message)
	}

	status, env = request(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": "secret123",
		"userType": userType,
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d, %s", username, status, env.Message)
	}
	var data struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if data.SessionID == "" {
		t.Fatal("login returned no session id")
	}
	return data.SessionID
}

func createMedicine(t *testing.T, srv *httptest.Server, token, name string, price float64) int64 {
	t.Helper()
	status, env := request(t, srv, http.MethodPost, "/api/medicines", token, map[string]any{
		"name": name, "price": price,
	})
	if status != http.StatusCreated {
		t.Fatalf("create medicine: status %d, %s", status, env.Message)
	}
	var med struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &med); err != nil {
		t.Fatalf("decode medicine: %v", err)
	}
	return med.ID
}

func TestAuthContract(t *testing.T) {
	srv := newServer(t)

	// No token at all.
	status, env := request(t, srv, http.MethodGet, "/api/medicines", "", nil)
	if status != http.StatusUnauthorized || env.Success {
		t.Fatalf("expected 401 without token, got %d", status)
	}
	// Garbage token.
	status, _ = request(t, srv, http.MethodGet, "/api/medicines", "bogus", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bogus token, got %d", status)
	}

	token := register(t, srv, "pharmacy", "p1")

	// Bearer header.
	status, env = request(t, srv, http.MethodGet, "/api/auth/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("me via bearer: %d, %s", status, env.Message)
	}
	var me struct {
		Username string  `json:"username"`
		Role     string  `json:"role"`
		Name     *string `json:"name"`
	}
	if err := json.Unmarshal(env.Data, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Username != "p1" || me.Role != "pharmacy" || me.Name == nil {
		t.Fatalf("identity snapshot wrong: %+v", me)
	}

	// X-Session-ID header.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
	req.Header.Set("X-Session-ID", token)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("me via header: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me via X-Session-ID: %d", resp.StatusCode)
	}

	// Cookie.
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "sessionId", Value: token})
	resp, err = srv.Client().Do(req)
	if err != nil {
		t.Fatalf("me via cookie: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me via cookie: %d", resp.StatusCode)
	}

	// Logout invalidates the token.
	status, _ = request(t, srv, http.MethodPost, "/api/auth/logout", token, nil)
	if status != http.StatusOK {
		t.Fatalf("logout: %d", status)
	}
	status, _ = request(t, srv, http.MethodGet, "/api/auth/me", token, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", status)
	}
}

func TestLoginFailures(t *testing.T) {
	srv := newServer(t)
	register(t, srv, "user", "alice")

	status, _ := request(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong", "userType": "user",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", status)
	}
	status, _ = request(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "nobody", "password": "secret123", "userType": "user",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("unknown user: expected 401, got %d", status)
	}
	status, _ = request(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "secret123", "userType": "admin",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("bad userType: expected 400, got %d", status)
	}
	// Right credentials against the wrong account table.
	status, _ = request(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "secret123", "userType": "pharmacy",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("wrong table: expected 401, got %d", status)
	}
}

func TestRegisterValidation(t *testing.T) {
	srv := newServer(t)

	status, _ := request(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "p1", "password": "secret123", "userType": "pharmacy",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("pharmacy without profile: expected 400, got %d", status)
	}

	register(t, srv, "user", "alice")
	status, env := request(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "other", "userType": "user",
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate username: expected 409, got %d (%s)", status, env.Message)
	}
}

func TestCommandWorkflowScenario(t *testing.T) {
	srv := newServer(t)
	pharmacyToken := register(t, srv, "pharmacy", "p1")
	supplierToken := register(t, srv, "fournisseur", "s1")
	userToken := register(t, srv, "user", "alice")
	medID := createMedicine(t, srv, pharmacyToken, "Aspirin", 5.00)

	type command struct {
		ID              int64   `json:"id"`
		State           string  `json:"state"`
		NumOfUnits      int64   `json:"numOfUnits"`
		FournisseurID   *int64  `json:"fournisseurId"`
		MedicineName    string  `json:"medicineName"`
		FournisseurName *string `json:"fournisseurName"`
	}

	// Consumers cannot open commands.
	status, _ := request(t, srv, http.MethodPost, "/api/commands", userToken, map[string]any{
		"medId": medID, "numOfUnits": 100,
	})
	if status != http.StatusForbidden {
		t.Fatalf("user creating command: expected 403, got %d", status)
	}

	status, env := request(t, srv, http.MethodPost, "/api/commands", pharmacyToken, map[string]any{
		"medId": medID, "numOfUnits": 100,
	})
	if status != http.StatusCreated {
		t.Fatalf("create command: %d, %s", status, env.Message)
	}
	var cmd command
	if err := json.Unmarshal(env.Data, &cmd); err != nil {
		t.Fatalf("decode command: %v", err)
	}
	if cmd.State != "awaiting" || cmd.FournisseurID != nil || cmd.MedicineName != "Aspirin" {
		t.Fatalf("fresh command wrong: %+v", cmd)
	}

	// The fournisseur finds it in the pending queue.
	status, env = request(t, srv, http.MethodGet, "/api/commands/pending", supplierToken, nil)
	if status != http.StatusOK {
		t.Fatalf("pending: %d", status)
	}
	var pending []command
	if err := json.Unmarshal(env.Data, &pending); err != nil {
		t.Fatalf("decode pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != cmd.ID {
		t.Fatalf("pending queue wrong: %+v", pending)
	}

	path := "/api/commands/" + itoa(cmd.ID)
	status, env = request(t, srv, http.MethodPatch, path+"/accept", supplierToken, nil)
	if status != http.StatusOK {
		t.Fatalf("accept: %d, %s", status, env.Message)
	}
	if err := json.Unmarshal(env.Data, &cmd); err != nil {
		t.Fatalf("decode accepted: %v", err)
	}
	if cmd.State != "on_delivery" || cmd.FournisseurID == nil || cmd.FournisseurName == nil {
		t.Fatalf("accepted command wrong: %+v", cmd)
	}

	// Second accept fails, amendment is frozen.
	status, _ = request(t, srv, http.MethodPatch, path+"/accept", supplierToken, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("double accept: expected 400, got %d", status)
	}
	status, _ = request(t, srv, http.MethodPut, path, pharmacyToken, map[string]any{"numOfUnits": 50})
	if status != http.StatusBadRequest {
		t.Fatalf("amend after accept: expected 400, got %d", status)
	}

	status, env = request(t, srv, http.MethodPatch, path+"/deliver", supplierToken, nil)
	if status != http.StatusOK {
		t.Fatalf("deliver: %d, %s", status, env.Message)
	}
	if err := json.Unmarshal(env.Data, &cmd); err != nil {
		t.Fatalf("decode delivered: %v", err)
	}
	if cmd.State != "delivered" {
		t.Fatalf("expected delivered, got %s", cmd.State)
	}
}

func TestDeliverRequiresBoundFournisseur(t *testing.T) {
	srv := newServer(t)
	pharmacyToken := register(t, srv, "pharmacy", "p1")
	boundToken := register(t, srv, "fournisseur", "s1")
	otherToken := register(t, srv, "fournisseur", "s2")
	medID := createMedicine(t, srv, pharmacyToken, "Aspirin", 5)

	status, env := request(t, srv, http.MethodPost, "/api/commands", pharmacyToken, map[string]any{
		"medId": medID, "numOfUnits": 10,
	})
	if status != http.StatusCreated {
		t.Fatalf("create command: %d", status)
	}
	var cmd struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &cmd); err != nil {
		t.Fatalf("decode command: %v", err)
	}
	path := "/api/commands/" + itoa(cmd.ID)

	if status, _ = request(t, srv, http.MethodPatch, path+"/accept", boundToken, nil); status != http.StatusOK {
		t.Fatalf("accept: %d", status)
	}
	if status, _ = request(t, srv, http.MethodPatch, path+"/deliver", otherToken, nil); status != http.StatusForbidden {
		t.Fatalf("deliver by other fournisseur: expected 403, got %d", status)
	}
	if status, _ = request(t, srv, http.MethodPatch, path+"/deliver", boundToken, nil); status != http.StatusOK {
		t.Fatalf("deliver by bound fournisseur: %d", status)
	}
}

func TestStockScenario(t *testing.T) {
	srv := newServer(t)
	pharmacyToken := register(t, srv, "pharmacy", "p1")
	userToken := register(t, srv, "user", "alice")
	medID := createMedicine(t, srv, pharmacyToken, "Aspirin", 5)

	// Consumers cannot create stock.
	status, _ := request(t, srv, http.MethodPost, "/api/stocks", userToken, map[string]any{
		"medicalId": medID, "numOfUnits": 10,
	})
	if status != http.StatusForbidden {
		t.Fatalf("user creating stock: expected 403, got %d", status)
	}

	status, env := request(t, srv, http.MethodPost, "/api/stocks", pharmacyToken, map[string]any{
		"medicalId": medID, "numOfUnits": 10,
	})
	if status != http.StatusCreated {
		t.Fatalf("create stock: %d, %s", status, env.Message)
	}
	var stock struct {
		ID         int64 `json:"id"`
		NumOfUnits int64 `json:"numOfUnits"`
	}
	if err := json.Unmarshal(env.Data, &stock); err != nil {
		t.Fatalf("decode stock: %v", err)
	}

	// Duplicate pair is a conflict.
	status, _ = request(t, srv, http.MethodPost, "/api/stocks", pharmacyToken, map[string]any{
		"medicalId": medID, "numOfUnits": 5,
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate stock: expected 409, got %d", status)
	}

	path := "/api/stocks/" + itoa(stock.ID)
	status, env = request(t, srv, http.MethodPatch, path+"/remove", pharmacyToken, map[string]any{"units": 15})
	if status != http.StatusBadRequest {
		t.Fatalf("over-remove: expected 400, got %d", status)
	}

	status, env = request(t, srv, http.MethodGet, path, pharmacyToken, nil)
	if status != http.StatusOK {
		t.Fatalf("get stock: %d", status)
	}
	if err := json.Unmarshal(env.Data, &stock); err != nil {
		t.Fatalf("decode stock: %v", err)
	}
	if stock.NumOfUnits != 10 {
		t.Fatalf("count changed after failed remove: %d", stock.NumOfUnits)
	}

	status, env = request(t, srv, http.MethodPatch, path+"/add", pharmacyToken, map[string]any{"units": 5})
	if status != http.StatusOK {
		t.Fatalf("add: %d, %s", status, env.Message)
	}
	if err := json.Unmarshal(env.Data, &stock); err != nil {
		t.Fatalf("decode stock: %v", err)
	}
	if stock.NumOfUnits != 15 {
		t.Fatalf("expected 15 units, got %d", stock.NumOfUnits)
	}

	// Availability report across pharmacies.
	status, env = request(t, srv, http.MethodGet, "/api/stocks/by-medicine/"+itoa(medID), userToken, nil)
	if status != http.StatusOK {
		t.Fatalf("by-medicine: %d", status)
	}
	var report struct {
		TotalPharmacies int   `json:"totalPharmacies"`
		TotalUnits      int64 `json:"totalUnits"`
	}
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.TotalPharmacies != 1 || report.TotalUnits != 15 {
		t.Fatalf("report wrong: %+v", report)
	}
}

func TestDemandIsolation(t *testing.T) {
	srv := newServer(t)
	pharmacyToken := register(t, srv, "pharmacy", "p1")
	aliceToken := register(t, srv, "user", "alice")
	bobToken := register(t, srv, "user", "bob")
	medID := createMedicine(t, srv, pharmacyToken, "Aspirin", 5)

	status, env := request(t, srv, http.MethodPost, "/api/demands", aliceToken, map[string]any{"medId": medID})
	if status != http.StatusCreated {
		t.Fatalf("create demand: %d, %s", status, env.Message)
	}

	status, env = request(t, srv, http.MethodGet, "/api/demands", bobToken, nil)
	if status != http.StatusOK {
		t.Fatalf("bob list: %d", status)
	}
	var demands []json.RawMessage
	if err := json.Unmarshal(env.Data, &demands); err != nil && len(env.Data) > 0 {
		t.Fatalf("decode list: %v", err)
	}
	if len(demands) != 0 {
		t.Fatalf("bob sees alice's demands: %d rows", len(demands))
	}

	status, env = request(t, srv, http.MethodGet, "/api/demands", aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("alice list: %d", status)
	}
	if err := json.Unmarshal(env.Data, &demands); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(demands) != 1 {
		t.Fatalf("alice should see exactly her demand, got %d rows", len(demands))
	}
}

func TestMedicineSearch(t *testing.T) {
	srv := newServer(t)
	token := register(t, srv, "user", "alice")
	createMedicine(t, srv, token, "Aspirin", 5)
	createMedicine(t, srv, token, "Paracetamol", 3)

	status, env := request(t, srv, http.MethodGet, "/api/medicines/search?name=para", token, nil)
	if status != http.StatusOK {
		t.Fatalf("search: %d", status)
	}
	var medicines []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(env.Data, &medicines); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(medicines) != 1 || medicines[0].Name != "Paracetamol" {
		t.Fatalf("search wrong: %+v", medicines)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
