package scenario

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finops-sre/opsprobe/internal/resources"
)

// fakeBackend is an in-memory stand-in for the operations API, implementing
// just enough of /ops/v1 for the built-in suite to run against it.
type fakeBackend struct {
	mu sync.Mutex

	employeesByID    map[string]resources.Employee
	employeesByEmail map[string]resources.Employee
	orgs             map[string]*fakeOrg
	invitations      map[string]*resources.Invitation
	datasources      map[string][]resources.Datasource
	orgSeq           int
}

type fakeOrg struct {
	org     resources.Organization
	members []resources.Employee
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		employeesByID:    make(map[string]resources.Employee),
		employeesByEmail: make(map[string]resources.Employee),
		orgs:             make(map[string]*fakeOrg),
		invitations:      make(map[string]*resources.Invitation),
		datasources:      make(map[string][]resources.Datasource),
	}
}

func (b *fakeBackend) seedDatasources(orgID string, datasources []resources.Datasource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.datasources[orgID] = datasources
}

func (b *fakeBackend) orgCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.orgs)
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /ops/v1/auth/tokens", b.handleTokens)
	mux.HandleFunc("POST /ops/v1/employees", b.handleCreateEmployee)
	mux.HandleFunc("GET /ops/v1/employees/{email}", b.handleGetEmployee)
	mux.HandleFunc("POST /ops/v1/organizations", b.handleCreateOrg)
	mux.HandleFunc("GET /ops/v1/organizations", b.handleListOrgs)
	mux.HandleFunc("GET /ops/v1/organizations/{id}", b.handleGetOrg)
	mux.HandleFunc("PUT /ops/v1/organizations/{id}", b.handleUpdateOrg)
	mux.HandleFunc("DELETE /ops/v1/organizations/{id}", b.handleDeleteOrg)
	mux.HandleFunc("POST /ops/v1/organizations/{id}/add-admin", b.handleAddAdmin)
	mux.HandleFunc("GET /ops/v1/organizations/{id}/employees", b.handleOrgEmployees)
	mux.HandleFunc("GET /ops/v1/organizations/{id}/datasources", b.handleListDatasources)
	mux.HandleFunc("POST /ops/v1/organizations/{id}/datasources/{dsID}/force-reimport", b.handleForceReimport)
	mux.HandleFunc("POST /ops/v1/users", b.handleInvite)
	mux.HandleFunc("POST /ops/v1/users/{id}/accept-invitation", b.handleAccept)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) handleTokens(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email        string `json:"email"`
		Password     string `json:"password"`
		RefreshToken string `json:"refresh_token"`
		Account      *struct {
			ID string `json:"id"`
		} `json:"account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if body.RefreshToken == "" && (body.Email == "" || body.Password == "") {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	accountID := "acc-1"
	if body.Account != nil {
		accountID = body.Account.ID
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":          map[string]string{"id": "user-suite"},
		"account":       map[string]string{"id": accountID},
		"access_token":  "access-" + uuid.New().String(),
		"refresh_token": "refresh-" + uuid.New().String(),
	})
}

func (b *fakeBackend) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var in resources.EmployeeCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	employee := resources.Employee{
		ID:          uuid.New().String(),
		Email:       in.Email,
		DisplayName: in.DisplayName,
		CreatedAt:   &now,
	}

	b.mu.Lock()
	b.employeesByID[employee.ID] = employee
	b.employeesByEmail[employee.Email] = employee
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, employee)
}

func (b *fakeBackend) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	employee, ok := b.employeesByEmail[r.PathValue("email")]
	b.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, employee)
}

func (b *fakeBackend) handleCreateOrg(w http.ResponseWriter, r *http.Request) {
	var in resources.OrganizationCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	owner, ok := b.employeesByID[in.UserID]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	b.orgSeq++
	now := time.Now().UTC()
	org := resources.Organization{
		ID:                   fmt.Sprintf("FORG-%04d-%04d-%04d", 1000+b.orgSeq, 2000+b.orgSeq, 3000+b.orgSeq),
		Name:                 in.Name,
		Currency:             in.Currency,
		OperationsExternalID: in.OperationsExternalID,
		UserID:               in.UserID,
		Status:               resources.OrganizationStatusActive,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	b.orgs[org.ID] = &fakeOrg{org: org, members: []resources.Employee{owner}}

	writeJSON(w, http.StatusCreated, org)
}

func (b *fakeBackend) handleListOrgs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	b.mu.Lock()
	items := make([]resources.Organization, 0, len(b.orgs))
	for _, o := range b.orgs {
		items = append(items, o.org)
	}
	b.mu.Unlock()

	total := len(items)
	if offset > len(items) {
		offset = len(items)
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	writeJSON(w, http.StatusOK, resources.Page[resources.Organization]{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (b *fakeBackend) handleGetOrg(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	o, ok := b.orgs[r.PathValue("id")]
	b.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, o.org)
}

func (b *fakeBackend) handleUpdateOrg(w http.ResponseWriter, r *http.Request) {
	var in resources.OrganizationUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.orgs[r.PathValue("id")]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if in.Name != nil {
		o.org.Name = *in.Name
	}
	if in.OperationsExternalID != nil {
		o.org.OperationsExternalID = *in.OperationsExternalID
	}
	o.org.UpdatedAt = time.Now().UTC()

	writeJSON(w, http.StatusOK, o.org)
}

func (b *fakeBackend) handleDeleteOrg(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := r.PathValue("id")
	if _, ok := b.orgs[id]; !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	delete(b.orgs, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *fakeBackend) handleAddAdmin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.orgs[r.PathValue("id")]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	employee, ok := b.employeesByEmail[body.Email]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	o.members = append(o.members, employee)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (b *fakeBackend) handleOrgEmployees(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	o, ok := b.orgs[r.PathValue("id")]
	var members []resources.Employee
	if ok {
		members = append(members, o.members...)
	}
	b.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (b *fakeBackend) handleListDatasources(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	datasources, ok := b.datasources[r.PathValue("id")]
	b.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, datasources)
}

func (b *fakeBackend) handleForceReimport(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ds := range b.datasources[r.PathValue("id")] {
		if ds.ID == r.PathValue("dsID") {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (b *fakeBackend) handleInvite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	invitation := resources.Invitation{
		UserID:          uuid.New().String(),
		Email:           body.Email,
		Name:            body.Name,
		Status:          resources.UserStatusInvited,
		InvitationToken: uuid.New().String(),
	}

	b.mu.Lock()
	b.invitations[invitation.UserID] = &invitation
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, invitation)
}

func (b *fakeBackend) handleAccept(w http.ResponseWriter, r *http.Request) {
	var body struct {
		InvitationToken string `json:"invitation_token"`
		Password        string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	invitation, ok := b.invitations[r.PathValue("id")]
	if !ok || invitation.InvitationToken != body.InvitationToken || body.Password == "" {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	invitation.Status = resources.UserStatusActive
	invitation.InvitationToken = ""

	writeJSON(w, http.StatusOK, invitation)
}
