package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/physia/backend/internal/auth"
	"github.com/physia/backend/internal/cache"
	"github.com/physia/backend/internal/clients"
	"github.com/physia/backend/internal/config"
	"github.com/physia/backend/internal/repo"
	"github.com/physia/backend/internal/schedule"
)

var (
	testSecret = []byte("test-secret-that-is-at-least-32-bytes")
	testOrg    = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testProf   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	otherProf  = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

// fakeStore is an in-memory stand-in for repo.Store.
type fakeStore struct {
	mu           sync.Mutex
	appointments []repo.AppointmentWithNames
	specialDays  []repo.SpecialDay
	clients      []repo.Client
	created      []repo.NewAppointment
	updates      map[uuid.UUID]repo.AppointmentChanges
	overlapErr   error
	createErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{updates: map[uuid.UUID]repo.AppointmentChanges{}}
}

func (f *fakeStore) addAppointment(date, start, end, status string) uuid.UUID {
	d, _ := time.Parse(schedule.DateLayout, date)
	id := uuid.New()
	f.appointments = append(f.appointments, repo.AppointmentWithNames{
		Appointment: repo.Appointment{
			ID: id, OrganizationID: testOrg, ProfessionalID: testProf, AppointmentDate: d,
			StartTime: start + ":00", EndTime: end + ":00", Status: status,
		},
		ClientName:       "Ana Ruiz",
		ProfessionalName: "Dr. Vega",
	})
	return id
}

func (f *fakeStore) ListOverlapping(_ context.Context, q schedule.AppointmentQuery) ([]schedule.ExistingAppointment, error) {
	if f.overlapErr != nil {
		return nil, f.overlapErr
	}
	var out []schedule.ExistingAppointment
	for _, a := range f.appointments {
		if a.ProfessionalID != q.ProfessionalID || !schedule.SameDate(a.AppointmentDate, q.Date) {
			continue
		}
		if q.ExcludeID != nil && a.ID == *q.ExcludeID {
			continue
		}
		s, _ := schedule.ParseTimeOfDay(a.StartTime)
		e, _ := schedule.ParseTimeOfDay(a.EndTime)
		if !schedule.Overlaps(s.Minutes(), e.Minutes(), q.StartMinutes, q.EndMinutes) {
			continue
		}
		out = append(out, schedule.ExistingAppointment{
			ID: a.ID, Date: a.AppointmentDate, StartTime: s, EndTime: e, ProfessionalID: a.ProfessionalID,
			Status: a.Status, ClientName: a.ClientName, ProfessionalName: a.ProfessionalName,
		})
	}
	return out, nil
}

func (f *fakeStore) ListSpecialDays(_ context.Context, _ uuid.UUID, professionalID *uuid.UUID) ([]schedule.SpecialDay, error) {
	var out []schedule.SpecialDay
	for _, d := range f.specialDays {
		if d.ProfessionalID == nil || (professionalID != nil && *d.ProfessionalID == *professionalID) {
			out = append(out, d.ToSchedule())
		}
	}
	return out, nil
}

func (f *fakeStore) OrganizationHours(context.Context, uuid.UUID) (*schedule.Hours, error) {
	return nil, nil
}

func (f *fakeStore) FindClientByPhone(_ context.Context, _ uuid.UUID, p string) (*repo.Client, error) {
	for _, c := range f.clients {
		if c.Phone == p {
			c := c
			return &c, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) OrganizationByID(_ context.Context, id uuid.UUID) (*repo.Organization, error) {
	if id != testOrg {
		return nil, repo.ErrNotFound
	}
	return &repo.Organization{ID: testOrg, Name: "Clínica Norte"}, nil
}

func (f *fakeStore) ProfessionalByID(_ context.Context, id, _ uuid.UUID) (*repo.Professional, error) {
	if id != testProf && id != otherProf {
		return nil, repo.ErrNotFound
	}
	return &repo.Professional{ID: id, OrganizationID: testOrg, FullName: "Dr. Vega", Status: "active"}, nil
}

func (f *fakeStore) AppointmentByID(_ context.Context, id, _ uuid.UUID) (*repo.Appointment, error) {
	for _, a := range f.appointments {
		if a.ID == id {
			ap := a.Appointment
			return &ap, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) ListAppointmentsByDay(_ context.Context, _ uuid.UUID, _ *uuid.UUID, date time.Time) ([]repo.AppointmentWithNames, error) {
	var out []repo.AppointmentWithNames
	for _, a := range f.appointments {
		if schedule.SameDate(a.AppointmentDate, date) && a.Status != schedule.StatusCancelled {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateAppointment(_ context.Context, in repo.NewAppointment) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	return uuid.New(), nil
}

func (f *fakeStore) UpdateAppointment(_ context.Context, id, _ uuid.UUID, ch repo.AppointmentChanges) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = ch
	return nil
}

func (f *fakeStore) ListAllSpecialDays(context.Context, uuid.UUID, time.Time, time.Time) ([]repo.SpecialDay, error) {
	return f.specialDays, nil
}

func (f *fakeStore) UpsertSpecialDay(_ context.Context, d *repo.SpecialDay) (uuid.UUID, error) {
	d.ID = uuid.New()
	f.specialDays = append(f.specialDays, *d)
	return d.ID, nil
}

func (f *fakeStore) DeleteSpecialDay(_ context.Context, id, _ uuid.UUID) error {
	for i, d := range f.specialDays {
		if d.ID == id {
			f.specialDays = append(f.specialDays[:i], f.specialDays[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeStore) UpdateOrganizationHours(context.Context, uuid.UUID, *string, *string) error {
	return nil
}

func newRouter(t *testing.T, st *fakeStore) http.Handler {
	t.Helper()
	c := cache.New(time.Minute)
	t.Cleanup(c.Close)
	h := &Handler{
		Store: st,
		Schedule: schedule.NewService(schedule.Options{
			Appointments: st,
			SpecialDays:  st,
			Hours:        st,
			Cache:        c,
			Logger:       zerolog.Nop(),
		}),
		Clients: clients.NewLookup(st, zerolog.Nop()),
		Cfg:     &config.Config{AppPublicURL: "https://app.example.com"},
		Log:     zerolog.Nop(),
	}
	r := mux.NewRouter()
	h.Register(r, testSecret, nil)
	return r
}

func token(t *testing.T, role string, prof *uuid.UUID) string {
	t.Helper()
	var p *string
	if prof != nil {
		s := prof.String()
		p = &s
	}
	tok, err := auth.BuildJWT(testSecret, "user-1", role, testOrg.String(), p, time.Hour)
	if err != nil {
		t.Fatalf("BuildJWT: %v", err)
	}
	return tok
}

func do(t *testing.T, h http.Handler, method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return m
}

func booking(start string, minutes int) map[string]interface{} {
	return map[string]interface{}{
		"professional_id":  testProf.String(),
		"date":             "2024-06-10",
		"start_time":       start,
		"duration_minutes": minutes,
	}
}

func TestRoutes_RequireToken(t *testing.T) {
	r := newRouter(t, newFakeStore())
	rec := do(t, r, http.MethodGet, "/api/availability?date=2024-06-10", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateAppointment_Booked(t *testing.T) {
	st := newFakeStore()
	r := newRouter(t, st)
	rec := do(t, r, http.MethodPost, "/api/appointments", token(t, auth.RoleStaff, nil), booking("09:00", 45))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(st.created) != 1 {
		t.Fatalf("created = %d", len(st.created))
	}
	got := st.created[0]
	if got.Start != "09:00" || got.End != "09:45" || got.Overbooked || got.Status != schedule.StatusScheduled {
		t.Errorf("created = %+v", got)
	}
}

func TestCreateAppointment_ConflictNeedsForce(t *testing.T) {
	st := newFakeStore()
	st.addAppointment("2024-06-10", "10:00", "11:00", schedule.StatusConfirmed)
	r := newRouter(t, st)
	tok := token(t, auth.RoleStaff, nil)

	rec := do(t, r, http.MethodPost, "/api/appointments", tok, booking("10:30", 60))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	m := decode(t, rec)
	if m["error"] != "slot_conflict" {
		t.Errorf("error = %v", m["error"])
	}
	if list, _ := m["conflicts"].([]interface{}); len(list) != 1 {
		t.Errorf("conflicts = %v", m["conflicts"])
	}
	if len(st.created) != 0 {
		t.Fatal("appointment created despite conflict")
	}

	body := booking("10:30", 60)
	body["force"] = true
	rec = do(t, r, http.MethodPost, "/api/appointments", tok, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("forced status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(st.created) != 1 || !st.created[0].Overbooked {
		t.Errorf("forced booking not stored as overbooked: %+v", st.created)
	}
}

func TestCreateAppointment_AdjacentIsFree(t *testing.T) {
	st := newFakeStore()
	st.addAppointment("2024-06-10", "10:00", "11:00", schedule.StatusScheduled)
	r := newRouter(t, st)
	rec := do(t, r, http.MethodPost, "/api/appointments", token(t, auth.RoleStaff, nil), booking("11:00", 30))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCreateAppointment_ClosedDay(t *testing.T) {
	st := newFakeStore()
	d, _ := time.Parse(schedule.DateLayout, "2024-06-10")
	st.specialDays = []repo.SpecialDay{{ID: uuid.New(), OrganizationID: testOrg, Day: d, Kind: "closed", Reason: "Festivo"}}
	r := newRouter(t, st)
	body := booking("10:00", 30)
	body["force"] = true
	rec := do(t, r, http.MethodPost, "/api/appointments", token(t, auth.RoleStaff, nil), body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	m := decode(t, rec)
	if m["reason"] != string(schedule.ReasonClosed) {
		t.Errorf("reason = %v", m["reason"])
	}
	if msg, _ := m["message"].(string); !strings.Contains(msg, "Festivo") {
		t.Errorf("message = %q", msg)
	}
}

func TestCreateAppointment_OutsideHours(t *testing.T) {
	r := newRouter(t, newFakeStore())
	rec := do(t, r, http.MethodPost, "/api/appointments", token(t, auth.RoleStaff, nil), booking("07:30", 30))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if m := decode(t, rec); m["reason"] != string(schedule.ReasonOutsideBusinessHours) {
		t.Errorf("reason = %v", m["reason"])
	}
}

func TestCreateAppointment_CheckFailureIsNotClear(t *testing.T) {
	st := newFakeStore()
	st.overlapErr = errors.New("connection reset")
	r := newRouter(t, st)
	rec := do(t, r, http.MethodPost, "/api/appointments", token(t, auth.RoleStaff, nil), booking("10:00", 30))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if m := decode(t, rec); m["error"] != "conflict_check_failed" {
		t.Errorf("error = %v", m["error"])
	}
	if len(st.created) != 0 {
		t.Fatal("appointment created without a conflict check")
	}
}

func TestCreateAppointment_LostRace(t *testing.T) {
	st := newFakeStore()
	st.createErr = repo.ErrSlotTaken
	r := newRouter(t, st)
	rec := do(t, r, http.MethodPost, "/api/appointments", token(t, auth.RoleStaff, nil), booking("10:00", 30))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if m := decode(t, rec); m["error"] != "slot_taken" {
		t.Errorf("error = %v", m["error"])
	}
}

func TestCreateAppointment_Validation(t *testing.T) {
	r := newRouter(t, newFakeStore())
	tok := token(t, auth.RoleStaff, nil)
	cases := []struct {
		name string
		body map[string]interface{}
		code string
	}{
		{"crosses midnight", booking("19:30", 300), "crosses_midnight"},
		{"missing duration", booking("10:00", 0), "incomplete"},
		{"bad time", booking("25:00", 30), "invalid_time"},
		{"bad date", map[string]interface{}{"professional_id": testProf.String(), "date": "10/06/2024", "start_time": "10:00", "duration_minutes": 30}, "invalid_date"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, "/api/appointments", tok, c.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
			}
			if m := decode(t, rec); m["error"] != c.code {
				t.Errorf("error = %v, want %s", m["error"], c.code)
			}
		})
	}
}

func TestCheckConflicts_IncompleteCandidateIsEmpty(t *testing.T) {
	st := newFakeStore()
	st.addAppointment("2024-06-10", "10:00", "11:00", schedule.StatusScheduled)
	st.overlapErr = errors.New("must not be queried")
	r := newRouter(t, st)
	body := map[string]interface{}{"professional_id": testProf.String(), "date": "2024-06-10"}
	rec := do(t, r, http.MethodPost, "/api/appointments/conflicts", token(t, auth.RoleStaff, nil), body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"conflicts":[]`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCheckEligibility_SpecialHours(t *testing.T) {
	st := newFakeStore()
	d, _ := time.Parse(schedule.DateLayout, "2024-06-10")
	opens, closes := "10:00:00", "14:00:00"
	st.specialDays = []repo.SpecialDay{{ID: uuid.New(), OrganizationID: testOrg, Day: d, Kind: "special_hours", OpensAt: &opens, ClosesAt: &closes, Reason: "Inventario"}}
	r := newRouter(t, st)
	tok := token(t, auth.RoleStaff, nil)

	rec := do(t, r, http.MethodPost, "/api/appointments/eligibility", tok, booking("15:00", 30))
	m := decode(t, rec)
	if m["eligible"] != false || m["reason"] != string(schedule.ReasonOutsideSpecialHours) {
		t.Fatalf("body = %v", m)
	}
	rec = do(t, r, http.MethodPost, "/api/appointments/eligibility", tok, booking("10:00", 30))
	if m := decode(t, rec); m["eligible"] != true {
		t.Fatalf("body = %v", m)
	}
}

func TestProfessionalTokenIsPinned(t *testing.T) {
	r := newRouter(t, newFakeStore())
	prof := testProf
	tok := token(t, auth.RoleProfessional, &prof)

	rec := do(t, r, http.MethodGet, "/api/availability?date=2024-06-10&professional_id="+otherProf.String(), tok, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("other professional: status = %d", rec.Code)
	}
	rec = do(t, r, http.MethodGet, "/api/availability?date=2024-06-10", tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("own agenda: status = %d", rec.Code)
	}
	rec = do(t, r, http.MethodPut, "/api/special-days", tok, map[string]string{"date": "2024-06-10", "kind": "closed"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("special days as professional: status = %d", rec.Code)
	}
}

func TestSpecialDayWriteInvalidatesCache(t *testing.T) {
	st := newFakeStore()
	r := newRouter(t, st)
	tok := token(t, auth.RoleOwner, nil)

	rec := do(t, r, http.MethodGet, "/api/availability?date=2024-12-25", tok, nil)
	if m := decode(t, rec); m["kind"] != "default" {
		t.Fatalf("before: %v", m)
	}
	rec = do(t, r, http.MethodPut, "/api/special-days", tok, map[string]string{"date": "2024-12-25", "kind": "closed", "reason": "Navidad"})
	if rec.Code != http.StatusOK {
		t.Fatalf("put: status = %d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(t, r, http.MethodGet, "/api/availability?date=2024-12-25", tok, nil)
	m := decode(t, rec)
	if m["kind"] != "closed" || m["reason"] != "Navidad" {
		t.Fatalf("after: %v", m)
	}
	if list, _ := m["intervals"].([]interface{}); len(list) != 0 {
		t.Errorf("intervals = %v", m["intervals"])
	}
}

func TestPutSpecialDay_Validation(t *testing.T) {
	r := newRouter(t, newFakeStore())
	tok := token(t, auth.RoleStaff, nil)
	for _, body := range []map[string]string{
		{"date": "2024-06-10", "kind": "holiday"},
		{"date": "2024-06-10", "kind": "special_hours", "opens": "10:00"},
		{"date": "2024-06-10", "kind": "special_hours", "opens": "14:00", "closes": "10:00"},
	} {
		if rec := do(t, r, http.MethodPut, "/api/special-days", tok, body); rec.Code != http.StatusBadRequest {
			t.Errorf("%v: status = %d", body, rec.Code)
		}
	}
}

func TestOrganizationHoursOwnerOnly(t *testing.T) {
	r := newRouter(t, newFakeStore())
	body := map[string]string{"opens": "09:00", "closes": "18:00"}
	if rec := do(t, r, http.MethodPut, "/api/organization/hours", token(t, auth.RoleStaff, nil), body); rec.Code != http.StatusForbidden {
		t.Fatalf("staff: status = %d", rec.Code)
	}
	if rec := do(t, r, http.MethodPut, "/api/organization/hours", token(t, auth.RoleOwner, nil), body); rec.Code != http.StatusOK {
		t.Fatalf("owner: status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUpdateAppointment_RescheduleExcludesItself(t *testing.T) {
	st := newFakeStore()
	id := st.addAppointment("2024-06-10", "10:00", "11:00", schedule.StatusScheduled)
	r := newRouter(t, st)
	start := "10:30"
	rec := do(t, r, http.MethodPatch, "/api/appointments/"+id.String(), token(t, auth.RoleStaff, nil), map[string]interface{}{"start_time": start})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	ch := st.updates[id]
	if ch.Start == nil || *ch.Start != "10:30" || ch.End == nil || *ch.End != "11:30" {
		t.Errorf("changes = %+v", ch)
	}
}

func TestUpdateAppointment_ReviveChecksConflicts(t *testing.T) {
	st := newFakeStore()
	cancelled := st.addAppointment("2024-06-10", "10:00", "11:00", schedule.StatusCancelled)
	st.addAppointment("2024-06-10", "10:00", "10:30", schedule.StatusScheduled)
	r := newRouter(t, st)
	rec := do(t, r, http.MethodPatch, "/api/appointments/"+cancelled.String(), token(t, auth.RoleStaff, nil), map[string]interface{}{"status": "scheduled"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUpdateAppointment_CancelledMoveIsValidated(t *testing.T) {
	st := newFakeStore()
	id := st.addAppointment("2024-06-10", "10:00", "11:00", schedule.StatusScheduled)
	r := newRouter(t, st)
	tok := token(t, auth.RoleStaff, nil)
	path := "/api/appointments/" + id.String()

	cases := []struct {
		body map[string]interface{}
		code string
	}{
		{map[string]interface{}{"status": "cancelled", "start_time": "23:50", "duration_minutes": 30}, "crosses_midnight"},
		{map[string]interface{}{"status": "cancelled", "duration_minutes": -15}, "incomplete"},
	}
	for _, c := range cases {
		rec := do(t, r, http.MethodPatch, path, tok, c.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%v: status = %d body=%s", c.body, rec.Code, rec.Body.String())
		}
		if m := decode(t, rec); m["error"] != c.code {
			t.Errorf("%v: error = %v, want %s", c.body, m["error"], c.code)
		}
	}
	if _, ok := st.updates[id]; ok {
		t.Error("rejected moves must not reach the store")
	}

	rec := do(t, r, http.MethodPatch, path, tok, map[string]interface{}{"status": "cancelled", "start_time": "12:00"})
	if rec.Code != http.StatusOK {
		t.Fatalf("valid cancelled move: status = %d body=%s", rec.Code, rec.Body.String())
	}
	if ch := st.updates[id]; ch.End == nil || *ch.End != "13:00" {
		t.Errorf("changes = %+v", ch)
	}
}

func TestUpdateAppointment_InvalidStatus(t *testing.T) {
	st := newFakeStore()
	id := st.addAppointment("2024-06-10", "10:00", "11:00", schedule.StatusScheduled)
	r := newRouter(t, st)
	rec := do(t, r, http.MethodPatch, "/api/appointments/"+id.String(), token(t, auth.RoleStaff, nil), map[string]interface{}{"status": "done"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLookupClientByPhone(t *testing.T) {
	st := newFakeStore()
	st.clients = []repo.Client{{ID: uuid.New(), OrganizationID: testOrg, FirstName: "Lucía", LastName: "Martín", Phone: "0034612345678"}}
	r := newRouter(t, st)
	base := "/api/public/organizations/" + testOrg.String() + "/clients/lookup?phone="

	rec := do(t, r, http.MethodGet, base+"%2B34%20612%20345%20678", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	m := decode(t, rec)
	if m["found"] != true {
		t.Fatalf("body = %v", m)
	}
	c, _ := m["client"].(map[string]interface{})
	if c["first_name"] != "Lucía" || c["last_name"] != nil {
		t.Errorf("client = %v", c)
	}

	if m := decode(t, do(t, r, http.MethodGet, base+"699000111", "", nil)); m["found"] != false {
		t.Errorf("unknown number: %v", m)
	}
	if rec := do(t, r, http.MethodGet, base+"123", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid number: status = %d", rec.Code)
	}
}

func TestGetAgendaPDF(t *testing.T) {
	st := newFakeStore()
	st.addAppointment("2024-06-10", "10:00", "11:00", schedule.StatusScheduled)
	r := newRouter(t, st)
	rec := do(t, r, http.MethodGet, "/api/agenda/2024-06-10.pdf", token(t, auth.RoleStaff, nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
}

func TestHoursLine(t *testing.T) {
	closed := schedule.Resolution{Kind: schedule.KindClosed, Reason: "Festivo"}
	if got := hoursLine(closed, nil); got != "Closed: Festivo" {
		t.Errorf("closed = %q", got)
	}
	special := schedule.Resolution{Kind: schedule.KindSpecialHours, Opens: "10:00", Closes: "14:00", Reason: "Verano"}
	iv := []schedule.OpenInterval{{Opens: "10:00", Closes: "14:00", IsOverride: true}}
	if got := hoursLine(special, iv); got != "Hours 10:00-14:00 (Verano)" {
		t.Errorf("special = %q", got)
	}
}
