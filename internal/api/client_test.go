package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harrylevesque/campusclinic/internal/api"
	"github.com/harrylevesque/campusclinic/internal/fakeapi"
	"github.com/harrylevesque/campusclinic/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	fake    *fakeapi.Server
	admin   models.User
	student models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := fakeapi.New()
	t.Cleanup(fake.Close)
	return &fixture{
		fake:    fake,
		admin:   fake.AddUser(models.User{Username: "nurse", FirstName: "Nora", LastName: "Reyes", Role: models.RoleAdmin}, "clinic-admin"),
		student: fake.AddUser(models.User{Username: "alice", FirstName: "Alice", LastName: "Cruz", Role: models.RoleStudent}, "alice-pass"),
	}
}

// client returns an api client authenticated as u, or anonymous when u is nil.
func (f *fixture) client(t *testing.T, u *models.User) *api.Client {
	t.Helper()
	return newClient(t, f.fake.URL, u, f.fake)
}

func newClient(t *testing.T, url string, u *models.User, fake *fakeapi.Server) *api.Client {
	t.Helper()
	tr := &http.Transport{}
	t.Cleanup(tr.CloseIdleConnections)
	opts := []api.Option{api.WithHTTPClient(&http.Client{Transport: tr, Timeout: 5 * time.Second})}
	if u != nil {
		opts = append(opts, api.WithTokenSource(api.StaticToken(fake.Token(u.ID))))
	}
	c, err := api.New(url, opts...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := api.New("ftp://clinic.example")
	require.Error(t, err)
	_, err = api.New("://nope")
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, nil)
	ctx := context.Background()

	res, err := c.Auth.Login(ctx, "alice", "alice-pass")
	require.NoError(t, err)
	assert.Equal(t, f.student.ID, res.ID)
	assert.Equal(t, models.RoleStudent, res.Role)
	assert.Equal(t, "Alice", res.FirstName)
	assert.NotEmpty(t, res.Access)

	_, err = c.Auth.Login(ctx, "alice", "wrong")
	assert.True(t, errors.Is(err, api.ErrUnauthorized), "got %v", err)

	n := len(f.fake.Requests())
	_, err = c.Auth.Login(ctx, "", "")
	require.ErrorIs(t, err, api.ErrValidation)
	assert.Len(t, f.fake.Requests(), n, "no request for an empty form")
}

func TestBearerTokenOnEveryRequest(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, &f.student)
	ctx := context.Background()

	_, err := c.Announcements.List(ctx)
	require.NoError(t, err)
	_, err = c.Events.List(ctx)
	require.NoError(t, err)
	_, err = c.Auth.Login(ctx, "alice", "alice-pass")
	require.NoError(t, err)

	reqs := f.fake.Requests()
	require.Len(t, reqs, 3)
	for _, r := range reqs[:2] {
		assert.True(t, strings.HasPrefix(r.Authorization, "Bearer "), r.Path)
		assert.NotEmpty(t, r.RequestID)
	}
	assert.Empty(t, reqs[2].Authorization, "login is sent without a token")
	assert.NotEqual(t, reqs[0].RequestID, reqs[1].RequestID)
}

func TestErrorBodies(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, &f.admin)

	tests := []struct {
		name    string
		status  int
		body    string
		want    error
		message string
		fields  map[string][]string
	}{
		{"detail", 401, `{"detail":"Token expired"}`, api.ErrUnauthorized, "Token expired", nil},
		{"forbidden", 403, `{"detail":"nope"}`, api.ErrForbidden, "nope", nil},
		{"not found", 404, `{"detail":"Not found."}`, api.ErrNotFound, "Not found.", nil},
		{"fields", 400, `{"title":["This field is required."],"non_field_errors":["Bad."]}`, api.ErrValidation, "Bad.", map[string][]string{"title": {"This field is required."}}},
		{"unprocessable", 422, `{"quantity":"Too many."}`, api.ErrValidation, "", map[string][]string{"quantity": {"Too many."}}},
		{"html", 502, `<html>Bad Gateway</html>`, api.ErrServer, "<html>Bad Gateway</html>", nil},
		{"empty", 500, ``, api.ErrServer, "Internal Server Error", nil},
		{"long text is clipped on a rune boundary", 503, strings.Repeat("é", 250), api.ErrServer, strings.Repeat("é", 200), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.fake.FailNext(tt.status, tt.body)
			_, err := c.Announcements.List(context.Background())
			require.ErrorIs(t, err, tt.want)

			var apiErr *api.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			if diff := cmp.Diff(tt.fields, apiErr.Fields); diff != "" {
				t.Errorf("fields (-want +got):\n%s", diff)
			}
			assert.NotEmpty(t, apiErr.RequestID)
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url, nil, nil)
	_, err := c.Announcements.List(context.Background())
	require.ErrorIs(t, err, api.ErrNetwork)
	assert.Equal(t, api.KindNetwork, api.KindOf(err))
}

func TestUndecodableBodyIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": [`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, nil, nil)
	_, err := c.Stock.Get(context.Background(), "1")
	require.ErrorIs(t, err, api.ErrNetwork)
}

func TestValidationBeforeHTTP(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, &f.admin)
	ctx := context.Background()

	_, err := c.Announcements.Create(ctx, models.Announcement{})
	require.ErrorIs(t, err, api.ErrValidation)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Fields, "title")
	assert.Contains(t, apiErr.Fields, "body")

	_, err = c.Requests.Submit(ctx, models.Request{Kind: models.KindLeave, Reason: "flu"})
	require.ErrorIs(t, err, api.ErrValidation)

	require.ErrorIs(t, c.Stock.Delete(ctx, ""), api.ErrValidation)

	assert.Empty(t, f.fake.Requests())
}

func TestListFollowsPages(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.fake.AddAnnouncement(models.Announcement{Title: "t", Body: "b"})
	}
	f.fake.SetPageSize(2)
	c := f.client(t, &f.student)

	got, err := c.Announcements.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.Len(t, f.fake.Requests(), 3)
}

func TestListRejectsForeignPageLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"next":"http://elsewhere.example/api/events?page=2","results":[]}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, nil, nil)
	_, err := c.Events.List(context.Background())
	require.ErrorIs(t, err, api.ErrServer)
}

func TestRoleGating(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, &f.student)
	ctx := context.Background()

	_, err := c.Stock.List(ctx)
	assert.ErrorIs(t, err, api.ErrForbidden)
	_, err = c.Users.List(ctx, api.UserFilter{})
	assert.ErrorIs(t, err, api.ErrForbidden)
	_, err = c.Users.Get(ctx, f.admin.ID)
	assert.ErrorIs(t, err, api.ErrForbidden)
	me, err := c.Users.Get(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
}

func TestRequestLifecycle(t *testing.T) {
	f := newFixture(t)
	student := f.client(t, &f.student)
	admin := f.client(t, &f.admin)
	ctx := context.Background()

	r, err := student.Requests.Submit(ctx, models.Request{
		Kind:          models.KindAppointment,
		Reason:        "Headache",
		PreferredDate: models.NewDate(2026, time.November, 3),
		Status:        models.StatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, r.Status, "status is set by the backend")
	assert.Equal(t, f.student.ID, r.User)

	_, err = student.Requests.Review(ctx, r.ID, models.Review{Status: models.StatusApproved})
	require.ErrorIs(t, err, api.ErrForbidden)

	_, err = admin.Requests.Review(ctx, r.ID, models.Review{Status: models.StatusDeclined})
	require.ErrorIs(t, err, api.ErrValidation, "declining needs remarks")

	got, err := admin.Requests.Review(ctx, r.ID, models.Review{Status: models.StatusApproved, MeetingLink: "https://meet.example/abc"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.True(t, got.Scheduled())

	pending, err := admin.Requests.List(ctx, api.RequestFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Empty(t, pending)

	notes, err := student.Notifications.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.False(t, notes[0].Read)

	require.ErrorIs(t, student.Requests.Cancel(ctx, r.ID), api.ErrValidation, "approved requests cannot be cancelled")
}

func TestStockAdjust(t *testing.T) {
	f := newFixture(t)
	item := f.fake.AddStock(models.StockItem{Name: "Paracetamol", Category: models.CategoryMedicine, Quantity: 10, Unit: "boxes"})
	c := f.client(t, &f.admin)
	ctx := context.Background()

	got, err := c.Stock.Adjust(ctx, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Quantity)
	assert.Equal(t, "Paracetamol", got.Name)

	_, err = c.Stock.Adjust(ctx, item.ID, -16)
	require.ErrorIs(t, err, api.ErrValidation)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, []string{"Only 15 boxes left."}, apiErr.Fields["quantity"])

	reqs := f.fake.Requests()
	assert.Equal(t, http.MethodGet, reqs[len(reqs)-1].Method, "no write after a failed adjust")
}

func TestCRUDRoundTrip(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, &f.admin)
	ctx := context.Background()

	start := time.Date(2026, time.November, 10, 9, 0, 0, 0, time.UTC)
	ev, err := c.Events.Create(ctx, models.Event{Title: "Blood drive", StartAt: start, Location: "Gym"})
	require.NoError(t, err)
	require.False(t, ev.ID.IsZero())
	assert.Equal(t, "Nora Reyes", ev.CreatedBy)

	ev.Location = "Library"
	ev, err = c.Events.Update(ctx, ev.ID, ev)
	require.NoError(t, err)
	assert.Equal(t, "Library", ev.Location)

	got, err := c.Events.Get(ctx, ev.ID)
	require.NoError(t, err)
	assert.True(t, got.StartAt.Equal(start))

	require.NoError(t, c.Events.Delete(ctx, ev.ID))
	_, err = c.Events.Get(ctx, ev.ID)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

// lastBody returns the body of the most recent recorded call to method path.
func lastBody(t *testing.T, fake *fakeapi.Server, method, path string) string {
	t.Helper()
	reqs := fake.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i].Body
		}
	}
	t.Fatalf("no %s %s recorded", method, path)
	return ""
}

func TestPayloadsOnTheWire(t *testing.T) {
	f := newFixture(t)
	admin := f.client(t, &f.admin)
	student := f.client(t, &f.student)
	ctx := context.Background()

	start := time.Date(2026, time.November, 3, 9, 0, 0, 0, time.UTC)
	ev, err := admin.Events.Create(ctx, models.Event{Title: "Blood drive", StartAt: start})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Blood drive","start_at":"2026-11-03T09:00:00Z"}`,
		lastBody(t, f.fake, http.MethodPost, "/api/events"))
	assert.True(t, ev.EndAt.IsZero())

	_, err = student.Requests.Submit(ctx, models.Request{
		Kind:          models.KindAppointment,
		Reason:        "Follow-up",
		PreferredDate: models.NewDate(2026, time.November, 3),
		Status:        models.StatusApproved,
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"kind":"appointment","reason":"Follow-up","preferred_date":"2026-11-03","start_date":null,"end_date":null}`,
		lastBody(t, f.fake, http.MethodPost, "/api/requests"))

	item := f.fake.AddStock(models.StockItem{Name: "Gauze", Category: models.CategorySupplies, Quantity: 4})
	_, err = admin.Stock.Adjust(ctx, item.ID, 3)
	require.NoError(t, err)
	assert.JSONEq(t, `{"quantity":7}`, lastBody(t, f.fake, http.MethodPatch, "/api/stock/"+item.ID.String()))
}

func TestUploadPicture(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, &f.student)

	u, err := c.Users.UploadPicture(context.Background(), f.student.ID, "/tmp/me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u.ProfilePicture, "/me.png"), u.ProfilePicture)
	assert.Equal(t, []byte("png-bytes"), f.fake.Picture(f.student.ID))
}

func TestUserPatchAndDeactivate(t *testing.T) {
	f := newFixture(t)
	student := f.client(t, &f.student)
	admin := f.client(t, &f.admin)
	ctx := context.Background()

	dept := "Nursing"
	u, err := student.Users.Update(ctx, f.student.ID, models.UserPatch{Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, "Nursing", u.Department)

	off := false
	_, err = student.Users.Update(ctx, f.student.ID, models.UserPatch{IsActive: &off})
	require.ErrorIs(t, err, api.ErrForbidden)

	u, err = admin.Users.Update(ctx, f.student.ID, models.UserPatch{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	_, err = f.client(t, nil).Auth.Login(ctx, "alice", "alice-pass")
	assert.ErrorIs(t, err, api.ErrUnauthorized, "inactive accounts cannot sign in")
}

func TestRegisterAndChangePassword(t *testing.T) {
	f := newFixture(t)
	anon := f.client(t, nil)
	ctx := context.Background()

	reg := models.Registration{
		Username: "bob", Password: "bob-secret", Email: "bob@uni.example",
		FirstName: "Bob", LastName: "Tan", Role: models.RoleStaff,
	}
	u, err := anon.Auth.Register(ctx, reg)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, u.Role)

	_, err = anon.Auth.Register(ctx, reg)
	require.ErrorIs(t, err, api.ErrValidation)

	bob := f.client(t, &u)
	require.ErrorIs(t, bob.Auth.ChangePassword(ctx, "bob-secret", "short"), api.ErrValidation)
	require.ErrorIs(t, bob.Auth.ChangePassword(ctx, "wrong-old", "long-enough-1"), api.ErrValidation)
	require.NoError(t, bob.Auth.ChangePassword(ctx, "bob-secret", "long-enough-1"))

	_, err = anon.Auth.Login(ctx, "bob", "long-enough-1")
	require.NoError(t, err)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, &f.student)
	ctx := context.Background()

	require.NoError(t, c.Auth.Logout(ctx))
	_, err := c.Announcements.List(ctx)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestMedicalRecord(t *testing.T) {
	f := newFixture(t)
	admin := f.client(t, &f.admin)
	student := f.client(t, &f.student)
	ctx := context.Background()

	_, err := admin.Records.CreateAssessment(ctx, models.Assessment{
		User: f.student.ID, Date: models.NewDate(2026, time.October, 1), ChiefComplaint: "Cough",
	})
	require.NoError(t, err)
	_, err = admin.Records.CreateImmunization(ctx, models.Immunization{
		User: f.student.ID, Vaccine: "Hepatitis B", DateAdministered: models.NewDate(2026, time.September, 1),
	})
	require.NoError(t, err)
	f.fake.AddAssessment(models.Assessment{User: f.admin.ID, Date: models.NewDate(2026, time.January, 1), ChiefComplaint: "other"})

	blood := "O+"
	_, err = admin.Records.UpdateProfile(ctx, f.student.ID, models.MedicalProfilePatch{BloodType: &blood})
	require.NoError(t, err)

	rec, err := student.Records.Record(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, "O+", rec.Profile.BloodType)
	require.Len(t, rec.Assessments, 1)
	assert.Equal(t, "Cough", rec.Assessments[0].ChiefComplaint)
	assert.Equal(t, "Nora Reyes", rec.Assessments[0].AssessedBy)
	require.Len(t, rec.Immunizations, 1)

	_, err = student.Records.CreateAssessment(ctx, models.Assessment{
		User: f.student.ID, Date: models.NewDate(2026, time.October, 2), ChiefComplaint: "self-diagnosis",
	})
	assert.ErrorIs(t, err, api.ErrForbidden)
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	a := f.fake.AddNotification(f.student.ID, models.Notification{Title: "a"})
	f.fake.AddNotification(f.student.ID, models.Notification{Title: "b"})
	f.fake.AddNotification(f.admin.ID, models.Notification{Title: "not yours"})
	c := f.client(t, &f.student)
	ctx := context.Background()

	n, err := c.Notifications.MarkRead(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, n.Read)

	require.NoError(t, c.Notifications.MarkAllRead(ctx))
	list, err := c.Notifications.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, n := range list {
		assert.True(t, n.Read)
	}

	require.NoError(t, c.Notifications.Delete(ctx, a.ID))
	list, err = c.Notifications.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
