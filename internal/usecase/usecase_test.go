package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/internal/usecase"
	"iisa-recruitment-backend/pkg/apperror"
	"iisa-recruitment-backend/pkg/validation"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Mock Repositories
type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) Create(ctx context.Context, c *domain.Candidate) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

func (m *MockCandidateRepo) Update(ctx context.Context, id string, patch domain.Patch) error {
	return m.Called(ctx, id, patch).Error(0)
}

func (m *MockCandidateRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCandidateRepo) ListAll(ctx context.Context) ([]domain.Candidate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) Search(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Candidate), args.Get(1).(int64), args.Error(2)
}

func (m *MockCandidateRepo) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) UploadProfileImage(ctx context.Context, img domain.ImageUpload) (string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) DeleteProfileImage(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

type MockAnalyticsRepo struct {
	mock.Mock
}

func (m *MockAnalyticsRepo) IncrementVisits(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAnalyticsRepo) IncrementRegistrations(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAnalyticsRepo) GetSiteStats(ctx context.Context) (*domain.SiteStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SiteStats), args.Error(1)
}

type MockTicketIssuer struct {
	mock.Mock
}

func (m *MockTicketIssuer) IssueEditTicket(candidateID string, expiresAt time.Time) (string, error) {
	args := m.Called(candidateID, expiresAt)
	return args.String(0), args.Error(1)
}

type MockAdminRepo struct {
	mock.Mock
}

func (m *MockAdminRepo) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockAdminRepo) Create(ctx context.Context, admin *domain.Admin) error {
	return m.Called(ctx, admin).Error(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssueAdminToken(adminID, email string) (string, time.Time, error) {
	args := m.Called(adminID, email)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Coordinates(ctx context.Context, address string) (*domain.LatLng, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LatLng), args.Error(1)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type chanNotifier struct{ sent chan domain.Candidate }

func (n *chanNotifier) IsConfigured() bool { return true }

func (n *chanNotifier) SendRegistrationConfirmation(_ context.Context, c domain.Candidate, _ time.Time) error {
	n.sent <- c
	return nil
}

var (
	testNow    = time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	testWindow = domain.EditWindow{Days: 3, Location: time.UTC}
)

type candidateFixture struct {
	repo      *MockCandidateRepo
	images    *MockImageStore
	analytics *MockAnalyticsRepo
	tickets   *MockTicketIssuer
	uc        domain.CandidateUsecase
}

func newCandidateFixture(notifier domain.RegistrationNotifier) *candidateFixture {
	f := &candidateFixture{
		repo:      new(MockCandidateRepo),
		images:    new(MockImageStore),
		analytics: new(MockAnalyticsRepo),
		tickets:   new(MockTicketIssuer),
	}
	f.uc = usecase.NewCandidateUsecase(f.repo, f.images, f.analytics, f.tickets, notifier,
		validation.New(), testWindow, fixedClock{testNow})
	return f
}

func storedCandidate(registered time.Time) *domain.Candidate {
	return &domain.Candidate{
		ID:                     "c-1",
		FullName:               "Dana Levi",
		Email:                  "dana@example.com",
		Phone:                  "0521234567",
		Age:                    29,
		City:                   "Haifa",
		Hobbies:                "chess",
		PerfectCandidateReason: "I have wanted this since I was six",
		ProfileImageURL:        "https://cdn.example.com/candidate-images/old.jpg",
		RegistrationDate:       &registered,
		LastUpdated:            registered,
	}
}

func inputFrom(c *domain.Candidate) domain.CandidateInput {
	return domain.CandidateInput{
		FullName:               c.FullName,
		Email:                  c.Email,
		Phone:                  c.Phone,
		Age:                    c.Age,
		City:                   c.City,
		Hobbies:                c.Hobbies,
		PerfectCandidateReason: c.PerfectCandidateReason,
	}
}

func requireAppError(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestCandidateUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject an edit once the window has closed without writing", func(t *testing.T) {
		f := newCandidateFixture(nil)
		stored := storedCandidate(testNow.Add(-(72*time.Hour + time.Second)))
		f.repo.On("GetByID", ctx, "c-1").Return(stored, nil)

		in := inputFrom(stored)
		in.Hobbies = "skydiving"
		_, err := f.uc.Update(ctx, "c-1", in, nil)

		appErr := requireAppError(t, err, http.StatusForbidden)
		assert.Contains(t, appErr.Message, "closed on")
		details, ok := appErr.Details.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, stored.RegistrationDate.AddDate(0, 0, 3), details["editDeadline"])
		f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should write exactly the changed field plus lastUpdated", func(t *testing.T) {
		f := newCandidateFixture(nil)
		stored := storedCandidate(testNow.Add(-24 * time.Hour))
		f.repo.On("GetByID", ctx, "c-1").Return(stored, nil)
		f.repo.On("Update", ctx, "c-1", domain.Patch{"hobbies": "skydiving", "lastUpdated": testNow}).Return(nil)

		in := inputFrom(stored)
		in.Hobbies = "  skydiving "
		result, err := f.uc.Update(ctx, "c-1", in, nil)

		require.NoError(t, err)
		assert.True(t, result.Applied)
		assert.Equal(t, []string{"hobbies"}, result.Changed)
		assert.Equal(t, "skydiving", result.Candidate.Hobbies)
		assert.Equal(t, testNow, result.Candidate.LastUpdated)
		assert.Equal(t, stored.RegistrationDate, result.Candidate.RegistrationDate)
		f.repo.AssertExpectations(t)
		f.images.AssertNotCalled(t, "UploadProfileImage", mock.Anything, mock.Anything)
	})

	t.Run("Should not persist anything when nothing changed", func(t *testing.T) {
		f := newCandidateFixture(nil)
		stored := storedCandidate(testNow.Add(-time.Hour))
		f.repo.On("GetByID", ctx, "c-1").Return(stored, nil)

		result, err := f.uc.Update(ctx, "c-1", inputFrom(stored), nil)

		require.NoError(t, err)
		assert.False(t, result.Applied)
		assert.Empty(t, result.Changed)
		f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject invalid input before loading the record", func(t *testing.T) {
		f := newCandidateFixture(nil)
		in := inputFrom(storedCandidate(testNow))
		in.Phone = "12345"

		_, err := f.uc.Update(ctx, "c-1", in, nil)

		appErr := requireAppError(t, err, http.StatusBadRequest)
		assert.NotEmpty(t, appErr.Details)
		f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Should return not found for an unknown id", func(t *testing.T) {
		f := newCandidateFixture(nil)
		f.repo.On("GetByID", ctx, "missing").Return(nil, domain.ErrNotFound)

		_, err := f.uc.Update(ctx, "missing", inputFrom(storedCandidate(testNow)), nil)
		requireAppError(t, err, http.StatusNotFound)
	})

	t.Run("Should replace the photo and delete the previous object", func(t *testing.T) {
		f := newCandidateFixture(nil)
		stored := storedCandidate(testNow.Add(-time.Hour))
		img := &domain.ImageUpload{Filename: "me.png", Data: []byte{1, 2, 3}}
		newURL := "https://cdn.example.com/candidate-images/new.jpg"

		f.repo.On("GetByID", ctx, "c-1").Return(stored, nil)
		f.images.On("UploadProfileImage", ctx, *img).Return(newURL, nil)
		f.repo.On("Update", ctx, "c-1", domain.Patch{"profileImageUrl": newURL, "lastUpdated": testNow}).Return(nil)
		f.images.On("DeleteProfileImage", ctx, stored.ProfileImageURL).Return(nil)

		result, err := f.uc.Update(ctx, "c-1", inputFrom(stored), img)

		require.NoError(t, err)
		assert.True(t, result.Applied)
		assert.Equal(t, newURL, result.Candidate.ProfileImageURL)
		f.repo.AssertExpectations(t)
		f.images.AssertExpectations(t)
	})

	t.Run("Should discard the new photo when the write fails", func(t *testing.T) {
		f := newCandidateFixture(nil)
		stored := storedCandidate(testNow.Add(-time.Hour))
		img := &domain.ImageUpload{Filename: "me.png", Data: []byte{1}}
		newURL := "https://cdn.example.com/candidate-images/new.jpg"

		f.repo.On("GetByID", ctx, "c-1").Return(stored, nil)
		f.images.On("UploadProfileImage", ctx, *img).Return(newURL, nil)
		f.repo.On("Update", ctx, "c-1", mock.Anything).Return(errors.New("connection reset"))
		f.images.On("DeleteProfileImage", ctx, newURL).Return(nil)

		_, err := f.uc.Update(ctx, "c-1", inputFrom(stored), img)

		requireAppError(t, err, http.StatusInternalServerError)
		f.images.AssertCalled(t, "DeleteProfileImage", ctx, newURL)
		f.images.AssertNotCalled(t, "DeleteProfileImage", ctx, stored.ProfileImageURL)
	})

	t.Run("Should map a failing upload to bad gateway", func(t *testing.T) {
		f := newCandidateFixture(nil)
		stored := storedCandidate(testNow.Add(-time.Hour))
		img := &domain.ImageUpload{Filename: "me.png", Data: []byte{1}}

		f.repo.On("GetByID", ctx, "c-1").Return(stored, nil)
		f.images.On("UploadProfileImage", ctx, *img).Return("", errors.New("s3 timeout"))

		_, err := f.uc.Update(ctx, "c-1", inputFrom(stored), img)

		requireAppError(t, err, http.StatusBadGateway)
		f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should allow legacy rows without a registration date", func(t *testing.T) {
		f := newCandidateFixture(nil)
		stored := storedCandidate(testNow)
		stored.RegistrationDate = nil
		f.repo.On("GetByID", ctx, "c-1").Return(stored, nil)
		f.repo.On("Update", ctx, "c-1", domain.Patch{"city": "Eilat", "lastUpdated": testNow}).Return(nil)

		in := inputFrom(stored)
		in.City = "Eilat"
		result, err := f.uc.Update(ctx, "c-1", in, nil)

		require.NoError(t, err)
		assert.True(t, result.Applied)
	})
}

func TestCandidateGetForEdit(t *testing.T) {
	ctx := context.Background()
	f := newCandidateFixture(nil)
	registered := testNow.Add(-96 * time.Hour)
	f.repo.On("GetByID", ctx, "c-1").Return(storedCandidate(registered), nil)

	view, err := f.uc.GetForEdit(ctx, "c-1")

	require.NoError(t, err)
	assert.False(t, view.Editable)
	require.NotNil(t, view.EditDeadline)
	assert.Equal(t, registered.AddDate(0, 0, 3), *view.EditDeadline)
}

func TestCandidateRegister(t *testing.T) {
	ctx := context.Background()
	input := inputFrom(storedCandidate(testNow))
	input.FullName = "  Dana   Levi "
	img := &domain.ImageUpload{Filename: "me.jpg", Data: []byte{0xFF, 0xD8}}
	url := "https://cdn.example.com/candidate-images/1.jpg"

	t.Run("Should store, count and ticket a new registration", func(t *testing.T) {
		notifier := &chanNotifier{sent: make(chan domain.Candidate, 1)}
		f := newCandidateFixture(notifier)
		deadline := testNow.AddDate(0, 0, 3)

		f.images.On("UploadProfileImage", ctx, *img).Return(url, nil)
		f.repo.On("Create", ctx, mock.MatchedBy(func(c *domain.Candidate) bool {
			return c.FullName == "Dana Levi" && c.ProfileImageURL == url &&
				c.RegistrationDate != nil && c.RegistrationDate.Equal(testNow) && c.LastUpdated.Equal(testNow)
		})).Return("c-9", nil)
		f.analytics.On("IncrementRegistrations", ctx).Return(nil)
		f.tickets.On("IssueEditTicket", "c-9", deadline).Return("ticket", nil)

		reg, err := f.uc.Register(ctx, input, img)

		require.NoError(t, err)
		assert.Equal(t, "c-9", reg.Candidate.ID)
		assert.Equal(t, deadline, reg.EditDeadline)
		assert.Equal(t, "ticket", reg.EditToken)
		f.repo.AssertExpectations(t)
		f.analytics.AssertExpectations(t)

		select {
		case sent := <-notifier.sent:
			assert.Equal(t, "c-9", sent.ID)
		case <-time.After(2 * time.Second):
			t.Fatal("confirmation was not sent")
		}
	})

	t.Run("Should require a photo", func(t *testing.T) {
		f := newCandidateFixture(nil)
		_, err := f.uc.Register(ctx, input, nil)
		requireAppError(t, err, http.StatusBadRequest)
		f.images.AssertNotCalled(t, "UploadProfileImage", mock.Anything, mock.Anything)
	})

	t.Run("Should reject an invalid photo with bad request", func(t *testing.T) {
		f := newCandidateFixture(nil)
		f.images.On("UploadProfileImage", ctx, *img).Return("", domain.ErrInvalidImage)

		_, err := f.uc.Register(ctx, input, img)
		requireAppError(t, err, http.StatusBadRequest)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should remove the uploaded photo when the insert fails", func(t *testing.T) {
		f := newCandidateFixture(nil)
		f.images.On("UploadProfileImage", ctx, *img).Return(url, nil)
		f.repo.On("Create", ctx, mock.Anything).Return("", errors.New("duplicate key"))
		f.images.On("DeleteProfileImage", ctx, url).Return(nil)

		_, err := f.uc.Register(ctx, input, img)

		requireAppError(t, err, http.StatusInternalServerError)
		f.images.AssertExpectations(t)
		f.analytics.AssertNotCalled(t, "IncrementRegistrations", mock.Anything)
	})
}

func TestCandidateCreateByAdmin(t *testing.T) {
	ctx := context.Background()
	f := newCandidateFixture(nil)
	f.repo.On("Create", ctx, mock.MatchedBy(func(c *domain.Candidate) bool {
		return c.ProfileImageURL == ""
	})).Return("c-2", nil)
	f.analytics.On("IncrementRegistrations", ctx).Return(errors.New("redis down"))

	c, err := f.uc.Create(ctx, inputFrom(storedCandidate(testNow)), nil)

	require.NoError(t, err)
	assert.Equal(t, "c-2", c.ID)
	f.tickets.AssertNotCalled(t, "IssueEditTicket", mock.Anything, mock.Anything)
}

func TestCandidateDelete(t *testing.T) {
	ctx := context.Background()
	f := newCandidateFixture(nil)
	stored := storedCandidate(testNow)
	f.repo.On("GetByID", ctx, "c-1").Return(stored, nil)
	f.repo.On("Delete", ctx, "c-1").Return(nil)
	f.images.On("DeleteProfileImage", ctx, stored.ProfileImageURL).Return(errors.New("gone"))

	require.NoError(t, f.uc.Delete(ctx, "c-1"))
	f.repo.AssertExpectations(t)
	f.images.AssertExpectations(t)
}

func TestCandidateList(t *testing.T) {
	ctx := context.Background()

	t.Run("Should apply paging defaults", func(t *testing.T) {
		f := newCandidateFixture(nil)
		f.repo.On("Search", ctx, domain.CandidateFilter{Query: "haifa", Page: 1, PageSize: 20}).
			Return([]domain.Candidate{{ID: "a"}}, int64(41), nil)

		result, err := f.uc.List(ctx, domain.CandidateFilter{Query: " haifa "})

		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalPages)
		assert.Len(t, result.Data, 1)
	})

	t.Run("Should cap the page size", func(t *testing.T) {
		f := newCandidateFixture(nil)
		f.repo.On("Search", ctx, domain.CandidateFilter{Page: 2, PageSize: 100}).
			Return(nil, int64(0), nil)

		result, err := f.uc.List(ctx, domain.CandidateFilter{Page: 2, PageSize: 500})

		require.NoError(t, err)
		assert.NotNil(t, result.Data)
		assert.Equal(t, 0, result.TotalPages)
	})
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	candidates := []domain.Candidate{
		{Age: 18, City: "Haifa"},
		{Age: 25, City: " Haifa "},
		{Age: 26, City: "Tel Aviv"},
		{Age: 45, City: ""},
		{Age: 46, City: "Atlantis"},
	}

	t.Run("Should build the chart series", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		analytics := new(MockAnalyticsRepo)
		repo.On("ListAll", ctx).Return(candidates, nil)
		analytics.On("GetSiteStats", ctx).Return(&domain.SiteStats{TotalVisits: 120, TotalRegistrations: 5}, nil)
		uc := usecase.NewDashboardUsecase(repo, analytics, new(MockGeocoder), time.UTC, fixedClock{testNow})

		stats, err := uc.Stats(ctx)

		require.NoError(t, err)
		assert.Equal(t, 5, stats.TotalCandidates)
		assert.Equal(t, []domain.ChartPoint{
			{Name: "18-25", Value: 2}, {Name: "26-35", Value: 1}, {Name: "36-45", Value: 1}, {Name: "46+", Value: 1},
		}, stats.AgeBreakdown)
		assert.Equal(t, []domain.ChartPoint{
			{Name: "Haifa", Value: 2}, {Name: "Tel Aviv", Value: 1}, {Name: "Atlantis", Value: 1},
		}, stats.CityDistribution)
		assert.Equal(t, []domain.ChartPoint{{Name: "Visits", Value: 120}, {Name: "Registrations", Value: 5}}, stats.Conversion)
	})

	t.Run("Should default conversion to zeros when stats are missing", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		analytics := new(MockAnalyticsRepo)
		repo.On("ListAll", ctx).Return([]domain.Candidate{}, nil)
		analytics.On("GetSiteStats", ctx).Return(nil, nil)
		uc := usecase.NewDashboardUsecase(repo, analytics, new(MockGeocoder), nil, nil)

		stats, err := uc.Stats(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.Conversion[0].Value)
		assert.Equal(t, int64(0), stats.Conversion[1].Value)
	})

	t.Run("Should drop cities that cannot be geocoded", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		geo := new(MockGeocoder)
		repo.On("ListAll", ctx).Return(candidates, nil)
		geo.On("Coordinates", ctx, "Haifa").Return(&domain.LatLng{Lat: 32.79, Lng: 34.99}, nil)
		geo.On("Coordinates", ctx, "Tel Aviv").Return(&domain.LatLng{Lat: 32.08, Lng: 34.78}, nil)
		geo.On("Coordinates", ctx, "Atlantis").Return(nil, nil)
		uc := usecase.NewDashboardUsecase(repo, new(MockAnalyticsRepo), geo, time.UTC, nil)

		markers, err := uc.MapMarkers(ctx)

		require.NoError(t, err)
		require.Len(t, markers, 2)
		assert.Equal(t, "Haifa", markers[0].City)
		assert.Equal(t, 2, markers[0].Count)
	})

	t.Run("Should limit the city distribution", func(t *testing.T) {
		var many []domain.Candidate
		for _, city := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "h"} {
			many = append(many, domain.Candidate{City: city})
		}
		points := usecase.CityDistribution(many, 7)
		require.Len(t, points, 7)
		assert.Equal(t, "h", points[0].Name)
	})

	t.Run("Should export a named workbook", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		repo.On("ListAll", ctx).Return(candidates, nil)
		uc := usecase.NewDashboardUsecase(repo, new(MockAnalyticsRepo), new(MockGeocoder), time.UTC, fixedClock{testNow})

		data, filename, err := uc.ExportCandidates(ctx)

		require.NoError(t, err)
		assert.NotEmpty(t, data)
		assert.Equal(t, "iisa_candidates_20250910_120000.xlsx", filename)
	})
}

func TestAuthLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	expires := testNow.Add(12 * time.Hour)

	t.Run("Should issue a token for valid credentials", func(t *testing.T) {
		repo := new(MockAdminRepo)
		tokens := new(MockTokenIssuer)
		admin := &domain.Admin{ID: "a-1", Email: "ops@iisa.org.il", PasswordHash: string(hash)}
		repo.On("GetByEmail", ctx, "ops@iisa.org.il").Return(admin, nil)
		tokens.On("IssueAdminToken", "a-1", "ops@iisa.org.il").Return("jwt", expires, nil)
		uc := usecase.NewAuthUsecase(repo, tokens, validation.New())

		result, err := uc.Login(ctx, domain.LoginRequest{Email: " OPS@iisa.org.il", Password: "correct-horse"})

		require.NoError(t, err)
		assert.Equal(t, "jwt", result.Token)
		assert.Equal(t, expires, result.ExpiresAt)
	})

	t.Run("Should reject a wrong password", func(t *testing.T) {
		repo := new(MockAdminRepo)
		repo.On("GetByEmail", ctx, "ops@iisa.org.il").
			Return(&domain.Admin{ID: "a-1", Email: "ops@iisa.org.il", PasswordHash: string(hash)}, nil)
		uc := usecase.NewAuthUsecase(repo, new(MockTokenIssuer), validation.New())

		_, err := uc.Login(ctx, domain.LoginRequest{Email: "ops@iisa.org.il", Password: "wrong-horse"})
		requireAppError(t, err, http.StatusUnauthorized)
	})

	t.Run("Should reject an unknown email", func(t *testing.T) {
		repo := new(MockAdminRepo)
		repo.On("GetByEmail", ctx, "nobody@iisa.org.il").Return(nil, domain.ErrNotFound)
		uc := usecase.NewAuthUsecase(repo, new(MockTokenIssuer), validation.New())

		_, err := uc.Login(ctx, domain.LoginRequest{Email: "nobody@iisa.org.il", Password: "correct-horse"})
		requireAppError(t, err, http.StatusUnauthorized)
	})

	t.Run("Should require and check the one-time code", func(t *testing.T) {
		key, err := totp.Generate(totp.GenerateOpts{Issuer: "IISA Dashboard", AccountName: "ops@iisa.org.il"})
		require.NoError(t, err)
		admin := &domain.Admin{ID: "a-1", Email: "ops@iisa.org.il", PasswordHash: string(hash),
			TOTPEnabled: true, TOTPSecret: key.Secret()}

		repo := new(MockAdminRepo)
		tokens := new(MockTokenIssuer)
		repo.On("GetByEmail", ctx, "ops@iisa.org.il").Return(admin, nil)
		tokens.On("IssueAdminToken", "a-1", "ops@iisa.org.il").Return("jwt", expires, nil)
		uc := usecase.NewAuthUsecase(repo, tokens, validation.New())

		_, err = uc.Login(ctx, domain.LoginRequest{Email: "ops@iisa.org.il", Password: "correct-horse"})
		appErr := requireAppError(t, err, http.StatusUnauthorized)
		assert.Equal(t, map[string]any{"otpRequired": true}, appErr.Details)

		code, err := totp.GenerateCode(key.Secret(), time.Now())
		require.NoError(t, err)
		result, err := uc.Login(ctx, domain.LoginRequest{Email: "ops@iisa.org.il", Password: "correct-horse", OTP: code})
		require.NoError(t, err)
		assert.Equal(t, "jwt", result.Token)
	})
}

func TestAuthCreateAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("Should hash the password and provision TOTP", func(t *testing.T) {
		repo := new(MockAdminRepo)
		repo.On("GetByEmail", ctx, "new@iisa.org.il").Return(nil, domain.ErrNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Admin")).Return(nil)
		uc := usecase.NewAuthUsecase(repo, new(MockTokenIssuer), validation.New())

		admin, uri, err := uc.CreateAdmin(ctx, "new@iisa.org.il", "long-enough-pw", true)

		require.NoError(t, err)
		assert.NotEmpty(t, admin.ID)
		assert.True(t, admin.TOTPEnabled)
		assert.Contains(t, uri, "otpauth://totp/")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("long-enough-pw")))
	})

	t.Run("Should refuse a duplicate email", func(t *testing.T) {
		repo := new(MockAdminRepo)
		repo.On("GetByEmail", ctx, "ops@iisa.org.il").Return(&domain.Admin{ID: "a-1"}, nil)
		uc := usecase.NewAuthUsecase(repo, new(MockTokenIssuer), validation.New())

		_, _, err := uc.CreateAdmin(ctx, "ops@iisa.org.il", "long-enough-pw", false)
		requireAppError(t, err, http.StatusConflict)
	})

	t.Run("Should refuse a short password", func(t *testing.T) {
		uc := usecase.NewAuthUsecase(new(MockAdminRepo), new(MockTokenIssuer), validation.New())
		_, _, err := uc.CreateAdmin(ctx, "ops@iisa.org.il", "short", false)
		requireAppError(t, err, http.StatusBadRequest)
	})
}

func TestHealthCheck(t *testing.T) {
	t.Run("Should report every probe as up", func(t *testing.T) {
		uc := usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
			"database": func(context.Context) error { return nil },
			"redis":    nil,
		})

		status, ok := uc.Check(context.Background())

		assert.True(t, ok)
		assert.Equal(t, map[string]string{"status": "ok", "database": "up", "redis": "disabled"}, status)
	})

	t.Run("Should degrade when a probe fails", func(t *testing.T) {
		uc := usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
			"database": func(context.Context) error { return errors.New("connection refused") },
		})

		status, ok := uc.Check(context.Background())

		assert.False(t, ok)
		assert.Equal(t, "degraded", status["status"])
		assert.Equal(t, "down", status["database"])
	})
}
