package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/internal/editsession"
	"iisa-recruitment-backend/pkg/apperror"
	"iisa-recruitment-backend/pkg/logger"
	"iisa-recruitment-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const notifyTimeout = 30 * time.Second

type candidateUsecase struct {
	repo      domain.CandidateRepository
	images    domain.ProfileImageStore
	analytics domain.AnalyticsRepository
	tickets   domain.EditTicketIssuer
	notifier  domain.RegistrationNotifier
	validate  *validator.Validate
	window    domain.EditWindow
	clock     domain.Clock
}

// NewCandidateUsecase wires the candidate flows. tickets and notifier may be nil.
func NewCandidateUsecase(
	repo domain.CandidateRepository,
	images domain.ProfileImageStore,
	analytics domain.AnalyticsRepository,
	tickets domain.EditTicketIssuer,
	notifier domain.RegistrationNotifier,
	validate *validator.Validate,
	window domain.EditWindow,
	clock domain.Clock,
) domain.CandidateUsecase {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &candidateUsecase{
		repo:      repo,
		images:    images,
		analytics: analytics,
		tickets:   tickets,
		notifier:  notifier,
		validate:  validate,
		window:    window,
		clock:     clock,
	}
}

func (u *candidateUsecase) Register(ctx context.Context, in domain.CandidateInput, img *domain.ImageUpload) (*domain.Registration, error) {
	in = normalizeInput(in)
	if err := u.validateInput(in); err != nil {
		return nil, err
	}
	if img == nil || len(img.Data) == 0 {
		return nil, apperror.BadRequest("Validation failed").WithDetails([]string{"Profile image: is required"})
	}

	c, err := u.create(ctx, in, img)
	if err != nil {
		return nil, err
	}

	deadline, _ := u.window.Deadline(domain.RegistrationTimestamp(*c))
	reg := &domain.Registration{Candidate: c, EditDeadline: deadline}

	if u.tickets != nil {
		token, err := u.tickets.IssueEditTicket(c.ID, deadline)
		if err != nil {
			logger.Log.Error("Failed to issue edit ticket", "candidate_id", c.ID, "error", err)
		} else {
			reg.EditToken = token
		}
	}

	u.notify(ctx, *c, deadline)
	return reg, nil
}

func (u *candidateUsecase) Create(ctx context.Context, in domain.CandidateInput, img *domain.ImageUpload) (*domain.Candidate, error) {
	in = normalizeInput(in)
	if err := u.validateInput(in); err != nil {
		return nil, err
	}
	if img != nil && len(img.Data) == 0 {
		img = nil
	}
	return u.create(ctx, in, img)
}

// create uploads the image, persists the record and counts the registration.
func (u *candidateUsecase) create(ctx context.Context, in domain.CandidateInput, img *domain.ImageUpload) (*domain.Candidate, error) {
	var imageURL string
	if img != nil {
		url, err := u.upload(ctx, *img)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	now := u.clock.Now()
	c := &domain.Candidate{
		FullName:               in.FullName,
		Email:                  in.Email,
		Phone:                  in.Phone,
		Age:                    in.Age,
		City:                   in.City,
		Hobbies:                in.Hobbies,
		PerfectCandidateReason: in.PerfectCandidateReason,
		ProfileImageURL:        imageURL,
		RegistrationDate:       &now,
		LastUpdated:            now,
	}

	id, err := u.repo.Create(ctx, c)
	if err != nil {
		u.discardImage(ctx, imageURL)
		return nil, apperror.Internal(fmt.Errorf("failed to create candidate: %w", err))
	}
	c.ID = id

	if err := u.analytics.IncrementRegistrations(ctx); err != nil {
		logger.Log.Warn("Failed to count registration", "candidate_id", id, "error", err)
	}
	logger.Log.Info("Candidate registered", "candidate_id", id)
	return c, nil
}

func (u *candidateUsecase) Get(ctx context.Context, id string) (*domain.Candidate, error) {
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "failed to load candidate")
	}
	return c, nil
}

func (u *candidateUsecase) GetForEdit(ctx context.Context, id string) (*domain.EditView, error) {
	c, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	session := editsession.Open(*c, u.window, u.clock)
	view := &domain.EditView{Candidate: c, Editable: session.Editable()}
	if deadline, ok := session.Deadline(); ok {
		view.EditDeadline = &deadline
	}
	return view, nil
}

// Update validates the working state, gates on the edit window, diffs against
// the freshly loaded record and writes only the changed fields.
func (u *candidateUsecase) Update(ctx context.Context, id string, in domain.CandidateInput, img *domain.ImageUpload) (*domain.UpdateResult, error) {
	in = normalizeInput(in)
	if err := u.validateInput(in); err != nil {
		return nil, err
	}
	if img != nil && len(img.Data) == 0 {
		img = nil
	}

	current, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	session := editsession.Open(*current, u.window, u.clock)

	decision, err := session.Submit(in, img != nil)
	if err != nil {
		var expired *editsession.WindowExpiredError
		if errors.As(err, &expired) {
			return nil, apperror.New(http.StatusForbidden, fmt.Sprintf("The edit window for this candidate closed on %s",
				expired.Deadline.Format("02/01/2006 15:04")), err).
				WithDetails(map[string]any{"editDeadline": expired.Deadline})
		}
		return nil, apperror.Internal(err)
	}

	if decision.Outcome == editsession.NoChange {
		return &domain.UpdateResult{Applied: false, Changed: []string{}, Candidate: current}, nil
	}

	var newImageURL string
	if img != nil {
		if newImageURL, err = u.upload(ctx, *img); err != nil {
			return nil, err
		}
		decision.AttachImage(newImageURL)
	}

	if err := u.repo.Update(ctx, id, decision.Patch); err != nil {
		u.discardImage(ctx, newImageURL)
		return nil, mapRepoError(err, "failed to update candidate")
	}

	if newImageURL != "" && current.ProfileImageURL != "" && current.ProfileImageURL != newImageURL {
		u.discardImage(ctx, current.ProfileImageURL)
	}

	updated := decision.Patch.ApplyTo(*current)
	logger.Log.Info("Candidate updated", "candidate_id", id, "fields", decision.Patch.Keys())
	return &domain.UpdateResult{Applied: true, Changed: decision.Changed, Candidate: &updated}, nil
}

func (u *candidateUsecase) Delete(ctx context.Context, id string) error {
	c, err := u.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "failed to delete candidate")
	}
	u.discardImage(ctx, c.ProfileImageURL)
	logger.Log.Info("Candidate deleted", "candidate_id", id)
	return nil
}

func (u *candidateUsecase) List(ctx context.Context, filter domain.CandidateFilter) (*domain.PaginatedResult[domain.Candidate], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	filter.Query = strings.TrimSpace(filter.Query)

	candidates, total, err := u.repo.Search(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to search candidates: %w", err))
	}
	if candidates == nil {
		candidates = []domain.Candidate{}
	}

	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	return &domain.PaginatedResult[domain.Candidate]{
		Data:       candidates,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (u *candidateUsecase) ListAll(ctx context.Context) ([]domain.Candidate, error) {
	candidates, err := u.repo.ListAll(ctx)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list candidates: %w", err))
	}
	return candidates, nil
}

func (u *candidateUsecase) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := u.repo.ListIDs(ctx)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list candidate ids: %w", err))
	}
	return ids, nil
}

func (u *candidateUsecase) validateInput(in domain.CandidateInput) error {
	if err := u.validate.Struct(in); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return apperror.BadRequest("Validation failed").WithDetails(validation.FormatValidationErrors(err))
		}
		return apperror.BadRequest(err.Error())
	}
	return nil
}

func (u *candidateUsecase) upload(ctx context.Context, img domain.ImageUpload) (string, error) {
	url, err := u.images.UploadProfileImage(ctx, img)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidImage) {
			return "", apperror.New(http.StatusBadRequest, err.Error(), err)
		}
		return "", apperror.BadGateway("Failed to upload profile image", err)
	}
	return url, nil
}

// discardImage removes an object best-effort.
func (u *candidateUsecase) discardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := u.images.DeleteProfileImage(ctx, url); err != nil {
		logger.Log.Warn("Failed to delete profile image", "url", url, "error", err)
	}
}

func (u *candidateUsecase) notify(ctx context.Context, c domain.Candidate, deadline time.Time) {
	if u.notifier == nil || !u.notifier.IsConfigured() {
		return
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := u.notifier.SendRegistrationConfirmation(sendCtx, c, deadline); err != nil {
			logger.Log.Warn("Failed to send registration confirmation", "candidate_id", c.ID, "error", err)
		}
	}()
}

func normalizeInput(in domain.CandidateInput) domain.CandidateInput {
	in.FullName = validation.NormalizeFullName(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.City = strings.TrimSpace(in.City)
	in.Hobbies = strings.TrimSpace(in.Hobbies)
	in.PerfectCandidateReason = strings.TrimSpace(in.PerfectCandidateReason)
	return in
}

func mapRepoError(err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound("Candidate not found")
	}
	return apperror.Internal(fmt.Errorf("%s: %w", msg, err))
}
