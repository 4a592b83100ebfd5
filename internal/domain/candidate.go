package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidImage is wrapped by image validation failures.
var ErrInvalidImage = errors.New("invalid profile image")

// Candidate is a registered applicant as stored by the persistence layer.
type Candidate struct {
	ID                     string     `json:"id"`
	FullName               string     `json:"fullName"`
	Email                  string     `json:"email"`
	Phone                  string     `json:"phone"`
	Age                    int        `json:"age"`
	City                   string     `json:"city"`
	Hobbies                string     `json:"hobbies"`
	PerfectCandidateReason string     `json:"perfectCandidateReason"`
	ProfileImageURL        string     `json:"profileImageUrl"`
	RegistrationDate       *time.Time `json:"registrationDate,omitempty"` // nil only for imported legacy rows
	LastUpdated            time.Time  `json:"lastUpdated"`
}

// CandidateInput is the working form state submitted by the landing page or the dashboard.
type CandidateInput struct {
	FullName               string `json:"fullName" form:"fullName" validate:"required,full_name,no_emoji,max=120"`
	Email                  string `json:"email" form:"email" validate:"required,email,max=254"`
	Phone                  string `json:"phone" form:"phone" validate:"required,il_phone"`
	Age                    int    `json:"age" form:"age" validate:"required,min=18,max=100"`
	City                   string `json:"city" form:"city" validate:"required,max=120"`
	Hobbies                string `json:"hobbies" form:"hobbies" validate:"max=1000"`
	PerfectCandidateReason string `json:"perfectCandidateReason" form:"perfectCandidateReason" validate:"required,max=1000"`
}

// Fields returns the input in the raw, candidate-like map form consumed by NewSnapshot.
func (in CandidateInput) Fields() map[string]any {
	return map[string]any{
		FieldFullName:               in.FullName,
		FieldEmail:                  in.Email,
		FieldPhone:                  in.Phone,
		FieldAge:                    in.Age,
		FieldCity:                   in.City,
		FieldHobbies:                in.Hobbies,
		FieldPerfectCandidateReason: in.PerfectCandidateReason,
	}
}

// ImageUpload is a profile photo received with a submission.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// CandidateFilter drives the dashboard list.
type CandidateFilter struct {
	Query    string `form:"q"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// Registration is returned to the applicant after a successful public submission.
type Registration struct {
	Candidate    *Candidate `json:"candidate"`
	EditDeadline time.Time  `json:"editDeadline"`
	EditToken    string     `json:"editToken"`
}

// EditView is a candidate loaded for editing together with its window state.
type EditView struct {
	Candidate    *Candidate `json:"candidate"`
	Editable     bool       `json:"editable"`
	EditDeadline *time.Time `json:"editDeadline,omitempty"`
}

// UpdateResult reports what an edit submission did.
type UpdateResult struct {
	Applied   bool       `json:"applied"`
	Changed   []string   `json:"changed"`
	Candidate *Candidate `json:"candidate"`
}

type CandidateRepository interface {
	GetByID(ctx context.Context, id string) (*Candidate, error)
	// Create assigns the id and returns it.
	Create(ctx context.Context, c *Candidate) (string, error)
	// Update writes exactly the fields named in patch.
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]Candidate, error)
	Search(ctx context.Context, filter CandidateFilter) ([]Candidate, int64, error)
	ListIDs(ctx context.Context) ([]string, error)
}

// CandidateWatcher delivers change notifications for the candidate collection.
type CandidateWatcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// ProfileImageStore is the file storage collaborator.
type ProfileImageStore interface {
	UploadProfileImage(ctx context.Context, img ImageUpload) (string, error)
	DeleteProfileImage(ctx context.Context, url string) error
}

// EditTicketIssuer signs the token that lets an applicant re-open their own
// record; deadline is the end of the edit window.
type EditTicketIssuer interface {
	IssueEditTicket(candidateID string, deadline time.Time) (string, error)
}

// RegistrationNotifier tells applicants their submission was received.
type RegistrationNotifier interface {
	IsConfigured() bool
	SendRegistrationConfirmation(ctx context.Context, c Candidate, editDeadline time.Time) error
}

type CandidateUsecase interface {
	// Public landing flow
	Register(ctx context.Context, in CandidateInput, img *ImageUpload) (*Registration, error)

	// Dashboard
	Create(ctx context.Context, in CandidateInput, img *ImageUpload) (*Candidate, error)
	Get(ctx context.Context, id string) (*Candidate, error)
	GetForEdit(ctx context.Context, id string) (*EditView, error)
	Update(ctx context.Context, id string, in CandidateInput, img *ImageUpload) (*UpdateResult, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter CandidateFilter) (*PaginatedResult[Candidate], error)
	ListAll(ctx context.Context) ([]Candidate, error)
	ListIDs(ctx context.Context) ([]string, error)
}

type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}
