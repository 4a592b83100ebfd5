package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/pkg/apperror"
	"iisa-recruitment-backend/pkg/storage"

	"github.com/gin-gonic/gin"
)

// ProfileImageField is the multipart field carrying the candidate photo.
const ProfileImageField = "profileImage"

// bindCandidate reads the candidate fields (multipart or JSON) and the
// optional profile photo. Field rules are enforced by the usecase.
func bindCandidate(c *gin.Context) (domain.CandidateInput, *domain.ImageUpload, error) {
	var in domain.CandidateInput
	if err := c.ShouldBind(&in); err != nil {
		return in, nil, apperror.BadRequest("Invalid request body").WithDetails([]string{err.Error()})
	}

	img, err := readProfileImage(c)
	if err != nil {
		return in, nil, err
	}
	return in, img, nil
}

func readProfileImage(c *gin.Context) (*domain.ImageUpload, error) {
	fh, err := c.FormFile(ProfileImageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.BadRequest("Invalid multipart form").WithDetails([]string{err.Error()})
	}
	if fh.Size > storage.MaxImageBytes {
		return nil, invalidImage(fmt.Errorf("file exceeds %d MB", storage.MaxImageBytes>>20))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperror.BadRequest("Could not read profile image")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageBytes+1))
	if err != nil {
		return nil, apperror.BadRequest("Could not read profile image")
	}
	if err := storage.ValidateImage(fh.Filename, data); err != nil {
		return nil, invalidImage(err)
	}
	return &domain.ImageUpload{Filename: fh.Filename, Data: data}, nil
}

func invalidImage(err error) *apperror.AppError {
	return apperror.BadRequest("Invalid profile image").WithDetails([]string{"Profile image: " + err.Error()})
}
