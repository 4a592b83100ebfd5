package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"iisa-recruitment-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// patchColumns maps patchable fields to their columns. registration_date is
// never patched.
var patchColumns = map[string]string{
	domain.FieldFullName:               "full_name",
	domain.FieldEmail:                  "email",
	domain.FieldPhone:                  "phone",
	domain.FieldAge:                    "age",
	domain.FieldCity:                   "city",
	domain.FieldHobbies:                "hobbies",
	domain.FieldPerfectCandidateReason: "perfect_candidate_reason",
	domain.FieldProfileImageURL:        "profile_image_url",
	domain.FieldLastUpdated:            "last_updated",
}

// searchColumns are matched by the dashboard's free-text filter.
var searchColumns = []string{"full_name", "email", "phone", "city", "hobbies", "perfect_candidate_reason"}

const candidateColumns = `
	id::text, full_name, email, phone, COALESCE(age, 0), city, hobbies,
	perfect_candidate_reason, profile_image_url, registration_date, last_updated`

const candidateOrder = ` ORDER BY registration_date DESC NULLS LAST, id`

type candidateRepository struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

func scanCandidate(row pgx.Row) (*domain.Candidate, error) {
	var c domain.Candidate
	var registered *time.Time
	err := row.Scan(
		&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Age, &c.City, &c.Hobbies,
		&c.PerfectCandidateReason, &c.ProfileImageURL, &registered, &c.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	c.RegistrationDate = registered
	return &c, nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`
	c, err := scanCandidate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *candidateRepository) Create(ctx context.Context, c *domain.Candidate) (string, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO candidates (
			id, full_name, email, phone, age, city, hobbies,
			perfect_candidate_reason, profile_image_url, registration_date, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		id, c.FullName, c.Email, c.Phone, c.Age, c.City, c.Hobbies,
		c.PerfectCandidateReason, c.ProfileImageURL, c.RegistrationDate, c.LastUpdated,
	)
	if err != nil {
		return "", fmt.Errorf("insert candidate: %w", err)
	}
	return id, nil
}

func (r *candidateRepository) Update(ctx context.Context, id string, patch domain.Patch) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	query, args, err := BuildPatchUpdate(id, patch)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *candidateRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *candidateRepository) ListAll(ctx context.Context) ([]domain.Candidate, error) {
	rows, err := r.db.Query(ctx, `SELECT `+candidateColumns+` FROM candidates`+candidateOrder)
	if err != nil {
		return nil, err
	}
	return collectCandidates(rows)
}

func (r *candidateRepository) Search(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, int64, error) {
	where, args := BuildSearchFilter(filter.Query)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}

	argIndex := len(args) + 1
	query := `SELECT ` + candidateColumns + ` FROM candidates` + where + candidateOrder +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search candidates: %w", err)
	}
	candidates, err := collectCandidates(rows)
	if err != nil {
		return nil, 0, err
	}
	return candidates, total, nil
}

func (r *candidateRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id::text FROM candidates`+candidateOrder)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func collectCandidates(rows pgx.Rows) ([]domain.Candidate, error) {
	defer rows.Close()
	candidates := []domain.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, *c)
	}
	return candidates, rows.Err()
}

// BuildPatchUpdate renders an UPDATE that writes exactly the patch's fields,
// in the patch's field order. Unknown fields are rejected.
func BuildPatchUpdate(id string, patch domain.Patch) (string, []any, error) {
	if patch.IsEmpty() {
		return "", nil, errors.New("empty patch")
	}
	for field := range patch {
		if _, ok := patchColumns[field]; !ok {
			return "", nil, fmt.Errorf("field %q cannot be updated", field)
		}
	}

	keys := patch.Keys()
	sets := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+1)
	for i, field := range keys {
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(patchColumns[field]), i+1))
		args = append(args, patch[field])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE candidates SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return query, args, nil
}

// BuildSearchFilter returns a WHERE clause matching q case-insensitively as a
// substring of any searchable column. An empty q matches everything.
func BuildSearchFilter(q string) (string, []any) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", nil
	}

	conds := make([]string, 0, len(searchColumns))
	for _, col := range searchColumns {
		conds = append(conds, fmt.Sprintf("%s ILIKE $1", col))
	}
	return " WHERE (" + strings.Join(conds, " OR ") + ")", []any{"%" + escapeLike(q) + "%"}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
