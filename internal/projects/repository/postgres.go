package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devfolio/portfolio-api/internal/projects/domain"
)

// PostgresStore persists projects in the projects table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const projectColumns = `id::text, title, slug, description, project_type, technologies,
image_url, image_public_id, project_url, github_url, privacy_policy,
featured, sort_order, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.ProjectType, &p.Technologies,
		&p.ImageURL, &p.ImagePublicID, &p.ProjectURL, &p.GithubURL, &p.PrivacyPolicy,
		&p.Featured, &p.Order, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Technologies = technologiesOrEmpty(p.Technologies)
	return &p, nil
}

func (r *PostgresStore) List(ctx context.Context) ([]domain.Project, error) {
	return r.query(ctx, `
select `+projectColumns+`
from projects
order by sort_order asc, created_at desc;
`)
}

func (r *PostgresStore) ListMissingSlug(ctx context.Context) ([]domain.Project, error) {
	return r.query(ctx, `
select `+projectColumns+`
from projects
where slug = ''
order by created_at asc;
`)
}

func (r *PostgresStore) query(ctx context.Context, q string, args ...any) ([]domain.Project, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, classifyPgError(err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, classifyPgError(err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPgError(err)
	}
	return out, nil
}

func (r *PostgresStore) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := scanProject(r.db.QueryRow(ctx, `
select `+projectColumns+`
from projects
where id = $1::uuid;
`, id))
	if err != nil {
		return nil, classifyPgError(err)
	}
	return p, nil
}

func (r *PostgresStore) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	p, err := scanProject(r.db.QueryRow(ctx, `
select `+projectColumns+`
from projects
where slug = $1;
`, slug))
	if err != nil {
		return nil, classifyPgError(err)
	}
	return p, nil
}

func (r *PostgresStore) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	// a malformed exclude id cannot match any row, so it excludes nothing
	var exclude *string
	if _, err := uuid.Parse(excludeID); err == nil {
		exclude = &excludeID
	}

	var taken bool
	err := r.db.QueryRow(ctx, `
select exists (
  select 1 from projects
  where slug = $1 and ($2::uuid is null or id <> $2::uuid)
);
`, slug, exclude).Scan(&taken)
	if err != nil {
		return false, classifyPgError(err)
	}
	return taken, nil
}

func (r *PostgresStore) Insert(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	out, err := scanProject(r.db.QueryRow(ctx, `
insert into projects (
  title, slug, description, project_type, technologies,
  image_url, image_public_id, project_url, github_url, privacy_policy,
  featured, sort_order
)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
returning `+projectColumns+`;
`,
		p.Title, p.Slug, p.Description, p.ProjectType, technologiesOrEmpty(p.Technologies),
		p.ImageURL, p.ImagePublicID, p.ProjectURL, p.GithubURL, p.PrivacyPolicy,
		p.Featured, p.Order,
	))
	if err != nil {
		return nil, classifyPgError(err)
	}
	return out, nil
}

func (r *PostgresStore) Update(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	if _, err := uuid.Parse(p.ID); err != nil {
		return nil, domain.ErrNotFound
	}
	out, err := scanProject(r.db.QueryRow(ctx, `
update projects
set title = $2, slug = $3, description = $4, project_type = $5, technologies = $6,
    image_url = $7, image_public_id = $8, project_url = $9, github_url = $10,
    privacy_policy = $11, featured = $12, sort_order = $13, updated_at = now()
where id = $1::uuid
returning `+projectColumns+`;
`,
		p.ID, p.Title, p.Slug, p.Description, p.ProjectType, technologiesOrEmpty(p.Technologies),
		p.ImageURL, p.ImagePublicID, p.ProjectURL, p.GithubURL,
		p.PrivacyPolicy, p.Featured, p.Order,
	))
	if err != nil {
		return nil, classifyPgError(err)
	}
	return out, nil
}

func (r *PostgresStore) Delete(ctx context.Context, id string) (*domain.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := scanProject(r.db.QueryRow(ctx, `
delete from projects
where id = $1::uuid
returning `+projectColumns+`;
`, id))
	if err != nil {
		return nil, classifyPgError(err)
	}
	return p, nil
}

// classifyPgError maps driver errors onto the domain error kinds.
func classifyPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", domain.ErrDuplicateKey, pgErr.ConstraintName)
		// check, not null, string too long, numeric out of range,
		// bad encoding, untranslatable character
		case "23514", "23502", "22001", "22003", "22021", "22P05":
			return fmt.Errorf("%w: %s", domain.ErrValidation, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
