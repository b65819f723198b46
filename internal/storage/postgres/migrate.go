package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`create table if not exists projects (
  id uuid primary key default gen_random_uuid(),
  title text not null check (btrim(title) <> '' and char_length(title) <= 100),
  slug text not null default '',
  description text not null check (btrim(description) <> '' and char_length(description) <= 500),
  project_type text not null default 'frontend'
    check (project_type in ('frontend','backend','fullstack','mobile','wordpress','ai','other')),
  technologies text[] not null default '{}',
  image_url text not null default '',
  image_public_id text not null default '',
  project_url text not null default '',
  github_url text not null default '',
  privacy_policy text not null default '',
  featured boolean not null default false,
  sort_order integer not null default 0,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now(),
  check ((image_url = '') = (image_public_id = ''))
)`,
	`create unique index if not exists projects_slug_key on projects (slug) where slug <> ''`,
	`create index if not exists projects_listing_idx on projects (sort_order asc, created_at desc)`,
	`create table if not exists users (
  id uuid primary key default gen_random_uuid(),
  username text not null unique check (btrim(username) <> ''),
  email text not null unique check (btrim(email) <> ''),
  password_hash text not null,
  role text not null default 'admin',
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
)`,
}

// Migrate creates the tables and indexes if they do not exist.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
