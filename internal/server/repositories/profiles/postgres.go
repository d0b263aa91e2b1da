// Package profiles contains the PostgreSQL-backed repository for the durable
// profile record.
package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/binarybhaskar/branchit/internal/common"
	"github.com/binarybhaskar/branchit/internal/dbx"
	"github.com/binarybhaskar/branchit/internal/profile"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	query :=
		`SELECT display_name, photo_url, about, linkedin, instagram, github,
		        skills, resume_url, project_links,
		        username, username_updated_at, updated_at
		 FROM profiles
		 WHERE user_id = $1
		 `

	p := &profile.Profile{}
	var skills, projectLinks []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.DisplayName, &p.PhotoURL, &p.About, &p.LinkedIn, &p.Instagram, &p.GitHub,
		&skills, &p.ResumeURL, &projectLinks,
		&p.Username, &p.UsernameUpdatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(skills, &p.Skills); err != nil {
		return nil, fmt.Errorf("decoding skills: %w", err)
	}
	if err := json.Unmarshal(projectLinks, &p.ProjectLinks); err != nil {
		return nil, fmt.Errorf("decoding project links: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, userID string, p *profile.Profile) error {
	skills, err := json.Marshal(emptyAsList(p.Skills))
	if err != nil {
		return fmt.Errorf("encoding skills: %w", err)
	}
	projectLinks, err := json.Marshal(emptyAsList(p.ProjectLinks))
	if err != nil {
		return fmt.Errorf("encoding project links: %w", err)
	}

	query :=
		`INSERT INTO profiles (user_id, display_name, photo_url, about, linkedin, instagram, github,
		                       skills, resume_url, project_links,
		                       username, username_updated_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (user_id) DO UPDATE SET
		     display_name = EXCLUDED.display_name,
		     photo_url = EXCLUDED.photo_url,
		     about = EXCLUDED.about,
		     linkedin = EXCLUDED.linkedin,
		     instagram = EXCLUDED.instagram,
		     github = EXCLUDED.github,
		     skills = EXCLUDED.skills,
		     resume_url = EXCLUDED.resume_url,
		     project_links = EXCLUDED.project_links,
		     username = EXCLUDED.username,
		     username_updated_at = EXCLUDED.username_updated_at,
		     updated_at = EXCLUDED.updated_at
		 `

	_, err = r.db.ExecContext(ctx, query, userID,
		p.DisplayName, p.PhotoURL, p.About, p.LinkedIn, p.Instagram, p.GitHub,
		skills, p.ResumeURL, projectLinks,
		p.Username, p.UsernameUpdatedAt, p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// emptyAsList keeps nil slices encoding as [] rather than null.
func emptyAsList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
