package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uniclaim/claimsync/internal/model"
)

const postColumns = `id, title, description, type, status, creator_id, location_name, lat, lng,
	claim_requests, turnover, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreatePost inserts a new post. A post with the same ID is an error.
func (s *Store) CreatePost(ctx context.Context, p model.Post) error {
	claimsJSON, err := marshalClaims(p.ClaimRequests)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	turnover, err := marshalTurnover(p.Turnover)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID,
		p.Title,
		p.Description,
		string(p.Type),
		string(p.Status),
		p.CreatorID,
		p.Location.Name,
		p.Location.Lat,
		p.Location.Lng,
		claimsJSON,
		turnover,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// GetPost retrieves a post by ID.
// Returns ErrNotFound if the post does not exist.
func (s *Store) GetPost(ctx context.Context, id string) (model.Post, error) {
	return getPost(ctx, s.db, id)
}

func getPost(ctx context.Context, q queryRower, id string) (model.Post, error) {
	row := q.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("get post %s: %w", id, err)
	}
	return p, nil
}

// ListPosts returns posts ordered by creation time. An empty status returns
// posts in every status.
func (s *Store) ListPosts(ctx context.Context, status model.PostStatus) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// UpdatePost reads a post, applies mutate and writes the result back inside
// one transaction. If mutate returns an error nothing is written and the
// error is returned unwrapped so callers can match their own sentinels.
//
// The post ID and creation time cannot be changed by mutate.
func (s *Store) UpdatePost(ctx context.Context, id string, mutate func(p *model.Post) error) (model.Post, error) {
	var updated model.Post
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		p, err := getPost(ctx, tx, id)
		if err != nil {
			return err
		}

		createdAt := p.CreatedAt
		if err := mutate(&p); err != nil {
			return err
		}
		p.ID = id
		p.CreatedAt = createdAt

		if err := writePost(ctx, tx, p); err != nil {
			return fmt.Errorf("update post %s: %w", id, err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return model.Post{}, err
	}
	return updated, nil
}

func writePost(ctx context.Context, tx *sql.Tx, p model.Post) error {
	claimsJSON, err := marshalClaims(p.ClaimRequests)
	if err != nil {
		return err
	}
	turnover, err := marshalTurnover(p.Turnover)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE posts SET
			title = ?, description = ?, type = ?, status = ?, creator_id = ?,
			location_name = ?, lat = ?, lng = ?,
			claim_requests = ?, turnover = ?, updated_at = ?
		WHERE id = ?
	`,
		p.Title,
		p.Description,
		string(p.Type),
		string(p.Status),
		p.CreatorID,
		p.Location.Name,
		p.Location.Lat,
		p.Location.Lng,
		claimsJSON,
		turnover,
		formatTime(p.UpdatedAt),
		p.ID,
	)
	return err
}

// SetPostStatus changes a post's status without touching its claim history.
// Returns ErrNotFound if the post does not exist.
func (s *Store) SetPostStatus(ctx context.Context, id string, status model.PostStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE posts SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("set post status: %w", err)
	}
	return requireAffected(result, "post", id)
}

// DeletePost soft-deletes a post by setting its status to deleted. Its
// conversations remain and are reported as ghosts.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.SetPostStatus(ctx, id, model.PostDeleted)
}

// PurgePost removes a post row entirely. Its conversations are left behind.
func (s *Store) PurgePost(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("purge post: %w", err)
	}
	return requireAffected(result, "post", id)
}

func requireAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func scanPost(row rowScanner) (model.Post, error) {
	var p model.Post
	var postType, status, claimsJSON, createdAt, updatedAt string
	var turnover sql.NullString

	if err := row.Scan(
		&p.ID, &p.Title, &p.Description, &postType, &status, &p.CreatorID,
		&p.Location.Name, &p.Location.Lat, &p.Location.Lng,
		&claimsJSON, &turnover, &createdAt, &updatedAt,
	); err != nil {
		return model.Post{}, err
	}

	p.Type = model.PostType(postType)
	p.Status = model.PostStatus(status)

	var err error
	if p.ClaimRequests, err = unmarshalClaims(claimsJSON); err != nil {
		return model.Post{}, err
	}
	if p.Turnover, err = unmarshalTurnover(turnover); err != nil {
		return model.Post{}, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Post{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Post{}, err
	}
	return p, nil
}
