package post

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/social-gallery-engine/internal/domain"
	"github.com/orgball2608/social-gallery-engine/internal/repositories"
	"github.com/orgball2608/social-gallery-engine/pkg/logger"

	sq "github.com/Masterminds/squirrel"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("PostRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

const postColumns = "id, author_id, author_username, author_email, title, content, published_at, modified_at, platforms, links, analytics, meta"

// List returns one page of posts matching the filter, newest first,
// together with the total and filtered counts the wire format reports.
func (p *Pgx) List(ctx context.Context, f Filter) (*Result, error) {
	scope := scopeConds(f.UID)
	filtered := filterConds(f)

	total, err := p.count(ctx, scope)
	if err != nil {
		return nil, err
	}
	filteredCount, err := p.count(ctx, filtered)
	if err != nil {
		return nil, err
	}

	builder := repositories.SqBuilder.
		Select(postColumns).
		From("gallery_posts").
		OrderBy("published_at DESC").
		Offset(uint64(f.Offset))
	if f.Limit > 0 {
		builder = builder.Limit(uint64(f.Limit))
	}
	for _, cond := range filtered {
		builder = builder.Where(cond)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Result{Posts: posts, Total: total, Filtered: filteredCount}, nil
}

// GetByID returns a single post.
func (p *Pgx) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select(postColumns).
		From("gallery_posts").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanPost(rows)
}

// Create seeds a post into the tenant scope.
func (p *Pgx) Create(ctx context.Context, post domain.Post, uid string) error {
	links, err := json.Marshal(post.Links)
	if err != nil {
		return err
	}
	analytics, err := json.Marshal(post.PlatformAnalytics)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(post.Meta)
	if err != nil {
		return err
	}

	publishedAt := parsePostDate(post.Body.Date)
	var modifiedAt *time.Time
	if post.Body.Modified != nil {
		t := parsePostDate(*post.Body.Modified)
		modifiedAt = &t
	}

	query, args, err := repositories.SqBuilder.
		Insert("gallery_posts").
		Columns("id", "author_id", "author_username", "author_email",
			"title", "content", "published_at", "modified_at",
			"platforms", "links", "analytics", "meta", "uid", "created_at").
		Values(post.ID.String(), post.Author.ID, post.Author.Username, post.Author.Email,
			post.Body.Title, post.Body.Content, publishedAt, modifiedAt,
			post.Platforms, links, analytics, meta, uid, time.Now()).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (p *Pgx) count(ctx context.Context, conds []sq.Sqlizer) (int, error) {
	builder := repositories.SqBuilder.Select("COUNT(*)").From("gallery_posts")
	for _, cond := range conds {
		builder = builder.Where(cond)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}
	var n int
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scopeConds(uid string) []sq.Sqlizer {
	if uid == "" {
		return nil
	}
	return []sq.Sqlizer{sq.Eq{"uid": uid}}
}

func filterConds(f Filter) []sq.Sqlizer {
	conds := scopeConds(f.UID)
	if f.Keyword != "" {
		pattern := "%" + f.Keyword + "%"
		// The widget's single-post lookup arrives as a keyword, so the id
		// column participates in keyword matching.
		conds = append(conds, sq.Or{
			sq.Eq{"id": f.Keyword},
			sq.ILike{"title": pattern},
			sq.ILike{"content": pattern},
		})
	}
	if f.Platform != "" {
		conds = append(conds, sq.Expr("LOWER(?) = ANY(platforms)", f.Platform))
	}
	if start, end, ok := BucketRange(time.Now(), f.DateFilter); ok {
		conds = append(conds, sq.GtOrEq{"published_at": start}, sq.Lt{"published_at": end})
	}
	return conds
}

func scanPost(rows pgx.Rows) (*domain.Post, error) {
	var (
		post        domain.Post
		id          string
		publishedAt time.Time
		modifiedAt  *time.Time
		links       []byte
		analytics   []byte
		meta        []byte
	)
	if err := rows.Scan(&id, &post.Author.ID, &post.Author.Username, &post.Author.Email,
		&post.Body.Title, &post.Body.Content, &publishedAt, &modifiedAt,
		&post.Platforms, &links, &analytics, &meta); err != nil {
		return nil, err
	}

	post.ID = domain.ID(id)
	post.Body.Date = publishedAt.Format(time.RFC3339)
	if modifiedAt != nil {
		s := modifiedAt.Format(time.RFC3339)
		post.Body.Modified = &s
	}
	if len(links) > 0 {
		if err := json.Unmarshal(links, &post.Links); err != nil {
			return nil, err
		}
	}
	if len(analytics) > 0 && string(analytics) != "null" {
		if err := json.Unmarshal(analytics, &post.PlatformAnalytics); err != nil {
			return nil, err
		}
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &post.Meta); err != nil {
			return nil, err
		}
	}
	return &post, nil
}

func parsePostDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}
