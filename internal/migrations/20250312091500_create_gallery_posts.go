package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateGalleryPosts, downCreateGalleryPosts)
}

func upCreateGalleryPosts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE gallery_posts (
		id VARCHAR PRIMARY KEY,
		author_id BIGINT NOT NULL DEFAULT 0,
		author_username VARCHAR NOT NULL DEFAULT '',
		author_email VARCHAR NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		published_at TIMESTAMP WITH TIME ZONE NOT NULL,
		modified_at TIMESTAMP WITH TIME ZONE,
		platforms TEXT[] NOT NULL DEFAULT '{}',
		links JSONB NOT NULL DEFAULT '{}',
		analytics JSONB,
		meta JSONB NOT NULL DEFAULT '{}',
		uid VARCHAR NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);
	CREATE INDEX gallery_posts_published_at_idx ON gallery_posts (published_at DESC);
	CREATE INDEX gallery_posts_uid_idx ON gallery_posts (uid);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downCreateGalleryPosts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE gallery_posts;
	`)
	if err != nil {
		return err
	}
	return nil
}
