package storage

// Timestamps are stored as RFC 3339 text so both drivers round-trip them the
// same way.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
		id           TEXT PRIMARY KEY,
		url          TEXT NOT NULL UNIQUE,
		title        TEXT NOT NULL,
		body         TEXT NOT NULL DEFAULT '',
		image_url    TEXT NOT NULL DEFAULT '',
		sector       TEXT NOT NULL DEFAULT '',
		source       TEXT NOT NULL DEFAULT '',
		published_at TEXT NOT NULL DEFAULT '',
		ingested_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_sector ON articles (sector, ingested_at)`,
	`CREATE TABLE IF NOT EXISTS verdicts (
		id              TEXT PRIMARY KEY,
		article_id      TEXT NOT NULL UNIQUE,
		claim           TEXT NOT NULL,
		status          TEXT NOT NULL,
		confidence      INTEGER NOT NULL,
		reasoning       TEXT NOT NULL DEFAULT '',
		citations       TEXT NOT NULL DEFAULT '[]',
		red_flags       TEXT NOT NULL DEFAULT '[]',
		context_sources TEXT NOT NULL DEFAULT '[]',
		tier            TEXT NOT NULL,
		checked_at      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS image_assessments (
		id          TEXT PRIMARY KEY,
		article_id  TEXT NOT NULL UNIQUE,
		image_url   TEXT NOT NULL,
		match_count INTEGER NOT NULL DEFAULT 0,
		score       INTEGER NOT NULL,
		status      TEXT NOT NULL,
		signals     TEXT NOT NULL DEFAULT '{}',
		reasoning   TEXT NOT NULL DEFAULT '',
		fallback    INTEGER NOT NULL DEFAULT 0,
		assessed_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS strategies (
		id         TEXT PRIMARY KEY,
		article_id TEXT NOT NULL UNIQUE,
		summary    TEXT NOT NULL,
		actions    TEXT NOT NULL DEFAULT '[]',
		priority   TEXT NOT NULL,
		tier       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
}
