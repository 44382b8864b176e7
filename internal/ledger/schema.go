package ledger

const schemaVersion = 1

var schema = []string{
	`PRAGMA journal_mode=WAL;`,
	`PRAGMA synchronous=NORMAL;`,
	`PRAGMA busy_timeout=5000;`,
	`CREATE TABLE IF NOT EXISTS trash_entry (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		original_path TEXT    NOT NULL,
		trash_path    TEXT    NOT NULL,
		is_dir        INTEGER NOT NULL DEFAULT 0,
		link_target   TEXT,
		file_size     INTEGER NOT NULL,
		content_hash  TEXT    NOT NULL,
		mtime         INTEGER NOT NULL,
		atime         INTEGER NOT NULL,
		unix_mode     INTEGER NOT NULL,
		uid           INTEGER NOT NULL,
		gid           INTEGER NOT NULL,
		created_at    INTEGER NOT NULL,
		expiration    INTEGER NOT NULL,
		run_id        TEXT    NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS trash_entry_expiration ON trash_entry (expiration);`,
	`CREATE INDEX IF NOT EXISTS trash_entry_original_path ON trash_entry (original_path);`,
	`CREATE INDEX IF NOT EXISTS trash_entry_trash_path ON trash_entry (trash_path);`,
	`PRAGMA user_version = 1;`,
}

const entryColumns = `id, original_path, trash_path, is_dir, link_target, file_size,
	content_hash, mtime, atime, unix_mode, uid, gid, created_at, expiration, run_id`

const insertEntry = `
INSERT INTO trash_entry (
	original_path, trash_path, is_dir, link_target, file_size, content_hash,
	mtime, atime, unix_mode, uid, gid, created_at, expiration, run_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
