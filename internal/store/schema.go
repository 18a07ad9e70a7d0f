package store

// Schema is the literal realization of spec.md §6's persistence fragments:
// JSON columns for nested fields and a functional index on the enabled flag
// buried inside the status JSON blob, which SQLite's json_extract supports
// directly as an indexed expression.
const Schema = `
CREATE TABLE IF NOT EXISTS gateways (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	url          TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	capabilities TEXT NOT NULL DEFAULT '{}',
	auth_type    TEXT NOT NULL DEFAULT 'none',
	auth_value   TEXT NOT NULL DEFAULT '{}',
	status       TEXT NOT NULL DEFAULT '{"enabled":false,"reachable":false}',
	last_seen    TIMESTAMP,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_gateways_status_enabled
	ON gateways (json_extract(status, '$.enabled'));

CREATE TABLE IF NOT EXISTS tools (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL UNIQUE,
	url              TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	integration_type TEXT NOT NULL DEFAULT '',
	request_type     TEXT NOT NULL DEFAULT '',
	headers          TEXT NOT NULL DEFAULT '{}',
	input_schema     TEXT NOT NULL DEFAULT '{}',
	jsonpath_filter  TEXT NOT NULL DEFAULT '',
	auth_type        TEXT NOT NULL DEFAULT 'none',
	auth_value       TEXT NOT NULL DEFAULT '{}',
	gateway_id       TEXT NOT NULL REFERENCES gateways(id),
	status           TEXT NOT NULL DEFAULT '{"enabled":false,"reachable":false}'
);

CREATE INDEX IF NOT EXISTS idx_tools_gateway_id ON tools (gateway_id);
`
