package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/toolmesh/gatefed/internal/model"
)

// SQLiteStore backs Store with a pure-Go SQLite driver; no cgo toolchain is
// required at build time.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at path and ensures
// the schema exists. WAL mode and a busy timeout keep concurrent readers
// from contending with the health loop's writes.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping %s: %w", path, err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside one *sql.Tx, committing on a nil return and rolling
// back otherwise, per spec.md §5's single-transaction-per-operation rule.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}

	if err := fn(&sqliteTx{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("store: commit tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListGateways(ctx context.Context, includeInactive bool) ([]model.Gateway, error) {
	query := `SELECT id, name, url, description, capabilities, auth_type, auth_value, status, last_seen, created_at, updated_at FROM gateways`
	if !includeInactive {
		query += ` WHERE json_extract(status, '$.enabled') = 1`
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list gateways: %w", err)
	}
	defer rows.Close()

	var out []model.Gateway
	for rows.Next() {
		g, err := scanGateway(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) GetGateway(id string) (model.Gateway, bool, error) {
	row := t.tx.QueryRow(`SELECT id, name, url, description, capabilities, auth_type, auth_value, status, last_seen, created_at, updated_at FROM gateways WHERE id = ?`, id)
	return scanGatewayRow(row)
}

func (t *sqliteTx) GetGatewayByName(name string) (model.Gateway, bool, error) {
	row := t.tx.QueryRow(`SELECT id, name, url, description, capabilities, auth_type, auth_value, status, last_seen, created_at, updated_at FROM gateways WHERE name = ?`, name)
	return scanGatewayRow(row)
}

func (t *sqliteTx) InsertGateway(g model.Gateway) error {
	caps, err := json.Marshal(g.Capabilities)
	if err != nil {
		return fmt.Errorf("store: marshal capabilities: %w", err)
	}
	authValue, err := json.Marshal(g.AuthValue)
	if err != nil {
		return fmt.Errorf("store: marshal auth_value: %w", err)
	}
	status, err := json.Marshal(g.Status)
	if err != nil {
		return fmt.Errorf("store: marshal status: %w", err)
	}

	_, err = t.tx.Exec(`INSERT INTO gateways (id, name, url, description, capabilities, auth_type, auth_value, status, last_seen, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.URL, g.Description, string(caps), g.AuthType, string(authValue), string(status),
		nullTime(g.LastSeen), g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: insert gateway: %w", err)
	}
	return nil
}

func (t *sqliteTx) UpdateGateway(g model.Gateway) error {
	caps, err := json.Marshal(g.Capabilities)
	if err != nil {
		return fmt.Errorf("store: marshal capabilities: %w", err)
	}
	authValue, err := json.Marshal(g.AuthValue)
	if err != nil {
		return fmt.Errorf("store: marshal auth_value: %w", err)
	}
	status, err := json.Marshal(g.Status)
	if err != nil {
		return fmt.Errorf("store: marshal status: %w", err)
	}

	_, err = t.tx.Exec(`UPDATE gateways SET name=?, url=?, description=?, capabilities=?, auth_type=?, auth_value=?, status=?, last_seen=?, updated_at=? WHERE id=?`,
		g.Name, g.URL, g.Description, string(caps), g.AuthType, string(authValue), string(status),
		nullTime(g.LastSeen), g.UpdatedAt, g.ID)
	if err != nil {
		return fmt.Errorf("store: update gateway: %w", err)
	}
	return nil
}

func (t *sqliteTx) DeleteGateway(id string) error {
	_, err := t.tx.Exec(`DELETE FROM gateways WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete gateway: %w", err)
	}
	return nil
}

func (t *sqliteTx) GetToolByName(name string) (model.Tool, bool, error) {
	row := t.tx.QueryRow(`SELECT id, name, url, description, integration_type, request_type, headers, input_schema, jsonpath_filter, auth_type, auth_value, gateway_id, status FROM tools WHERE name = ?`, name)
	return scanToolRow(row)
}

func (t *sqliteTx) InsertTool(tool model.Tool) error {
	headers, err := json.Marshal(tool.Headers)
	if err != nil {
		return fmt.Errorf("store: marshal headers: %w", err)
	}
	schema, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return fmt.Errorf("store: marshal input_schema: %w", err)
	}
	authValue, err := json.Marshal(tool.AuthValue)
	if err != nil {
		return fmt.Errorf("store: marshal auth_value: %w", err)
	}
	status, err := json.Marshal(tool.Status)
	if err != nil {
		return fmt.Errorf("store: marshal status: %w", err)
	}

	_, err = t.tx.Exec(`INSERT INTO tools (id, name, url, description, integration_type, request_type, headers, input_schema, jsonpath_filter, auth_type, auth_value, gateway_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tool.ID, tool.Name, tool.URL, tool.Description, tool.IntegrationType, tool.RequestType,
		string(headers), string(schema), tool.JSONPathFilter, tool.AuthType, string(authValue), tool.GatewayID, string(status))
	if err != nil {
		return fmt.Errorf("store: insert tool: %w", err)
	}
	return nil
}

func (t *sqliteTx) ListToolsByGateway(gatewayID string) ([]model.Tool, error) {
	rows, err := t.tx.Query(`SELECT id, name, url, description, integration_type, request_type, headers, input_schema, jsonpath_filter, auth_type, auth_value, gateway_id, status FROM tools WHERE gateway_id = ?`, gatewayID)
	if err != nil {
		return nil, fmt.Errorf("store: list tools: %w", err)
	}
	defer rows.Close()

	var out []model.Tool
	for rows.Next() {
		tool, _, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tool)
	}
	return out, rows.Err()
}

func (t *sqliteTx) DeleteToolsByGateway(gatewayID string) error {
	_, err := t.tx.Exec(`DELETE FROM tools WHERE gateway_id = ?`, gatewayID)
	if err != nil {
		return fmt.Errorf("store: delete tools by gateway: %w", err)
	}
	return nil
}

func (t *sqliteTx) SetToolEnabled(id string, enabled bool) error {
	status, err := json.Marshal(model.Status{Enabled: enabled})
	if err != nil {
		return fmt.Errorf("store: marshal status: %w", err)
	}
	_, err = t.tx.Exec(`UPDATE tools SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("store: set tool enabled: %w", err)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGateway(rows *sql.Rows) (model.Gateway, error) {
	g, _, err := scanGatewayRow(rows)
	return g, err
}

func scanGatewayRow(row scanner) (model.Gateway, bool, error) {
	var g model.Gateway
	var caps, authValue, status string
	var lastSeen sql.NullTime

	err := row.Scan(&g.ID, &g.Name, &g.URL, &g.Description, &caps, &g.AuthType, &authValue, &status, &lastSeen, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Gateway{}, false, nil
	}
	if err != nil {
		return model.Gateway{}, false, fmt.Errorf("store: scan gateway: %w", err)
	}

	if err := json.Unmarshal([]byte(caps), &g.Capabilities); err != nil {
		return model.Gateway{}, false, fmt.Errorf("store: unmarshal capabilities: %w", err)
	}
	if err := json.Unmarshal([]byte(authValue), &g.AuthValue); err != nil {
		return model.Gateway{}, false, fmt.Errorf("store: unmarshal auth_value: %w", err)
	}
	if err := json.Unmarshal([]byte(status), &g.Status); err != nil {
		return model.Gateway{}, false, fmt.Errorf("store: unmarshal status: %w", err)
	}
	if lastSeen.Valid {
		g.LastSeen = lastSeen.Time
	}
	return g, true, nil
}

func scanTool(rows *sql.Rows) (model.Tool, bool, error) {
	return scanToolRow(rows)
}

func scanToolRow(row scanner) (model.Tool, bool, error) {
	var t model.Tool
	var headers, schema, authValue, status string

	err := row.Scan(&t.ID, &t.Name, &t.URL, &t.Description, &t.IntegrationType, &t.RequestType,
		&headers, &schema, &t.JSONPathFilter, &t.AuthType, &authValue, &t.GatewayID, &status)
	if err == sql.ErrNoRows {
		return model.Tool{}, false, nil
	}
	if err != nil {
		return model.Tool{}, false, fmt.Errorf("store: scan tool: %w", err)
	}

	if err := json.Unmarshal([]byte(headers), &t.Headers); err != nil {
		return model.Tool{}, false, fmt.Errorf("store: unmarshal headers: %w", err)
	}
	if err := json.Unmarshal([]byte(schema), &t.InputSchema); err != nil {
		return model.Tool{}, false, fmt.Errorf("store: unmarshal input_schema: %w", err)
	}
	if err := json.Unmarshal([]byte(authValue), &t.AuthValue); err != nil {
		return model.Tool{}, false, fmt.Errorf("store: unmarshal auth_value: %w", err)
	}
	if err := json.Unmarshal([]byte(status), &t.Status); err != nil {
		return model.Tool{}, false, fmt.Errorf("store: unmarshal status: %w", err)
	}
	return t, true, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
