package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/workgrid/internal/db"
	"github.com/alexanderramin/workgrid/internal/domain"
)

const edgeColumns = `id, from_id, to_id, edge_type, attributes, created_at, updated_at`

// UpdatedAtKey is the attribute stamped on every matrix cell write.
const UpdatedAtKey = "updatedAt"

// SQLiteEdgeRepo implements EdgeRepo using a SQLite database. Matrix cells
// are edges of domain.MatrixEdgeType.
type SQLiteEdgeRepo struct {
	db db.DBTX
}

// NewSQLiteEdgeRepo creates a new SQLiteEdgeRepo.
func NewSQLiteEdgeRepo(conn db.DBTX) *SQLiteEdgeRepo {
	return &SQLiteEdgeRepo{db: conn}
}

func (r *SQLiteEdgeRepo) FetchEdges(ctx context.Context) ([]domain.Edge, error) {
	edges, err := queryEdges(ctx, r.db, `SELECT `+edgeColumns+` FROM edges ORDER BY rowid`)
	if err != nil {
		return nil, storeErr("fetch edges", err)
	}
	return edges, nil
}

func (r *SQLiteEdgeRepo) GetEdgesForElement(ctx context.Context, elementID string) ([]domain.Edge, error) {
	edges, err := queryEdges(ctx, r.db,
		`SELECT `+edgeColumns+` FROM edges WHERE from_id = ? OR to_id = ? ORDER BY rowid`, elementID, elementID)
	if err != nil {
		return nil, storeErr("edges for element", err)
	}
	return edges, nil
}

func (r *SQLiteEdgeRepo) getEdge(ctx context.Context, id string) (*domain.Edge, error) {
	edges, err := queryEdges(ctx, r.db, `SELECT `+edgeColumns+` FROM edges WHERE id = ?`, id)
	if err != nil {
		return nil, storeErr("get edge", err)
	}
	if len(edges) == 0 {
		return nil, domain.NotFound("edge", id)
	}
	return &edges[0], nil
}

// CreateEdge inserts a new edge. The store re-checks what the graph engine
// already validates, since other writers may bypass it.
func (r *SQLiteEdgeRepo) CreateEdge(ctx context.Context, patch domain.EdgePatch) (*domain.Edge, error) {
	if patch.FromID == patch.ToID {
		return nil, domain.Invalid("to", "self-loop edges are not allowed")
	}
	if !domain.ValidEdgeTypes[string(patch.Type)] {
		return nil, domain.Invalid("type", "unknown edge type %q", patch.Type)
	}
	for _, id := range []string{patch.FromID, patch.ToID} {
		if err := requireRow(ctx, r.db, "elements", "element", id); err != nil {
			return nil, storeErr("create edge", err)
		}
	}
	attrs, err := encodeJSONMap(patch.Attributes)
	if err != nil {
		return nil, domain.Invalid("attributes", "%v", err)
	}
	id := newID()
	now := formatTS(nowUTC())
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO edges (`+edgeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, patch.FromID, patch.ToID, string(patch.Type), attrs, now, now)
	if isUniqueViolation(err) {
		return nil, domain.Invalid("edge", "%s edge %s -> %s already exists", patch.Type, patch.FromID, patch.ToID)
	}
	if err != nil {
		return nil, storeErr("create edge", fmt.Errorf("inserting edge: %w", err))
	}
	return r.getEdge(ctx, id)
}

func (r *SQLiteEdgeRepo) DeleteEdge(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete edge", fmt.Errorf("deleting edge: %w", err))
	}
	return requireAffected(res, "edge", id)
}

func (r *SQLiteEdgeRepo) GetIntersections(ctx context.Context, rowIDs, colIDs []string) ([]domain.Edge, error) {
	if len(rowIDs) == 0 || len(colIDs) == 0 {
		return nil, nil
	}
	var out []domain.Edge
	for _, rows := range chunkIDs(rowIDs, 400) {
		for _, cols := range chunkIDs(colIDs, 400) {
			query := `SELECT ` + edgeColumns + ` FROM edges WHERE edge_type = ?
				AND from_id IN (` + placeholders(len(rows)) + `)
				AND to_id IN (` + placeholders(len(cols)) + `)
				ORDER BY rowid`
			args := append([]any{string(domain.MatrixEdgeType)}, stringArgs(rows)...)
			args = append(args, stringArgs(cols)...)
			edges, err := queryEdges(ctx, r.db, query, args...)
			if err != nil {
				return nil, storeErr("get intersections", err)
			}
			out = append(out, edges...)
		}
	}
	return out, nil
}

// UpsertIntersection merges patch into the cell at (rowID, colID) with
// JSON merge-patch semantics: keys in patch overwrite existing ones and null
// removes a key. UpdatedAtKey is always set by the store. A single statement
// keeps concurrent writers to the same pair from racing on the insert.
func (r *SQLiteEdgeRepo) UpsertIntersection(ctx context.Context, rowID, colID string, patch map[string]any) (*domain.Edge, error) {
	if rowID == colID {
		return nil, domain.Invalid("cell", "an element cannot intersect itself")
	}
	for _, elementID := range []string{rowID, colID} {
		if err := requireRow(ctx, r.db, "elements", "element", elementID); err != nil {
			return nil, storeErr("upsert intersection", err)
		}
	}
	now := nowUTC()
	attrs, err := encodeJSONMap(cellPatch(patch, now))
	if err != nil {
		return nil, domain.Invalid("patch", "%v", err)
	}
	// json_patch against '{}' drops null keys from a fresh cell; on conflict
	// the raw patch is applied so that nulls delete existing keys.
	query := `INSERT INTO edges (` + edgeColumns + `) VALUES (?, ?, ?, ?, json_patch('{}', ?), ?, ?)
		ON CONFLICT(from_id, to_id, edge_type) DO UPDATE
		SET attributes = json_patch(edges.attributes, ?),
		    updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		newID(), rowID, colID, string(domain.MatrixEdgeType), attrs, formatTS(now), formatTS(now), attrs)
	if err != nil {
		return nil, storeErr("upsert intersection", fmt.Errorf("upserting intersection: %w", err))
	}
	edges, err := queryEdges(ctx, r.db,
		`SELECT `+edgeColumns+` FROM edges WHERE from_id = ? AND to_id = ? AND edge_type = ?`,
		rowID, colID, string(domain.MatrixEdgeType))
	if err != nil {
		return nil, storeErr("upsert intersection", err)
	}
	if len(edges) == 0 {
		return nil, domain.NotFound("intersection", rowID+"/"+colID)
	}
	return &edges[0], nil
}

// cellPatch returns patch plus the store-assigned UpdatedAtKey.
func cellPatch(patch map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		out[k] = v
	}
	out[UpdatedAtKey] = now.Format(time.RFC3339)
	return out
}

func queryEdges(ctx context.Context, conn db.DBTX, query string, args ...any) ([]domain.Edge, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing edges: %w", err)
	}
	defer rows.Close()

	var out []domain.Edge
	for rows.Next() {
		var e domain.Edge
		var edgeType, attrs, createdAt, updatedAt string
		if err := rows.Scan(&e.ID, &e.FromID, &e.ToID, &edgeType, &attrs, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		e.Type = domain.EdgeType(edgeType)
		if e.Attributes, err = decodeJSONMap(attrs); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTS(createdAt); err != nil {
			return nil, err
		}
		if e.UpdatedAt, err = parseTS(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edges: %w", err)
	}
	return out, nil
}
