//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements Store on an embedded KuzuDB database. It requires
// cgo because go-kuzu wraps the KuzuDB C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory database.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore persisted at dbPath. KuzuDB creates
// the leaf directory itself; its parent is created here.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(dbPath string) (*KuzuStore, error) {
	db, err := kuzu.OpenDatabase(dbPath, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database %s: %w", dbPath, err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements are executed in order by InitSchema; node tables precede
// the relationship tables that reference them.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Folder(
		path STRING,
		name STRING,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS File(
		path STRING,
		name STRING,
		language STRING,
		loc INT64,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Symbol(
		id STRING,
		name STRING,
		kind STRING,
		exported BOOLEAN,
		file_path STRING,
		start_line INT64,
		end_line INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Cluster(
		name STRING,
		cohesion_score DOUBLE,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS CONTAINS_FOLDER(FROM Folder TO Folder)`,
	`CREATE REL TABLE IF NOT EXISTS CONTAINS_FILE(FROM Folder TO File)`,
	`CREATE REL TABLE IF NOT EXISTS IMPORTS(FROM File TO File)`,
	`CREATE REL TABLE IF NOT EXISTS COMPANION(FROM File TO File)`,
	`CREATE REL TABLE IF NOT EXISTS DEFINES(FROM File TO Symbol)`,
	`CREATE REL TABLE IF NOT EXISTS BELONGS_TO(FROM File TO Cluster)`,
}

var relTables = []string{"CONTAINS_FOLDER", "CONTAINS_FILE", "IMPORTS", "COMPANION", "DEFINES", "BELONGS_TO"}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

func (s *KuzuStore) AddFolder(_ context.Context, node FolderNode) error {
	return s.exec(
		"MERGE (d:Folder {path: $path}) SET d.name = $name",
		map[string]any{"path": node.Path, "name": node.Name},
	)
}

// AddFile upserts a File node.
func (s *KuzuStore) AddFile(_ context.Context, node FileNode) error {
	return s.exec(
		"MERGE (f:File {path: $path}) SET f.name = $name, f.language = $lang, f.loc = $loc",
		map[string]any{
			"path": node.Path,
			"name": node.Name,
			"lang": string(node.Language),
			"loc":  int64(node.LOC),
		},
	)
}

// AddSymbol upserts a Symbol node keyed by "filePath:name".
func (s *KuzuStore) AddSymbol(_ context.Context, node SymbolNode) error {
	return s.exec(
		`MERGE (s:Symbol {id: $id})
		 SET s.name = $name, s.kind = $kind, s.exported = $exported,
		     s.file_path = $fp, s.start_line = $sl, s.end_line = $el`,
		map[string]any{
			"id":       symbolKey(node.FilePath, node.Name),
			"name":     node.Name,
			"kind":     string(node.Kind),
			"exported": node.Exported,
			"fp":       node.FilePath,
			"sl":       int64(node.StartLine),
			"el":       int64(node.EndLine),
		},
	)
}

func (s *KuzuStore) AddCluster(_ context.Context, node ClusterNode) error {
	return s.exec(
		"MERGE (c:Cluster {name: $name}) SET c.cohesion_score = $score",
		map[string]any{
			"name":  node.Name,
			"score": node.CohesionScore,
		},
	)
}

// AddEdge inserts a relationship between two existing nodes. An edge whose
// endpoints are missing matches nothing and is silently not created.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	stmts, err := edgeCypher(edge.Kind)
	if err != nil {
		return err
	}
	params := map[string]any{
		"src": edge.SourceID,
		"dst": edge.TargetID,
	}
	for _, cypher := range stmts {
		if err := s.exec(cypher, params); err != nil {
			return err
		}
	}
	return nil
}

// edgeCypher returns the MATCH-CREATE statements for the given edge kind.
// CONTAINS targets either a folder or a file, so both tables are tried.
func edgeCypher(kind EdgeKind) ([]string, error) {
	switch kind {
	case EdgeKindContains:
		return []string{
			`MATCH (a:Folder {path: $src}), (b:Folder {path: $dst})
			 CREATE (a)-[:CONTAINS_FOLDER]->(b)`,
			`MATCH (a:Folder {path: $src}), (b:File {path: $dst})
			 CREATE (a)-[:CONTAINS_FILE]->(b)`,
		}, nil
	case EdgeKindImports:
		return []string{`MATCH (a:File {path: $src}), (b:File {path: $dst})
			CREATE (a)-[:IMPORTS]->(b)`}, nil
	case EdgeKindCompanion:
		return []string{`MATCH (a:File {path: $src}), (b:File {path: $dst})
			CREATE (a)-[:COMPANION]->(b)`}, nil
	case EdgeKindDefines:
		return []string{`MATCH (a:File {path: $src}), (b:Symbol {id: $dst})
			CREATE (a)-[:DEFINES]->(b)`}, nil
	case EdgeKindBelongs:
		return []string{`MATCH (a:File {path: $src}), (b:Cluster {name: $dst})
			CREATE (a)-[:BELONGS_TO]->(b)`}, nil
	default:
		return nil, fmt.Errorf("kuzu: unsupported edge kind: %s", kind)
	}
}

// ---------- Read operations ----------

// GetFile retrieves a single File node by path.
func (s *KuzuStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	rows, err := s.query(
		"MATCH (f:File {path: $path}) RETURN f.path, f.name, f.language, f.loc",
		map[string]any{"path": path},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file %q", ErrNotFound, path)
	}
	r := rows[0]
	return &FileNode{
		Path:     column[string](r[0]),
		Name:     column[string](r[1]),
		Language: Language(column[string](r[2])),
		LOC:      intColumn(r[3]),
	}, nil
}

// GetSymbol retrieves a single Symbol node by file path and name.
func (s *KuzuStore) GetSymbol(_ context.Context, filePath, name string) (*SymbolNode, error) {
	rows, err := s.query(
		`MATCH (s:Symbol {id: $id})
		 RETURN s.name, s.kind, s.exported, s.file_path, s.start_line, s.end_line`,
		map[string]any{"id": symbolKey(filePath, name)},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: symbol %q in %q", ErrNotFound, name, filePath)
	}
	return rowToSymbol(rows[0]), nil
}

// QuerySymbols returns symbols whose name contains queryStr, ignoring case,
// ordered by file path then name. A limit <= 0 returns all matches.
func (s *KuzuStore) QuerySymbols(_ context.Context, queryStr string, limit int) ([]SymbolNode, error) {
	cypher := `MATCH (s:Symbol) WHERE lower(s.name) CONTAINS lower($q)
		 RETURN s.name, s.kind, s.exported, s.file_path, s.start_line, s.end_line
		 ORDER BY s.file_path, s.name`
	params := map[string]any{"q": queryStr}
	if limit > 0 {
		cypher += " LIMIT $lim"
		params["lim"] = int64(limit)
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]SymbolNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToSymbol(r))
	}
	return out, nil
}

// ---------- Graph traversal ----------

// GetDependencies follows IMPORTS edges from nodeID with one neighbor query
// per visited file.
func (s *KuzuStore) GetDependencies(_ context.Context, nodeID string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	return dependencyChains(nodeID, dir, maxDepth, s.fileNeighbors)
}

// fileNeighbors returns immediate file neighbors along IMPORTS edges.
func (s *KuzuStore) fileNeighbors(path string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionUpstream:
		cypher = "MATCH (a:File {path: $path})-[:IMPORTS]->(b:File) RETURN DISTINCT b.path ORDER BY b.path"
	case DirectionDownstream:
		cypher = "MATCH (a:File)-[:IMPORTS]->(b:File {path: $path}) RETURN DISTINCT a.path ORDER BY a.path"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"path": path})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, column[string](r[0]))
	}
	return out, nil
}

// AssessImpact reports the files that import any of changedFiles, directly
// or transitively.
func (s *KuzuStore) AssessImpact(_ context.Context, changedFiles []string) (*ImpactResult, error) {
	total, err := s.countTable("File")
	if err != nil {
		return nil, err
	}
	return assessImpact(changedFiles, total, s.fileNeighbors)
}

// GetClusters returns all Cluster nodes with their members.
func (s *KuzuStore) GetClusters(_ context.Context) ([]ClusterNode, error) {
	rows, err := s.query(
		"MATCH (c:Cluster) RETURN c.name, c.cohesion_score ORDER BY c.name",
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]ClusterNode, 0, len(rows))
	for _, r := range rows {
		name := column[string](r[0])
		memberRows, err := s.query(
			"MATCH (f:File)-[:BELONGS_TO]->(c:Cluster {name: $name}) RETURN f.path ORDER BY f.path",
			map[string]any{"name": name},
		)
		if err != nil {
			return nil, err
		}
		members := make([]string, 0, len(memberRows))
		for _, mr := range memberRows {
			members = append(members, column[string](mr[0]))
		}
		out = append(out, ClusterNode{
			Name:          name,
			CohesionScore: column[float64](r[1]),
			Members:       members,
		})
	}
	return out, nil
}

// ---------- Edge enumeration ----------

// GetAllEdges returns all edges across all relationship tables.
func (s *KuzuStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	queries := []struct {
		cypher string
		kind   EdgeKind
	}{
		{"MATCH (a:Folder)-[:CONTAINS_FOLDER]->(b:Folder) RETURN a.path, b.path", EdgeKindContains},
		{"MATCH (a:Folder)-[:CONTAINS_FILE]->(b:File) RETURN a.path, b.path", EdgeKindContains},
		{"MATCH (a:File)-[:IMPORTS]->(b:File) RETURN a.path, b.path", EdgeKindImports},
		{"MATCH (a:File)-[:COMPANION]->(b:File) RETURN a.path, b.path", EdgeKindCompanion},
		{"MATCH (a:File)-[:DEFINES]->(b:Symbol) RETURN a.path, b.id", EdgeKindDefines},
		{"MATCH (a:File)-[:BELONGS_TO]->(b:Cluster) RETURN a.path, b.name", EdgeKindBelongs},
	}

	var edges []Edge
	for _, q := range queries {
		rows, err := s.query(q.cypher, nil)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			edges = append(edges, Edge{
				SourceID: column[string](r[0]),
				TargetID: column[string](r[1]),
				Kind:     q.kind,
			})
		}
	}
	return edges, nil
}

// ---------- Stats ----------

// Stats returns counts of all node and edge tables.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	var st GraphStats
	counts := []struct {
		table string
		dst   *int
	}{
		{"Folder", &st.FolderCount},
		{"File", &st.FileCount},
		{"Symbol", &st.SymbolCount},
		{"Cluster", &st.ClusterCount},
	}
	for _, c := range counts {
		n, err := s.countTable(c.table)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	edges, err := s.countEdges()
	if err != nil {
		return nil, err
	}
	st.EdgeCount = edges
	return &st, nil
}

// ---------- Internal helpers ----------

// exec runs a statement whose result rows, if any, are discarded.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	_, err := s.query(cypher, params)
	return err
}

// query runs a Cypher statement and collects all result rows in column
// order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table. table is always
// one of the fixed schema names.
func (s *KuzuStore) countTable(table string) (int, error) {
	rows, err := s.query(fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table), nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return intColumn(rows[0][0]), nil
}

// countEdges returns the total number of edges across all relationship tables.
func (s *KuzuStore) countEdges() (int, error) {
	total := 0
	for _, t := range relTables {
		rows, err := s.query(fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", t), nil)
		if err != nil {
			return 0, err
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			total += intColumn(rows[0][0])
		}
	}
	return total, nil
}

// rowToSymbol converts a 6-column result row into a SymbolNode.
// Column order: name, kind, exported, file_path, start_line, end_line.
func rowToSymbol(r []any) *SymbolNode {
	return &SymbolNode{
		Name:      column[string](r[0]),
		Kind:      SymbolKind(column[string](r[1])),
		Exported:  column[bool](r[2]),
		FilePath:  column[string](r[3]),
		StartLine: intColumn(r[4]),
		EndLine:   intColumn(r[5]),
	}
}

// ---------- Column decoding ----------

// column returns v as T, or the zero value for NULL and mismatched types.
func column[T string | bool | float64](v any) T {
	t, _ := v.(T)
	return t
}

// intColumn decodes an INT64 column.
func intColumn(v any) int {
	n, _ := v.(int64)
	return int(n)
}
