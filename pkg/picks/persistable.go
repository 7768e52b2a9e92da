package picks

import (
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/aftr/aftr/internal/logger"
	_ "modernc.org/sqlite"
)

var (
	db     *sql.DB
	dbPath string
	dbMu   sync.Mutex
)

// Persistable is implemented by objects stored through the struct-tag
// mapper. Column layout comes from `column`, `dbtype`, `primary` and
// `index` tags on exported fields; fields without a dbtype tag are not
// persisted.
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]any
	BeforeSave() error
	AfterSave() error
}

// OpenDatabase opens (or creates) the sqlite database at path and
// ensures the schema exists. Safe to call more than once with the same
// path.
func OpenDatabase(path string) error {
	dbMu.Lock()
	if db != nil && dbPath == path {
		dbMu.Unlock()
		return nil
	}
	if db != nil {
		db.Close()
		db = nil
	}

	d, err := sql.Open("sqlite", path)
	if err != nil {
		dbMu.Unlock()
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := d.Ping(); err != nil {
		d.Close()
		dbMu.Unlock()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	db = d
	dbPath = path
	dbMu.Unlock()
	logger.Info("Database initialized", path)

	if err := CreateTable(&Fixture{}); err != nil {
		return err
	}
	return CreateTable(&Pick{})
}

// CloseDatabase closes the database connection if one is open.
func CloseDatabase() error {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	dbPath = ""
	return err
}

func getDB() (*sql.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db == nil {
		return nil, fmt.Errorf("database not opened, call OpenDatabase first")
	}
	return db, nil
}

// columnInfo is one persisted field resolved from struct tags.
type columnInfo struct {
	name     string
	dbType   string
	primary  bool
	indexed  bool
	fieldIdx int
}

// tableColumns walks the struct tags of obj and returns its persisted
// columns in declaration order.
func tableColumns(obj any) []columnInfo {
	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var cols []columnInfo
	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() {
			continue
		}
		dbType := field.Tag.Get("dbtype")
		if dbType == "" {
			continue
		}
		name := field.Tag.Get("column")
		if name == "" {
			name = strings.ToLower(field.Name)
		}
		cols = append(cols, columnInfo{
			name:     name,
			dbType:   dbType,
			primary:  field.Tag.Get("primary") == "true",
			indexed:  field.Tag.Get("index") == "true",
			fieldIdx: i,
		})
	}
	return cols
}

func columnValues(obj any, cols []columnInfo) []any {
	objValue := reflect.ValueOf(obj)
	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
	}
	values := make([]any, len(cols))
	for i, c := range cols {
		values[i] = objValue.Field(c.fieldIdx).Interface()
	}
	return values
}

func scanTargets(obj any, cols []columnInfo) []any {
	objValue := reflect.ValueOf(obj)
	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
	}
	targets := make([]any, len(cols))
	for i, c := range cols {
		targets[i] = objValue.Field(c.fieldIdx).Addr().Interface()
	}
	return targets
}

// CreateTable creates the table and indexes for obj if they do not exist.
func CreateTable(obj Persistable) error {
	d, err := getDB()
	if err != nil {
		return err
	}

	tableName := obj.GetTableName()
	cols := tableColumns(obj)

	var defs []string
	var pks []string
	for _, c := range cols {
		defs = append(defs, fmt.Sprintf("%s %s", c.name, c.dbType))
		if c.primary {
			pks = append(pks, c.name)
		}
	}
	if len(pks) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(defs, ", "))
	logger.Debug("Creating table with SQL", createSQL)
	if _, err := d.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	for _, c := range cols {
		if !c.indexed {
			continue
		}
		query := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)",
			tableName, c.name, tableName, c.name)
		if _, err := d.Exec(query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

// Save upserts obj keyed on its primary key columns, running the save
// hooks around the write.
func Save(obj Persistable) error {
	d, err := getDB()
	if err != nil {
		return err
	}
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}

	query, values := upsertSQL(obj)
	logger.Debug("Upsert SQL", query)
	if _, err := d.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to save into %s: %w", obj.GetTableName(), err)
	}

	if err := obj.AfterSave(); err != nil {
		return fmt.Errorf("after save hook failed: %w", err)
	}
	return nil
}

// BulkSave upserts all objects inside a single transaction.
func BulkSave(objects []Persistable) error {
	d, err := getDB()
	if err != nil {
		return err
	}

	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, obj := range objects {
		if err := obj.BeforeSave(); err != nil {
			return fmt.Errorf("before save hook failed: %w", err)
		}
		query, values := upsertSQL(obj)
		if _, err := tx.Exec(query, values...); err != nil {
			return fmt.Errorf("failed to save into %s: %w", obj.GetTableName(), err)
		}
		if err := obj.AfterSave(); err != nil {
			return fmt.Errorf("after save hook failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func upsertSQL(obj Persistable) (string, []any) {
	cols := tableColumns(obj)
	values := columnValues(obj, cols)

	var names, placeholders, pks, sets []string
	for _, c := range cols {
		names = append(names, c.name)
		placeholders = append(placeholders, "?")
		if c.primary {
			pks = append(pks, c.name)
		} else {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c.name, c.name))
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		obj.GetTableName(),
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(pks, ", "),
		strings.Join(sets, ", "))
	return query, values
}

// Exists reports whether a row with obj's primary key is present.
func Exists(obj Persistable) (bool, error) {
	d, err := getDB()
	if err != nil {
		return false, err
	}

	whereClause, values := buildWhereClause(obj.GetPrimaryKey())
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", obj.GetTableName(), whereClause)

	var count int
	if err := d.QueryRow(query, values...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", obj.GetTableName(), err)
	}
	return count > 0, nil
}

// Load populates obj from the row matching its primary key. Returns
// sql.ErrNoRows when no such row exists.
func Load(obj Persistable) error {
	d, err := getDB()
	if err != nil {
		return err
	}

	cols := tableColumns(obj)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		strings.Join(names, ", "), obj.GetTableName(), whereClause)

	row := d.QueryRow(query, values...)
	if err := row.Scan(scanTargets(obj, cols)...); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to scan row from %s: %w", obj.GetTableName(), err)
	}
	return nil
}

// FindWhere returns all rows of T matching the WHERE predicate. The clause
// holds the predicate only; row order is unspecified and callers needing
// one sort the result themselves.
func FindWhere[T any, PT interface {
	Persistable
	*T
}](whereClause string, args ...any) ([]*T, error) {
	d, err := getDB()
	if err != nil {
		return nil, err
	}

	var proto T
	tableName := PT(&proto).GetTableName()
	cols := tableColumns(&proto)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(names, ", "), tableName)
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	logger.Debug("FindWhere SQL", query)

	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	var results []*T
	for rows.Next() {
		obj := new(T)
		if err := rows.Scan(scanTargets(obj, cols)...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", tableName, err)
		}
		results = append(results, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", tableName, err)
	}
	return results, nil
}

// FindAll returns every row of T.
func FindAll[T any, PT interface {
	Persistable
	*T
}]() ([]*T, error) {
	return FindWhere[T, PT]("")
}

func buildWhereClause(primaryKey map[string]any) (string, []any) {
	keys := make([]string, 0, len(primaryKey))
	for column := range primaryKey {
		keys = append(keys, column)
	}
	// Map iteration order is random; keep the clause stable.
	sort.Strings(keys)

	var conditions []string
	var values []any
	for _, column := range keys {
		conditions = append(conditions, fmt.Sprintf("%s = ?", column))
		values = append(values, primaryKey[column])
	}
	return strings.Join(conditions, " AND "), values
}
