// Package regiondb stores the region tables of stitched ZMWs in a SQLite
// database, so that they can be queried without re-reading the BAM files.
package regiondb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/googlegenomics/zmw/internal/genomics"
	"github.com/googlegenomics/zmw/internal/virtual"
	_ "modernc.org/sqlite"
)

// schema.sql creates the zmws and regions tables if they do not exist.
//
//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a ZMW is not in the database.
var ErrNotFound = errors.New("ZMW not found")

// DB is a region database.
type DB struct {
	*sql.DB
}

// ZMW is the summary row stored for each stitched ZMW.
type ZMW struct {
	ReadGroup  string
	HoleNumber int32
	Name       string
	QueryStart int32
	QueryEnd   int32
	Length     int
	// ReadAccuracy and ZMWType are only valid when their Has fields are set.
	ReadAccuracy    float32
	HasReadAccuracy bool
	ZMWType         genomics.ZMWType
	HasZMWType      bool
}

// Open opens (creating if necessary) the database at path.  ":memory:" opens
// a private in-memory database.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %v", path, err)
	}
	// A single connection keeps an in-memory database alive and serializes
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %v", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %v", err)
	}
	return &DB{db}, nil
}

// Insert stores r and its region table, replacing any earlier entry for the
// same ZMW.
func (db *DB) Insert(ctx context.Context, r *virtual.Record) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %v", err)
	}
	defer tx.Rollback()

	var accuracy, zmwType interface{}
	if v, ok := r.ReadAccuracy(); ok {
		accuracy = v
	}
	if v, ok := r.ScrapZMWType(); ok {
		zmwType = string(rune(v))
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM zmws WHERE read_group = ? AND hole_number = ?", r.ReadGroup(), r.HoleNumber()); err != nil {
		return fmt.Errorf("deleting ZMW %d: %v", r.HoleNumber(), err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO zmws (read_group, hole_number, read_name, query_start, query_end, length, read_accuracy, zmw_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ReadGroup(), r.HoleNumber(), r.Name(), r.QueryStart(), r.QueryEnd(), len(r.Sequence()), accuracy, zmwType); err != nil {
		return fmt.Errorf("inserting ZMW %d: %v", r.HoleNumber(), err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO regions (read_group, hole_number, region_type, position, region_start, region_end, context, barcode_left, barcode_right)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing region insert: %v", err)
	}
	defer stmt.Close()

	for _, t := range r.RegionTypes() {
		for i, region := range r.Regions(t) {
			if _, err := stmt.ExecContext(ctx, r.ReadGroup(), r.HoleNumber(), string(rune(t)), i,
				region.Start, region.End, int(region.Context), region.BarcodeLeft, region.BarcodeRight); err != nil {
				return fmt.Errorf("inserting region %v of ZMW %d: %v", region, r.HoleNumber(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing ZMW %d: %v", r.HoleNumber(), err)
	}
	return nil
}

// ZMW returns the stored summary of a ZMW.
func (db *DB) ZMW(ctx context.Context, readGroup string, holeNumber int32) (*ZMW, error) {
	z := ZMW{ReadGroup: readGroup, HoleNumber: holeNumber}
	var (
		accuracy sql.NullFloat64
		zmwType  sql.NullString
	)
	err := db.QueryRowContext(ctx, `
		SELECT read_name, query_start, query_end, length, read_accuracy, zmw_type
		FROM zmws WHERE read_group = ? AND hole_number = ?
	`, readGroup, holeNumber).Scan(&z.Name, &z.QueryStart, &z.QueryEnd, &z.Length, &accuracy, &zmwType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%d", ErrNotFound, readGroup, holeNumber)
	} else if err != nil {
		return nil, fmt.Errorf("querying ZMW %d: %v", holeNumber, err)
	}

	if accuracy.Valid {
		z.ReadAccuracy, z.HasReadAccuracy = float32(accuracy.Float64), true
	}
	if zmwType.Valid && len(zmwType.String) == 1 {
		t, err := genomics.ParseZMWType(zmwType.String[0])
		if err != nil {
			return nil, fmt.Errorf("reading ZMW %d: %v", holeNumber, err)
		}
		z.ZMWType, z.HasZMWType = t, true
	}
	return &z, nil
}

// Regions returns the region table of a ZMW.
func (db *DB) Regions(ctx context.Context, readGroup string, holeNumber int32) (map[genomics.RegionType][]genomics.Region, error) {
	if _, err := db.ZMW(ctx, readGroup, holeNumber); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT region_type, region_start, region_end, context, barcode_left, barcode_right
		FROM regions WHERE read_group = ? AND hole_number = ?
		ORDER BY region_type, position
	`, readGroup, holeNumber)
	if err != nil {
		return nil, fmt.Errorf("querying regions of ZMW %d: %v", holeNumber, err)
	}
	defer rows.Close()

	regions := make(map[genomics.RegionType][]genomics.Region)
	for rows.Next() {
		var (
			code   string
			region genomics.Region
			cx     int
		)
		if err := rows.Scan(&code, &region.Start, &region.End, &cx, &region.BarcodeLeft, &region.BarcodeRight); err != nil {
			return nil, fmt.Errorf("reading regions of ZMW %d: %v", holeNumber, err)
		}
		if len(code) != 1 {
			return nil, fmt.Errorf("reading regions of ZMW %d: invalid region type %q", holeNumber, code)
		}
		t, err := genomics.ParseRegionType(code[0])
		if err != nil {
			return nil, fmt.Errorf("reading regions of ZMW %d: %v", holeNumber, err)
		}
		region.Type, region.Context = t, genomics.LocalContextFlags(cx)
		regions[t] = append(regions[t], region)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading regions of ZMW %d: %v", holeNumber, err)
	}
	return regions, nil
}

// HoleNumbers returns the hole numbers stored for a read group, in ascending
// order.
func (db *DB) HoleNumbers(ctx context.Context, readGroup string) ([]int32, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT hole_number FROM zmws WHERE read_group = ? ORDER BY hole_number", readGroup)
	if err != nil {
		return nil, fmt.Errorf("querying hole numbers: %v", err)
	}
	defer rows.Close()

	var holes []int32
	for rows.Next() {
		var hole int32
		if err := rows.Scan(&hole); err != nil {
			return nil, fmt.Errorf("reading hole numbers: %v", err)
		}
		holes = append(holes, hole)
	}
	return holes, rows.Err()
}
