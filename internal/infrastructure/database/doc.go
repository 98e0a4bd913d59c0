// Package database provides SQLite connectivity for the CamLink store.
//
// The store holds two tables, devices and tasks, written by the device and
// task repositories. Schema changes ship as embedded migration files
// (YYYYMMDD_HHMMSS_name.up.sql / .down.sql) passed in through a Source.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.Source()); err != nil {
//	    return err
//	}
package database
