package models

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Column Mismatch Report Usage:

Set GENERATE_COLUMN_REPORT=true and start the server. For every table
backing a model the report lists the columns present in the database
that no struct field maps to, e.g.

=== COLUMN MISMATCH REPORT ===
--- Table: articles ---
Found 1 columns not accounted for in model:
  - legacy_category

=== SUMMARY ===
Total mismatched columns across all tables: 1
*/

// All lists every persisted model, in migration order
func All() []interface{} {
	return []interface{}{
		&Article{},
		&User{},
		&Credential{},
	}
}

// Migrate creates or updates the tables of every model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}

func GenerateModels(db *gorm.DB) {
	if err := db.Exec("SELECT 1").Error; err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)
	db = db.Session(&gorm.Session{
		Logger:                 newLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./generated",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(Article{}, User{}, Credential{})

	fmt.Println("Migrating models...")
	if err := Migrate(db); err != nil {
		fmt.Printf("Error during models migration: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Database migration completed successfully!")

	GenerateColumnMismatchReport(db)

	g.Execute()
	fmt.Println("Model generation complete!")
}

// GenerateColumnMismatchReport prints the database columns that no model field maps to
func GenerateColumnMismatchReport(db *gorm.DB) {
	fmt.Println("=== COLUMN MISMATCH REPORT ===")

	totalMismatches := 0
	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			fmt.Printf("Error parsing model %T: %v\n", model, err)
			continue
		}
		tableName := stmt.Schema.Table
		fmt.Printf("\n--- Table: %s ---\n", tableName)

		dbColumns, err := getTableColumns(db, tableName)
		if err != nil {
			if strings.Contains(err.Error(), "does not exist") {
				fmt.Println("Table does not exist yet (will be created during migration)")
			} else {
				fmt.Printf("Error getting columns for table %s: %v\n", tableName, err)
			}
			continue
		}

		mismatches := findColumnMismatches(dbColumns, getModelFields(model))
		if len(mismatches) > 0 {
			fmt.Printf("Found %d columns not accounted for in model:\n", len(mismatches))
			for _, col := range mismatches {
				fmt.Printf("  - %s\n", col)
			}
			totalMismatches += len(mismatches)
		} else {
			fmt.Println("All columns are accounted for in the model.")
		}
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total mismatched columns across all tables: %d\n", totalMismatches)
}

func getTableColumns(db *gorm.DB, tableName string) ([]string, error) {
	columnTypes, err := db.Migrator().ColumnTypes(tableName)
	if err != nil {
		if !db.Migrator().HasTable(tableName) {
			return nil, fmt.Errorf("table %s does not exist", tableName)
		}
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}

	columns := make([]string, 0, len(columnTypes))
	for _, ct := range columnTypes {
		columns = append(columns, ct.Name())
	}
	return columns, nil
}

// getModelFields reads the column names from the db struct tags
func getModelFields(model interface{}) []string {
	var fields []string
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			continue
		}
		if column := field.Tag.Get("db"); column != "" && column != "-" {
			fields = append(fields, column)
		}
	}
	return fields
}

func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}
	return mismatches
}

// GenerateColumnMismatchReportStandalone generates a report without running migrations
func GenerateColumnMismatchReportStandalone(db *gorm.DB) {
	if err := db.Exec("SELECT 1").Error; err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	GenerateColumnMismatchReport(db)
}
