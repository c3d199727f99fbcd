// backend-go/cmd/analyze/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/logistiq/caseledger/backend-go/internal/config"
	"github.com/logistiq/caseledger/backend-go/internal/domain"
	"github.com/logistiq/caseledger/backend-go/internal/engine"
	"github.com/logistiq/caseledger/backend-go/internal/export"
	"github.com/logistiq/caseledger/backend-go/internal/ingest"
	"github.com/logistiq/caseledger/backend-go/internal/service"
	"github.com/logistiq/caseledger/backend-go/internal/storage"
	"github.com/logistiq/caseledger/backend-go/pkg/logger"
)

func snapshotDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "snapshot-dir",
		Usage:   "Directory containing case table snapshots (CSV or XLSX)",
		Value:   "./data/uploads",
		EnvVars: []string{"SNAPSHOT_DIR"},
	}
}

func exportDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "export-dir",
		Usage:   "Directory for exported CSV reports",
		Value:   "./data/exports",
		EnvVars: []string{"EXPORT_DIR"},
	}
}

func nowFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "now",
		Usage: "Reference date for elapsed-days (YYYY-MM-DD, default today)",
	}
}

func resolveNow(c *cli.Context) (time.Time, error) {
	raw := c.String("now")
	if raw == "" {
		return time.Now(), nil
	}
	now, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now value %q: %w", raw, err)
	}
	return now, nil
}

func analyze(c *cli.Context) (*engine.Result, error) {
	cfg := config.Load()

	now, err := resolveNow(c)
	if err != nil {
		return nil, err
	}

	params, err := service.EngineParams(cfg.Analysis, now)
	if err != nil {
		return nil, err
	}
	if warehouses := c.String("warehouses"); warehouses != "" {
		params.Warehouses = splitList(warehouses)
	}
	if sites := c.String("sites"); sites != "" {
		params.Sites = splitList(sites)
	}
	if c.IsSet("threshold") {
		params.DeadStockDays = c.Int("threshold")
	}

	eng, err := engine.New(params)
	if err != nil {
		return nil, err
	}

	tables, err := ingest.ReadDir(c.String("snapshot-dir"))
	if err != nil {
		return nil, err
	}

	sources := make([]engine.Source, 0, len(tables))
	for _, table := range tables {
		sources = append(sources, engine.Source{
			Name:   table.Name,
			Header: table.Header,
			Rows:   table.Rows,
		})
	}

	result, err := eng.Run(c.Context, sources...)
	if err != nil {
		return nil, err
	}

	for _, w := range result.Warnings {
		logger.Log.Warn().
			Str("kind", string(w.Kind)).
			Str("source", w.Source).
			Str("case", w.CaseNo).
			Str("column", w.Column).
			Msg(w.Detail)
	}

	return result, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runAction(c *cli.Context) error {
	result, err := analyze(c)
	if err != nil {
		return err
	}

	exportDir := c.String("export-dir")

	var warehouseRows []domain.WarehouseLedgerRow
	for _, rows := range result.WarehouseLedgers {
		warehouseRows = append(warehouseRows, rows...)
	}
	var siteRows []domain.SiteLedgerRow
	for _, rows := range result.SiteLedgers {
		siteRows = append(siteRows, rows...)
	}
	sort.Slice(warehouseRows, func(i, j int) bool {
		if warehouseRows[i].Warehouse != warehouseRows[j].Warehouse {
			return warehouseRows[i].Warehouse < warehouseRows[j].Warehouse
		}
		return warehouseRows[i].Month < warehouseRows[j].Month
	})
	sort.Slice(siteRows, func(i, j int) bool {
		if siteRows[i].Site != siteRows[j].Site {
			return siteRows[i].Site < siteRows[j].Site
		}
		return siteRows[i].Month < siteRows[j].Month
	})

	if err := export.WriteWarehouseLedgers(filepath.Join(exportDir, "warehouse_ledgers.csv"), warehouseRows); err != nil {
		return err
	}
	if err := export.WriteSiteLedgers(filepath.Join(exportDir, "site_ledgers.csv"), siteRows); err != nil {
		return err
	}
	if err := export.WriteCaseReports(filepath.Join(exportDir, "case_reports.csv"), result.Reports); err != nil {
		return err
	}
	if err := export.WriteDeadStock(filepath.Join(exportDir, "dead_stock.csv"), result.DeadStock); err != nil {
		return err
	}

	logger.Log.Info().
		Int("cases", result.TotalCases).
		Int("months", len(result.Months)).
		Int("dead_stock", len(result.DeadStock)).
		Str("export_dir", exportDir).
		Msg("Analysis complete")

	if c.Bool("publish") {
		return publishExports(c.Context, exportDir)
	}
	return nil
}

func deadstockAction(c *cli.Context) error {
	result, err := analyze(c)
	if err != nil {
		return err
	}

	if len(result.DeadStock) == 0 {
		fmt.Println("No dead stock above threshold.")
		return nil
	}

	w := csv.NewWriter(os.Stdout)
	_ = w.Write([]string{"case_no", "warehouse", "last_inbound_at", "elapsed_days", "tier"})
	for _, r := range result.DeadStock {
		_ = w.Write([]string{
			r.CaseNo, r.Warehouse,
			r.LastInboundAt.Format("2006-01-02"),
			strconv.Itoa(r.ElapsedDays), r.Tier,
		})
	}
	w.Flush()
	return w.Error()
}

func leadtimeAction(c *cli.Context) error {
	result, err := analyze(c)
	if err != nil {
		return err
	}

	stats := result.LeadTime
	fmt.Printf("completed cases: %d\n", stats.Count)
	if stats.Count > 0 {
		fmt.Printf("mean lead time:   %.1f days\n", stats.Mean)
		fmt.Printf("median lead time: %.1f days\n", stats.Median)
		fmt.Printf("max lead time:    %d days\n", stats.Max)
	}

	threshold := c.Int("long-lead-days")
	if threshold <= 0 {
		threshold = config.Load().Analysis.LongLeadDays
	}
	long := engine.LongLeadTimeCases(result.Reports, threshold)
	if len(long) == 0 {
		return nil
	}

	fmt.Printf("\ncases at or above %d days:\n", threshold)
	w := csv.NewWriter(os.Stdout)
	_ = w.Write([]string{"case_no", "source", "lead_time_days", "delivered_at"})
	for _, r := range long {
		_ = w.Write([]string{
			r.CaseNo, r.Source,
			strconv.Itoa(*r.LeadTimeDays),
			r.DeliveredAt.Format("2006-01-02"),
		})
	}
	w.Flush()
	return w.Error()
}

func convertAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: convert <file.xlsx> [out.csv]")
	}
	src := c.Args().Get(0)
	dest := c.Args().Get(1)
	if dest == "" {
		dest = strings.TrimSuffix(src, filepath.Ext(src)) + ".csv"
	}
	if err := ingest.ConvertXLSXToCSV(src, dest); err != nil {
		return err
	}
	logger.Log.Info().Str("src", src).Str("dest", dest).Msg("Converted workbook")
	return nil
}

func fetchAction(c *cli.Context) error {
	cfg := config.Load()
	client, err := storage.NewS3Client(c.Context, cfg.Storage)
	if err != nil {
		return err
	}

	prefix := c.String("prefix")
	destDir := c.String("snapshot-dir")

	objects, err := client.ListObjects(c.Context, prefix)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		return fmt.Errorf("no objects found under prefix %q", prefix)
	}

	for _, object := range objects {
		dest := filepath.Join(destDir, filepath.Base(object.Key))
		if err := client.DownloadObject(c.Context, object.Key, dest); err != nil {
			return err
		}
		logger.Log.Info().Str("key", object.Key).Str("dest", dest).Msg("Downloaded snapshot")
	}
	return nil
}

func publishExports(ctx context.Context, exportDir string) error {
	cfg := config.Load()
	client, err := storage.NewS3Client(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(exportDir)
	if err != nil {
		return fmt.Errorf("failed to list export dir %s: %w", exportDir, err)
	}

	stamp := time.Now().Format("20060102")
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		key := filepath.Join("exports", stamp, entry.Name())
		if err := client.UploadFile(ctx, key, filepath.Join(exportDir, entry.Name())); err != nil {
			return err
		}
		logger.Log.Info().Str("key", key).Msg("Published export")
	}
	return nil
}

// seedAction bulk-loads a previously exported case report CSV straight into
// postgres, bypassing the engine. Useful for replaying an old run into a
// fresh database.
func seedAction(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(c.Context); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	path := c.String("file")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if len(header) < 11 {
		return fmt.Errorf("unexpected case report header in %s", path)
	}

	tx, err := db.BeginTx(c.Context, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(c.Context, `DELETE FROM case_reports`); err != nil {
		return fmt.Errorf("failed to clear case reports: %w", err)
	}

	stmt, err := tx.PrepareContext(c.Context, `
		INSERT INTO case_reports (
			case_no, source, quantity, status, last_location, last_class,
			first_event_at, last_warehouse_at, delivered_at, elapsed_days, lead_time_days
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read record from %s: %w", path, err)
		}

		quantity, _ := strconv.Atoi(record[2])
		if quantity < 1 {
			quantity = 1
		}
		if _, err := stmt.ExecContext(c.Context,
			record[0], record[1], quantity, record[3], record[4], record[5],
			nullIfEmptyDate(record[6]), nullIfEmptyDate(record[7]), nullIfEmptyDate(record[8]),
			nullIfEmptyInt(record[9]), nullIfEmptyInt(record[10]),
		); err != nil {
			return fmt.Errorf("failed to insert case %s: %w", record[0], err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	logger.Log.Info().Int("cases", count).Msg("Seeded case reports")
	return nil
}

func nullIfEmptyDate(s string) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func nullIfEmptyInt(s string) sql.NullInt64 {
	if s == "" {
		return sql.NullInt64{}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("No .env file loaded")
	}

	app := &cli.App{
		Name:  "analyze",
		Usage: "Reconstruct case movement from warehouse snapshots",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the full analysis and export CSV reports",
				Flags: []cli.Flag{
					snapshotDirFlag(),
					exportDirFlag(),
					nowFlag(),
					&cli.StringFlag{Name: "warehouses", Usage: "Comma-separated warehouse column names (overrides config)"},
					&cli.StringFlag{Name: "sites", Usage: "Comma-separated site column names (overrides config)"},
					&cli.BoolFlag{Name: "publish", Usage: "Upload exports to object storage"},
				},
				Action: runAction,
			},
			{
				Name:  "deadstock",
				Usage: "Print the dead stock selection as CSV",
				Flags: []cli.Flag{
					snapshotDirFlag(),
					nowFlag(),
					&cli.StringFlag{Name: "warehouses", Usage: "Comma-separated warehouse column names (overrides config)"},
					&cli.StringFlag{Name: "sites", Usage: "Comma-separated site column names (overrides config)"},
					&cli.IntFlag{Name: "threshold", Usage: "Staleness threshold in days", Value: engine.DefaultDeadStockDays},
				},
				Action: deadstockAction,
			},
			{
				Name:  "leadtime",
				Usage: "Print lead time statistics and long lead-time cases",
				Flags: []cli.Flag{
					snapshotDirFlag(),
					nowFlag(),
					&cli.StringFlag{Name: "warehouses", Usage: "Comma-separated warehouse column names (overrides config)"},
					&cli.StringFlag{Name: "sites", Usage: "Comma-separated site column names (overrides config)"},
					&cli.IntFlag{Name: "long-lead-days", Usage: "Threshold for the long lead-time listing"},
				},
				Action: leadtimeAction,
			},
			{
				Name:   "convert",
				Usage:  "Convert an XLSX workbook's first sheet to CSV",
				Action: convertAction,
			},
			{
				Name:  "fetch",
				Usage: "Download snapshots from object storage",
				Flags: []cli.Flag{
					snapshotDirFlag(),
					&cli.StringFlag{Name: "prefix", Usage: "Object key prefix", Value: "snapshots/"},
				},
				Action: fetchAction,
			},
			{
				Name:  "seed",
				Usage: "Load an exported case report CSV into postgres",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db-url",
						Usage:    "Database connection string",
						Required: true,
						EnvVars:  []string{"DATABASE_URL"},
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "Path to case_reports.csv",
						Value: "./data/exports/case_reports.csv",
					},
				},
				Action: seedAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("Command failed")
	}
}
