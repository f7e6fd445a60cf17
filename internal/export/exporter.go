package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/warungops/warungops/internal/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// Exporter writes analytics snapshots as parquet, either to the local
// filesystem or to S3, for downstream BI tooling. Files are partitioned by
// store and export date.
type Exporter struct {
	cfg     models.ExportConfig
	factory CloudWriterFactory
}

func NewExporter(cfg models.ExportConfig) (*Exporter, error) {
	e := &Exporter{cfg: cfg}
	if cfg.Destination != "local" {
		switch cfg.CloudStorage.Provider {
		case "s3":
			factory, err := NewS3WriterFactory(cfg.CloudStorage.Region)
			if err != nil {
				return nil, err
			}
			e.factory = factory
		default:
			return nil, fmt.Errorf("unsupported cloud storage provider: %q", cfg.CloudStorage.Provider)
		}
	}
	return e, nil
}

type dailyRow struct {
	StoreID       string `parquet:"name=store_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Date          string `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	OrderCount    int32  `parquet:"name=order_count, type=INT32"`
	Revenue       int64  `parquet:"name=revenue, type=INT64"`
	AvgOrderValue int64  `parquet:"name=avg_order_value, type=INT64"`
	ItemsSold     int32  `parquet:"name=items_sold, type=INT32"`
}

type itemRow struct {
	StoreID      string  `parquet:"name=store_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ItemID       string  `parquet:"name=item_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name         string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Category     string  `parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8"`
	UnitPrice    int64   `parquet:"name=unit_price, type=INT64"`
	QuantitySold int32   `parquet:"name=quantity_sold, type=INT32"`
	Revenue      int64   `parquet:"name=revenue, type=INT64"`
	OrderCount   int32   `parquet:"name=order_count, type=INT32"`
	AvgPerOrder  float64 `parquet:"name=avg_per_order, type=DOUBLE"`
}

func (e *Exporter) WriteDailyAggregates(storeID string, daily []models.DailyAggregate) error {
	fw, err := e.newFile(storeID, "daily")
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(dailyRow), 4)
	if err != nil {
		fw.Close()
		return fmt.Errorf("create parquet writer: %w", err)
	}
	for _, agg := range daily {
		row := dailyRow{
			StoreID:       storeID,
			Date:          agg.Date.Format("2006-01-02"),
			OrderCount:    int32(agg.OrderCount),
			Revenue:       agg.Revenue,
			AvgOrderValue: agg.AvgOrderValue,
			ItemsSold:     int32(agg.ItemsSold),
		}
		if err := pw.Write(row); err != nil {
			fw.Close()
			return fmt.Errorf("write daily row: %w", err)
		}
	}
	return e.finish(pw, fw, "daily", len(daily))
}

func (e *Exporter) WriteItemAggregates(storeID string, items []models.MenuItemAggregate) error {
	fw, err := e.newFile(storeID, "items")
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(itemRow), 4)
	if err != nil {
		fw.Close()
		return fmt.Errorf("create parquet writer: %w", err)
	}
	for _, agg := range items {
		row := itemRow{
			StoreID:      storeID,
			ItemID:       agg.ItemID,
			Name:         agg.Name,
			Category:     agg.Category,
			UnitPrice:    agg.UnitPrice,
			QuantitySold: int32(agg.QuantitySold),
			Revenue:      agg.Revenue,
			OrderCount:   int32(agg.OrderCount),
			AvgPerOrder:  agg.AvgPerOrder,
		}
		if err := pw.Write(row); err != nil {
			fw.Close()
			return fmt.Errorf("write item row: %w", err)
		}
	}
	return e.finish(pw, fw, "items", len(items))
}

// newFile opens the destination file for one dataset, creating the
// store/date partition directories for local output.
func (e *Exporter) newFile(storeID, dataset string) (source.ParquetFile, error) {
	now := time.Now()
	partition := filepath.Join(
		e.cfg.OutputFolder,
		fmt.Sprintf("store_id=%s", storeID),
		fmt.Sprintf("year=%04d", now.Year()),
		fmt.Sprintf("month=%02d", now.Month()),
		fmt.Sprintf("day=%02d", now.Day()),
		dataset+".parquet",
	)

	if e.factory != nil {
		cw, err := e.factory.NewWriter(e.cfg.CloudStorage.BucketName, partition)
		if err != nil {
			return nil, fmt.Errorf("create cloud writer: %w", err)
		}
		return newCloudParquetFile(cw), nil
	}

	fullPath := filepath.Join(e.cfg.OutputPath, partition)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	fw, err := local.NewLocalFileWriter(fullPath)
	if err != nil {
		return nil, fmt.Errorf("create local file writer: %w", err)
	}
	return fw, nil
}

func (e *Exporter) finish(pw *writer.ParquetWriter, fw source.ParquetFile, dataset string, rows int) error {
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("finalize parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close %s export: %w", dataset, err)
	}
	log.Info().Str("dataset", dataset).Int("rows", rows).Msg("export written")
	return nil
}
