// Package export writes bill lists to spreadsheet files.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/domain/entity"
)

const sheetName = "Notes de frais"

// header row labels, in column order
var columns = []string{"Type", "Nom", "Date", "Montant TTC", "Statut", "Justificatif", "Commentaire", "Email"}

// Column letters
const (
	colAmount = "D"
	firstData = 2
)

// XLSXExporter writes display rows to an Excel workbook
type XLSXExporter struct {
	logger *zap.Logger
}

// NewXLSXExporter creates a new XLSXExporter
func NewXLSXExporter(logger *zap.Logger) *XLSXExporter {
	return &XLSXExporter{logger: logger}
}

// Export writes rows to outputPath and returns the path written
func (e *XLSXExporter) Export(ctx context.Context, rows []entity.DisplayRow, outputPath string) (string, error) {
	file, err := e.build(rows)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := file.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("Bills exported",
		zap.String("output_path", outputPath),
		zap.Int("row_count", len(rows)))
	return outputPath, nil
}

// Write streams the workbook to w
func (e *XLSXExporter) Write(ctx context.Context, rows []entity.DisplayRow, w io.Writer) error {
	file, err := e.build(rows)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *XLSXExporter) build(rows []entity.DisplayRow) (*excelize.File, error) {
	file := excelize.NewFile()

	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := e.writeHeader(file); err != nil {
		file.Close()
		return nil, err
	}

	if err := e.writeRows(file, rows); err != nil {
		file.Close()
		return nil, err
	}

	return file, nil
}

func (e *XLSXExporter) writeHeader(file *excelize.File) error {
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := file.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}
	if err := file.SetCellStyle(sheetName, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	return file.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (e *XLSXExporter) writeRows(file *excelize.File, rows []entity.DisplayRow) error {
	amountStyle, err := file.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}

	for i, r := range rows {
		rowNum := firstData + i

		var amount interface{} = r.Amount.String()
		if r.Amount.Valid() {
			amount = r.Amount.Float64()
		}

		values := []interface{}{r.Type, r.Name, r.Date, amount, r.Status, r.FileName, r.Commentary, r.Email}
		cell := fmt.Sprintf("A%d", rowNum)
		if err := file.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}

		if r.FileURL != "" {
			link := fmt.Sprintf("F%d", rowNum)
			if err := file.SetCellHyperLink(sheetName, link, r.FileURL, "External"); err != nil {
				e.logger.Warn("Failed to link receipt", zap.String("bill_id", r.ID), zap.Error(err))
			}
		}
	}

	if len(rows) == 0 {
		return nil
	}

	first := fmt.Sprintf("%s%d", colAmount, firstData)
	last := fmt.Sprintf("%s%d", colAmount, firstData+len(rows)-1)
	if err := file.SetCellStyle(sheetName, first, last, amountStyle); err != nil {
		return fmt.Errorf("failed to style amounts: %w", err)
	}

	totalRow := firstData + len(rows)
	if err := file.SetCellValue(sheetName, fmt.Sprintf("C%d", totalRow), "Total"); err != nil {
		return fmt.Errorf("failed to write total label: %w", err)
	}
	totalCell := fmt.Sprintf("%s%d", colAmount, totalRow)
	if err := file.SetCellFormula(sheetName, totalCell, fmt.Sprintf("SUM(%s:%s)", first, last)); err != nil {
		return fmt.Errorf("failed to write total: %w", err)
	}
	return file.SetCellStyle(sheetName, totalCell, totalCell, amountStyle)
}
