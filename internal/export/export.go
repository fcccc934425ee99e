// Package export renders product catalogs and sales reports as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"go-sales-agent/internal/models"
	"go-sales-agent/internal/reports"
)

var productHeader = []string{"Brand", "Item Code", "Price"}

// ProductsCSV writes the catalog as "Brand,Item Code,Price" rows.
func ProductsCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(productHeader); err != nil {
		return err
	}
	for _, p := range products {
		if err := cw.Write([]string{p.Brand, p.ItemCode, p.Price.StringFixed(2)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ProductsXLSX writes the catalog as a single-sheet workbook.
func ProductsXLSX(w io.Writer, products []models.Product) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Products"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	rows := make([][]any, 0, len(products)+1)
	rows = append(rows, []any{"Brand", "Item Code", "Model Number", "Price"})
	for _, p := range products {
		rows = append(rows, []any{p.Brand, p.ItemCode, p.ModelNumber, p.Price.InexactFloat64()})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

// SalesReportXLSX writes an admin report: a summary sheet with the per-salesman
// table and top brands, and a sheet listing every sale of the period.
func SalesReportXLSX(w io.Writer, report reports.AdminReport, sales []models.Sale) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const summary, detail = "Summary", "Sales"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return err
	}
	if _, err := f.NewSheet(detail); err != nil {
		return err
	}

	rows := [][]any{
		{"Period", report.Period},
		{"View", string(report.View)},
		{"Total Sales", report.TotalSales.InexactFloat64()},
		{"Transactions", report.TransactionCount},
	}
	if report.TopPerformer != nil {
		rows = append(rows, []any{"Top Performer", fmt.Sprintf("%s (%s)", report.TopPerformer.Name, report.TopPerformer.SalesmanID)})
	}
	rows = append(rows, nil, []any{"Salesman", "Salesman ID", "Transactions", "Total Sales"})
	for _, s := range report.Salesmen {
		rows = append(rows, []any{s.Name, s.SalesmanID, s.TransactionCount, s.TotalSales.InexactFloat64()})
	}
	rows = append(rows, nil, []any{"Brand", "Quantity", "Total"})
	for _, b := range report.TopBrands {
		rows = append(rows, []any{b.Brand, b.Quantity, b.Total.InexactFloat64()})
	}
	if err := writeRows(f, summary, rows); err != nil {
		return err
	}

	lines := [][]any{{"Date", "Salesman ID", "Salesman", "Brand", "Item Code", "Quantity", "Price", "Total"}}
	for _, s := range sales {
		lines = append(lines, []any{
			s.Date, s.SalesmanID, s.SalesmanName, s.Brand, s.ItemCode, s.Quantity,
			s.Price.InexactFloat64(), reports.EffectiveTotal(s).InexactFloat64(),
		})
	}
	if err := writeRows(f, detail, lines); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
