package views

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"stockdesk/console-service/internal/app/console/entity"
)

// ExportTimeLayout - формат createdAt в выгрузке (ISO, миллисекунды, UTC)
const ExportTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Table - строки выгрузки с фиксированным заголовком
type Table struct {
	Header []string
	Rows   [][]string
}

var (
	CategoryHeader = []string{"id", "name"}
	ProductHeader  = []string{"id", "name", "sku", "category", "costPrice", "sellingPrice", "quantity"}
	MovementHeader = []string{"id", "productName", "quantity", "unitPrice", "totalAmount", "createdAt"}
	CompanyHeader  = []string{"id", "name", "email", "phone", "active"}
)

func CategoryTable(items []entity.Category) Table {
	t := Table{Header: CategoryHeader}
	for _, c := range items {
		t.Rows = append(t.Rows, []string{formatID(c.ID), c.Name})
	}
	return t
}

func ProductTable(items []entity.Product) Table {
	t := Table{Header: ProductHeader}
	for _, p := range items {
		t.Rows = append(t.Rows, []string{
			formatID(p.ID), p.Name, p.SKU, p.Category,
			p.CostPrice.String(), p.SellingPrice.String(), strconv.Itoa(p.Quantity),
		})
	}
	return t
}

func SaleTable(items []entity.Sale) Table {
	t := Table{Header: MovementHeader}
	for _, s := range items {
		t.Rows = append(t.Rows, []string{
			formatID(s.ID), s.ProductName, strconv.Itoa(s.Quantity),
			s.UnitPrice.String(), s.Total().String(), formatTime(s.CreatedAt),
		})
	}
	return t
}

func PurchaseTable(items []entity.Purchase) Table {
	t := Table{Header: MovementHeader}
	for _, p := range items {
		t.Rows = append(t.Rows, []string{
			formatID(p.ID), p.ProductName, strconv.Itoa(p.Quantity),
			p.UnitPrice.String(), p.Total().String(), formatTime(p.CreatedAt),
		})
	}
	return t
}

// CompanyTable не выгружает пароли.
func CompanyTable(items []entity.Company) Table {
	t := Table{Header: CompanyHeader}
	for _, c := range items {
		t.Rows = append(t.Rows, []string{
			formatID(c.ID), c.Name, c.Email, c.Phone, strconv.FormatBool(c.IsActive()),
		})
	}
	return t
}

// ExportCSV: заголовок без кавычек, каждое поле данных в кавычках
// (кавычки внутри удваиваются), строки через "\n".
func ExportCSV(t Table) string {
	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, strings.Join(t.Header, ","))
	for _, row := range t.Rows {
		lines = append(lines, csvLine(row))
	}
	return strings.Join(lines, "\n")
}

func csvLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// ExportXLSX - те же строки одним листом книги Excel.
func ExportXLSX(t Table, sheet string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := append([][]string{t.Header}, t.Rows...)
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportFileName - "<entity>-YYYY-MM-DD.<ext>" по дате UTC.
func ExportFileName(resource, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", resource, now.UTC().Format(dayLayout), ext)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(ExportTimeLayout)
}
