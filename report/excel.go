package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Comissões"

var headers = []string{
	"Funcionário", "Nome", "Função", "Modelo", "Entregas", "Valor Entregue",
	"Ocorrências", "Faixa", "Percentual", "Comissão", "Erro",
}

// WriteExcel renders r as an .xlsx workbook: a header row, one row per
// employee and a totals row.
func WriteExcel(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return err
	}

	for i, h := range headers {
		if err := f.SetCellValue(sheetName, cellName(i+1, 1), h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", cellName(len(headers), 1), headerStyle); err != nil {
		return err
	}

	for i, row := range r.Rows {
		rowNum := i + 2
		values := []any{string(row.Employee.ID), row.Employee.Name, string(row.Employee.Role)}
		if res := row.Result; res != nil {
			values = append(values,
				string(res.Model),
				res.DeliveryCount,
				res.TotalValue.InexactFloat64(),
				res.OccurrenceCount,
				string(res.Tier),
				res.Percentage.InexactFloat64(),
				res.Amount.InexactFloat64(),
				"",
			)
		} else {
			values = append(values, "", "", "", "", "", "", "", row.Error)
		}
		if err := f.SetSheetRow(sheetName, cellName(1, rowNum), &values); err != nil {
			return err
		}
	}

	totalRow := len(r.Rows) + 2
	totals := []any{"TOTAL", fmt.Sprintf("%d com comissão", r.Summary.Count), "", "", "",
		r.Summary.TotalValue.InexactFloat64(), "", "", "", r.Summary.TotalAmount.InexactFloat64()}
	if err := f.SetSheetRow(sheetName, cellName(1, totalRow), &totals); err != nil {
		return err
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
	}); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "A", "K", 15); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
