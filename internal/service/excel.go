package service

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"examtrack/internal/models"
	"examtrack/internal/schema"
)

// ExcelService renders import reports and result templates as workbooks.
type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// GenerateReportWorkbook writes an ImportReport to a styled workbook: one
// row per row error, warnings below, and a summary block.
func (s *ExcelService) GenerateReportWorkbook(report *models.ImportReport, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Import Report"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{"Row Number", "Kind", "Reason", "Detail"}
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFE6E6"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	row := 2
	writeEntry := func(kind string, e models.RowError) {
		values := []interface{}{e.RowNumber, kind, e.Reason, e.Detail}
		for colIdx, value := range values {
			f.SetCellValue(sheetName, fmt.Sprintf("%s%d", getColumnName(colIdx), row), value)
		}
		row++
	}
	for _, e := range report.RowErrors {
		writeEntry("error", e)
	}
	for _, w := range report.RowWarnings {
		writeEntry("warning", w)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 22)
	f.SetColWidth(sheetName, "D", "D", 60)

	// row already points one past the last entry; leave one blank row.
	summaryStartRow := row + 1
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow), "Import Summary")
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+1), "Total Rows:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+1), report.TotalRows)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+2), "Succeeded:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+2), report.Succeeded)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+3), "Failed:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+3), report.Failed)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+4), "Warnings:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+4), len(report.RowWarnings))

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryStartRow), fmt.Sprintf("A%d", summaryStartRow), summaryStyle)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// GenerateTemplate creates a blank processed-template workbook for the
// exam type: title row, a header row naming every column, a note row,
// data from row 4.
func (s *ExcelService) GenerateTemplate(examType schema.ExamType, outputPath string) error {
	def, err := schema.DefinitionFor(examType)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := string(def.Key) + " Sonuçları"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s Sonuç Şablonu", def.Key))

	headers := []string{"Öğrenci No", "Adı", "Soyadı"}
	for _, lesson := range def.Lessons {
		headers = append(headers,
			lesson.Name+" Doğru",
			lesson.Name+" Yanlış",
			lesson.Name+" Boş",
			lesson.Name+" Net",
		)
	}
	for i, header := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s2", getColumnName(i)), header)
	}
	f.SetCellValue(sheetName, "A3", "Veriler 4. satırdan itibaren girilmelidir.")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A2", fmt.Sprintf("%s2", getColumnName(len(headers)-1)), headerStyle)

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "C", 18)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
