// Command genxlsx writes sample result workbooks for every exam type, in
// both the vendor raw layout and the processed template layout. Useful
// for exercising the import pipeline by hand.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"examtrack/internal/schema"
)

func main() {
	outDir := "testdata"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Printf("Error creating output dir: %v\n", err)
		os.Exit(1)
	}

	for _, examType := range schema.ExamTypes() {
		def, _ := schema.DefinitionFor(examType)

		rawPath := filepath.Join(outDir, fmt.Sprintf("%s-raw.xlsx", examType))
		if err := writeRaw(def, rawPath); err != nil {
			fmt.Printf("Error writing %s: %v\n", rawPath, err)
			os.Exit(1)
		}
		processedPath := filepath.Join(outDir, fmt.Sprintf("%s-processed.xlsx", examType))
		if err := writeProcessed(def, processedPath); err != nil {
			fmt.Printf("Error writing %s: %v\n", processedPath, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s and %s\n", rawPath, processedPath)
	}
}

var sampleStudents = []struct {
	number, firstName, lastName string
}{
	{"101", "Ayşe", "Yılmaz"},
	{"102", "Mehmet", "Demir"},
	{"103", "Zeynep", "Kaya"},
}

// writeRaw emits the vendor export shape: a title row, lesson band
// headers in row 2 over D/Y/B/N labels in row 3, data from row 4.
func writeRaw(def schema.ExamTypeDefinition, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sonuçlar"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("2025 %s Deneme Sınavı Sonuçları", def.Key))

	f.SetCellValue(sheet, "A2", "Öğr No")
	f.SetCellValue(sheet, "B2", "Adı")
	f.SetCellValue(sheet, "C2", "Soyadı")

	col := 3
	for _, lesson := range def.Lessons {
		f.SetCellValue(sheet, cellRef(col, 2), lesson.Name)
		for i, label := range []string{"D", "Y", "B", "N"} {
			f.SetCellValue(sheet, cellRef(col+i, 3), label)
		}
		col += 4
	}

	for i, s := range sampleStudents {
		row := 4 + i
		f.SetCellValue(sheet, cellRef(0, row), s.number)
		f.SetCellValue(sheet, cellRef(1, row), s.firstName)
		f.SetCellValue(sheet, cellRef(2, row), s.lastName)
		col = 3
		for _, lesson := range def.Lessons {
			correct := lesson.Questions - 2*(i+1)
			wrong := i + 1
			blank := lesson.Questions - correct - wrong
			net := float64(correct) - float64(wrong)/4
			f.SetCellValue(sheet, cellRef(col, row), correct)
			f.SetCellValue(sheet, cellRef(col+1, row), wrong)
			f.SetCellValue(sheet, cellRef(col+2, row), blank)
			f.SetCellValue(sheet, cellRef(col+3, row), net)
			col += 4
		}
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")
	return f.SaveAs(path)
}

// writeProcessed emits the institution template shape: single header row
// with spelled-out column names, data from row 4.
func writeProcessed(def schema.ExamTypeDefinition, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sonuçlar"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s Sonuç Şablonu", def.Key))

	headers := []string{"Öğrenci No", "Adı", "Soyadı"}
	for _, lesson := range def.Lessons {
		headers = append(headers, lesson.Name+" Doğru", lesson.Name+" Yanlış", lesson.Name+" Net")
	}
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i, 2), h)
	}

	for i, s := range sampleStudents {
		row := 4 + i
		f.SetCellValue(sheet, cellRef(0, row), s.number)
		f.SetCellValue(sheet, cellRef(1, row), s.firstName)
		f.SetCellValue(sheet, cellRef(2, row), s.lastName)
		col := 3
		for _, lesson := range def.Lessons {
			correct := lesson.Questions - 2*(i+1)
			wrong := i + 1
			net := float64(correct) - float64(wrong)/4
			f.SetCellValue(sheet, cellRef(col, row), correct)
			f.SetCellValue(sheet, cellRef(col+1, row), wrong)
			f.SetCellValue(sheet, cellRef(col+2, row), net)
			col += 3
		}
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")
	return f.SaveAs(path)
}

func cellRef(col, row int) string {
	name, _ := excelize.ColumnNumberToName(col + 1)
	return fmt.Sprintf("%s%d", name, row)
}
