package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"examtrack/internal/models"
	"examtrack/internal/schema"
)

// processedTYTRows builds a TYT worksheet in the processed-template
// layout: title, one spelled-out header row, a note row, data from row 4.
func processedTYTRows(data ...[]string) [][]string {
	rows := [][]string{
		{"TYT Sonuç Şablonu"},
		{
			"Öğrenci No", "Adı", "Soyadı",
			"Türkçe Doğru", "Türkçe Yanlış", "Türkçe Net",
			"Sosyal Bilimler Doğru", "Sosyal Bilimler Yanlış", "Sosyal Bilimler Net",
			"Temel Matematik Doğru", "Temel Matematik Yanlış", "Temel Matematik Net",
			"Fen Bilimleri Doğru", "Fen Bilimleri Yanlış", "Fen Bilimleri Net",
		},
		{},
	}
	return append(rows, data...)
}

// rawTYTRows builds a TYT worksheet in the vendor raw-export layout:
// title, merged lesson bands over D/Y/B/N sub-columns, data from row 4.
func rawTYTRows(data ...[]string) [][]string {
	rows := [][]string{
		{"2025 TYT Deneme Sınavı Sonuçları"},
		{
			"Öğr No", "Adı", "Soyadı",
			"Türkçe", "", "", "",
			"Sosyal Bilimler", "", "", "",
			"Temel Matematik", "", "", "",
			"Fen Bilimleri", "", "", "",
		},
		{
			"", "", "",
			"D", "Y", "B", "N",
			"D", "Y", "B", "N",
			"D", "Y", "B", "N",
			"D", "Y", "B", "N",
		},
	}
	return append(rows, data...)
}

// writeWorkbook saves rows to a temp workbook and returns its path.
func writeWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, cells := range rows {
		for c, v := range cells {
			if v == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, name, v))
		}
	}
	path := filepath.Join(t.TempDir(), "import.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

type fakeRoster struct {
	students []models.Student
	err      error
}

func (f *fakeRoster) FindByNumber(_ context.Context, schoolID int, classID *int, number string) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.students {
		s := f.students[i]
		if s.SchoolID == schoolID && s.StudentNumber == number && inScope(s, classID) {
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeRoster) FindByName(_ context.Context, schoolID int, classID *int, name string) ([]models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Student
	for _, s := range f.students {
		if s.SchoolID == schoolID && s.NormalizedName == name && inScope(s, classID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func inScope(s models.Student, classID *int) bool {
	return classID == nil || s.ClassID == *classID
}

type fakeResults struct {
	mu        sync.Mutex
	rows      map[string]models.ExamResult
	commits   int
	commitErr error

	// existsDelay widens the window between the duplicate check and the
	// commit for concurrency tests.
	existsDelay time.Duration
}

func newFakeResults() *fakeResults {
	return &fakeResults{rows: make(map[string]models.ExamResult)}
}

func resultKey(schoolID int, examType schema.ExamType, examDate time.Time, studentID int) string {
	return fmt.Sprintf("%d/%s/%s/%d", schoolID, examType, examDate.Format("2006-01-02"), studentID)
}

func (f *fakeResults) ExistsResult(_ context.Context, schoolID int, examType schema.ExamType, examDate time.Time, studentID int) (bool, error) {
	if f.existsDelay > 0 {
		time.Sleep(f.existsDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[resultKey(schoolID, examType, examDate, studentID)]
	return ok, nil
}

func (f *fakeResults) CommitBatch(_ context.Context, results []models.ExamResult, overwrite bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		return f.commitErr
	}
	for _, r := range results {
		f.rows[resultKey(r.SchoolID, r.ExamType, r.ExamDate, r.StudentID)] = r
	}
	f.commits++
	return nil
}

func (f *fakeResults) result(schoolID int, examType schema.ExamType, examDate time.Time, studentID int) (models.ExamResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[resultKey(schoolID, examType, examDate, studentID)]
	return r, ok
}
