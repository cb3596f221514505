package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examtrack/internal/models"
	"examtrack/internal/schema"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func importParams() ImportParams {
	return ImportParams{
		SchoolID: 1,
		ExamType: schema.ExamTypeTYT,
		ExamDate: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestImportFileProcessedTYT(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{
		{ID: 7, SchoolID: 1, StudentNumber: "100", FirstName: "Ali", LastName: "Veli", NormalizedName: "ali veli"},
	}}
	results := newFakeResults()
	svc := NewImportService(roster, results, newTestLogger())

	path := writeWorkbook(t, processedTYTRows(
		[]string{"100", "Ali", "Veli", "30", "8", "", "", "", "", "25", "3", ""},
		[]string{"999", "Kimse", "Yok", "10", "2", "", "", "", "", "5", "1", ""},
	))
	p := importParams()

	report, err := svc.ImportFile(context.Background(), path, p)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.RowErrors, 1)
	assert.Equal(t, 5, report.RowErrors[0].RowNumber)
	assert.Equal(t, models.ReasonResolverNotFound, report.RowErrors[0].Reason)

	stored, ok := results.result(1, schema.ExamTypeTYT, p.ExamDate, 7)
	require.True(t, ok)
	assert.Equal(t, "52.25", stored.TotalNet.String())
	require.Len(t, stored.LessonScores, 4)

	byLesson := make(map[string]models.LessonScore)
	for _, ls := range stored.LessonScores {
		byLesson[ls.LessonName] = ls
	}
	assert.Equal(t, "28", byLesson["Türkçe"].Net.String())
	assert.Equal(t, "24.25", byLesson["Temel Matematik"].Net.String())
	assert.Equal(t, "0", byLesson["Sosyal Bilimler"].Net.String())
	assert.Equal(t, 1, results.commits)
}

func TestImportFileDuplicateSitting(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{
		{ID: 7, SchoolID: 1, StudentNumber: "100", NormalizedName: "ali veli"},
	}}
	results := newFakeResults()
	svc := NewImportService(roster, results, newTestLogger())

	path := writeWorkbook(t, processedTYTRows(
		[]string{"100", "Ali", "Veli", "30", "8", "", "15", "2", "", "25", "3", "", "10", "4", ""},
	))
	p := importParams()

	_, err := svc.ImportFile(context.Background(), path, p)
	require.NoError(t, err)

	report, err := svc.ImportFile(context.Background(), path, p)
	assert.ErrorIs(t, err, ErrDuplicateImport)
	assert.Nil(t, report)
	assert.Equal(t, 1, results.commits)

	// A different exam date is a different sitting.
	p.ExamDate = p.ExamDate.AddDate(0, 1, 0)
	_, err = svc.ImportFile(context.Background(), path, p)
	require.NoError(t, err)
	assert.Equal(t, 2, results.commits)
}

func TestImportFileConcurrentSameSitting(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{
		{ID: 7, SchoolID: 1, StudentNumber: "100", NormalizedName: "ali veli"},
	}}
	results := newFakeResults()
	results.existsDelay = 50 * time.Millisecond
	svc := NewImportService(roster, results, newTestLogger())

	path := writeWorkbook(t, processedTYTRows(
		[]string{"100", "Ali", "Veli", "30", "8", "", "", "", "", "25", "3", ""},
	))
	p := importParams()

	// Two imports of the same sitting race through the duplicate check;
	// the sitting lock must let exactly one commit.
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.ImportFile(context.Background(), path, p)
			errs <- err
		}()
	}

	var committed, duplicates int
	for i := 0; i < 2; i++ {
		switch err := <-errs; {
		case err == nil:
			committed++
		case errors.Is(err, ErrDuplicateImport):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, committed)
	assert.Equal(t, 1, duplicates)
	assert.Equal(t, 1, results.commits)
}

func TestImportFileOverwrite(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{
		{ID: 7, SchoolID: 1, StudentNumber: "100", NormalizedName: "ali veli"},
	}}
	results := newFakeResults()
	svc := NewImportService(roster, results, newTestLogger())
	p := importParams()

	// Prior sitting rows: one for the re-imported student, one for another.
	seed := []models.ExamResult{
		{SchoolID: 1, StudentID: 7, ExamType: schema.ExamTypeTYT, ExamDate: p.ExamDate, TotalNet: dec("10")},
		{SchoolID: 1, StudentID: 55, ExamType: schema.ExamTypeTYT, ExamDate: p.ExamDate, TotalNet: dec("80")},
	}
	require.NoError(t, results.CommitBatch(context.Background(), seed, false))

	path := writeWorkbook(t, processedTYTRows(
		[]string{"100", "Ali", "Veli", "30", "8", "", "", "", "", "25", "3", ""},
	))
	p.Overwrite = true

	report, err := svc.ImportFile(context.Background(), path, p)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)

	stored, ok := results.result(1, schema.ExamTypeTYT, p.ExamDate, 7)
	require.True(t, ok)
	assert.Equal(t, "52.25", stored.TotalNet.String())

	// Unrelated rows of the sitting stay put.
	other, ok := results.result(1, schema.ExamTypeTYT, p.ExamDate, 55)
	require.True(t, ok)
	assert.Equal(t, "80", other.TotalNet.String())
}

func TestImportFileRawMatchesProcessed(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{
		{ID: 7, SchoolID: 1, StudentNumber: "100", NormalizedName: "ali veli"},
	}}
	p := importParams()

	rawResults := newFakeResults()
	svc := NewImportService(roster, rawResults, newTestLogger())
	rawPath := writeWorkbook(t, rawTYTRows(
		[]string{"100", "Ali", "Veli", "30", "8", "2", "28", "15", "2", "3", "14.5", "25", "3", "12", "24.25", "10", "4", "6", "9"},
	))
	_, err := svc.ImportFile(context.Background(), rawPath, p)
	require.NoError(t, err)

	procResults := newFakeResults()
	svc = NewImportService(roster, procResults, newTestLogger())
	procPath := writeWorkbook(t, processedTYTRows(
		[]string{"100", "Ali", "Veli", "30", "8", "28", "15", "2", "14.5", "25", "3", "24.25", "10", "4", "9"},
	))
	_, err = svc.ImportFile(context.Background(), procPath, p)
	require.NoError(t, err)

	fromRaw, ok := rawResults.result(1, schema.ExamTypeTYT, p.ExamDate, 7)
	require.True(t, ok)
	fromProc, ok := procResults.result(1, schema.ExamTypeTYT, p.ExamDate, 7)
	require.True(t, ok)

	assert.True(t, fromRaw.TotalNet.Equal(fromProc.TotalNet),
		"raw %s vs processed %s", fromRaw.TotalNet, fromProc.TotalNet)
	assert.Equal(t, "75.75", fromRaw.TotalNet.String())
}

func TestImportFileTemplateMismatch(t *testing.T) {
	svc := NewImportService(&fakeRoster{}, newFakeResults(), newTestLogger())

	rows := [][]string{
		{"Tamamen Alakasız Bir Tablo"},
		{"Sütun A", "Sütun B", "Sütun C"},
	}
	report, err := svc.ImportFile(context.Background(), writeWorkbook(t, rows), importParams())
	assert.Nil(t, report)

	var mismatch *TemplateMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, schema.ExamTypeTYT, mismatch.ExamType)
	assert.NotEmpty(t, mismatch.MissingRoles)
}

func TestImportFileUnknownExamType(t *testing.T) {
	svc := NewImportService(&fakeRoster{}, newFakeResults(), newTestLogger())

	p := importParams()
	p.ExamType = "YKS"
	report, err := svc.ImportFile(context.Background(), "irrelevant.xlsx", p)
	assert.Nil(t, report)

	var unknown *schema.UnknownExamTypeError
	require.True(t, errors.As(err, &unknown))
}

func TestImportFileUnreadable(t *testing.T) {
	svc := NewImportService(&fakeRoster{}, newFakeResults(), newTestLogger())

	path := filepath.Join(t.TempDir(), "junk.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("this is not a workbook"), 0o644))

	report, err := svc.ImportFile(context.Background(), path, importParams())
	assert.Nil(t, report)

	var unreadable *UnreadableFileError
	require.True(t, errors.As(err, &unreadable))
	assert.Equal(t, path, unreadable.Path)
}

func TestImportFileRosterFault(t *testing.T) {
	results := newFakeResults()
	storeErr := errors.New("connection reset")
	svc := NewImportService(&fakeRoster{err: storeErr}, results, newTestLogger())

	// A roster outage must abort the file, not commit the rows that
	// resolved before it.
	path := writeWorkbook(t, processedTYTRows(
		[]string{"100", "Ali", "Veli", "30", "8", "", "", "", "", "25", "3", ""},
	))
	report, err := svc.ImportFile(context.Background(), path, importParams())
	assert.Nil(t, report)

	var fault *RosterFault
	require.True(t, errors.As(err, &fault))
	assert.ErrorIs(t, err, storeErr)
	assert.Equal(t, 0, results.commits)
}

func TestImportFilePersistenceFault(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{
		{ID: 7, SchoolID: 1, StudentNumber: "100", NormalizedName: "ali veli"},
	}}
	results := newFakeResults()
	results.commitErr = errors.New("deadlock")
	svc := NewImportService(roster, results, newTestLogger())

	path := writeWorkbook(t, processedTYTRows(
		[]string{"100", "Ali", "Veli", "30", "8", "", "", "", "", "25", "3", ""},
	))
	report, err := svc.ImportFile(context.Background(), path, importParams())
	assert.Nil(t, report)

	var fault *PersistenceFault
	require.True(t, errors.As(err, &fault))
	assert.ErrorIs(t, err, results.commitErr)
}

func TestImportFileCellDecodeRowError(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{
		{ID: 7, SchoolID: 1, StudentNumber: "100", NormalizedName: "ali veli"},
		{ID: 8, SchoolID: 1, StudentNumber: "101", NormalizedName: "ayse yilmaz"},
	}}
	results := newFakeResults()
	svc := NewImportService(roster, results, newTestLogger())

	path := writeWorkbook(t, processedTYTRows(
		[]string{"100", "Ali", "Veli", "otuz", "8", "", "", "", "", "25", "3", ""},
		[]string{"101", "Ayşe", "Yılmaz", "20", "4", "", "", "", "", "35", "5", ""},
	))
	report, err := svc.ImportFile(context.Background(), path, importParams())
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.RowErrors, 1)
	assert.Equal(t, 4, report.RowErrors[0].RowNumber)
	assert.Equal(t, models.ReasonCellDecode, report.RowErrors[0].Reason)

	// The clean row still commits.
	_, ok := results.result(1, schema.ExamTypeTYT, importParams().ExamDate, 8)
	assert.True(t, ok)
}

func TestImportFileScoreMismatchWarning(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{
		{ID: 7, SchoolID: 1, StudentNumber: "100", NormalizedName: "ali veli"},
	}}
	results := newFakeResults()
	svc := NewImportService(roster, results, newTestLogger())
	p := importParams()

	// Sheet says 27, the counts say 28.
	path := writeWorkbook(t, processedTYTRows(
		[]string{"100", "Ali", "Veli", "30", "8", "27", "", "", "", "25", "3", ""},
	))
	report, err := svc.ImportFile(context.Background(), path, p)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded)
	require.Len(t, report.RowWarnings, 1)
	assert.Equal(t, models.ReasonScoreMismatch, report.RowWarnings[0].Reason)

	// The sheet value is kept verbatim.
	stored, ok := results.result(1, schema.ExamTypeTYT, p.ExamDate, 7)
	require.True(t, ok)
	byLesson := make(map[string]models.LessonScore)
	for _, ls := range stored.LessonScores {
		byLesson[ls.LessonName] = ls
	}
	assert.Equal(t, "27", byLesson["Türkçe"].Net.String())
	assert.Equal(t, "51.25", stored.TotalNet.String())
}

func TestImportFileCountMismatchWarning(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{
		{ID: 7, SchoolID: 1, StudentNumber: "100", NormalizedName: "ali veli"},
	}}
	results := newFakeResults()
	svc := NewImportService(roster, results, newTestLogger())

	// Türkçe: 30 + 8 + 5 != 40 questions.
	path := writeWorkbook(t, rawTYTRows(
		[]string{"100", "Ali", "Veli", "30", "8", "5", "28", "15", "2", "3", "14.5", "25", "3", "12", "24.25", "10", "4", "6", "9"},
	))
	report, err := svc.ImportFile(context.Background(), path, importParams())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded)
	require.Len(t, report.RowWarnings, 1)
	assert.Equal(t, models.ReasonCountMismatch, report.RowWarnings[0].Reason)
	assert.Contains(t, report.RowWarnings[0].Detail, "Türkçe")
}
