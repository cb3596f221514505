package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"examtrack/internal/schema"
)

// CellFault records a cell whose value could not be decoded. The row is
// still yielded; judgment is deferred to the orchestrator.
type CellFault struct {
	Role  schema.ColumnRole
	Value string
	Err   error
}

// LessonCells holds the typed raw values of one lesson's columns. Blank
// and Net stay nil when the template has no such column or the cell is
// empty.
type LessonCells struct {
	Correct int
	Wrong   int
	Blank   *int
	Net     *decimal.Decimal
}

// RawRow is one data row decoded through a TemplateMapping. Number is the
// 1-based worksheet row.
type RawRow struct {
	Number        int
	StudentNumber string
	FirstName     string
	LastName      string
	Lessons       map[string]LessonCells
	Faults        []CellFault
}

// RowIterator walks data rows lazily, starting at the mapping's declared
// data-start row. It terminates at the first row where every mapped cell
// is empty, or at the last populated row. A row with identity cells but
// empty lesson cells is still yielded: it is an all-zero sitting, not the
// end-of-data sentinel.
type RowIterator struct {
	rows    [][]string
	mapping *TemplateMapping
	def     schema.ExamTypeDefinition
	next    int
	done    bool
}

// NewRowIterator positions an iterator at the mapping's data-start row.
func NewRowIterator(rows [][]string, mapping *TemplateMapping, def schema.ExamTypeDefinition) *RowIterator {
	it := &RowIterator{rows: rows, mapping: mapping, def: def}
	it.Reset()
	return it
}

// Reset rewinds the iterator to the data-start row.
func (it *RowIterator) Reset() {
	it.next = it.mapping.DataStartRow - 1
	it.done = false
}

// Next decodes and returns the next data row, or nil, false at the end of
// data.
func (it *RowIterator) Next() (*RawRow, bool) {
	if it.done || it.next >= len(it.rows) {
		it.done = true
		return nil, false
	}
	cells := it.rows[it.next]
	if it.allMappedEmpty(cells) {
		it.done = true
		return nil, false
	}
	row := it.decode(cells, it.next+1)
	it.next++
	return row, true
}

func (it *RowIterator) allMappedEmpty(cells []string) bool {
	for _, mc := range it.mapping.Columns {
		if strings.TrimSpace(cellAt(cells, mc.Index)) != "" {
			return false
		}
	}
	return true
}

func (it *RowIterator) decode(cells []string, number int) *RawRow {
	row := &RawRow{
		Number:  number,
		Lessons: make(map[string]LessonCells, len(it.def.Lessons)),
	}
	row.StudentNumber = it.identityCell(cells, schema.KindStudentNumber)
	row.FirstName = it.identityCell(cells, schema.KindFirstName)
	row.LastName = it.identityCell(cells, schema.KindLastName)

	for _, lesson := range it.def.Lessons {
		var lc LessonCells
		lc.Correct = it.countCell(cells, schema.ColumnRole{Kind: schema.KindCorrect, Lesson: lesson.Name}, row)
		lc.Wrong = it.countCell(cells, schema.ColumnRole{Kind: schema.KindWrong, Lesson: lesson.Name}, row)

		blankRole := schema.ColumnRole{Kind: schema.KindBlank, Lesson: lesson.Name}
		if col, ok := it.mapping.ColumnFor(blankRole); ok {
			if raw := strings.TrimSpace(cellAt(cells, col)); raw != "" {
				b := it.parseCount(raw, blankRole, row)
				lc.Blank = &b
			}
		}
		netRole := schema.ColumnRole{Kind: schema.KindNet, Lesson: lesson.Name}
		if col, ok := it.mapping.ColumnFor(netRole); ok {
			if raw := strings.TrimSpace(cellAt(cells, col)); raw != "" {
				if net, err := parseDecimalCell(raw); err != nil {
					row.Faults = append(row.Faults, CellFault{Role: netRole, Value: raw, Err: err})
				} else {
					lc.Net = &net
				}
			}
		}
		row.Lessons[lesson.Name] = lc
	}
	return row
}

func (it *RowIterator) identityCell(cells []string, kind schema.RoleKind) string {
	col, ok := it.mapping.ColumnFor(schema.ColumnRole{Kind: kind})
	if !ok {
		return ""
	}
	return strings.TrimSpace(cellAt(cells, col))
}

func (it *RowIterator) countCell(cells []string, role schema.ColumnRole, row *RawRow) int {
	col, ok := it.mapping.ColumnFor(role)
	if !ok {
		return 0
	}
	raw := strings.TrimSpace(cellAt(cells, col))
	if raw == "" {
		return 0
	}
	return it.parseCount(raw, role, row)
}

func (it *RowIterator) parseCount(raw string, role schema.ColumnRole, row *RawRow) int {
	// Vendors write "-" for zero.
	if raw == "-" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		if err == nil {
			err = fmt.Errorf("negative count")
		}
		row.Faults = append(row.Faults, CellFault{Role: role, Value: raw, Err: err})
		return 0
	}
	return n
}

// parseDecimalCell reads a net value, accepting the Turkish decimal comma.
func parseDecimalCell(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
}

func cellAt(cells []string, index int) string {
	if index < len(cells) {
		return cells[index]
	}
	return ""
}
