package service

import (
	"strings"
	"unicode"

	"examtrack/internal/schema"
	"examtrack/internal/utils"
)

const (
	headerDepth      = 3
	maxHeaderColumns = 80
)

// MappedColumn pairs a physical column index (0-based) with its resolved
// role.
type MappedColumn struct {
	Index int
	Role  schema.ColumnRole
}

// TemplateMapping is the outcome of layout detection: which physical
// column carries which role, where data begins, and which variant the
// workbook turned out to be. Lessons whose Net column is absent are
// marked for derivation.
type TemplateMapping struct {
	ExamType     schema.ExamType
	Variant      schema.Variant
	DataStartRow int
	Columns      []MappedColumn

	index     map[schema.ColumnRole]int
	deriveNet map[string]bool
}

// ColumnFor returns the physical column index for a role.
func (m *TemplateMapping) ColumnFor(role schema.ColumnRole) (int, bool) {
	i, ok := m.index[role]
	return i, ok
}

// DeriveNet reports whether the lesson's net must be computed because the
// template has no Net column for it.
func (m *TemplateMapping) DeriveNet(lesson string) bool {
	return m.deriveNet[lesson]
}

// NormalizeTemplate detects which known layout the worksheet uses and
// builds the column-role mapping. rows is the full worksheet as returned
// by excelize; only the header rows are inspected here.
//
// Every role is resolved independently: the first unclaimed column (within
// the first 80 populated columns) whose folded header matches one of the
// role's synonyms wins. Both fingerprints are attempted; the one resolving
// the most roles is kept. Missing any required role in both fingerprints
// fails the whole file with TemplateMismatchError.
func NormalizeTemplate(rows [][]string, def schema.ExamTypeDefinition) (*TemplateMapping, error) {
	headers := headerTokens(rows)

	var (
		best        *TemplateMapping
		bestScore   = -1
		bestMissing []schema.ColumnRole
	)
	for _, fp := range schema.Fingerprints() {
		mapping, missing := resolveFingerprint(headers, fp, def)
		score := len(mapping.Columns)
		if len(missing) == 0 {
			if best == nil || len(bestMissing) > 0 || score > bestScore {
				best, bestScore, bestMissing = mapping, score, nil
			}
			continue
		}
		if best == nil || (len(bestMissing) > 0 && score > bestScore) {
			best, bestScore, bestMissing = mapping, score, missing
		}
	}
	if len(bestMissing) > 0 || best == nil {
		return nil, &TemplateMismatchError{ExamType: def.Key, MissingRoles: bestMissing}
	}
	return best, nil
}

// resolveFingerprint matches every role of the exam type against the
// header tokens using one fingerprint's vocabulary. Returns the partial
// mapping and the required roles it could not place.
func resolveFingerprint(headers [][]string, fp schema.Fingerprint, def schema.ExamTypeDefinition) (*TemplateMapping, []schema.ColumnRole) {
	mapping := &TemplateMapping{
		ExamType:     def.Key,
		Variant:      fp.Variant,
		DataStartRow: fp.DataStartRow,
		index:        make(map[schema.ColumnRole]int),
		deriveNet:    make(map[string]bool),
	}
	claimed := make(map[int]bool)
	var missing []schema.ColumnRole

	resolve := func(role schema.ColumnRole, synonyms []string, required bool) bool {
		for col, tokens := range headers {
			if claimed[col] {
				continue
			}
			if matchesAny(tokens, synonyms) {
				claimed[col] = true
				mapping.Columns = append(mapping.Columns, MappedColumn{Index: col, Role: role})
				mapping.index[role] = col
				return true
			}
		}
		if required {
			missing = append(missing, role)
		}
		return false
	}

	// Soyadı before Adı: the folded form of the latter is a substring of
	// the former.
	resolve(schema.ColumnRole{Kind: schema.KindStudentNumber}, fp.Identity[schema.KindStudentNumber], true)
	resolve(schema.ColumnRole{Kind: schema.KindLastName}, fp.Identity[schema.KindLastName], true)
	resolve(schema.ColumnRole{Kind: schema.KindFirstName}, fp.Identity[schema.KindFirstName], true)

	for _, lesson := range def.Lessons {
		resolve(schema.ColumnRole{Kind: schema.KindCorrect, Lesson: lesson.Name}, crossSynonyms(lesson.Synonyms, fp.Kinds[schema.KindCorrect]), true)
		resolve(schema.ColumnRole{Kind: schema.KindWrong, Lesson: lesson.Name}, crossSynonyms(lesson.Synonyms, fp.Kinds[schema.KindWrong]), true)
		resolve(schema.ColumnRole{Kind: schema.KindBlank, Lesson: lesson.Name}, crossSynonyms(lesson.Synonyms, fp.Kinds[schema.KindBlank]), false)
		if !resolve(schema.ColumnRole{Kind: schema.KindNet, Lesson: lesson.Name}, crossSynonyms(lesson.Synonyms, fp.Kinds[schema.KindNet]), false) {
			mapping.deriveNet[lesson.Name] = true
		}
	}
	return mapping, missing
}

// headerTokens folds the first three rows into per-column token lists.
// Rows 1 and 2 are forward-filled: vendors merge band headers (the exam
// title, the lesson name over its D/Y/B/N sub-columns) and excelize
// reports a merged value only in its first cell. Row 3 holds per-column
// labels and is taken as is.
func headerTokens(rows [][]string) [][]string {
	cols := 0
	for r := 0; r < headerDepth && r < len(rows); r++ {
		if len(rows[r]) > cols {
			cols = len(rows[r])
		}
	}
	if cols > maxHeaderColumns {
		cols = maxHeaderColumns
	}

	headers := make([][]string, cols)
	for r := 0; r < headerDepth && r < len(rows); r++ {
		fill := ""
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(rows[r]) {
				cell = strings.TrimSpace(rows[r][c])
			}
			if r < 2 {
				if cell != "" {
					fill = cell
				}
				cell = fill
			}
			if cell != "" {
				headers[c] = append(headers[c], tokenize(cell)...)
			}
		}
	}
	return headers
}

// tokenize folds a header cell and splits it on anything that is not a
// letter or digit, so "Sosyal Bilimler-2" and "Sos.Bil.2" both break into
// clean tokens.
func tokenize(cell string) []string {
	return strings.FieldsFunc(utils.Fold(cell), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// crossSynonyms combines lesson aliases with kind tokens ("turkce" x "d"
// -> "turkce d").
func crossSynonyms(lessonSyns, kindTokens []string) []string {
	out := make([]string, 0, len(lessonSyns)*len(kindTokens))
	for _, ls := range lessonSyns {
		for _, kt := range kindTokens {
			out = append(out, ls+" "+kt)
		}
	}
	return out
}

func matchesAny(headerTokens []string, synonyms []string) bool {
	for _, syn := range synonyms {
		if matchesSynonym(headerTokens, syn) {
			return true
		}
	}
	return false
}

// matchesSynonym requires every token of the synonym to appear in the
// column's header tokens. Tokens of one or two runes (the D/Y/B/N labels,
// "no") must match a header token exactly so they cannot hide inside
// longer words; longer tokens match by containment to absorb suffixes
// ("soyad" in "soyadi").
func matchesSynonym(headerTokens []string, synonym string) bool {
	for _, st := range strings.Fields(synonym) {
		if !tokenPresent(headerTokens, st) {
			return false
		}
	}
	return true
}

func tokenPresent(headerTokens []string, synToken string) bool {
	exact := len([]rune(synToken)) <= 2
	for _, ht := range headerTokens {
		if exact {
			if ht == synToken {
				return true
			}
		} else if strings.Contains(ht, synToken) {
			return true
		}
	}
	return false
}
