package schema

import "fmt"

// ExamType identifies one of the national exam formats whose result
// sheets the pipeline can ingest.
type ExamType string

const (
	ExamTypeTYT ExamType = "TYT"
	ExamTypeAYT ExamType = "AYT"
	ExamTypeLGS ExamType = "LGS"
)

// RoleKind classifies what a spreadsheet column holds.
type RoleKind string

const (
	KindStudentNumber RoleKind = "student_number"
	KindFirstName     RoleKind = "first_name"
	KindLastName      RoleKind = "last_name"
	KindCorrect       RoleKind = "correct"
	KindWrong         RoleKind = "wrong"
	KindBlank         RoleKind = "blank"
	KindNet           RoleKind = "net"
)

// ColumnRole is a column's logical meaning. Lesson is empty for the
// identity roles.
type ColumnRole struct {
	Kind   RoleKind
	Lesson string
}

func (r ColumnRole) String() string {
	if r.Lesson == "" {
		return string(r.Kind)
	}
	return r.Lesson + ":" + string(r.Kind)
}

// LessonDefinition describes one lesson of an exam type. Synonyms are
// pre-folded header aliases the normalizer matches against.
type LessonDefinition struct {
	Name      string
	Questions int
	Synonyms  []string
}

// ExamTypeDefinition is the ordered lesson catalogue for one exam type.
// Definitions are fixed at process start; downstream components are
// parameterized by them, so adding a new exam type is a registry-only change.
type ExamTypeDefinition struct {
	Key     ExamType
	Lessons []LessonDefinition
}

// Lesson returns the definition for a lesson by name.
func (d ExamTypeDefinition) Lesson(name string) (LessonDefinition, bool) {
	for _, l := range d.Lessons {
		if l.Name == name {
			return l, true
		}
	}
	return LessonDefinition{}, false
}

var definitions = map[ExamType]ExamTypeDefinition{
	ExamTypeTYT: {
		Key: ExamTypeTYT,
		Lessons: []LessonDefinition{
			{Name: "Türkçe", Questions: 40, Synonyms: []string{"turkce", "trk"}},
			{Name: "Sosyal Bilimler", Questions: 20, Synonyms: []string{"sosyal"}},
			{Name: "Temel Matematik", Questions: 40, Synonyms: []string{"matematik", "mat"}},
			{Name: "Fen Bilimleri", Questions: 20, Synonyms: []string{"fen"}},
		},
	},
	ExamTypeAYT: {
		Key: ExamTypeAYT,
		Lessons: []LessonDefinition{
			{Name: "Türk Dili ve Edebiyatı-Sosyal Bilimler-1", Questions: 40, Synonyms: []string{"edebiyat", "tde"}},
			{Name: "Sosyal Bilimler-2", Questions: 40, Synonyms: []string{"sosyal bilimler 2", "sosyal 2", "sos bil 2"}},
			{Name: "Matematik", Questions: 40, Synonyms: []string{"matematik", "mat"}},
			{Name: "Fen Bilimleri", Questions: 40, Synonyms: []string{"fen"}},
		},
	},
	ExamTypeLGS: {
		Key: ExamTypeLGS,
		Lessons: []LessonDefinition{
			{Name: "Türkçe", Questions: 20, Synonyms: []string{"turkce", "trk"}},
			{Name: "Matematik", Questions: 20, Synonyms: []string{"matematik", "mat"}},
			{Name: "Fen Bilimleri", Questions: 20, Synonyms: []string{"fen"}},
			{Name: "İnkılap Tarihi", Questions: 10, Synonyms: []string{"inkilap", "tarih"}},
			{Name: "Din Kültürü", Questions: 10, Synonyms: []string{"din"}},
			{Name: "Yabancı Dil", Questions: 10, Synonyms: []string{"yabanci dil", "ingilizce"}},
		},
	},
}

// UnknownExamTypeError reports a lookup for an exam type that is not
// registered.
type UnknownExamTypeError struct {
	Key ExamType
}

func (e *UnknownExamTypeError) Error() string {
	return fmt.Sprintf("unknown exam type %q", string(e.Key))
}

// DefinitionFor looks up the definition for an exam type.
func DefinitionFor(key ExamType) (ExamTypeDefinition, error) {
	def, ok := definitions[key]
	if !ok {
		return ExamTypeDefinition{}, &UnknownExamTypeError{Key: key}
	}
	return def, nil
}

// ExamTypes lists the registered exam type keys.
func ExamTypes() []ExamType {
	return []ExamType{ExamTypeTYT, ExamTypeAYT, ExamTypeLGS}
}
