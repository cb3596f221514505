package schema

// Variant tags which physical layout a workbook uses: the vendor's raw
// export or the institution's processed template.
type Variant string

const (
	VariantRaw       Variant = "raw"
	VariantProcessed Variant = "processed"
)

// Fingerprint holds the header vocabulary of one template variant. All
// synonyms are pre-folded. Lesson column synonyms are formed by crossing
// the lesson's synonyms with the per-kind tokens, so the same fingerprint
// serves every exam type.
type Fingerprint struct {
	Variant      Variant
	DataStartRow int
	Identity     map[RoleKind][]string
	Kinds        map[RoleKind][]string
}

var identitySynonyms = map[RoleKind][]string{
	KindStudentNumber: {"ogrenci no", "ogr no", "numara", "no"},
	KindFirstName:     {"adi", "ad", "isim"},
	KindLastName:      {"soyadi", "soyad"},
}

// Vendor raw exports label lesson sub-columns with single letters
// (D/Y/B/N) under a merged lesson band; processed templates spell the
// words out in a single header row. All known layouts start data at row 4.
var fingerprints = []Fingerprint{
	{
		Variant:      VariantRaw,
		DataStartRow: 4,
		Identity:     identitySynonyms,
		Kinds: map[RoleKind][]string{
			KindCorrect: {"d"},
			KindWrong:   {"y"},
			KindBlank:   {"b"},
			KindNet:     {"n"},
		},
	},
	{
		Variant:      VariantProcessed,
		DataStartRow: 4,
		Identity:     identitySynonyms,
		Kinds: map[RoleKind][]string{
			KindCorrect: {"dogru"},
			KindWrong:   {"yanlis"},
			KindBlank:   {"bos"},
			KindNet:     {"net"},
		},
	},
}

// Fingerprints returns the known template fingerprints, raw first.
func Fingerprints() []Fingerprint {
	return fingerprints
}
