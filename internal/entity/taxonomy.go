package entity

type TaxonomyKind string

const (
	KindSkill          TaxonomyKind = "skill"
	KindExpertise      TaxonomyKind = "expertise"
	KindSubject        TaxonomyKind = "subject"
	KindLanguage       TaxonomyKind = "language"
	KindAssignmentType TaxonomyKind = "assignment_type"
	KindServiceType    TaxonomyKind = "service_type"
	KindLevel          TaxonomyKind = "level"
	KindEducationLevel TaxonomyKind = "education_level"
	KindStyle          TaxonomyKind = "style"
	KindLineSpacing    TaxonomyKind = "line_spacing"
)

var TaxonomyKinds = []TaxonomyKind{
	KindSkill, KindExpertise, KindSubject, KindLanguage, KindAssignmentType,
	KindServiceType, KindLevel, KindEducationLevel, KindStyle, KindLineSpacing,
}

// MatchingKinds must all overlap between a job and a freelancer profile for the job to match.
var MatchingKinds = []TaxonomyKind{
	KindSkill, KindExpertise, KindSubject, KindAssignmentType, KindServiceType, KindLanguage,
}

func ValidTaxonomyKind(k string) bool {
	for _, kk := range TaxonomyKinds {
		if string(kk) == k {
			return true
		}
	}
	return false
}

type Term struct {
	ID   int64        `json:"id"`
	Kind TaxonomyKind `json:"kind"`
	Name string       `json:"name"`
}

// Taxonomy maps a kind to selected term ids.
type Taxonomy map[TaxonomyKind][]int64

// Overlaps reports whether t and other share at least one term for every kind in kinds.
func (t Taxonomy) Overlaps(other Taxonomy, kinds []TaxonomyKind) bool {
	for _, k := range kinds {
		if !intersects(t[k], other[k]) {
			return false
		}
	}
	return true
}

func intersects(a, b []int64) bool {
	seen := make(map[int64]struct{}, len(a))
	for _, x := range a {
		seen[x] = struct{}{}
	}
	for _, y := range b {
		if _, ok := seen[y]; ok {
			return true
		}
	}
	return false
}
