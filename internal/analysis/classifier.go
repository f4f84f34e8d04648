package analysis

import (
	"context"
	"fmt"
	"strings"
)

// Classifier assigns a TypeTag to a document.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, doc Document) (TypeTag, error)
}

// DefaultKeywordThreshold is the minimum winning score for KeywordClassifier.
const DefaultKeywordThreshold = 1.0

// TypeProfile lists the weighted evidence for one TypeTag.
type TypeProfile struct {
	Type TypeTag

	// Keywords are matched against normalized tokens, with a trailing plural
	// "s" stripped from the token when the singular is listed.
	Keywords map[string]float64

	// Markers are matched as lowercase substrings of the raw text.
	Markers map[string]float64
}

// DefaultProfiles returns the built-in evidence table, one entry per TypeTag.
func DefaultProfiles() []TypeProfile {
	return []TypeProfile{
		{
			Type: TypeMath,
			Keywords: map[string]float64{
				"solve": 1.5, "equation": 2, "calculate": 1, "value": 0.5,
				"algebra": 2, "geometry": 2, "integral": 2, "derivative": 2,
				"integrate": 2, "differentiate": 2, "polynomial": 2, "fraction": 1.5,
				"sum": 1, "product": 0.5, "angle": 1, "triangle": 1.5, "circle": 1,
				"area": 1, "perimeter": 1.5, "probability": 1.5, "matrix": 1.5,
				"equals": 1.5, "simplify": 1.5, "factor": 1, "root": 1, "prime": 1,
				"theorem": 1.5, "proof": 1, "prove": 1, "x": 0.5,
			},
			Markers: map[string]float64{
				"=": 2, "^": 1, "sqrt": 1, "find x": 1.5, "find the value": 1,
				"+": 0.5, "*": 0.5,
			},
		},
		{
			Type: TypePhysics,
			Keywords: map[string]float64{
				"force": 2, "energy": 1.5, "motion": 2, "velocity": 2, "acceleration": 2,
				"momentum": 2, "mass": 1, "gravity": 2, "friction": 2, "newton": 2,
				"electric": 1.5, "circuit": 1.5, "voltage": 2, "current": 1,
				"resistance": 1.5, "thermodynamics": 2, "wave": 1.5, "frequency": 1,
				"speed": 1, "projectile": 2, "torque": 2, "pressure": 1, "magnetic": 1.5,
				"quantum": 1.5, "photon": 2, "kinetic": 2, "potential": 1,
			},
			Markers: map[string]float64{
				"m/s": 1.5, "newtons": 1, "joule": 1.5, "watt": 1,
			},
		},
		{
			Type: TypeChemistry,
			Keywords: map[string]float64{
				"element": 2, "compound": 2, "molecule": 2, "reaction": 2, "atom": 2,
				"bond": 1.5, "acid": 2, "base": 0.5, "ph": 2, "mole": 2, "molar": 2,
				"electron": 1, "ion": 2, "oxidation": 2, "reduction": 1, "catalyst": 2,
				"solution": 0.5, "periodic": 1.5, "isotope": 2, "chemical": 2,
				"valence": 2, "organic": 1, "stoichiometry": 2, "titration": 2,
			},
			Markers: map[string]float64{
				"h2o": 2, "co2": 1.5, "nacl": 2, "->": 0.5,
			},
		},
		{
			Type: TypeBiology,
			Keywords: map[string]float64{
				"cell": 2, "organism": 2, "species": 2, "gene": 2, "dna": 2, "rna": 2,
				"protein": 1.5, "evolution": 2, "ecology": 2, "ecosystem": 2,
				"photosynthesis": 2, "mitochondria": 2, "powerhouse": 1, "enzyme": 1.5,
				"physiology": 2, "tissue": 1.5, "organ": 1.5, "chromosome": 2,
				"mutation": 1.5, "bacteria": 2, "virus": 1.5, "plant": 1, "animal": 1,
				"membrane": 1.5, "nucleus": 1, "heredity": 2, "genetics": 2,
			},
		},
		{
			Type: TypeComputerScience,
			Keywords: map[string]float64{
				"algorithm": 2, "code": 1.5, "program": 1.5, "programming": 2,
				"function": 1, "array": 2, "complexity": 1, "recursion": 2,
				"recursive": 2, "database": 2, "compiler": 2, "software": 1.5,
				"binary": 1.5, "tree": 0.5, "graph": 0.5, "stack": 1.5, "queue": 1.5,
				"loop": 1.5, "variable": 0.5, "pointer": 2, "hash": 2, "sorting": 2,
				"sort": 1, "computational": 1.5, "python": 2, "java": 2, "string": 1,
			},
			Markers: map[string]float64{
				"o(n": 2, "()": 1, "big-o": 2,
			},
		},
		{
			Type: TypeOther,
		},
	}
}

// KeywordClassifier scores documents against a fixed evidence table.
type KeywordClassifier struct {
	profiles  []TypeProfile
	threshold float64
}

// NewKeywordClassifier builds a classifier from profiles, which must contain
// exactly one entry per TypeTag in declaration order. A non-positive
// threshold selects DefaultKeywordThreshold.
func NewKeywordClassifier(profiles []TypeProfile, threshold float64) (*KeywordClassifier, error) {
	if len(profiles) != len(AllTypeTags) {
		return nil, fmt.Errorf("keyword classifier needs %d profiles, got %d", len(AllTypeTags), len(profiles))
	}
	for i, p := range profiles {
		if p.Type != AllTypeTags[i] {
			return nil, fmt.Errorf("keyword profile %d is %q, want %q", i, p.Type, AllTypeTags[i])
		}
	}
	if threshold <= 0 {
		threshold = DefaultKeywordThreshold
	}
	return &KeywordClassifier{profiles: profiles, threshold: threshold}, nil
}

// Classify never fails.
func (c *KeywordClassifier) Classify(_ context.Context, doc Document) (TypeTag, error) {
	return c.classify(doc), nil
}

func (c *KeywordClassifier) classify(doc Document) TypeTag {
	raw := strings.ToLower(doc.Text)

	best, bestScore := TypeOther, 0.0
	for _, p := range c.profiles {
		score := p.score(raw, doc.Tokens)
		if score > bestScore {
			best, bestScore = p.Type, score
		}
	}
	if bestScore < c.threshold {
		return TypeOther
	}
	return best
}

// score sums the weights of each distinct keyword and marker present.
func (p TypeProfile) score(raw string, tokens []string) float64 {
	var total float64
	seen := make(map[string]bool)
	for _, tok := range tokens {
		word := tok
		if _, ok := p.Keywords[word]; !ok {
			word = singular(tok)
		}
		w, ok := p.Keywords[word]
		if !ok || seen[word] {
			continue
		}
		seen[word] = true
		total += w
	}
	for marker, w := range p.Markers {
		if strings.Contains(raw, marker) {
			total += w
		}
	}
	return total
}

// singular strips one trailing plural "s" ("cells" → "cell", not "mass").
func singular(w string) string {
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return w[:len(w)-1]
	}
	return w
}
