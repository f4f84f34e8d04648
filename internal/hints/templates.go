package hints

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/abhisek/questa/internal/analysis"
)

// Template is the leveled hint text for one question type. Levels run from
// naming the core concept to applying a specific operation. Level text is a
// text/template over .Keyword1, .Keyword2 and .Keyword3.
type Template struct {
	Type   analysis.TypeTag
	Levels []string
}

// DefaultTemplates returns one Template per TypeTag in declaration order.
func DefaultTemplates() []Template {
	return []Template{
		{
			Type: analysis.TypeMath,
			Levels: []string{
				"Identify the unknown quantity and what the question asks you to find about {{.Keyword1}}.",
				"Write the relationship between {{.Keyword1}} and {{.Keyword2}} as an equation or expression.",
				"Apply inverse operations to both sides to isolate the unknown, keeping the equation balanced.",
				"Simplify what remains to get the value, then substitute it back into the original question to check it.",
			},
		},
		{
			Type: analysis.TypePhysics,
			Levels: []string{
				"Think about which physical law governs {{.Keyword1}}.",
				"List the known quantities with their units and note how {{.Keyword1}} relates to {{.Keyword2}}.",
				"Write the equation for {{.Keyword1}} and rearrange it for the unknown before substituting values.",
				"Substitute the values in consistent units, compute the result and check that its unit fits {{.Keyword2}}.",
			},
		},
		{
			Type: analysis.TypeChemistry,
			Levels: []string{
				"Identify the substances involved and what happens to {{.Keyword1}}.",
				"Write the balanced equation or formula that connects {{.Keyword1}} and {{.Keyword2}}.",
				"Convert the given amounts to moles and use the ratios from the balanced equation.",
				"Apply the mole ratio to compute the amount of {{.Keyword2}}, then convert it to the units asked for.",
			},
		},
		{
			Type: analysis.TypeBiology,
			Levels: []string{
				"Think about which biological system or structure {{.Keyword1}} belongs to.",
				"Recall the function of {{.Keyword1}} and how it relates to {{.Keyword2}}.",
				"Connect the structure of {{.Keyword1}} to the process the question describes.",
				"State the specific role {{.Keyword1}} plays in that process to answer the question.",
			},
		},
		{
			Type: analysis.TypeComputerScience,
			Levels: []string{
				"Identify the core concept behind {{.Keyword1}}.",
				"Describe the input and the expected output, then how {{.Keyword1}} relates them to {{.Keyword2}}.",
				"Choose a data structure or algorithm suited to {{.Keyword1}} and consider its time complexity.",
				"Trace your approach on a small example of {{.Keyword2}} to confirm it produces the expected result.",
			},
		},
		{
			Type: analysis.TypeOther,
			Levels: []string{
				"Start by identifying the key concepts, especially {{.Keyword1}}.",
				"Focus on the relationship between {{.Keyword1}} and {{.Keyword2}}.",
				"Break the problem into smaller parts and apply what you know about {{.Keyword1}} to each part.",
				"Combine your conclusions about {{.Keyword1}} and {{.Keyword2}} with {{.Keyword3}} to reach the answer.",
			},
		},
	}
}

// templateData fills the keyword placeholders. Missing keywords fall back
// to generic phrases.
type templateData struct {
	Keyword1 string
	Keyword2 string
	Keyword3 string
}

var keywordFallbacks = [3]string{"the main concept", "the given information", "what the question asks"}

func newTemplateData(keywords []string) templateData {
	kw := keywordFallbacks
	for i := 0; i < len(kw) && i < len(keywords); i++ {
		kw[i] = keywords[i]
	}
	return templateData{Keyword1: kw[0], Keyword2: kw[1], Keyword3: kw[2]}
}

// compiledTemplates maps each TypeTag to its parsed levels.
type compiledTemplates map[analysis.TypeTag][]*template.Template

// compileTemplates checks there is exactly one non-empty entry per TypeTag
// in declaration order and parses every level.
func compileTemplates(tmpls []Template) (compiledTemplates, error) {
	if len(tmpls) != len(analysis.AllTypeTags) {
		return nil, fmt.Errorf("hint templates need %d types, got %d", len(analysis.AllTypeTags), len(tmpls))
	}
	out := make(compiledTemplates, len(tmpls))
	for i, t := range tmpls {
		if t.Type != analysis.AllTypeTags[i] {
			return nil, fmt.Errorf("hint template %d is %q, want %q", i, t.Type, analysis.AllTypeTags[i])
		}
		if len(t.Levels) == 0 {
			return nil, fmt.Errorf("hint template %q has no levels", t.Type)
		}
		levels := make([]*template.Template, len(t.Levels))
		for j, src := range t.Levels {
			tmpl, err := template.New(fmt.Sprintf("%s-%d", t.Type, j+1)).Option("missingkey=error").Parse(src)
			if err != nil {
				return nil, fmt.Errorf("parse hint template %q level %d: %w", t.Type, j+1, err)
			}
			levels[j] = tmpl
		}
		out[t.Type] = levels
	}
	return out, nil
}

// render fills every level of typ's templates.
func (c compiledTemplates) render(typ analysis.TypeTag, keywords []string) ([]string, error) {
	levels, ok := c[typ]
	if !ok {
		levels = c[analysis.TypeOther]
	}
	data := newTemplateData(keywords)
	out := make([]string, len(levels))
	for i, tmpl := range levels {
		var sb strings.Builder
		if err := tmpl.Execute(&sb, data); err != nil {
			return nil, fmt.Errorf("render hint template %s: %w", tmpl.Name(), err)
		}
		out[i] = sb.String()
	}
	return out, nil
}
