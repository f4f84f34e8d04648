package solution

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/abhisek/questa/internal/analysis"
)

// Template is the fallback prose for one question type. Summary and Steps
// are text/template sources over .Keyword1, .Keyword2 and .Keyword3.
type Template struct {
	Type    analysis.TypeTag
	Summary string
	Steps   []string
}

// DefaultTemplates returns one Template per TypeTag in declaration order.
func DefaultTemplates() []Template {
	return []Template{
		{
			Type:    analysis.TypeMath,
			Summary: "To solve this, isolate the unknown by applying inverse operations to both sides, then simplify to find its value.",
			Steps: []string{
				"Start with the given information and identify what we are solving for.",
				"Rearrange by performing the same operation on both sides to isolate the unknown.",
				"Simplify by combining like terms where possible.",
				"Solve for the unknown by performing the final calculation.",
				"Verify the result by substituting it back into the original question.",
			},
		},
		{
			Type:    analysis.TypePhysics,
			Summary: "This problem involves {{.Keyword1}}, which can be solved using the principle of {{.Keyword2}}. Applying the relevant equations and solving for the unknown gives the answer.",
			Steps: []string{
				"Identify the physical principles: this problem involves {{.Keyword1}}.",
				"Set up the relevant equations: write down the relations that involve {{.Keyword2}}.",
				"Solve for the unknown: rearrange the equations to isolate the quantity asked for.",
				"Calculate the final answer: substitute the values in consistent units and compute the result.",
			},
		},
		{
			Type:    analysis.TypeChemistry,
			Summary: "This problem centers on {{.Keyword1}}. Writing the balanced relationship with {{.Keyword2}} and working through the amounts gives the answer.",
			Steps: []string{
				"Identify the substances and the change involving {{.Keyword1}}.",
				"Write the balanced equation or formula that relates {{.Keyword1}} to {{.Keyword2}}.",
				"Convert the given amounts to moles and apply the ratios from the equation.",
				"Convert the result back to the units the question asks for.",
			},
		},
		{
			Type:    analysis.TypeBiology,
			Summary: "The answer depends on the role of {{.Keyword1}} and how it relates to {{.Keyword2}} within the living system described.",
			Steps: []string{
				"Identify the structure or process in question: {{.Keyword1}}.",
				"Recall its function and where it occurs in relation to {{.Keyword2}}.",
				"Connect that function to what the question asks.",
				"State the conclusion in terms of {{.Keyword1}}.",
			},
		},
		{
			Type:    analysis.TypeComputerScience,
			Summary: "The solution applies {{.Keyword1}} to {{.Keyword2}}, choosing an approach whose behavior and cost fit the problem.",
			Steps: []string{
				"Understand the problem: determine the inputs and the expected output involving {{.Keyword1}}.",
				"Choose an approach: pick a data structure or algorithm suited to {{.Keyword2}}.",
				"Work through the approach on a small example to check it.",
				"Analyze the result: confirm correctness and note the time and space cost.",
			},
		},
		{
			Type:    analysis.TypeOther,
			Summary: "The solution to this problem involves understanding the concept of {{.Keyword1}} and applying it correctly. By analyzing {{.Keyword2}} and its relationship with {{.Keyword3}}, we can derive the answer.",
			Steps: []string{
				"Understand the problem: this question is asking about {{.Keyword1}}.",
				"Identify the key concepts: the main ideas here are {{.Keyword2}} and {{.Keyword3}}.",
				"Apply the relevant principles to approach the problem.",
				"Derive the conclusion from the analysis.",
			},
		},
	}
}

type templateData struct {
	Keyword1 string
	Keyword2 string
	Keyword3 string
}

var keywordFallbacks = [3]string{"the main concept", "the given information", "the question"}

func newTemplateData(keywords []string) templateData {
	kw := keywordFallbacks
	for i := 0; i < len(kw) && i < len(keywords); i++ {
		kw[i] = keywords[i]
	}
	return templateData{Keyword1: kw[0], Keyword2: kw[1], Keyword3: kw[2]}
}

type compiledTemplate struct {
	summary *template.Template
	steps   []*template.Template
}

type compiledTemplates map[analysis.TypeTag]compiledTemplate

func parseTemplate(name, src string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse solution template %s: %w", name, err)
	}
	return tmpl, nil
}

// compileTemplates checks there is exactly one entry per TypeTag in
// declaration order, each with a summary and at least one step.
func compileTemplates(tmpls []Template) (compiledTemplates, error) {
	if len(tmpls) != len(analysis.AllTypeTags) {
		return nil, fmt.Errorf("solution templates need %d types, got %d", len(analysis.AllTypeTags), len(tmpls))
	}
	out := make(compiledTemplates, len(tmpls))
	for i, t := range tmpls {
		if t.Type != analysis.AllTypeTags[i] {
			return nil, fmt.Errorf("solution template %d is %q, want %q", i, t.Type, analysis.AllTypeTags[i])
		}
		if t.Summary == "" || len(t.Steps) == 0 {
			return nil, fmt.Errorf("solution template %q needs a summary and steps", t.Type)
		}
		summary, err := parseTemplate(string(t.Type)+"-summary", t.Summary)
		if err != nil {
			return nil, err
		}
		c := compiledTemplate{summary: summary, steps: make([]*template.Template, len(t.Steps))}
		for j, src := range t.Steps {
			if c.steps[j], err = parseTemplate(fmt.Sprintf("%s-step-%d", t.Type, j+1), src); err != nil {
				return nil, err
			}
		}
		out[t.Type] = c
	}
	return out, nil
}

func execute(tmpl *template.Template, data templateData) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render solution template %s: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}

// render fills typ's template. Steps are rendered only when withSteps.
func (c compiledTemplates) render(typ analysis.TypeTag, keywords []string, withSteps bool) (*Solution, error) {
	t, ok := c[typ]
	if !ok {
		t = c[analysis.TypeOther]
	}
	data := newTemplateData(keywords)

	summary, err := execute(t.summary, data)
	if err != nil {
		return nil, err
	}
	sol := &Solution{Content: summary}
	if !withSteps {
		return sol, nil
	}
	for _, step := range t.steps {
		s, err := execute(step, data)
		if err != nil {
			return nil, err
		}
		sol.Steps = append(sol.Steps, s)
	}
	return sol, nil
}
