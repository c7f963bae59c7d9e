package classify

import "strings"

const DefaultCategory = "daily"

// Classifier maps free text to a category label.
type Classifier interface {
	Classify(text string) string
}

// Rule assigns Label when the lower-cased text contains any of Keywords.
type Rule struct {
	Label    string
	Keywords []string
}

// Keywords is an ordered rule list; the first matching rule wins.
type Keywords struct {
	Rules    []Rule
	Fallback string
}

func Default() Keywords {
	return Keywords{
		Rules: []Rule{
			{Label: "shopping", Keywords: []string{"买", "购", "超市", "buy", "shop"}},
			{Label: "study", Keywords: []string{"学", "习", "书", "code", "py", "react", "bug"}},
			{Label: "fitness", Keywords: []string{"跑", "健身", "运动", "gym", "run"}},
		},
		Fallback: DefaultCategory,
	}
}

func (k Keywords) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, r := range k.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Label
			}
		}
	}
	if k.Fallback == "" {
		return DefaultCategory
	}
	return k.Fallback
}

// Labels returns every label k can produce, fallback included.
func (k Keywords) Labels() []string {
	out := make([]string, 0, len(k.Rules)+1)
	for _, r := range k.Rules {
		out = append(out, r.Label)
	}
	if k.Fallback == "" {
		return append(out, DefaultCategory)
	}
	return append(out, k.Fallback)
}

// Func adapts a plain function to Classifier.
type Func func(string) string

func (f Func) Classify(text string) string { return f(text) }
