// Package categorizer assigns a coarse topical label to article content by keyword matching.
package categorizer

import "strings"

// Others is the label given to content that matches no keyword.
const Others = "Others"

// Category is one row of the keyword table.
type Category struct {
	Name     string
	Keywords []string
}

// DefaultTable is evaluated top to bottom; earlier rows win.
var DefaultTable = []Category{
	{Name: "Terrorism / protest / political unrest / riot", Keywords: []string{"protest", "unrest", "riot", "terrorism"}},
	{Name: "Positive/Uplifting", Keywords: []string{"positive", "uplifting", "happy"}},
	{Name: "Natural Disasters", Keywords: []string{"earthquake", "flood", "disaster", "hurricane"}},
	{Name: Others},
}

// Categorizer holds an ordered keyword table. It is safe for concurrent use.
type Categorizer struct {
	table []Category
}

// New copies table with lower-cased, trimmed keywords. An empty table means DefaultTable.
func New(table []Category) *Categorizer {
	if len(table) == 0 {
		table = DefaultTable
	}
	c := &Categorizer{table: make([]Category, 0, len(table))}
	for _, cat := range table {
		keywords := make([]string, 0, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		c.table = append(c.table, Category{Name: cat.Name, Keywords: keywords})
	}
	return c
}

// Classify returns the first category with a keyword contained in content, or Others.
func (c *Categorizer) Classify(content string) string {
	lowered := strings.ToLower(content)
	for _, cat := range c.table {
		for _, kw := range cat.Keywords {
			if strings.Contains(lowered, kw) {
				return cat.Name
			}
		}
	}
	return Others
}

// Categories lists every label the categorizer can return, in table order.
func (c *Categorizer) Categories() []string {
	names := make([]string, 0, len(c.table)+1)
	hasOthers := false
	for _, cat := range c.table {
		names = append(names, cat.Name)
		if cat.Name == Others {
			hasOthers = true
		}
	}
	if !hasOthers {
		names = append(names, Others)
	}
	return names
}
