package query

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/sakshi-kadian/aurelius/internal/util"
	"github.com/sakshi-kadian/aurelius/pkg/common"
)

const contextPreviewRunes = 240

type answerData struct {
	Entities []string
	Path     *common.ReasoningPath
	Context  []string
}

var answerTemplate = template.Must(template.New("answer").Funcs(template.FuncMap{
	"join":    strings.Join,
	"percent": func(c float64) string { return fmt.Sprintf("%.0f%%", c*100) },
	"preview": func(s string) string { return util.Truncate(strings.Join(strings.Fields(s), " "), contextPreviewRunes) },
	"first":   func(s []string) string { return s[0] },
	"last":    func(s []string) string { return s[len(s)-1] },
}).Parse(strings.TrimSpace(`
{{- if .Path -}}
{{- if eq (len .Path.Nodes) 1 -}}
Both terms refer to the same entity in the knowledge graph: {{first .Path.Nodes}} ({{percent .Path.Confidence}} confidence).
{{- else -}}
The knowledge graph connects {{first .Path.Nodes}} to {{last .Path.Nodes}} in {{.Path.Hops}} hop{{if gt .Path.Hops 1}}s{{end}} ({{percent .Path.Confidence}} confidence): {{join .Path.Nodes " -> "}}.
{{- end -}}
{{- else if ge (len .Entities) 2 -}}
No connection between {{index .Entities 0}} and {{index .Entities 1}} was found in the knowledge graph.
{{- else if eq (len .Entities) 1 -}}
Only one entity ({{index .Entities 0}}) was identified in the query, so no path could be traced.
{{- else -}}
No entities could be identified in the query, so no path could be traced.
{{- end}}
{{- if .Context}} The most relevant passage reads: "{{preview (index .Context 0)}}"
{{- else}} No supporting passages were found in the document memory.
{{- end}}
`)))

func renderAnswer(data answerData) (string, error) {
	var b strings.Builder
	if err := answerTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render answer: %w", err)
	}
	return b.String(), nil
}
