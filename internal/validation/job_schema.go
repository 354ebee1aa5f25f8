package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
)

const (
	requiredMsg = "This field is required."
	blankMsg    = "This field may not be blank."
)

// taxonomyFields maps request keys to taxonomy kinds.
var taxonomyFields = map[string]entity.TaxonomyKind{
	"skills":           entity.KindSkill,
	"expertise":        entity.KindExpertise,
	"subjects":         entity.KindSubject,
	"languages":        entity.KindLanguage,
	"assignment_types": entity.KindAssignmentType,
	"service_types":    entity.KindServiceType,
	"levels":           entity.KindLevel,
	"education_levels": entity.KindEducationLevel,
	"styles":           entity.KindStyle,
	"line_spacing":     entity.KindLineSpacing,
}

func jobSchema() map[string]interface{} {
	props := map[string]interface{}{
		"title":             map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 255},
		"description":       map[string]interface{}{"type": "string", "minLength": 1},
		"due_date":          map[string]interface{}{"type": "string", "format": "date"},
		"num_pages":         map[string]interface{}{"type": "integer", "minimum": 1},
		"words":             map[string]interface{}{"type": "integer", "minimum": 0},
		"project_cost":      map[string]interface{}{"type": []string{"string", "number"}},
		"assignment_topic":  map[string]interface{}{"type": "string", "maxLength": 255},
		"citation_style":    map[string]interface{}{"type": "string", "maxLength": 100},
		"page_abstract":     map[string]interface{}{"type": "boolean"},
		"printable_sources": map[string]interface{}{"type": "boolean"},
		"detailed_outline":  map[string]interface{}{"type": "boolean"},
	}
	for field := range taxonomyFields {
		props[field] = map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "integer", "minimum": 1},
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"required":   []string{"title", "description", "due_date", "project_cost"},
		"properties": props,
	}
}

// JobValidator checks job posts against the job JSON schema.
type JobValidator struct {
	schema gojsonschema.JSONLoader
}

func NewJobValidator() *JobValidator {
	return &JobValidator{schema: gojsonschema.NewGoLoader(jobSchema())}
}

// Validate returns the draft or an apperr validation error keyed by field name.
func (v *JobValidator) Validate(data map[string]interface{}) (entity.JobDraft, error) {
	if data == nil {
		data = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(v.schema, gojsonschema.NewGoLoader(data))
	if err != nil {
		return entity.JobDraft{}, fmt.Errorf("validate job schema: %w", err)
	}

	fields := collect(result)

	cost, costErr := normalizeCost(data["project_cost"])
	if costErr != "" {
		if _, taken := fields["project_cost"]; !taken {
			fields["project_cost"] = costErr
		}
	}
	for _, k := range []string{"title", "description"} {
		if str, ok := data[k].(string); ok && strings.TrimSpace(str) == "" {
			if _, taken := fields[k]; !taken {
				fields[k] = blankMsg
			}
		}
	}
	if due, ok := data["due_date"].(string); ok {
		if _, err := time.Parse(entity.DateLayout, due); err != nil {
			if _, taken := fields["due_date"]; !taken {
				fields["due_date"] = "Date has wrong format. Use YYYY-MM-DD."
			}
		}
	}

	if len(fields) > 0 {
		return entity.JobDraft{}, apperr.Validation(fields)
	}

	return decodeDraft(data, cost)
}

// collect keys schema errors by request field, first error per field wins.
func collect(result *gojsonschema.Result) map[string]string {
	fields := map[string]string{}
	for _, desc := range result.Errors() {
		field := desc.Field()
		msg := desc.Description()
		switch desc.Type() {
		case "required":
			if p, ok := desc.Details()["property"].(string); ok {
				field = p
			}
			msg = requiredMsg
		case "pattern":
			msg = blankMsg
		}
		field = strings.TrimPrefix(field, "(root).")
		if _, taken := fields[field]; !taken {
			fields[field] = msg
		}
	}
	return fields
}

func normalizeCost(v interface{}) (string, string) {
	switch c := v.(type) {
	case nil:
		return "", ""
	case float64:
		return Money(strconv.FormatFloat(c, 'f', -1, 64))
	case json.Number:
		return Money(c.String())
	case string:
		return Money(c)
	default:
		return "", ""
	}
}

type jobPost struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	DueDate          string  `json:"due_date"`
	NumPages         int     `json:"num_pages"`
	Words            *int    `json:"words"`
	AssignmentTopic  *string `json:"assignment_topic"`
	CitationStyle    *string `json:"citation_style"`
	PageAbstract     bool    `json:"page_abstract"`
	PrintableSources bool    `json:"printable_sources"`
	DetailedOutline  bool    `json:"detailed_outline"`
}

func decodeDraft(data map[string]interface{}, cost string) (entity.JobDraft, error) {
	clean := make(map[string]interface{}, len(data))
	for k, v := range data {
		if k == "project_cost" {
			continue
		}
		clean[k] = v
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return entity.JobDraft{}, fmt.Errorf("encode job post: %w", err)
	}
	var p jobPost
	if err := json.Unmarshal(raw, &p); err != nil {
		return entity.JobDraft{}, apperr.BadRequest("invalid job payload")
	}

	tax := entity.Taxonomy{}
	for field, kind := range taxonomyFields {
		items, ok := data[field].([]interface{})
		if !ok {
			continue
		}
		for _, it := range items {
			switch n := it.(type) {
			case float64:
				tax[kind] = append(tax[kind], int64(n))
			case json.Number:
				if id, err := n.Int64(); err == nil {
					tax[kind] = append(tax[kind], id)
				}
			}
		}
	}

	return entity.JobDraft{
		Title:            strings.TrimSpace(p.Title),
		Description:      strings.TrimSpace(p.Description),
		DueDate:          p.DueDate,
		NumPages:         p.NumPages,
		Words:            p.Words,
		ProjectCost:      cost,
		AssignmentTopic:  p.AssignmentTopic,
		CitationStyle:    p.CitationStyle,
		PageAbstract:     p.PageAbstract,
		PrintableSources: p.PrintableSources,
		DetailedOutline:  p.DetailedOutline,
		Taxonomy:         tax,
	}, nil
}
