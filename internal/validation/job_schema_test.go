package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
)

func validPost() map[string]interface{} {
	return map[string]interface{}{
		"title":        "Literature review",
		"description":  "Ten sources, APA",
		"due_date":     "2024-07-01",
		"project_cost": "50",
		"num_pages":    float64(3),
		"skills":       []interface{}{float64(1), float64(4)},
		"subjects":     []interface{}{float64(2)},
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, apperr.KindValidation, ae.Kind)
	return ae.Fields
}

func TestValidate_OK(t *testing.T) {
	d, err := NewJobValidator().Validate(validPost())
	require.NoError(t, err)

	assert.Equal(t, "Literature review", d.Title)
	assert.Equal(t, "50.00", d.ProjectCost)
	assert.Equal(t, 3, d.NumPages)
	assert.ElementsMatch(t, []int64{1, 4}, d.Taxonomy[entity.KindSkill])
	assert.Equal(t, []int64{2}, d.Taxonomy[entity.KindSubject])
}

func TestValidate_MissingTitleAndDescription(t *testing.T) {
	post := validPost()
	delete(post, "title")
	delete(post, "description")

	_, err := NewJobValidator().Validate(post)
	fields := fieldsOf(t, err)

	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "description")
	assert.NotContains(t, fields, "due_date")
}

func TestValidate_EmptyTitle(t *testing.T) {
	post := validPost()
	post["title"] = ""

	_, err := NewJobValidator().Validate(post)
	assert.Contains(t, fieldsOf(t, err), "title")
}

func TestValidate_BlankTitleAndDescription(t *testing.T) {
	post := validPost()
	post["title"] = "   "
	post["description"] = "\t\n "

	_, err := NewJobValidator().Validate(post)
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "description")

	post = validPost()
	post["title"] = "  Essay  "
	post["description"] = " Ten sources "
	d, err := NewJobValidator().Validate(post)
	require.NoError(t, err)
	assert.Equal(t, "Essay", d.Title)
	assert.Equal(t, "Ten sources", d.Description)
}

func TestValidate_Cost(t *testing.T) {
	for _, bad := range []interface{}{
		"-3", float64(-1), "ten",
		"NaN", "Inf", "+Inf", "-Inf", "infinity",
		"1e300", float64(1e300), "10000000000", "9999999999.999",
		"1/3", "0x10", "",
	} {
		post := validPost()
		post["project_cost"] = bad

		_, err := NewJobValidator().Validate(post)
		assert.Contains(t, fieldsOf(t, err), "project_cost", "cost %v", bad)
	}

	post := validPost()
	post["project_cost"] = float64(12.5)
	d, err := NewJobValidator().Validate(post)
	require.NoError(t, err)
	assert.Equal(t, "12.50", d.ProjectCost)

	// digits beyond float64 precision survive
	post = validPost()
	post["project_cost"] = "9999999999.99"
	d, err = NewJobValidator().Validate(post)
	require.NoError(t, err)
	assert.Equal(t, "9999999999.99", d.ProjectCost)

	// decoded with UseNumber: rounding sees the exact literal, not its float64 neighbour
	post = validPost()
	post["project_cost"] = json.Number("1.004999999999999999")
	post["skills"] = []interface{}{json.Number("3")}
	d, err = NewJobValidator().Validate(post)
	require.NoError(t, err)
	assert.Equal(t, "1.00", d.ProjectCost)
	assert.Equal(t, []int64{3}, d.Taxonomy[entity.KindSkill])
}

func TestMoney(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"40", "40.00"},
		{" 0.005 ", "0.01"},
		{"1.5e2", "150.00"},
		{".5", "0.50"},
		{"1234567.891", "1234567.89"},
	}
	for _, c := range cases {
		got, msg := Money(c.in)
		assert.Empty(t, msg, c.in)
		assert.Equal(t, c.out, got, c.in)
	}

	for _, bad := range []string{"NaN", "Inf", "-1", "1e999", "abc"} {
		_, msg := Money(bad)
		assert.NotEmpty(t, msg, bad)
	}
}

func TestValidate_DueDate(t *testing.T) {
	post := validPost()
	delete(post, "due_date")
	_, err := NewJobValidator().Validate(post)
	assert.Contains(t, fieldsOf(t, err), "due_date")

	post = validPost()
	post["due_date"] = "01/07/2024"
	_, err = NewJobValidator().Validate(post)
	assert.Contains(t, fieldsOf(t, err), "due_date")
}

func TestValidate_TaxonomyMustBeIDs(t *testing.T) {
	post := validPost()
	post["skills"] = []interface{}{"python"}

	_, err := NewJobValidator().Validate(post)
	fields := fieldsOf(t, err)
	found := false
	for k := range fields {
		if k == "skills" || k == "skills.0" {
			found = true
		}
	}
	assert.True(t, found, "fields: %v", fields)
}
