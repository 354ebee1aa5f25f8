package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
	"marketplace-service/internal/service"
)

func strPtr(s string) *string { return &s }

func TestProfile_Portfolio(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.profiles.AddPortfolioItem(ctx, e.freelancer.ID, service.PortfolioRequest{
		Title: "   ", Description: "Essay", Link: strPtr("not a url"),
	})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "title")
	assert.Contains(t, ae.Fields, "link")
	assert.Contains(t, ae.Fields, "non_field_errors")

	first, err := e.profiles.AddPortfolioItem(ctx, e.freelancer.ID, service.PortfolioRequest{
		Title: " Thesis ", Description: "Chapter one", Document: strPtr("https://cdn.test/thesis.pdf"), Image: strPtr(" "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Thesis", first.Title)
	assert.Nil(t, first.Image)

	second, err := e.profiles.AddPortfolioItem(ctx, e.freelancer.ID, service.PortfolioRequest{
		Title: "Poster", Description: "Print", Image: strPtr("https://cdn.test/poster.png"),
	})
	require.NoError(t, err)

	list, err := e.profiles.Portfolio(ctx, e.freelancer.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	// someone else's item is invisible
	other := e.addFreelancer("other")
	requireKind(t, e.profiles.DeletePortfolioItem(ctx, other.ID, first.ID), apperr.KindNotFound)
	require.NoError(t, e.profiles.DeletePortfolioItem(ctx, e.freelancer.ID, first.ID))
	requireKind(t, e.profiles.DeletePortfolioItem(ctx, e.freelancer.ID, first.ID), apperr.KindNotFound)
}

func TestProfile_Education(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.store.AddTerm(entity.Term{ID: 7, Kind: entity.KindEducationLevel, Name: "Masters"})
	e.store.AddTerm(entity.Term{ID: 8, Kind: entity.KindSkill, Name: "Editing"})

	_, err := e.profiles.AddEducation(ctx, e.freelancer.ID, service.EducationRequest{AcademicMajor: "History"})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "graduated_from")

	// a skill id is not an education level
	_, err = e.profiles.AddEducation(ctx, e.freelancer.ID, service.EducationRequest{
		GraduatedFrom: "Nairobi", AcademicMajor: "History", EducationLevels: []int64{8},
	})
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "education_levels")

	ed, err := e.profiles.AddEducation(ctx, e.freelancer.ID, service.EducationRequest{
		GraduatedFrom: "Nairobi", AcademicMajor: "History", EducationLevels: []int64{7},
		Certificate: strPtr("https://cdn.test/cert.pdf"),
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ed.EducationLevels)

	list, err := e.profiles.Education(ctx, e.freelancer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	requireKind(t, e.profiles.DeleteEducation(ctx, e.client.ID, ed.ID), apperr.KindNotFound)
	require.NoError(t, e.profiles.DeleteEducation(ctx, e.freelancer.ID, ed.ID))
}

func TestProfile_UpdateSkills(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.store.AddTerm(entity.Term{ID: 1, Kind: entity.KindSkill, Name: "Editing"})
	e.store.AddTerm(entity.Term{ID: 2, Kind: entity.KindSkill, Name: "Research"})
	e.store.AddTerm(entity.Term{ID: 3, Kind: entity.KindSubject, Name: "History"})
	e.store.SetFreelancerTaxonomy(e.freelancer.ID, entity.Taxonomy{
		entity.KindSkill:   {1},
		entity.KindSubject: {3},
	})

	tax, err := e.profiles.UpdateSkills(ctx, e.freelancer.ID, map[string][]int64{"skills": {2}})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, tax[entity.KindSkill])
	assert.Equal(t, []int64{3}, tax[entity.KindSubject], "lists left out are kept")

	_, err = e.profiles.UpdateSkills(ctx, e.freelancer.ID, map[string][]int64{"skills": {3}})
	requireKind(t, err, apperr.KindValidation)

	_, err = e.profiles.UpdateSkills(ctx, e.freelancer.ID, map[string][]int64{"education_levels": {1}})
	requireKind(t, err, apperr.KindValidation)

	tax, err = e.profiles.UpdateSkills(ctx, e.freelancer.ID, map[string][]int64{"subjects": {}})
	require.NoError(t, err)
	assert.Empty(t, tax[entity.KindSubject])
	assert.Equal(t, []int64{2}, tax[entity.KindSkill])

	// matching uses the new terms
	got, err := e.store.Users().FreelancerTaxonomy(ctx, e.freelancer.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, got[entity.KindSkill])
}
