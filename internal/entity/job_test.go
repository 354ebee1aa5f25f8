package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJob_TimePosted(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		age  time.Duration
		want string
	}{
		{10 * time.Second, "Just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{2 * time.Hour, "2 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{72 * time.Hour, "3 days ago"},
	}
	for _, c := range cases {
		j := Job{CreatedAt: now.Add(-c.age)}
		if got := j.TimePosted(now); got != c.want {
			t.Fatalf("age=%v: expected %q, got %q", c.age, c.want, got)
		}
	}
}

func TestJobDraft_NewJob(t *testing.T) {
	client := uuid.New()
	d := JobDraft{Title: "Essay", Description: "Write it", DueDate: "2024-06-01", ProjectCost: "50"}

	j, err := d.NewJob(client, true)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if j.ClientID != client || !j.Paid || j.NumPages != 1 {
		t.Fatalf("unexpected job: %+v", j)
	}
	if j.DueDate.Format(DateLayout) != "2024-06-01" {
		t.Fatalf("unexpected due date: %v", j.DueDate)
	}

	if _, err := (JobDraft{DueDate: "june"}).NewJob(client, false); err == nil {
		t.Fatalf("expected due date parse error")
	}
}

func TestTaxonomy_Overlaps(t *testing.T) {
	job := Taxonomy{KindSkill: {1, 2}, KindSubject: {7}}
	profile := Taxonomy{KindSkill: {2, 3}, KindSubject: {7, 8}}

	if !job.Overlaps(profile, []TaxonomyKind{KindSkill, KindSubject}) {
		t.Fatalf("expected overlap")
	}
	if job.Overlaps(profile, []TaxonomyKind{KindSkill, KindLanguage}) {
		t.Fatalf("expected no overlap on missing kind")
	}
}
