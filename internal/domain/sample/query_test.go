package sample_test

import (
	"testing"

	"github.com/rpggio/merobase/internal/domain/sample"
	"github.com/stretchr/testify/require"
)

func queryFixture() []sample.Sample {
	return []sample.Sample{
		{SampleID: "A12-3", SampleName: "Coral reef", Species: "Acropora", Kingdom: sample.KingdomAnimalia, ProjectType: sample.ProjectTypeA, CollectionDate: "2024-01-10"},
		{SampleID: "B1-1", SampleName: "Soil fungus", Genus: "Mortierella", Kingdom: sample.KingdomFungi, ProjectType: sample.ProjectTypeB, CollectionDate: "2024-02-15"},
		{SampleID: "A12-4", SampleName: "Kelp", Family: "Laminariaceae", Kingdom: sample.KingdomPlantae, ProjectType: sample.ProjectTypeA, CollectionDate: "2024-03-01"},
		{SampleID: "B2-9", SampleName: "Archive", ProjectType: sample.ProjectTypeB, CollectionDate: "March 2019"},
	}
}

func sampleIDs(samples []sample.Sample) []string {
	out := make([]string, 0, len(samples))
	for _, s := range samples {
		out = append(out, s.SampleID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query sample.Query
		want  []string
	}{
		{"empty query keeps order", sample.Query{}, []string{"A12-3", "B1-1", "A12-4", "B2-9"}},
		{"text is case insensitive", sample.Query{Text: "CORAL"}, []string{"A12-3"}},
		{"text matches id", sample.Query{Text: "b1-1"}, []string{"B1-1"}},
		{"text matches genus", sample.Query{Text: "mortier"}, []string{"B1-1"}},
		{"text matches family", sample.Query{Text: "laminar"}, []string{"A12-4"}},
		{"kingdom all", sample.Query{Kingdom: sample.FilterAll}, []string{"A12-3", "B1-1", "A12-4", "B2-9"}},
		{"kingdom exact", sample.Query{Kingdom: "Fungi"}, []string{"B1-1"}},
		{"project type", sample.Query{ProjectType: "A"}, []string{"A12-3", "A12-4"}},
		{"date bounds inclusive", sample.Query{DateFrom: "2024-02-15", DateTo: "2024-03-01"}, []string{"B1-1", "A12-4"}},
		{"open upper bound", sample.Query{DateFrom: "2024-01-11"}, []string{"B1-1", "A12-4"}},
		{"conjunction", sample.Query{ProjectType: "A", DateTo: "2024-02-01"}, []string{"A12-3"}},
		{"no match", sample.Query{Text: "nothing"}, []string{}},
		{"limit and offset", sample.Query{Limit: 2, Offset: 1}, []string{"B1-1", "A12-4"}},
		{"offset past end", sample.Query{Offset: 10}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sample.Filter(queryFixture(), tt.query)
			require.NoError(t, err)
			require.Equal(t, tt.want, sampleIDs(got))
		})
	}
}

func TestFilter_UnparsableBound(t *testing.T) {
	_, err := sample.Filter(queryFixture(), sample.Query{DateFrom: "2024/01/01", DateTo: "soon"})
	var verr *sample.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []sample.FieldError{
		{Field: "dateFrom", Reason: sample.ReasonWrongType},
		{Field: "dateTo", Reason: sample.ReasonWrongType},
	}, verr.Violations)
}

func TestFilter_ResultIsSubsequence(t *testing.T) {
	all := queryFixture()
	got, err := sample.Filter(all, sample.Query{Text: "a"})
	require.NoError(t, err)

	i := 0
	for _, s := range got {
		for i < len(all) && all[i].SampleID != s.SampleID {
			i++
		}
		require.Less(t, i, len(all), "result %s out of order", s.SampleID)
		i++
	}
}
