package controller

import (
	"encoding/json"
	"testing"
	"time"

	"tabulator/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorySummaryOmitsSealState(t *testing.T) {
	sealedAt := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	category := &repository.Category{
		ID:            4,
		Name:          "Talent",
		ScoringMethod: repository.AVERAGE,
		MaxScore:      100,
		SealedAt:      &sealedAt,
		Criteria:      []*repository.Criterion{{ID: 1, CategoryID: 4, Name: "Technique", MaxScore: 100, Weight: 1}},
	}

	body, err := json.Marshal(toCategorySummaryResponse(category))
	require.NoError(t, err)
	fields := map[string]any{}
	require.NoError(t, json.Unmarshal(body, &fields))
	assert.Equal(t, "Talent", fields["name"])
	assert.NotContains(t, fields, "sealed_at")
	assert.NotContains(t, fields, "criteria")

	full := toCategoryResponse(category)
	assert.Equal(t, &sealedAt, full.SealedAt)
	assert.Len(t, full.Criteria, 1)
}
