package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/valuation-agent/internal/marketdata"
	"github.com/sells-group/valuation-agent/internal/model"
	"github.com/sells-group/valuation-agent/internal/pipeline"
)

const batchYAML = `properties:
  - property_address: 123 Test St
    square_footage: 2200
    bedrooms: 4
    bathrooms: 2.5
    year_built: 2010
  - property_address: 9 Unknown Rd
    property_type: condo
    request_id: req-2
    requesting_agent: lender
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadBatch(t *testing.T) {
	subjects, err := readBatch(writeTemp(t, "batch.yaml", batchYAML))
	require.NoError(t, err)
	require.Len(t, subjects, 2)

	assert.Equal(t, "123 Test St", subjects[0].Address)
	assert.Equal(t, model.PropertyTypeSingleFamily, subjects[0].Type)
	require.NotNil(t, subjects[0].SquareFootage)
	assert.Equal(t, 2200, *subjects[0].SquareFootage)
	assert.False(t, subjects[0].IsA2A())

	assert.Equal(t, model.PropertyTypeCondo, subjects[1].Type)
	assert.Nil(t, subjects[1].SquareFootage)
	assert.Equal(t, "req-2", subjects[1].RequestID)
	assert.True(t, subjects[1].IsA2A())
}

func TestReadBatch_Errors(t *testing.T) {
	_, err := readBatch(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = readBatch(writeTemp(t, "bad.yaml", "properties: [unclosed"))
	assert.Error(t, err)
}

func batchSource() *marketdata.Static {
	return &marketdata.Static{
		Sales: []model.Comparable{
			{Address: "a", SoldPrice: 450000},
			{Address: "b", SoldPrice: 460000},
			{Address: "c", SoldPrice: 470000},
		},
		Trends: model.MarketTrends{Direction: model.DirectionStable, BuyerDemand: model.LevelModerate, Inventory: model.LevelModerate},
		Neighborhood: model.Neighborhood{SchoolRating: 9},
	}
}

func TestProcessBatch(t *testing.T) {
	subjects, err := readBatch(writeTemp(t, "batch.yaml", batchYAML))
	require.NoError(t, err)
	subjects = append(subjects, model.Subject{Property: model.Property{Address: "x", Type: "castle"}})

	var out bytes.Buffer
	failed, err := processBatch(context.Background(), pipeline.New(batchSource(), nil), subjects, 2, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	var first batchLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Empty(t, first.Error)
	require.NotNil(t, first.Record.Valuation)
	assert.InDelta(t, 483000, first.Record.Valuation.EstimatedValue, 1e-6)

	var second batchLine
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, model.StepResponseSent, second.Record.CurrentStep)
	assert.Len(t, second.Record.Log.Errors, 1)

	var third batchLine
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &third))
	assert.NotEmpty(t, third.Error)
	assert.Equal(t, model.StepWorkflowFailed, third.Record.CurrentStep)
}

func TestProcessBatch_Empty(t *testing.T) {
	var out bytes.Buffer
	failed, err := processBatch(context.Background(), pipeline.New(batchSource(), nil), nil, 2, &out)
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Empty(t, out.String())
}
