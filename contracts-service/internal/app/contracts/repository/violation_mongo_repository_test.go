package repository

import (
	"testing"
	"time"

	"gamarriando/pkg/contracts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestViolationDocument_RoundTrip(t *testing.T) {
	// Arrange
	report := newReport()
	report.CreatedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	// Act
	raw, err := bson.Marshal(toDocument(report))
	require.NoError(t, err)

	var doc violationDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got, err := doc.toReport()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, report.ID.String(), doc.ID)
	assert.Equal(t, *report, got)
}

func TestViolationDocument_StoresIDAsString(t *testing.T) {
	raw, err := bson.Marshal(toDocument(newReport()))
	require.NoError(t, err)

	id := bson.Raw(raw).Lookup("_id")
	_, ok := id.StringValueOK()
	assert.True(t, ok)
	assert.Equal(t, "product.create", bson.Raw(raw).Lookup("schema").StringValue())
}

func TestViolationDocument_InvalidID(t *testing.T) {
	_, err := violationDocument{ID: "not-a-uuid"}.toReport()

	assert.ErrorContains(t, err, "invalid violation id")
}

func TestFindOptions(t *testing.T) {
	tests := []struct {
		name string
		page contracts.Pagination
		sort bson.D
		skip int64
	}{
		{
			name: "default sort by created_at",
			page: contracts.Pagination{Page: 1, Size: 20, SortOrder: contracts.SortAsc},
			sort: bson.D{{Key: "created_at", Value: 1}},
			skip: 0,
		},
		{
			name: "issue count descending on third page",
			page: contracts.Pagination{Page: 3, Size: 10, SortBy: "issueCount", SortOrder: contracts.SortDesc},
			sort: bson.D{{Key: "issue_count", Value: -1}},
			skip: 20,
		},
		{
			name: "schema",
			page: contracts.Pagination{Page: 2, Size: 5, SortBy: "schema", SortOrder: contracts.SortAsc},
			sort: bson.D{{Key: "schema", Value: 1}},
			skip: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := findOptions(tt.page)

			require.NoError(t, err)
			assert.Equal(t, tt.sort, opts.Sort)
			require.NotNil(t, opts.Skip)
			assert.Equal(t, tt.skip, *opts.Skip)
			require.NotNil(t, opts.Limit)
			assert.Equal(t, int64(tt.page.Size), *opts.Limit)
		})
	}
}

func TestFindOptions_UnknownSortField(t *testing.T) {
	_, err := findOptions(contracts.Pagination{Page: 1, Size: 20, SortBy: "fingerprint"})

	assert.ErrorIs(t, err, ErrInvalidSortField)
}

func TestMongoSortFields_CoverSortColumns(t *testing.T) {
	for field, column := range sortColumns {
		_, ok := mongoSortFields[column]
		assert.Truef(t, ok, "sort field %q has no mongo mapping", field)
	}
}
