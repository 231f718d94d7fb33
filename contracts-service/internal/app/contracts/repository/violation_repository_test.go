package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"gamarriando/contracts-service/internal/app/contracts/entity"
	"gamarriando/pkg/contracts"
	"gamarriando/pkg/schema"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ViolationRepositoryTestSuite тестовый suite для PostgreSQL repository
type ViolationRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  ViolationRepository
	sqlDB *sql.DB
}

func TestViolationRepositorySuite(t *testing.T) {
	suite.Run(t, new(ViolationRepositoryTestSuite))
}

func (s *ViolationRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewViolationRepository(s.db, "contracts-test")
}

func (s *ViolationRepositoryTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.sqlDB.Close()
}

func newReport() *entity.ViolationReport {
	return &entity.ViolationReport{
		ID:          uuid.New(),
		Schema:      "product.create",
		Fingerprint: "ab12",
		Issues: entity.IssueList{
			{Path: "price", Kind: schema.KindMissing, Code: "required", Message: "is required"},
		},
		IssueCount: 1,
		CreatedAt:  time.Now().UTC(),
	}
}

// ===================== Create Tests =====================

func (s *ViolationRepositoryTestSuite) TestCreate_Success() {
	ctx := context.Background()
	report := newReport()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "violation_reports"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Create(ctx, report)

	// Assert
	s.NoError(err)
}

func (s *ViolationRepositoryTestSuite) TestCreate_DatabaseError() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "violation_reports"`)).
		WillReturnError(sql.ErrConnDone)
	s.mock.ExpectRollback()

	err := s.repo.Create(ctx, newReport())

	s.Error(err)
	s.ErrorIs(err, sql.ErrConnDone)
}

// ===================== List Tests =====================

func (s *ViolationRepositoryTestSuite) TestList_Success() {
	ctx := context.Background()
	id := uuid.New()
	createdAt := time.Now().UTC()
	page := contracts.Pagination{Page: 2, Size: 1, SortBy: "createdAt", SortOrder: contracts.SortDesc}

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "violation_reports" WHERE schema = $1`)).
		WithArgs("order.create").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	rows := sqlmock.NewRows([]string{"id", "schema", "fingerprint", "issues", "issue_count", "subject", "request_id", "created_at"}).
		AddRow(id.String(), "order.create", "ff00", `[{"path":"items","kind":"constraint","code":"min","message":"must be at least 1 items"}]`, 1, "", "req-1", createdAt)
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "violation_reports" WHERE schema = $1 ORDER BY created_at desc LIMIT`)).
		WillReturnRows(rows)

	// Act
	reports, total, err := s.repo.List(ctx, entity.ViolationFilter{Schema: "order.create"}, page)

	// Assert
	s.NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(reports, 1)
	s.Equal(id, reports[0].ID)
	s.Require().Len(reports[0].Issues, 1)
	s.Equal("items", reports[0].Issues[0].Path)
	s.Equal(schema.KindConstraint, reports[0].Issues[0].Kind)
}

func (s *ViolationRepositoryTestSuite) TestList_EmptySkipsSelect() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "violation_reports"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	reports, total, err := s.repo.List(ctx, entity.ViolationFilter{}, contracts.DefaultPagination())

	s.NoError(err)
	s.Zero(total)
	s.NotNil(reports)
	s.Empty(reports)
}

func (s *ViolationRepositoryTestSuite) TestList_InvalidSortField() {
	page := contracts.DefaultPagination()
	page.SortBy = "password"

	_, _, err := s.repo.List(context.Background(), entity.ViolationFilter{}, page)

	s.ErrorIs(err, ErrInvalidSortField)
}

func (s *ViolationRepositoryTestSuite) TestList_CountError() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "violation_reports"`)).
		WillReturnError(sql.ErrConnDone)

	_, _, err := s.repo.List(context.Background(), entity.ViolationFilter{}, contracts.DefaultPagination())

	s.ErrorIs(err, sql.ErrConnDone)
}
