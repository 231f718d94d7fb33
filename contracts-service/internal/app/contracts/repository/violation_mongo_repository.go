package repository

import (
	"context"
	"fmt"
	"time"

	"gamarriando/contracts-service/internal/app/contracts/entity"
	"gamarriando/pkg/contracts"
	"gamarriando/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// violationDocument - представление отчета в MongoDB; id хранится строкой
type violationDocument struct {
	ID          string           `bson:"_id"`
	Schema      string           `bson:"schema"`
	Fingerprint string           `bson:"fingerprint"`
	Issues      entity.IssueList `bson:"issues"`
	IssueCount  int              `bson:"issue_count"`
	Subject     string           `bson:"subject,omitempty"`
	RequestID   string           `bson:"request_id,omitempty"`
	CreatedAt   time.Time        `bson:"created_at"`
}

func toDocument(r *entity.ViolationReport) violationDocument {
	return violationDocument{
		ID:          r.ID.String(),
		Schema:      r.Schema,
		Fingerprint: r.Fingerprint,
		Issues:      r.Issues,
		IssueCount:  r.IssueCount,
		Subject:     r.Subject,
		RequestID:   r.RequestID,
		CreatedAt:   r.CreatedAt,
	}
}

func (d violationDocument) toReport() (entity.ViolationReport, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return entity.ViolationReport{}, fmt.Errorf("invalid violation id %q: %w", d.ID, err)
	}
	return entity.ViolationReport{
		ID:          id,
		Schema:      d.Schema,
		Fingerprint: d.Fingerprint,
		Issues:      d.Issues,
		IssueCount:  d.IssueCount,
		Subject:     d.Subject,
		RequestID:   d.RequestID,
		CreatedAt:   d.CreatedAt,
	}, nil
}

var mongoSortFields = map[string]string{
	"created_at":  "created_at",
	"schema":      "schema",
	"issue_count": "issue_count",
}

// findOptions переводит пагинацию в сортировку и окно выборки
func findOptions(page contracts.Pagination) (*options.FindOptions, error) {
	column, err := sortColumn(page.SortBy)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, page.SortBy)
	}

	direction := 1
	if page.SortOrder == contracts.SortDesc {
		direction = -1
	}

	return options.Find().
		SetSort(bson.D{{Key: mongoSortFields[column], Value: direction}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size)), nil
}

type violationMongoRepository struct {
	collection *mongo.Collection
}

// NewViolationMongoRepository создает репозиторий и индексы по schema и created_at
func NewViolationMongoRepository(db *mongo.Database) ViolationRepository {
	collection := db.Collection("violation_reports")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "schema", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("schema_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_idx"),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// индекс может уже существовать, работа продолжается
		logger.Warn().Err(err).Msg("Failed to create violation indexes")
	}

	return &violationMongoRepository{collection: collection}
}

func (r *violationMongoRepository) Create(ctx context.Context, report *entity.ViolationReport) error {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, toDocument(report)); err != nil {
		return fmt.Errorf("failed to create violation report: %w", err)
	}

	return nil
}

func (r *violationMongoRepository) List(ctx context.Context, filter entity.ViolationFilter, page contracts.Pagination) ([]entity.ViolationReport, int64, error) {
	opts, err := findOptions(page)
	if err != nil {
		return nil, 0, err
	}

	query := bson.M{}
	if filter.Schema != "" {
		query["schema"] = filter.Schema
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count violation reports: %w", err)
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find violation reports: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []violationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode violation reports: %w", err)
	}

	reports := make([]entity.ViolationReport, 0, len(docs))
	for _, d := range docs {
		report, err := d.toReport()
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, report)
	}

	return reports, total, nil
}

func (r *violationMongoRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}
