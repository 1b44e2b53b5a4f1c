package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fasaldoc/models"
)

// caseDoc is one owner's whole collection, ordered most recent first.
type caseDoc struct {
	Owner     string              `bson:"_id"`
	Cases     []models.CaseRecord `bson:"cases"`
	UpdatedAt time.Time           `bson:"updatedAt"`
}

// Mongo stores each owner's collection as a single document.
type Mongo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll, timeout: 5 * time.Second}
}

func (m *Mongo) LoadAll(ctx context.Context, owner string) ([]models.CaseRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var doc caseDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": owner}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []models.CaseRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find cases: %w", err)
	}
	return doc.Cases, nil
}

func (m *Mongo) SaveAll(ctx context.Context, owner string, records []models.CaseRecord) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if records == nil {
		records = []models.CaseRecord{}
	}
	doc := caseDoc{Owner: owner, Cases: records, UpdatedAt: time.Now().UTC()}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": owner}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace cases: %w", err)
	}
	return nil
}
