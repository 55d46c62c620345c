package mongodb

import (
	"context"
	"time"

	"github.com/gra-paradise/patrol-contest-backend/internal/models"
	"github.com/gra-paradise/patrol-contest-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// OperatorRepository implements the repositories.OperatorRepository interface
type OperatorRepository struct {
	collection *mongo.Collection
}

// NewOperatorRepository creates a new OperatorRepository
func NewOperatorRepository(db *mongo.Database) repositories.OperatorRepository {
	return &OperatorRepository{
		collection: db.Collection("operators"),
	}
}

// Create creates a new operator account
func (r *OperatorRepository) Create(ctx context.Context, operator *models.Operator) error {
	operator.CreatedAt = time.Now()
	operator.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, operator)
	return err
}

// FindByEmail finds an operator by email
func (r *OperatorRepository) FindByEmail(ctx context.Context, email string) (*models.Operator, error) {
	var operator models.Operator
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&operator)
	if err != nil {
		return nil, err
	}
	return &operator, nil
}

// Count counts all operator accounts
func (r *OperatorRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
