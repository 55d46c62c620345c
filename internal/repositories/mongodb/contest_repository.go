package mongodb

import (
	"context"
	"time"

	"github.com/gra-paradise/patrol-contest-backend/internal/models"
	"github.com/gra-paradise/patrol-contest-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContestRepository implements the repositories.ContestRepository interface
type ContestRepository struct {
	collection *mongo.Collection
}

// NewContestRepository creates a new ContestRepository
func NewContestRepository(db *mongo.Database) repositories.ContestRepository {
	return &ContestRepository{
		collection: db.Collection("patrol_contests"),
	}
}

// Create creates a new contest
func (r *ContestRepository) Create(ctx context.Context, contest *models.Contest) error {
	contest.CreatedAt = time.Now()
	contest.UpdatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, contest)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		contest.ID = oid
	}
	return nil
}

// FindByID finds a contest by ID
func (r *ContestRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Contest, error) {
	var contest models.Contest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&contest)
	if err != nil {
		return nil, err
	}
	return &contest, nil
}

// FindActiveByGuild finds the guild's contest that is active and whose
// window contains the given instant.
func (r *ContestRepository) FindActiveByGuild(ctx context.Context, guildID string, at time.Time) (*models.Contest, error) {
	filter := bson.M{
		"guildId":   guildID,
		"active":    true,
		"startDate": bson.M{"$lte": at},
		"endDate":   bson.M{"$gte": at},
	}
	var contest models.Contest
	err := r.collection.FindOne(ctx, filter).Decode(&contest)
	if err != nil {
		return nil, err
	}
	return &contest, nil
}

// FindByGuild finds all contests for a guild, newest first
func (r *ContestRepository) FindByGuild(ctx context.Context, guildID string) ([]*models.Contest, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"guildId": guildID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var contests []*models.Contest
	if err := cursor.All(ctx, &contests); err != nil {
		return nil, err
	}
	return contests, nil
}

// Update updates a contest
func (r *ContestRepository) Update(ctx context.Context, contest *models.Contest) error {
	contest.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": contest.ID}, contest)
	return err
}
