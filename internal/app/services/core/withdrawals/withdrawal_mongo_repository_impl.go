package withdrawals

import (
	"context"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WithdrawalMongoRepository struct {
	Collection *mongo.Collection
}

func NewWithdrawalMongoRepository(db *mongo.Client, dbName string) contracts.WithdrawalRepository {
	return &WithdrawalMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionWithdrawals),
	}
}

func (r *WithdrawalMongoRepository) Create(ctx context.Context, withdrawal *models.Withdrawal) (*models.Withdrawal, error) {
	withdrawal.ID = ""
	result, err := r.Collection.InsertOne(ctx, withdrawal)
	if err != nil {
		return nil, exceptions.ErrMongoDBInsertDocument(err)
	}
	withdrawal.ID = result.InsertedID.(primitive.ObjectID).Hex()
	return withdrawal, nil
}

func (r *WithdrawalMongoRepository) FindByID(ctx context.Context, withdrawalID string) (*models.Withdrawal, error) {
	objectID, err := primitive.ObjectIDFromHex(withdrawalID)
	if err != nil {
		return nil, nil
	}

	var withdrawal models.Withdrawal
	err = r.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&withdrawal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &withdrawal, nil
}

func (r *WithdrawalMongoRepository) FindAll(ctx context.Context, filter *requests.WithdrawalFilter) ([]models.Withdrawal, error) {
	query := bson.M{}
	if filter != nil {
		if filter.Status != "" {
			query["status"] = filter.Status
		}
		if filter.DoctorID != "" {
			query["doctorId"] = filter.DoctorID
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "requestedAt", Value: -1}})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	withdrawals := make([]models.Withdrawal, 0)
	if err := cursor.All(ctx, &withdrawals); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return withdrawals, nil
}

// UpdateIfStatus replaces the document only while its stored status is
// still expectedStatus.
func (r *WithdrawalMongoRepository) UpdateIfStatus(ctx context.Context, withdrawal *models.Withdrawal, expectedStatus string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(withdrawal.ID)
	if err != nil {
		return false, exceptions.ErrMongoDBNotObjectID(err)
	}

	replacement := *withdrawal
	replacement.ID = ""
	result, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": objectID, "status": expectedStatus}, &replacement)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.MatchedCount == 1, nil
}
