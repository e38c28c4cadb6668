package database

import (
	"context"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionIndexes lists the indexes each collection needs. The payment id
// index is what stops one gateway payment being recorded on two
// appointments.
func CollectionIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		constvars.MongoCollectionAppointments: {
			{
				Keys: bson.D{{Key: "payment.paymentId", Value: 1}},
				Options: options.Index().
					SetName("uniq_payment_id").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"payment.paymentId": bson.M{"$type": "string", "$gt": ""}}),
			},
			{
				Keys:    bson.D{{Key: "doctorId", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("doctor_status"),
			},
			{
				Keys:    bson.D{{Key: "patientId", Value: 1}, {Key: "scheduledAt", Value: -1}},
				Options: options.Index().SetName("patient_scheduled"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}},
				Options: options.Index().SetName("status"),
			},
		},
		constvars.MongoCollectionWithdrawals: {
			{
				Keys:    bson.D{{Key: "doctorId", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("doctor_status"),
			},
			{
				Keys:    bson.D{{Key: "requestedAt", Value: -1}},
				Options: options.Index().SetName("requested_at"),
			},
			{
				Keys:    bson.D{{Key: "displayId", Value: 1}},
				Options: options.Index().SetName("uniq_display_id").SetUnique(true),
			},
		},
	}
}

// EnsureIndexes creates every index from CollectionIndexes. Creating an
// index that already exists with the same definition is a no-op.
func EnsureIndexes(ctx context.Context, client *mongo.Client, dbName string) (map[string][]string, error) {
	created := make(map[string][]string)
	for collection, models := range CollectionIndexes() {
		names, err := client.Database(dbName).Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return created, exceptions.ErrMongoDBCreateIndex(err)
		}
		created[collection] = names
	}
	return created, nil
}
