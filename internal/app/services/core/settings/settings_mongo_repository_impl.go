package settings

import (
	"context"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PlatformSettingsMongoRepository stores the settings as a single document
// keyed by PlatformSettingsSingletonKey.
type PlatformSettingsMongoRepository struct {
	Collection *mongo.Collection
}

func NewPlatformSettingsMongoRepository(db *mongo.Client, dbName string) contracts.PlatformSettingsRepository {
	return &PlatformSettingsMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionPlatformSettings),
	}
}

func (r *PlatformSettingsMongoRepository) Find(ctx context.Context) (*models.PlatformSettings, error) {
	var settings models.PlatformSettings
	err := r.Collection.FindOne(ctx, bson.M{"_id": constvars.PlatformSettingsSingletonKey}).Decode(&settings)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &settings, nil
}

func (r *PlatformSettingsMongoRepository) Upsert(ctx context.Context, settings *models.PlatformSettings) error {
	settings.Key = constvars.PlatformSettingsSingletonKey
	_, err := r.Collection.ReplaceOne(ctx,
		bson.M{"_id": constvars.PlatformSettingsSingletonKey},
		settings,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

// InsertIfMissing seeds the settings document. It reports whether a new
// document was written.
func (r *PlatformSettingsMongoRepository) InsertIfMissing(ctx context.Context, settings *models.PlatformSettings) (bool, error) {
	settings.Key = constvars.PlatformSettingsSingletonKey
	result, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": constvars.PlatformSettingsSingletonKey},
		bson.M{"$setOnInsert": bson.M{
			"patientCommission": settings.PatientCommission,
			"doctorCommission":  settings.DoctorCommission,
			"updatedBy":         settings.UpdatedBy,
			"updatedAt":         settings.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.UpsertedCount == 1, nil
}
