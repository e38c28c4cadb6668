package appointments

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

type AppointmentMongoRepository struct {
	Collection *mongo.Collection
}

func NewAppointmentMongoRepository(db *mongo.Client, dbName string) contracts.AppointmentRepository {
	return &AppointmentMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionAppointments),
	}
}

func (r *AppointmentMongoRepository) Create(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	appointment.ID = ""
	result, err := r.Collection.InsertOne(ctx, appointment)
	if mongo.IsDuplicateKeyError(err) && appointment.Payment != nil {
		return nil, exceptions.ErrPaymentAlreadyRecorded(err, appointment.Payment.PaymentID)
	}
	if err != nil {
		return nil, exceptions.ErrMongoDBInsertDocument(err)
	}
	appointment.ID = result.InsertedID.(primitive.ObjectID).Hex()
	return appointment, nil
}

// FindByID returns nil when no appointment has the id, including when the
// id is not a valid ObjectID.
func (r *AppointmentMongoRepository) FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	objectID, err := primitive.ObjectIDFromHex(appointmentID)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *AppointmentMongoRepository) FindByPaymentID(ctx context.Context, paymentID string) (*models.Appointment, error) {
	return r.findOne(ctx, bson.M{"payment.paymentId": paymentID})
}

func (r *AppointmentMongoRepository) FindAll(ctx context.Context, filter *requests.AppointmentFilter) ([]models.Appointment, error) {
	query := bson.M{}
	if filter != nil {
		if filter.Status != "" {
			query["status"] = filter.Status
		}
		if filter.DoctorID != "" {
			query["doctorId"] = filter.DoctorID
		}
		if filter.PatientID != "" {
			query["patientId"] = filter.PatientID
		}
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: -1}}))
}

func (r *AppointmentMongoRepository) FindByDoctorIDAndStatus(ctx context.Context, doctorID, status string) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{"doctorId": doctorID, "status": status})
}

func (r *AppointmentMongoRepository) FindByStatuses(ctx context.Context, statuses []string) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{"status": bson.M{"$in": statuses}})
}

// UpdateIfVersion replaces the document only if its stored version still
// equals expectedVersion. The caller sets the new version on appointment.
func (r *AppointmentMongoRepository) UpdateIfVersion(ctx context.Context, appointment *models.Appointment, expectedVersion int64) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(appointment.ID)
	if err != nil {
		return false, exceptions.ErrMongoDBNotObjectID(err)
	}

	replacement := *appointment
	replacement.ID = ""
	filter := bson.M{"_id": objectID, "version": expectedVersion}

	result, err := r.Collection.ReplaceOne(ctx, filter, &replacement)
	if mongo.IsDuplicateKeyError(err) && appointment.Payment != nil {
		return false, exceptions.ErrPaymentAlreadyRecorded(err, appointment.Payment.PaymentID)
	}
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.MatchedCount == 1, nil
}

func (r *AppointmentMongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.Collection.FindOne(ctx, filter).Decode(&appointment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &appointment, nil
}

func (r *AppointmentMongoRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Appointment, error) {
	cursor, err := r.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return appointments, nil
}
