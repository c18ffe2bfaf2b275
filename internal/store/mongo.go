package store

import (
	"context"
	"time"

	"food-redistribution-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	donationCollection = "donations"
	requestCollection  = "donation_requests"
)

// MongoStore implements DonationStore and RequestStore on MongoDB.
// The conditional writes rely on MongoDB applying the filter and the
// update of a single document atomically.
type MongoStore struct {
	DB *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{DB: db}
}

func (s *MongoStore) donations() *mongo.Collection {
	return s.DB.Collection(donationCollection)
}

func (s *MongoStore) requests() *mongo.Collection {
	return s.DB.Collection(requestCollection)
}

func (s *MongoStore) Insert(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	result, err := s.donations().InsertOne(ctx, d)
	if err != nil {
		return nil, &StoreError{Err: err}
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		d.ID = oid
	}
	return d, nil
}

func (s *MongoStore) Get(ctx context.Context, donationID string) (*models.Donation, error) {
	var d models.Donation
	err := s.donations().FindOne(ctx, bson.M{"donationID": donationID}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Err: err}
	}
	return &d, nil
}

func (s *MongoStore) Replace(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	result, err := s.donations().ReplaceOne(ctx, bson.M{"donationID": d.DonationID}, d)
	if err != nil {
		return nil, &StoreError{Err: err}
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *MongoStore) Delete(ctx context.Context, donationID string) error {
	result, err := s.donations().DeleteOne(ctx, bson.M{"donationID": donationID})
	if err != nil {
		return &StoreError{Err: err}
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) FindAll(ctx context.Context) ([]models.Donation, error) {
	return s.findDonations(ctx, bson.M{})
}

func (s *MongoStore) FindByOrganization(ctx context.Context, organizationID string) ([]models.Donation, error) {
	return s.findDonations(ctx, bson.M{"organizationID": organizationID})
}

func (s *MongoStore) FindByStatus(ctx context.Context, status string) ([]models.Donation, error) {
	return s.findDonations(ctx, bson.M{"status": status})
}

func (s *MongoStore) FindExpiringBefore(ctx context.Context, cutoff time.Time, status string) ([]models.Donation, error) {
	return s.findDonations(ctx, bson.M{
		"expiryDate": bson.M{"$lt": cutoff},
		"status":     status,
	})
}

func (s *MongoStore) FindExpiredBefore(ctx context.Context, cutoff time.Time, notStatus string) ([]models.Donation, error) {
	return s.findDonations(ctx, bson.M{
		"expiryDate": bson.M{"$lt": cutoff},
		"status":     bson.M{"$ne": notStatus},
	})
}

func (s *MongoStore) findDonations(ctx context.Context, filter bson.M) ([]models.Donation, error) {
	cursor, err := s.donations().Find(ctx, filter)
	if err != nil {
		return nil, &StoreError{Err: err}
	}
	defer cursor.Close(ctx)

	var donations []models.Donation
	if err = cursor.All(ctx, &donations); err != nil {
		return nil, &StoreError{Err: err}
	}
	if donations == nil {
		donations = []models.Donation{}
	}
	return donations, nil
}

// ReplaceIfStatus is the at-most-one-winner primitive: the status check and
// the replace are one FindOneAndReplace, so of N racing callers exactly one
// matches the filter.
func (s *MongoStore) ReplaceIfStatus(ctx context.Context, d *models.Donation, expect string) (*models.Donation, error) {
	filter := bson.M{"donationID": d.DonationID, "status": expect}
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)

	var updated models.Donation
	err := s.donations().FindOneAndReplace(ctx, filter, d, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, &StoreError{Err: err}
	}

	// No match: either the record is gone or the status moved under us.
	count, countErr := s.donations().CountDocuments(ctx, bson.M{"donationID": d.DonationID})
	if countErr != nil {
		return nil, &StoreError{Err: countErr}
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrStatusConflict
}

func (s *MongoStore) MarkExpired(ctx context.Context, donationID string) error {
	filter := bson.M{"donationID": donationID, "status": bson.M{"$ne": models.StatusExpired}}
	update := bson.M{"$set": bson.M{"status": models.StatusExpired}}

	result, err := s.donations().UpdateOne(ctx, filter, update)
	if err != nil {
		return &StoreError{Err: err}
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, err := s.donations().CountDocuments(ctx, bson.M{"donationID": donationID})
	if err != nil {
		return &StoreError{Err: err}
	}
	if count == 0 {
		return ErrNotFound
	}
	// Already EXPIRED.
	return nil
}

func (s *MongoStore) InsertRequest(ctx context.Context, r *models.DonationRequest) (*models.DonationRequest, error) {
	result, err := s.requests().InsertOne(ctx, r)
	if err != nil {
		return nil, &StoreError{Err: err}
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		r.ID = oid
	}
	return r, nil
}

func (s *MongoStore) GetRequest(ctx context.Context, requestID string) (*models.DonationRequest, error) {
	var r models.DonationRequest
	err := s.requests().FindOne(ctx, bson.M{"requestID": requestID}).Decode(&r)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Err: err}
	}
	return &r, nil
}

func (s *MongoStore) ReplaceRequest(ctx context.Context, r *models.DonationRequest) (*models.DonationRequest, error) {
	result, err := s.requests().ReplaceOne(ctx, bson.M{"requestID": r.RequestID}, r)
	if err != nil {
		return nil, &StoreError{Err: err}
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *MongoStore) FindRequestsByOrganization(ctx context.Context, organizationID string) ([]models.DonationRequest, error) {
	return s.findRequests(ctx, bson.M{"organizationID": organizationID})
}

func (s *MongoStore) FindRequestsByStatus(ctx context.Context, status string) ([]models.DonationRequest, error) {
	return s.findRequests(ctx, bson.M{"status": status})
}

func (s *MongoStore) FindRequestByDonation(ctx context.Context, donationID string) (*models.DonationRequest, error) {
	opts := options.FindOne().SetSort(bson.M{"requestDate": -1})
	var r models.DonationRequest
	err := s.requests().FindOne(ctx, bson.M{"donationID": donationID}, opts).Decode(&r)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Err: err}
	}
	return &r, nil
}

func (s *MongoStore) findRequests(ctx context.Context, filter bson.M) ([]models.DonationRequest, error) {
	cursor, err := s.requests().Find(ctx, filter)
	if err != nil {
		return nil, &StoreError{Err: err}
	}
	defer cursor.Close(ctx)

	var requests []models.DonationRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, &StoreError{Err: err}
	}
	if requests == nil {
		requests = []models.DonationRequest{}
	}
	return requests, nil
}
