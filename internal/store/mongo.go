package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/i474232898/weather-dashboard/internal/user"
)

const usersCollection = "users"

// MongoStore keeps one document per user. Save is a ReplaceOne of the whole
// document.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
}

// OpenMongo connects to uri, pings the deployment and ensures the unique
// email index exists.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	users := client.Database(database).Collection(usersCollection)
	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo email index: %w", err)
	}

	return &MongoStore{client: client, users: users}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Create(ctx context.Context, u *user.User) error {
	doc := normalised(u)
	_, err := s.users.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return user.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, id string) (*user.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) LoadByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.findOne(ctx, bson.M{"email": emailKey(email)})
}

func (s *MongoStore) Save(ctx context.Context, u *user.User) error {
	doc := normalised(u)
	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if mongo.IsDuplicateKeyError(err) {
		return user.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("replace user: %w", err)
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*user.User, error) {
	var u user.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// normalised returns a copy with a canonical email and non-nil lists, so
// documents never hold null arrays.
func normalised(u *user.User) *user.User {
	doc := u.Clone()
	doc.Email = emailKey(doc.Email)
	if doc.Favourites == nil {
		doc.Favourites = []user.SavedLocation{}
	}
	if doc.RecentSearches == nil {
		doc.RecentSearches = []user.RecentSearchEntry{}
	}
	return doc
}
