package model

import (
	"context"

	"PolyChat/data/database/mgo/mongoutil"
	"PolyChat/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Contacts lists the users and rooms an identity is connected to.
type Contacts struct {
	Username string   `bson:"username" json:"username"`
	Users    []string `bson:"users" json:"users"`
	Rooms    []string `bson:"rooms" json:"rooms"`
}

func (c *Contacts) GetTableName() string {
	return "contacts"
}

func (c *Contacts) HasUser(username string) bool {
	for _, u := range c.Users {
		if u == username {
			return true
		}
	}
	return false
}

// Store keeps contact lists. Add* upsert the owner's document. Get of an
// unknown owner returns an empty list.
type Store interface {
	Get(ctx context.Context, username string) (*Contacts, error)
	Create(ctx context.Context, username string) error
	AddUser(ctx context.Context, username, contact string) error
	RemoveUser(ctx context.Context, username, contact string) error
	AddRoom(ctx context.Context, username, roomID string) error
	RemoveRoom(ctx context.Context, username, roomID string) error
	RemoveRoomEverywhere(ctx context.Context, roomID string) error
	RoomsOf(ctx context.Context, username string) ([]string, error)
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection((&Contacts{}).GetTableName())}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "rooms", Value: 1}}},
	})
	return errs.Wrap(err)
}

func (s *MongoStore) Get(ctx context.Context, username string) (*Contacts, error) {
	var c Contacts
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&c)
	if mongoutil.IsNotFound(err) {
		return &Contacts{Username: username, Users: []string{}, Rooms: []string{}}, nil
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &c, nil
}

func (s *MongoStore) Create(ctx context.Context, username string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$setOnInsert": bson.M{"users": []string{}, "rooms": []string{}}},
		options.Update().SetUpsert(true),
	)
	return errs.Wrap(err)
}

func (s *MongoStore) AddUser(ctx context.Context, username, contact string) error {
	return s.addTo(ctx, username, "users", contact)
}

func (s *MongoStore) RemoveUser(ctx context.Context, username, contact string) error {
	return s.pull(ctx, bson.M{"username": username}, "users", contact)
}

func (s *MongoStore) AddRoom(ctx context.Context, username, roomID string) error {
	return s.addTo(ctx, username, "rooms", roomID)
}

func (s *MongoStore) RemoveRoom(ctx context.Context, username, roomID string) error {
	return s.pull(ctx, bson.M{"username": username}, "rooms", roomID)
}

func (s *MongoStore) RemoveRoomEverywhere(ctx context.Context, roomID string) error {
	_, err := s.coll.UpdateMany(ctx, bson.M{"rooms": roomID}, bson.M{"$pull": bson.M{"rooms": roomID}})
	return errs.Wrap(err)
}

func (s *MongoStore) RoomsOf(ctx context.Context, username string) ([]string, error) {
	c, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	return c.Rooms, nil
}

func (s *MongoStore) addTo(ctx context.Context, username, field, value string) error {
	other := "rooms"
	if field == "rooms" {
		other = "users"
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{
			"$addToSet":    bson.M{field: value},
			"$setOnInsert": bson.M{other: []string{}},
		},
		options.Update().SetUpsert(true),
	)
	return errs.Wrap(err)
}

func (s *MongoStore) pull(ctx context.Context, filter bson.M, field, value string) error {
	_, err := s.coll.UpdateOne(ctx, filter, bson.M{"$pull": bson.M{field: value}})
	return errs.Wrap(err)
}
