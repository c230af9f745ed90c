package model

import (
	"context"
	"regexp"

	"PolyChat/data/database/mgo/mongoutil"
	"PolyChat/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Room properties an owner may change.
const (
	PropName                = "name"
	PropIsEveryoneCanInvite = "isEveryoneCanInvite"
)

type Room struct {
	ID                  string   `bson:"id" json:"id"`
	Owner               string   `bson:"owner" json:"owner"`
	Name                string   `bson:"name" json:"name"`
	Users               []string `bson:"users" json:"users"`
	IsEveryoneCanInvite bool     `bson:"isEveryoneCanInvite" json:"isEveryoneCanInvite"`
}

func (r *Room) GetTableName() string {
	return "rooms"
}

func (r *Room) HasMember(username string) bool {
	for _, u := range r.Users {
		if u == username {
			return true
		}
	}
	return false
}

// Rooms stores room documents. Missing rooms are ROOM_NOT_FOUND.
type Rooms interface {
	Get(ctx context.Context, id string) (*Room, error)
	Find(ctx context.Context, ids []string) ([]*Room, error)
	Create(ctx context.Context, r *Room) error
	Set(ctx context.Context, id, property string, value any) error
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, id, username string) error
	// RemoveMember returns the room after the member was removed.
	RemoveMember(ctx context.Context, id, username string) (*Room, error)
	Search(ctx context.Context, query string, limit int) ([]*Room, error)
}

type MongoRooms struct {
	coll *mongo.Collection
}

func NewMongoRooms(db *mongo.Database) *MongoRooms {
	return &MongoRooms{coll: db.Collection((&Room{}).GetTableName())}
}

func (s *MongoRooms) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errs.Wrap(err)
}

func (s *MongoRooms) Get(ctx context.Context, id string) (*Room, error) {
	var r Room
	err := s.coll.FindOne(ctx, bson.M{"id": id}).Decode(&r)
	if mongoutil.IsNotFound(err) {
		return nil, errs.ErrRoomNotFound.Wrap()
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &r, nil
}

func (s *MongoRooms) Find(ctx context.Context, ids []string) ([]*Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"id": bson.M{"$in": ids}}, options.Find())
}

func (s *MongoRooms) Create(ctx context.Context, r *Room) error {
	_, err := s.coll.InsertOne(ctx, r)
	return errs.Wrap(err)
}

func (s *MongoRooms) Set(ctx context.Context, id, property string, value any) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{property: value}})
	if err != nil {
		return errs.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrRoomNotFound.Wrap()
	}
	return nil
}

func (s *MongoRooms) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"id": id})
	return errs.Wrap(err)
}

func (s *MongoRooms) AddMember(ctx context.Context, id, username string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$addToSet": bson.M{"users": username}})
	if err != nil {
		return errs.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrRoomNotFound.Wrap()
	}
	return nil
}

func (s *MongoRooms) RemoveMember(ctx context.Context, id, username string) (*Room, error) {
	var r Room
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$pull": bson.M{"users": username}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	if mongoutil.IsNotFound(err) {
		return nil, errs.ErrRoomNotFound.Wrap()
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &r, nil
}

func (s *MongoRooms) Search(ctx context.Context, query string, limit int) ([]*Room, error) {
	filter := bson.M{"name": bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}}
	return s.find(ctx, filter, options.Find().SetLimit(int64(limit)))
}

func (s *MongoRooms) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Room, error) {
	cur, err := s.coll.Find(ctx, filter, opts.SetProjection(bson.M{"_id": 0}))
	if err != nil {
		return nil, errs.Wrap(err)
	}
	var out []*Room
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}
