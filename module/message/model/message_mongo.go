package model

import (
	"context"

	"PolyChat/data/database/mgo/mongoutil"
	"PolyChat/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection((&Message{}).GetTableName())}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "seq", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "recipient", Value: 1}, {Key: "seq", Value: -1}}},
		{Keys: bson.D{{Key: "roomID", Value: 1}, {Key: "seq", Value: -1}}},
	})
	return errs.Wrap(err)
}

func (s *MongoStore) Insert(ctx context.Context, m *Message) error {
	_, err := s.coll.InsertOne(ctx, m)
	return errs.Wrap(err)
}

func filterOf(q Query) bson.M {
	var f bson.M
	if q.RoomID != "" {
		f = bson.M{"roomID": q.RoomID}
	} else {
		f = bson.M{"$or": bson.A{
			bson.M{"sender": q.Me, "recipient": q.Peer},
			bson.M{"sender": q.Peer, "recipient": q.Me},
		}}
	}
	if q.Before > 0 {
		f["seq"] = bson.M{"$lt": q.Before}
	}
	if q.AttachmentsOnly {
		f["attachment"] = bson.M{"$exists": true}
	}
	return f
}

func (s *MongoStore) List(ctx context.Context, q Query) ([]*Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: -1}}).
		SetLimit(int64(q.Limit)).
		SetProjection(bson.M{"_id": 0})
	cur, err := s.coll.Find(ctx, filterOf(q), opts)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	var out []*Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

func (s *MongoStore) LastFor(ctx context.Context, username string) (*Message, error) {
	var m Message
	err := s.coll.FindOne(ctx,
		bson.M{"$or": bson.A{bson.M{"sender": username}, bson.M{"recipient": username}}},
		options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}}).SetProjection(bson.M{"_id": 0}),
	).Decode(&m)
	if mongoutil.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &m, nil
}
