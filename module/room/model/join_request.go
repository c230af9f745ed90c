package model

import (
	"context"

	"PolyChat/data/database/mgo/mongoutil"
	"PolyChat/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// JoinRequest asks a room owner to admit Requester.
type JoinRequest struct {
	ID        string `bson:"id" json:"id"`
	Requester string `bson:"requester" json:"requester"`
	RoomID    string `bson:"roomID" json:"roomID"`
}

func (j *JoinRequest) GetTableName() string {
	return "joinrequests"
}

type JoinRequests interface {
	Create(ctx context.Context, j *JoinRequest) error
	Get(ctx context.Context, id string) (*JoinRequest, error)
	Delete(ctx context.Context, id string) error
}

type MongoJoinRequests struct {
	coll *mongo.Collection
}

func NewMongoJoinRequests(db *mongo.Database) *MongoJoinRequests {
	return &MongoJoinRequests{coll: db.Collection((&JoinRequest{}).GetTableName())}
}

func (s *MongoJoinRequests) Create(ctx context.Context, j *JoinRequest) error {
	_, err := s.coll.InsertOne(ctx, j)
	return errs.Wrap(err)
}

func (s *MongoJoinRequests) Get(ctx context.Context, id string) (*JoinRequest, error) {
	var j JoinRequest
	err := s.coll.FindOne(ctx, bson.M{"id": id}).Decode(&j)
	if mongoutil.IsNotFound(err) {
		return nil, errs.ErrJoinRequestNotFound.Wrap()
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &j, nil
}

func (s *MongoJoinRequests) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"id": id})
	return errs.Wrap(err)
}
