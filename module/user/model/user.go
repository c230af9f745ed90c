package model

import (
	"context"
	"regexp"

	"PolyChat/data/database/mgo/mongoutil"
	"PolyChat/service/chat"
	"PolyChat/tools/errs"
	"PolyChat/tools/safe"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// User is the account document. Password holds the bcrypt hash.
type User struct {
	Username string  `bson:"username" json:"username"`
	Password string  `bson:"password" json:"-"`
	Status   string  `bson:"status" json:"status"`
	Avatar   *string `bson:"avatar" json:"avatar"`
	Lang     string  `bson:"lang" json:"lang"`
}

func (u *User) GetTableName() string {
	return "users"
}

func (u *User) Profile() chat.UserProfile {
	return chat.UserProfile{
		Username: u.Username,
		Status:   u.Status,
		Avatar:   safe.DefaultString(u.Avatar, ""),
		Lang:     u.Lang,
	}
}

// Users is the user store. Missing users are reported as RECORD_NOT_FOUND.
type Users interface {
	Get(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, usernames []string) ([]*User, error)
	Search(ctx context.Context, query string, limit int) ([]*User, error)
	SetStatus(ctx context.Context, username, status string) error
	SetAvatar(ctx context.Context, username, avatar string) error
	SetLang(ctx context.Context, username, lang string) error
}

type MongoUsers struct {
	coll *mongo.Collection
}

func NewMongoUsers(db *mongo.Database) *MongoUsers {
	return &MongoUsers{coll: db.Collection((&User{}).GetTableName())}
}

func (s *MongoUsers) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errs.Wrap(err)
}

func (s *MongoUsers) Get(ctx context.Context, username string) (*User, error) {
	var u User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if mongoutil.IsNotFound(err) {
		return nil, errs.ErrRecordNotFound.WrapMsg("user", "username", username)
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &u, nil
}

func (s *MongoUsers) Create(ctx context.Context, u *User) error {
	_, err := s.coll.InsertOne(ctx, u)
	if mongoutil.IsDuplicate(err) {
		return errs.ErrUserAlreadyExists.Wrap()
	}
	return errs.Wrap(err)
}

func (s *MongoUsers) Find(ctx context.Context, usernames []string) ([]*User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"username": bson.M{"$in": usernames}}, options.Find())
}

// Search matches usernames case-insensitively on a literal substring.
func (s *MongoUsers) Search(ctx context.Context, query string, limit int) ([]*User, error) {
	filter := bson.M{"username": bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}}
	return s.find(ctx, filter, options.Find().SetLimit(int64(limit)))
}

func (s *MongoUsers) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*User, error) {
	cur, err := s.coll.Find(ctx, filter, opts.SetProjection(bson.M{"_id": 0}))
	if err != nil {
		return nil, errs.Wrap(err)
	}
	var out []*User
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

func (s *MongoUsers) SetStatus(ctx context.Context, username, status string) error {
	return s.set(ctx, username, "status", status)
}

func (s *MongoUsers) SetAvatar(ctx context.Context, username, avatar string) error {
	return s.set(ctx, username, "avatar", avatar)
}

func (s *MongoUsers) SetLang(ctx context.Context, username, lang string) error {
	return s.set(ctx, username, "lang", lang)
}

func (s *MongoUsers) set(ctx context.Context, username, field string, value any) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"username": username}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return errs.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrRecordNotFound.WrapMsg("user", "username", username)
	}
	return nil
}
