package model

import (
	"context"
	"sync"

	"PolyChat/data/database/mgo/mongoutil"
	"PolyChat/service/chat"
	"PolyChat/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Invitation offers a contact link, or room membership when RoomID is set.
type Invitation struct {
	ID               string  `bson:"id" json:"id"`
	Inviter          string  `bson:"inviter" json:"inviter"`
	Invitee          string  `bson:"invitee" json:"invitee"`
	IsRoomInvitation bool    `bson:"isRoomInvitation" json:"isRoomInvitation"`
	RoomID           *string `bson:"roomID" json:"roomID"`
}

func (i *Invitation) GetTableName() string {
	return "invitations"
}

func (i *Invitation) Event() chat.Invitation {
	return chat.Invitation{
		ID:               i.ID,
		Inviter:          i.Inviter,
		Invitee:          i.Invitee,
		IsRoomInvitation: i.IsRoomInvitation,
		RoomID:           i.RoomID,
	}
}

type Store interface {
	Create(ctx context.Context, i *Invitation) error
	Get(ctx context.Context, id string) (*Invitation, error)
	Delete(ctx context.Context, id string) error
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection((&Invitation{}).GetTableName())}
}

func (s *MongoStore) Create(ctx context.Context, i *Invitation) error {
	_, err := s.coll.InsertOne(ctx, i)
	return errs.Wrap(err)
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Invitation, error) {
	var i Invitation
	err := s.coll.FindOne(ctx, bson.M{"id": id}).Decode(&i)
	if mongoutil.IsNotFound(err) {
		return nil, errs.ErrInvitationNotFound.Wrap()
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &i, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"id": id})
	return errs.Wrap(err)
}

type memStore struct {
	mu   sync.Mutex
	invs map[string]Invitation
}

// NewMemStore returns a process local invitation Store.
func NewMemStore() Store {
	return &memStore{invs: make(map[string]Invitation)}
}

func (m *memStore) Create(_ context.Context, i *Invitation) error {
	m.mu.Lock()
	m.invs[i.ID] = *i
	m.mu.Unlock()
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.invs[id]
	if !ok {
		return nil, errs.ErrInvitationNotFound.Wrap()
	}
	return &i, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.invs, id)
	m.mu.Unlock()
	return nil
}
