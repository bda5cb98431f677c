package repository

import (
	"context"

	"github.com/vivekcarvalho/profile-chatbot-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type ChatLogRepo interface {
	AppendTurn(ctx context.Context, logs []types.ChatLog) error
	GetSessionLogs(ctx context.Context, sessionId string) ([]types.ChatLog, error)
	DeleteSessionLogs(ctx context.Context, sessionId string) error
}

type chatLogRepo struct {
	collection *mongo.Collection
}

func NewChatLogRepo(collection *mongo.Collection) ChatLogRepo {
	return &chatLogRepo{
		collection: collection,
	}
}

func (r *chatLogRepo) AppendTurn(ctx context.Context, logs []types.ChatLog) error {
	if len(logs) == 0 {
		return nil
	}
	docs := make([]interface{}, len(logs))
	for i, l := range logs {
		docs[i] = l
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *chatLogRepo) GetSessionLogs(ctx context.Context, sessionId string) ([]types.ChatLog, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"session_id": sessionId},
		options.Find().SetSort(bson.M{"created_at": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []types.ChatLog
	for cursor.Next(ctx) {
		var l types.ChatLog
		if err := cursor.Decode(&l); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (r *chatLogRepo) DeleteSessionLogs(ctx context.Context, sessionId string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"session_id": sessionId})
	return err
}
