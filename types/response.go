package types

type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ChatLog is one persisted conversation turn.
type ChatLog struct {
	SessionId string `bson:"session_id" json:"session_id"`
	Role      string `bson:"role" json:"role"`
	Content   string `bson:"content" json:"content"`
	CreatedAt int64  `bson:"created_at" json:"created_at"`
}
