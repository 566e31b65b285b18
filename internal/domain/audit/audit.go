package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	CreatedAt  any             `json:"createdAt"`
	Meta       json.RawMessage `json:"meta,omitempty"`
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record appends one event; the log is write-only from this side.
func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID, requestID string, meta any) error {
	var metaJSON []byte
	if meta != nil {
		payload, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		metaJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_user_id, action, entity_type, entity_id, request_id, meta_json)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, actorID, action, entityType, entityID, requestID, metaJSON)
	return err
}

func (s *Service) List(ctx context.Context, action, entityType string, limit, offset int) ([]Event, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, actor_user_id, action, entity_type, entity_id, request_id, created_at, meta_json
    FROM audit_events
    WHERE ($1 = '' OR action = $1) AND ($2 = '' OR entity_type = $2)
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, action, entityType, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		if err := rows.Scan(&event.ID, &event.ActorID, &event.Action, &event.EntityType, &event.EntityID, &event.RequestID, &event.CreatedAt, &event.Meta); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
