package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"paceline.app/community/internal/entity"
)

const eventsIndex = "events"

// ErrSearchUnavailable is returned by Search when no meilisearch host is
// configured; callers fall back to a database match.
var ErrSearchUnavailable = errors.New("search is not configured")

// EventIndex mirrors events into meilisearch. Every method is safe to call
// without a client, in which case writes are dropped.
type EventIndex interface {
	IndexEvent(ev *entity.Event) error
	DeleteEvent(id string) error
	// Search returns matching active event ids, best match first.
	Search(query string, limit int) ([]string, error)
}

type meiliEventIndex struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewEventIndex(client meilisearch.ServiceManager) EventIndex {
	s := &meiliEventIndex{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	if client != nil {
		s.initIndex()
	}
	return s
}

func (s *meiliEventIndex) initIndex() {
	filterable := []interface{}{"is_active", "event_type"}
	if _, err := s.client.Index(eventsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("⚠️ Failed to update events filterable attributes: %v", err)
	}

	sortable := []string{"starts_at"}
	if _, err := s.client.Index(eventsIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("⚠️ Failed to update events sortable attributes: %v", err)
	}

	log.Println("✅ Meilisearch events index initialized")
}

type meiliEventDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	EventType   string `json:"event_type"`
	SponsorName string `json:"sponsor_name"`
	IsActive    bool   `json:"is_active"`
	StartsAt    int64  `json:"starts_at"`
}

func (s *meiliEventIndex) cleanText(content *string) string {
	if content == nil {
		return ""
	}
	clean := html.UnescapeString(s.sanitizer.Sanitize(*content))
	return strings.Join(strings.Fields(clean), " ")
}

func (s *meiliEventIndex) IndexEvent(ev *entity.Event) error {
	if s.client == nil {
		return nil
	}

	doc := meiliEventDoc{
		ID:          ev.ID.String(),
		Title:       ev.Title,
		Description: s.cleanText(ev.Description),
		EventType:   ev.EventType,
		SponsorName: s.cleanText(ev.SponsorName),
		IsActive:    ev.IsActive,
		StartsAt:    ev.StartsAt.Unix(),
	}

	primaryKey := "id"
	task, err := s.client.Index(eventsIndex).AddDocuments([]meiliEventDoc{doc}, &primaryKey)
	if err != nil {
		return fmt.Errorf("index event %s: %w", ev.ID, err)
	}
	log.Printf("Indexed event %s, task id: %d", ev.ID, task.TaskUID)
	return nil
}

func (s *meiliEventIndex) DeleteEvent(id string) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.Index(eventsIndex).DeleteDocument(id)
	return err
}

func (s *meiliEventIndex) Search(query string, limit int) ([]string, error) {
	if s.client == nil {
		return nil, ErrSearchUnavailable
	}

	raw, err := s.client.Index(eventsIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Filter:               "is_active = true",
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}

	var res struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &res); err != nil {
		return nil, fmt.Errorf("decode event search: %w", err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
