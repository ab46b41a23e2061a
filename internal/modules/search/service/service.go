package search

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"newera.app/reentry/internal/entity"
)

const resourcesIndex = "resources"

type SearchService interface {
	IndexResource(resource *entity.Resource) error
	DeleteResource(id uint) error
	SearchResources(query string, limit int64) ([]uint, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, logger *zap.Logger) SearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"is_active", "tags"}
	if _, err := s.client.Index(resourcesIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.logger.Warn("failed to update resources filterable attributes", zap.Error(err))
	}

	sortable := []string{"clicks", "name"}
	if _, err := s.client.Index(resourcesIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.logger.Warn("failed to update resources sortable attributes", zap.Error(err))
	}
}

type meiliResourceDoc struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	City        string   `json:"city"`
	Tags        []string `json:"tags"`
	Clicks      int      `json:"clicks"`
	IsActive    bool     `json:"is_active"`
}

func (s *meiliSearchService) IndexResource(resource *entity.Resource) error {
	doc := buildResourceDoc(s.sanitizer, resource)

	task, err := s.client.Index(resourcesIndex).AddDocuments([]meiliResourceDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	s.logger.Debug("indexed resource", zap.Uint("resource_id", resource.ID), zap.Int64("task_uid", task.TaskUID))
	return nil
}

func (s *meiliSearchService) DeleteResource(id uint) error {
	_, err := s.client.Index(resourcesIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

// SearchResources returns matching active resource ids in relevance order.
func (s *meiliSearchService) SearchResources(query string, limit int64) ([]uint, error) {
	if limit <= 0 {
		limit = 20
	}

	raw, err := s.client.Index(resourcesIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                limit,
		Filter:               "is_active = true",
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("meilisearch query failed: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	return parseHitIDs(*raw)
}

func buildResourceDoc(sanitizer *bluemonday.Policy, resource *entity.Resource) meiliResourceDoc {
	tags := make([]string, 0, len(resource.Tags))
	for _, t := range resource.Tags {
		tags = append(tags, t.Name)
	}

	return meiliResourceDoc{
		ID:          resource.ID,
		Name:        resource.Name,
		Description: cleanContentForIndex(sanitizer, resource.Description),
		City:        resource.City,
		Tags:        tags,
		Clicks:      resource.Clicks,
		IsActive:    resource.IsActive,
	}
}

func cleanContentForIndex(sanitizer *bluemonday.Policy, content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	cleanText := html.UnescapeString(sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(cleanText), " ")
}

func parseHitIDs(raw []byte) ([]uint, error) {
	var body struct {
		Hits []struct {
			ID uint `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uint, 0, len(body.Hits))
	for _, h := range body.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
